package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/service"
	"github.com/noah-isme/udata-api/internal/utils"
)

// CampusHandler serves campus endpoints.
type CampusHandler struct {
	service service.CampusService
	logger  zerolog.Logger
}

// NewCampusHandler constructs the handler.
func NewCampusHandler(service service.CampusService, logger zerolog.Logger) *CampusHandler {
	return &CampusHandler{
		service: service,
		logger:  logger.With().Str("component", "campus_handler").Logger(),
	}
}

// Register wires campus routes.
func (h *CampusHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/nested", h.listNested)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *CampusHandler) list(c *fiber.Ctx) error {
	campuses, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list campuses")
	}
	return utils.SendSuccess(c, "campuses retrieved", campuses)
}

func (h *CampusHandler) listNested(c *fiber.Ctx) error {
	campuses, err := h.service.ListNested(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list nested campuses")
	}
	return utils.SendSuccess(c, "campuses retrieved", campuses)
}

func (h *CampusHandler) create(c *fiber.Ctx) error {
	var req dto.CampusCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	campus, err := h.service.Create(c.UserContext(), currentActor(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create campus")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "campus created", campus)
}

func (h *CampusHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid campus id")
	}

	campus, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load campus")
	}
	return utils.SendSuccess(c, "campus retrieved", campus)
}

func (h *CampusHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid campus id")
	}

	var req dto.CampusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	campus, err := h.service.Update(c.UserContext(), currentActor(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update campus")
	}
	return utils.SendSuccess(c, "campus updated", campus)
}

func (h *CampusHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid campus id")
	}

	resp, err := h.service.Delete(c.UserContext(), currentActor(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to delete campus")
	}
	return utils.SendSuccess(c, "campus deleted", resp)
}
