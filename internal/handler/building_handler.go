package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/service"
	"github.com/noah-isme/udata-api/internal/utils"
)

// BuildingHandler serves building endpoints.
type BuildingHandler struct {
	service service.BuildingService
	logger  zerolog.Logger
}

// NewBuildingHandler constructs the handler.
func NewBuildingHandler(service service.BuildingService, logger zerolog.Logger) *BuildingHandler {
	return &BuildingHandler{
		service: service,
		logger:  logger.With().Str("component", "building_handler").Logger(),
	}
}

// Register wires building routes.
func (h *BuildingHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/nested", h.listNested)
	router.Get("/campus/:campusID", h.listByCampus)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *BuildingHandler) list(c *fiber.Ctx) error {
	campusID, err := parseQueryID(c, "campus_id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid campus filter")
	}

	buildings, err := h.service.List(c.UserContext(), campusID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list buildings")
	}
	return utils.SendSuccess(c, "buildings retrieved", buildings)
}

func (h *BuildingHandler) listByCampus(c *fiber.Ctx) error {
	campusID, err := parseParamID(c, "campusID")
	if err != nil {
		return respondError(c, h.logger, err, "invalid campus id")
	}

	buildings, err := h.service.List(c.UserContext(), &campusID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list buildings")
	}
	return utils.SendSuccess(c, "buildings retrieved", buildings)
}

func (h *BuildingHandler) listNested(c *fiber.Ctx) error {
	campusID, err := parseQueryID(c, "campus_id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid campus filter")
	}

	buildings, err := h.service.ListNested(c.UserContext(), campusID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list nested buildings")
	}
	return utils.SendSuccess(c, "buildings retrieved", buildings)
}

func (h *BuildingHandler) create(c *fiber.Ctx) error {
	var req dto.BuildingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	building, err := h.service.Create(c.UserContext(), currentActor(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create building")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "building created", building)
}

func (h *BuildingHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid building id")
	}

	building, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load building")
	}
	return utils.SendSuccess(c, "building retrieved", building)
}

func (h *BuildingHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid building id")
	}

	var req dto.BuildingUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	building, err := h.service.Update(c.UserContext(), currentActor(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update building")
	}
	return utils.SendSuccess(c, "building updated", building)
}

// delete answers 409 while the building still has live rooms.
func (h *BuildingHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid building id")
	}

	resp, err := h.service.Delete(c.UserContext(), currentActor(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to delete building")
	}
	return utils.SendSuccess(c, "building deleted", resp)
}
