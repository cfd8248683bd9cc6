package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/service"
	"github.com/noah-isme/udata-api/internal/utils"
)

// RoomHandler serves room endpoints.
type RoomHandler struct {
	service service.RoomService
	logger  zerolog.Logger
}

// NewRoomHandler constructs the handler.
func NewRoomHandler(service service.RoomService, logger zerolog.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		logger:  logger.With().Str("component", "room_handler").Logger(),
	}
}

// Register wires room routes.
func (h *RoomHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/building/:buildingID", h.listByBuilding)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *RoomHandler) list(c *fiber.Ctx) error {
	buildingID, err := parseQueryID(c, "building_id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid building filter")
	}

	rooms, err := h.service.List(c.UserContext(), buildingID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list rooms")
	}
	return utils.SendSuccess(c, "rooms retrieved", rooms)
}

func (h *RoomHandler) listByBuilding(c *fiber.Ctx) error {
	buildingID, err := parseParamID(c, "buildingID")
	if err != nil {
		return respondError(c, h.logger, err, "invalid building id")
	}

	rooms, err := h.service.List(c.UserContext(), &buildingID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to list rooms")
	}
	return utils.SendSuccess(c, "rooms retrieved", rooms)
}

func (h *RoomHandler) create(c *fiber.Ctx) error {
	var req dto.RoomCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	room, err := h.service.Create(c.UserContext(), currentActor(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create room")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "room created", room)
}

func (h *RoomHandler) get(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid room id")
	}

	room, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load room")
	}
	return utils.SendSuccess(c, "room retrieved", room)
}

func (h *RoomHandler) update(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid room id")
	}

	var req dto.RoomUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	room, err := h.service.Update(c.UserContext(), currentActor(c), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update room")
	}
	return utils.SendSuccess(c, "room updated", room)
}

func (h *RoomHandler) delete(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid room id")
	}

	resp, err := h.service.Delete(c.UserContext(), currentActor(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "failed to delete room")
	}
	return utils.SendSuccess(c, "room deleted", resp)
}
