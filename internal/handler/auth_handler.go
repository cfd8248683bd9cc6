package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/service"
	"github.com/noah-isme/udata-api/internal/utils"
)

// AuthHandler exposes registration, login and account endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes. limit guards the credential endpoints, authenticated
// resolves the bearer token and admin restricts the user listing.
func (h *AuthHandler) Register(router fiber.Router, limit, authenticated, admin fiber.Handler) {
	router.Post("/register", limit, h.register)
	router.Post("/login", limit, h.login)
	router.Get("/me", authenticated, h.me)
	router.Get("/users", authenticated, admin, h.listUsers)
	router.Put("/users/:id", authenticated, admin, h.updateUser)
	router.Patch("/users/:id", authenticated, admin, h.updateUser)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	resp, err := h.service.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to register user")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user registered", resp)
}

// login accepts JSON as well as an application/x-www-form-urlencoded password grant.
func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	token, err := h.service.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to login")
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return utils.SendSuccess(c, "login successful", token)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	profile, err := h.service.Profile(c.UserContext(), currentActor(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load profile")
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *AuthHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list users")
	}
	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *AuthHandler) updateUser(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "invalid user id")
	}

	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}

	user, err := h.service.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update user")
	}
	return utils.SendSuccess(c, "user updated", user)
}
