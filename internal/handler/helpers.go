package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/middleware"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/utils"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseParamID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(key)))
	if err != nil {
		return uuid.Nil, apperror.NewValidation(key, "must be a valid uuid")
	}
	return id, nil
}

// parseQueryID returns nil when the query parameter is absent.
func parseQueryID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.NewValidation(key, "must be a valid uuid")
	}
	return &id, nil
}

func currentActor(c *fiber.Ctx) models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}

// respondError writes the error envelope for err. Server-side failures are
// logged with the request correlation id and never shown to the client.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, message string) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]FieldError, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			details = append(details, FieldError{Field: fieldErr.Field(), Rule: fieldErr.Tag()})
		}
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", details)
	}

	status := apperror.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		log := middleware.RequestLogger(c, logger)
		log.Error().Err(err).Str("path", c.Path()).Msg(message)
	}
	return utils.SendError(c, status, apperror.PublicMessage(err))
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.SendError(c, fiber.StatusBadRequest, message)
}
