package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/repository"
	"github.com/noah-isme/udata-api/internal/security"
)

var (
	// ErrInvalidSubject is returned when a verified token carries a subject that is not a user id.
	ErrInvalidSubject = apperror.Unauthenticated("token subject is not a valid user id", nil)
	// ErrUserNotFound is returned when the subject no longer resolves to a live account.
	ErrUserNotFound = apperror.Unauthenticated("user not found", nil)
)

// TokenVerifier validates bearer tokens and yields their subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthGate resolves a bearer token into the live user it was issued for.
type AuthGate interface {
	Resolve(ctx context.Context, token string) (models.User, error)
}

type authGate struct {
	tokens TokenVerifier
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewAuthGate constructs the gate every protected route runs through.
func NewAuthGate(tokens TokenVerifier, users repository.UserRepository, logger zerolog.Logger) AuthGate {
	return &authGate{
		tokens: tokens,
		users:  users,
		logger: logger.With().Str("component", "auth_gate").Logger(),
	}
}

func (g *authGate) Resolve(ctx context.Context, token string) (models.User, error) {
	tracer := otel.Tracer("github.com/noah-isme/udata-api/internal/service/auth_gate")
	ctx, span := tracer.Start(ctx, "auth.resolve")
	defer span.End()

	if strings.TrimSpace(token) == "" {
		span.SetStatus(codes.Error, "token_missing")
		return models.User{}, apperror.Unauthenticated("missing bearer token", nil)
	}

	subject, err := g.tokens.Verify(token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token_rejected")
		if errors.Is(err, security.ErrTokenExpired) {
			return models.User{}, apperror.Unauthenticated("token expired", err)
		}
		return models.User{}, apperror.Unauthenticated("invalid token", err)
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		span.SetStatus(codes.Error, "subject_invalid")
		return models.User{}, ErrInvalidSubject
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			span.SetStatus(codes.Error, "user_not_found")
			return models.User{}, ErrUserNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "user_lookup_failed")
		g.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to resolve token subject")
		return models.User{}, err
	}

	return user, nil
}
