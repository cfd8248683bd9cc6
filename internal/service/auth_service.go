package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/observability"
	"github.com/noah-isme/udata-api/internal/repository"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password.
var ErrInvalidCredentials = apperror.Unauthenticated("invalid username or password", nil)

// PasswordHasher hashes new passwords and verifies stored ones.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) (ok bool, needsRehash bool, err error)
}

// TokenIssuer mints bearer tokens.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
	DefaultTTL() time.Duration
}

// AuthService registers accounts and exchanges credentials for bearer tokens.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.RegisterResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error)
	Profile(ctx context.Context, user models.User) (dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req dto.UserUpdateRequest) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (dto.RegisterResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return dto.RegisterResponse{}, err
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return dto.RegisterResponse{}, apperror.NewConflict("user", "username", req.Username)
	} else if !apperror.IsNotFound(err) {
		return dto.RegisterResponse{}, err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return dto.RegisterResponse{}, apperror.NewConflict("user", "email", req.Email)
	} else if !apperror.IsNotFound(err) {
		return dto.RegisterResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return dto.RegisterResponse{}, apperror.NewValidation("password", err.Error())
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     sanitizeOptional(s.sanitizer, req.FullName),
		PasswordHash: hash,
		Status:       models.UserStatusActive,
		Role:         models.RoleDataManager,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.RegisterResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user registered")
	return dto.NewRegisterResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/udata-api/internal/service/auth")
	ctx, span := tracer.Start(ctx, "auth.login")
	defer span.End()

	req.Username = strings.TrimSpace(req.Username)
	span.SetAttributes(attribute.String("auth.username", req.Username))

	if err := s.validator.Struct(req); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		observability.AuthLogins().WithLabelValues("invalid_request").Inc()
		return dto.TokenResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			span.SetStatus(codes.Error, "unknown_user")
			observability.AuthLogins().WithLabelValues("invalid_credentials").Inc()
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "user_lookup_failed")
		observability.AuthLogins().WithLabelValues("error").Inc()
		return dto.TokenResponse{}, err
	}

	ok, needsRehash, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("stored password hash could not be verified")
	}
	if !ok {
		span.SetStatus(codes.Error, "bad_password")
		observability.AuthLogins().WithLabelValues("invalid_credentials").Inc()
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	if !user.IsActive() {
		span.SetStatus(codes.Error, "account_inactive")
		observability.AuthLogins().WithLabelValues("inactive").Inc()
		return dto.TokenResponse{}, apperror.PermissionDenied("account is " + strings.ToLower(string(user.Status)))
	}

	if needsRehash {
		s.upgradeHash(ctx, user, req.Password)
	}

	ttl := s.tokens.DefaultTTL()
	token, err := s.tokens.Issue(user.ID.String(), ttl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token_issue_failed")
		observability.AuthLogins().WithLabelValues("error").Inc()
		return dto.TokenResponse{}, err
	}

	span.SetAttributes(attribute.String("auth.user_id", user.ID.String()))
	observability.AuthLogins().WithLabelValues("success").Inc()

	return dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl / time.Second),
	}, nil
}

// upgradeHash moves a legacy hash to the current scheme. Failures only cost a retry on the next login.
func (s *authService) upgradeHash(ctx context.Context, user models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to upgrade password hash")
		return
	}
	s.logger.Info().Str("user_id", user.ID.String()).Msg("password hash upgraded")
}

func (s *authService) Profile(ctx context.Context, user models.User) (dto.UserResponse, error) {
	if user.ID == uuid.Nil {
		return dto.UserResponse{}, apperror.Unauthenticated("authentication required", nil)
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}
	return responses, nil
}

// UpdateUser lets an administrator rename, re-role or suspend an account.
// Suspending takes effect at the next login; issued tokens stay valid.
func (s *authService) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UserUpdateRequest) (dto.UserResponse, error) {
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		req.Username = &trimmed
	}
	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &normalized
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return dto.UserResponse{}, err
	}

	fields := map[string]interface{}{}
	if req.Username != nil && *req.Username != user.Username {
		if err := s.ensureFree(ctx, user.ID, "username", *req.Username, s.users.GetByUsername); err != nil {
			return dto.UserResponse{}, err
		}
		fields["username"] = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := s.ensureFree(ctx, user.ID, "email", *req.Email, s.users.GetByEmail); err != nil {
			return dto.UserResponse{}, err
		}
		fields["email"] = *req.Email
	}
	if req.FullName != nil {
		fields["full_name"] = sanitizeOptional(s.sanitizer, req.FullName)
	}
	if req.Status != nil {
		fields["status"] = models.UserStatus(*req.Status)
	}
	if req.Role != nil {
		fields["role"] = models.Role(*req.Role)
	}

	if len(fields) == 0 {
		return dto.NewUserResponse(user), nil
	}
	if err := s.users.Update(ctx, &user, fields); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Strs("fields", fieldNames(fields)).Msg("user updated")
	return dto.NewUserResponse(user), nil
}

func (s *authService) ensureFree(ctx context.Context, self uuid.UUID, field, value string, lookup func(context.Context, string) (models.User, error)) error {
	other, err := lookup(ctx, value)
	switch {
	case err == nil && other.ID != self:
		return apperror.NewConflict("user", field, value)
	case err == nil, apperror.IsNotFound(err):
		return nil
	default:
		return err
	}
}
