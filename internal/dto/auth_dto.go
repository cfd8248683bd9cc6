package dto

import (
	"github.com/google/uuid"

	"github.com/noah-isme/udata-api/internal/models"
)

// RegisterRequest captures a self-registration payload.
type RegisterRequest struct {
	Username string  `json:"username" form:"username" validate:"required,min=3,max=100"`
	Email    string  `json:"email" form:"email" validate:"required,email,max=255"`
	Password string  `json:"password" form:"password" validate:"required,min=8"`
	FullName *string `json:"full_name" form:"full_name" validate:"omitempty,max=255"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name"`
}

// LoginRequest accepts either a JSON body or an OAuth2 password form.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UserUpdateRequest is an administrator's sparse account update.
type UserUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Status   *string `json:"status" validate:"omitempty,oneof=ACTIVE DISABLED SUSPENDED"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN DATA_MANAGER VIEWER"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	FullName *string   `json:"full_name"`
	Status   string    `json:"status"`
	Role     string    `json:"role"`
}

// NewUserResponse converts a model into its public view.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Status:   string(user.Status),
		Role:     string(user.Role),
	}
}

// NewRegisterResponse converts a freshly created account.
func NewRegisterResponse(user models.User) RegisterResponse {
	return RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}
}
