package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/models"
)

// UserRepository is the credential store. Reads never return soft-deleted accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	Update(ctx context.Context, user *models.User, fields map[string]interface{}) error
	List(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.duplicateOf(ctx, user)
	}
	if err != nil {
		return apperror.NewStorage("create user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.first(ctx, "id = ?", id, id.String())
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return r.first(ctx, "username = ?", strings.TrimSpace(username), username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return r.first(ctx, "email = ?", normalized, normalized)
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if result.Error != nil {
		return apperror.NewStorage("update password hash", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound("user", id.String())
	}
	return nil
}

// Update applies a sparse column map to a live user and reloads it.
func (r *userRepository) Update(ctx context.Context, user *models.User, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(fields)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return &apperror.ConflictError{Entity: "user", Reason: "username or email already in use"}
	}
	if result.Error != nil {
		return apperror.NewStorage("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound("user", user.ID.String())
	}

	reloaded, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	*user = reloaded
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, apperror.NewStorage("list users", err)
	}
	return users, nil
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}, key string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.User{}, apperror.NewNotFound("user", key)
	default:
		return models.User{}, apperror.NewStorage("get user", err)
	}
}

// duplicateOf works out which unique column the insert collided with.
func (r *userRepository) duplicateOf(ctx context.Context, user *models.User) error {
	if _, err := r.GetByUsername(ctx, user.Username); err == nil {
		return apperror.NewConflict("user", "username", user.Username)
	}
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return apperror.NewConflict("user", "email", user.Email)
	}
	return &apperror.ConflictError{Entity: "user", Reason: "username or email already in use"}
}
