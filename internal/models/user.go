package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus describes whether an account may sign in.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusDisabled  UserStatus = "DISABLED"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Role is the single enumerated permission level of a user.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleDataManager Role = "DATA_MANAGER"
	RoleViewer      Role = "VIEWER"
)

// User is an account able to authenticate against the directory.
type User struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	FullName     *string    `gorm:"size:255" json:"full_name"`
	Username     string     `gorm:"size:100;not null;uniqueIndex:idx_users_username,where:deleted_at IS NULL" json:"username"`
	Email        string     `gorm:"size:255;not null;uniqueIndex:idx_users_email,where:deleted_at IS NULL" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Status       UserStatus `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	Role         Role       `gorm:"size:32;not null;default:DATA_MANAGER" json:"role"`
	Audit
}

// BeforeCreate assigns a fresh identifier.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// IsActive reports whether the account may sign in.
func (u User) IsActive() bool {
	return u.Status == UserStatusActive
}
