package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit carries the bookkeeping columns shared by every directory record and user.
// A nil DeletedAt means the row is live.
type Audit struct {
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	CreatedByID *uuid.UUID     `gorm:"type:char(36);index" json:"created_by_id"`
	UpdatedByID *uuid.UUID     `gorm:"type:char(36);index" json:"updated_by_id"`
}

// IsDeleted reports whether the record has been soft-deleted.
func (a Audit) IsDeleted() bool {
	return a.DeletedAt.Valid
}

// DeletedTime returns the deletion timestamp, or nil for live rows.
func (a Audit) DeletedTime() *time.Time {
	if !a.DeletedAt.Valid {
		return nil
	}
	deleted := a.DeletedAt.Time
	return &deleted
}

// MarkCreatedBy records the acting user on a new record.
func (a *Audit) MarkCreatedBy(actor uuid.UUID) {
	a.CreatedByID = &actor
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
