package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/udata-api/internal/models"
)

// AuditResponse exposes the bookkeeping columns of a directory record.
type AuditResponse struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at"`
	CreatedByID *uuid.UUID `json:"created_by_id"`
	UpdatedByID *uuid.UUID `json:"updated_by_id"`
}

func newAuditResponse(audit models.Audit) AuditResponse {
	return AuditResponse{
		CreatedAt:   audit.CreatedAt,
		UpdatedAt:   audit.UpdatedAt,
		DeletedAt:   audit.DeletedTime(),
		CreatedByID: audit.CreatedByID,
		UpdatedByID: audit.UpdatedByID,
	}
}

// DeleteResponse acknowledges a soft delete.
type DeleteResponse struct {
	ID        uuid.UUID `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// NewDeleteResponse builds the acknowledgement from the reloaded record.
func NewDeleteResponse(id uuid.UUID, audit models.Audit) DeleteResponse {
	resp := DeleteResponse{ID: id}
	if deleted := audit.DeletedTime(); deleted != nil {
		resp.DeletedAt = *deleted
	}
	return resp
}

// CampusCreateRequest captures a new campus.
type CampusCreateRequest struct {
	Code    string  `json:"code" validate:"required,min=1,max=50"`
	Name    string  `json:"name" validate:"required,min=1,max=255"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Status  string  `json:"status" validate:"omitempty,oneof=ACTIVE ARCHIVED"`
}

// CampusUpdateRequest is a sparse campus update; nil fields are left untouched.
type CampusUpdateRequest struct {
	Code    *string `json:"code" validate:"omitempty,min=1,max=50"`
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Status  *string `json:"status" validate:"omitempty,oneof=ACTIVE ARCHIVED"`
}

// CampusResponse serializes a campus.
type CampusResponse struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Address *string   `json:"address"`
	Status  string    `json:"status"`
	AuditResponse
}

// NewCampusResponse converts a campus model.
func NewCampusResponse(campus models.Campus) CampusResponse {
	return CampusResponse{
		ID:            campus.ID,
		Code:          campus.Code,
		Name:          campus.Name,
		Address:       campus.Address,
		Status:        string(campus.Status),
		AuditResponse: newAuditResponse(campus.Audit),
	}
}

// CampusWithBuildings is a campus together with its live buildings and their rooms.
type CampusWithBuildings struct {
	CampusResponse
	Buildings []BuildingWithRooms `json:"buildings"`
}

// BuildingCreateRequest captures a new building.
type BuildingCreateRequest struct {
	CampusID string  `json:"campus_id" validate:"required,uuid"`
	Code     string  `json:"code" validate:"required,min=1,max=100"`
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	Floors   *int    `json:"floors" validate:"omitempty,min=0"`
	Type     string  `json:"type" validate:"omitempty,oneof=ACADEMIC ADMIN DORM LIBRARY LAB OTHER"`
	Status   *string `json:"status" validate:"omitempty,oneof=ACTIVE IN_MAINTENANCE RETIRED"`
}

// BuildingUpdateRequest is a sparse building update.
type BuildingUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Floors *int    `json:"floors" validate:"omitempty,min=0"`
	Type   *string `json:"type" validate:"omitempty,oneof=ACADEMIC ADMIN DORM LIBRARY LAB OTHER"`
	Status *string `json:"status" validate:"omitempty,oneof=ACTIVE IN_MAINTENANCE RETIRED"`
}

// BuildingResponse serializes a building.
type BuildingResponse struct {
	ID       uuid.UUID `json:"id"`
	CampusID uuid.UUID `json:"campus_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Floors   *int      `json:"floors"`
	Type     string    `json:"type"`
	Status   string    `json:"status"`
	AuditResponse
}

// NewBuildingResponse converts a building model.
func NewBuildingResponse(building models.Building) BuildingResponse {
	return BuildingResponse{
		ID:            building.ID,
		CampusID:      building.CampusID,
		Code:          building.Code,
		Name:          building.Name,
		Floors:        building.Floors,
		Type:          string(building.Type),
		Status:        string(building.Status),
		AuditResponse: newAuditResponse(building.Audit),
	}
}

// BuildingWithRooms is a building together with its live rooms.
type BuildingWithRooms struct {
	BuildingResponse
	Rooms []RoomResponse `json:"rooms"`
}

// RoomCreateRequest captures a new room.
type RoomCreateRequest struct {
	BuildingID string                 `json:"building_id" validate:"required,uuid"`
	Code       string                 `json:"code" validate:"required,min=1,max=100"`
	Name       *string                `json:"name" validate:"omitempty,max=255"`
	Capacity   *int                   `json:"capacity" validate:"omitempty,min=0"`
	Floor      *int                   `json:"floor"`
	Type       string                 `json:"type" validate:"omitempty,oneof=LECTURE_HALL LAB OFFICE STORAGE AUDITORIUM OTHER"`
	Status     *string                `json:"status" validate:"omitempty,oneof=AVAILABLE OCCUPIED MAINTENANCE RETIRED"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// RoomUpdateRequest is a sparse room update.
type RoomUpdateRequest struct {
	Name     *string                `json:"name" validate:"omitempty,max=255"`
	Capacity *int                   `json:"capacity" validate:"omitempty,min=0"`
	Floor    *int                   `json:"floor"`
	Type     *string                `json:"type" validate:"omitempty,oneof=LECTURE_HALL LAB OFFICE STORAGE AUDITORIUM OTHER"`
	Status   *string                `json:"status" validate:"omitempty,oneof=AVAILABLE OCCUPIED MAINTENANCE RETIRED"`
	Metadata map[string]interface{} `json:"metadata"`
}

// RoomResponse serializes a room.
type RoomResponse struct {
	ID         uuid.UUID              `json:"id"`
	BuildingID uuid.UUID              `json:"building_id"`
	Code       string                 `json:"code"`
	Name       *string                `json:"name"`
	Capacity   *int                   `json:"capacity"`
	Floor      *int                   `json:"floor"`
	Type       string                 `json:"type"`
	Status     string                 `json:"status"`
	Metadata   map[string]interface{} `json:"metadata"`
	AuditResponse
}

// NewRoomResponse converts a room model.
func NewRoomResponse(room models.Room) RoomResponse {
	return RoomResponse{
		ID:            room.ID,
		BuildingID:    room.BuildingID,
		Code:          room.Code,
		Name:          room.Name,
		Capacity:      room.Capacity,
		Floor:         room.Floor,
		Type:          string(room.Type),
		Status:        string(room.Status),
		Metadata:      plainMetadata(room.Metadata),
		AuditResponse: newAuditResponse(room.Audit),
	}
}
