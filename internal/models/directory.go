package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CampusStatus string

const (
	CampusStatusActive   CampusStatus = "ACTIVE"
	CampusStatusArchived CampusStatus = "ARCHIVED"
)

type BuildingStatus string

const (
	BuildingStatusActive        BuildingStatus = "ACTIVE"
	BuildingStatusInMaintenance BuildingStatus = "IN_MAINTENANCE"
	BuildingStatusRetired       BuildingStatus = "RETIRED"
)

type BuildingType string

const (
	BuildingTypeAcademic BuildingType = "ACADEMIC"
	BuildingTypeAdmin    BuildingType = "ADMIN"
	BuildingTypeDorm     BuildingType = "DORM"
	BuildingTypeLibrary  BuildingType = "LIBRARY"
	BuildingTypeLab      BuildingType = "LAB"
	BuildingTypeOther    BuildingType = "OTHER"
)

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "AVAILABLE"
	RoomStatusOccupied    RoomStatus = "OCCUPIED"
	RoomStatusMaintenance RoomStatus = "MAINTENANCE"
	RoomStatusRetired     RoomStatus = "RETIRED"
)

type RoomType string

const (
	RoomTypeLectureHall RoomType = "LECTURE_HALL"
	RoomTypeLab         RoomType = "LAB"
	RoomTypeOffice      RoomType = "OFFICE"
	RoomTypeStorage     RoomType = "STORAGE"
	RoomTypeAuditorium  RoomType = "AUDITORIUM"
	RoomTypeOther       RoomType = "OTHER"
)

// Campus is the root of the directory hierarchy.
type Campus struct {
	ID      uuid.UUID    `gorm:"type:char(36);primaryKey" json:"id"`
	Code    string       `gorm:"size:50;not null;uniqueIndex:idx_campus_code,where:deleted_at IS NULL" json:"code"`
	Name    string       `gorm:"size:255;not null" json:"name"`
	Address *string      `gorm:"size:255" json:"address"`
	Status  CampusStatus `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	Audit
}

// TableName keeps the singular table name used by existing databases.
func (Campus) TableName() string { return "campus" }

// BeforeCreate assigns a fresh identifier.
func (c *Campus) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Building belongs to a campus; its code is unique among the campus's live buildings.
type Building struct {
	ID       uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	CampusID uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:idx_building_campus_code,where:deleted_at IS NULL" json:"campus_id"`
	Code     string         `gorm:"size:100;not null;uniqueIndex:idx_building_campus_code,where:deleted_at IS NULL" json:"code"`
	Name     string         `gorm:"size:255;not null" json:"name"`
	Floors   *int           `json:"floors"`
	Type     BuildingType   `gorm:"size:16;not null;default:OTHER" json:"type"`
	Status   BuildingStatus `gorm:"size:16;not null;default:ACTIVE" json:"status"`
	Audit
}

func (Building) TableName() string { return "building" }

// BeforeCreate assigns a fresh identifier.
func (b *Building) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Room belongs to a building; its code is unique among the building's live rooms.
type Room struct {
	ID         uuid.UUID         `gorm:"type:char(36);primaryKey" json:"id"`
	BuildingID uuid.UUID         `gorm:"type:char(36);not null;uniqueIndex:idx_room_building_code,where:deleted_at IS NULL" json:"building_id"`
	Code       string            `gorm:"size:100;not null;uniqueIndex:idx_room_building_code,where:deleted_at IS NULL" json:"code"`
	Name       *string           `gorm:"size:255" json:"name"`
	Capacity   *int              `json:"capacity"`
	Floor      *int              `json:"floor"`
	Type       RoomType          `gorm:"size:16;not null;default:OTHER" json:"type"`
	Status     RoomStatus        `gorm:"size:16;not null;default:AVAILABLE" json:"status"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	Audit
}

func (Room) TableName() string { return "room" }

// BeforeCreate assigns a fresh identifier.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
