package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/models"
)

// Scope restricts a directory query to the children of one parent row.
type Scope struct {
	Column string
	Value  uuid.UUID
}

// CampusScope limits building queries to one campus.
func CampusScope(campusID uuid.UUID) *Scope {
	return &Scope{Column: "campus_id", Value: campusID}
}

// BuildingScope limits room queries to one building.
func BuildingScope(buildingID uuid.UUID) *Scope {
	return &Scope{Column: "building_id", Value: buildingID}
}

// DirectoryRepository is the soft-delete aware CRUD contract shared by campuses,
// buildings and rooms. Default reads only ever see live rows.
type DirectoryRepository[T any] interface {
	GetByID(ctx context.Context, id uuid.UUID) (T, error)
	GetByIDUnscoped(ctx context.Context, id uuid.UUID) (T, error)
	List(ctx context.Context, scope *Scope) ([]T, error)
	Count(ctx context.Context, scope *Scope) (int64, error)
	ExistsUnique(ctx context.Context, scope *Scope, code string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, entity *T, actor uuid.UUID) error
	Update(ctx context.Context, entity *T, fields map[string]interface{}, actor uuid.UUID) error
	SoftDelete(ctx context.Context, entity *T, actor uuid.UUID) error
}

// CampusRepository persists campuses.
type CampusRepository = DirectoryRepository[models.Campus]

// BuildingRepository persists buildings.
type BuildingRepository = DirectoryRepository[models.Building]

// RoomRepository persists rooms.
type RoomRepository = DirectoryRepository[models.Room]

type auditedRecord[T any] interface {
	*T
	MarkCreatedBy(actor uuid.UUID)
}

type directoryRepository[T any, P auditedRecord[T]] struct {
	db     *gorm.DB
	entity string
	now    func() time.Time
}

func newDirectoryRepository[T any, P auditedRecord[T]](db *gorm.DB, entity string) *directoryRepository[T, P] {
	return &directoryRepository[T, P]{db: db, entity: entity, now: time.Now}
}

// NewCampusRepository constructs the campus repository.
func NewCampusRepository(db *gorm.DB) CampusRepository {
	return newDirectoryRepository[models.Campus, *models.Campus](db, "campus")
}

// NewBuildingRepository constructs the building repository.
func NewBuildingRepository(db *gorm.DB) BuildingRepository {
	return newDirectoryRepository[models.Building, *models.Building](db, "building")
}

// NewRoomRepository constructs the room repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return newDirectoryRepository[models.Room, *models.Room](db, "room")
}

func (r *directoryRepository[T, P]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error
	return entity, r.translate("get "+r.entity, err, id.String())
}

func (r *directoryRepository[T, P]) GetByIDUnscoped(ctx context.Context, id uuid.UUID) (T, error) {
	var entity T
	err := r.db.WithContext(ctx).Unscoped().First(&entity, "id = ?", id).Error
	return entity, r.translate("get "+r.entity, err, id.String())
}

func (r *directoryRepository[T, P]) List(ctx context.Context, scope *Scope) ([]T, error) {
	var entities []T
	if err := r.scoped(ctx, scope).Order("code ASC").Find(&entities).Error; err != nil {
		return nil, apperror.NewStorage("list "+r.entity, err)
	}
	return entities, nil
}

func (r *directoryRepository[T, P]) Count(ctx context.Context, scope *Scope) (int64, error) {
	var total int64
	if err := r.scoped(ctx, scope).Count(&total).Error; err != nil {
		return 0, apperror.NewStorage("count "+r.entity, err)
	}
	return total, nil
}

// ExistsUnique is an advisory check; the partial unique index is the real guard.
func (r *directoryRepository[T, P]) ExistsUnique(ctx context.Context, scope *Scope, code string, excludeID *uuid.UUID) (bool, error) {
	query := r.scoped(ctx, scope).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return false, apperror.NewStorage("check "+r.entity+" code", err)
	}
	return total > 0, nil
}

func (r *directoryRepository[T, P]) Create(ctx context.Context, entity *T, actor uuid.UUID) error {
	P(entity).MarkCreatedBy(actor)
	err := r.db.WithContext(ctx).Create(entity).Error
	return r.translate("create "+r.entity, err, "")
}

func (r *directoryRepository[T, P]) Update(ctx context.Context, entity *T, fields map[string]interface{}, actor uuid.UUID) error {
	updates := make(map[string]interface{}, len(fields)+2)
	for column, value := range fields {
		updates[column] = value
	}
	updates["updated_by_id"] = &actor
	updates["updated_at"] = r.now()

	result := r.db.WithContext(ctx).Model(entity).Updates(updates)
	if err := r.translate("update "+r.entity, result.Error, ""); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound(r.entity, "")
	}

	return r.reload(ctx, entity)
}

func (r *directoryRepository[T, P]) SoftDelete(ctx context.Context, entity *T, actor uuid.UUID) error {
	now := r.now()
	result := r.db.WithContext(ctx).Model(entity).Updates(map[string]interface{}{
		"deleted_at":    gorm.DeletedAt{Time: now, Valid: true},
		"updated_by_id": &actor,
		"updated_at":    now,
	})
	if err := r.translate("delete "+r.entity, result.Error, ""); err != nil {
		return err
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound(r.entity, "")
	}

	return r.translate("reload "+r.entity, r.db.WithContext(ctx).Unscoped().First(entity).Error, "")
}

func (r *directoryRepository[T, P]) reload(ctx context.Context, entity *T) error {
	return r.translate("reload "+r.entity, r.db.WithContext(ctx).First(entity).Error, "")
}

func (r *directoryRepository[T, P]) scoped(ctx context.Context, scope *Scope) *gorm.DB {
	var model T
	query := r.db.WithContext(ctx).Model(&model)
	if scope != nil {
		query = query.Where(scope.Column+" = ?", scope.Value)
	}
	return query
}

func (r *directoryRepository[T, P]) translate(op string, err error, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NewNotFound(r.entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &apperror.ConflictError{Entity: r.entity, Field: "code", Reason: "code already in use"}
	default:
		return apperror.NewStorage(op, err)
	}
}
