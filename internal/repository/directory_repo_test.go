package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/database"
	"github.com/noah-isme/udata-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("file:"+uuid.NewString()+"?mode=memory&cache=shared", database.PoolConfig{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestCampusRepositoryCreateStampsAuditFields(t *testing.T) {
	repo := NewCampusRepository(setupTestDB(t))
	ctx := context.Background()
	actor := uuid.New()

	campus := models.Campus{Code: "MAIN", Name: "Main Campus"}
	require.NoError(t, repo.Create(ctx, &campus, actor))
	require.NotEqual(t, uuid.Nil, campus.ID)
	require.False(t, campus.CreatedAt.IsZero())
	require.NotNil(t, campus.CreatedByID)
	require.Equal(t, actor, *campus.CreatedByID)

	stored, err := repo.GetByID(ctx, campus.ID)
	require.NoError(t, err)
	require.Equal(t, models.CampusStatusActive, stored.Status)
	require.Equal(t, actor, *stored.CreatedByID)
	require.Nil(t, stored.UpdatedByID)
}

func TestCampusRepositorySoftDeleteHidesRowButKeepsAuditCopy(t *testing.T) {
	repo := NewCampusRepository(setupTestDB(t))
	ctx := context.Background()
	creator, deleter := uuid.New(), uuid.New()

	campus := models.Campus{Code: "NORTH", Name: "North"}
	require.NoError(t, repo.Create(ctx, &campus, creator))
	require.NoError(t, repo.SoftDelete(ctx, &campus, deleter))
	require.True(t, campus.IsDeleted())
	require.NotNil(t, campus.DeletedTime())
	require.Equal(t, deleter, *campus.UpdatedByID)

	_, err := repo.GetByID(ctx, campus.ID)
	require.True(t, apperror.IsNotFound(err))

	live, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, live)

	audited, err := repo.GetByIDUnscoped(ctx, campus.ID)
	require.NoError(t, err)
	require.True(t, audited.IsDeleted())
	require.Equal(t, creator, *audited.CreatedByID)
	require.Equal(t, deleter, *audited.UpdatedByID)

	err = repo.SoftDelete(ctx, &campus, deleter)
	require.True(t, apperror.IsNotFound(err), "deleting twice should not resurrect or re-stamp the row")
}

func TestBuildingRepositoryCodeUniquenessIgnoresDeletedRows(t *testing.T) {
	db := setupTestDB(t)
	campuses := NewCampusRepository(db)
	buildings := NewBuildingRepository(db)
	ctx := context.Background()
	actor := uuid.New()

	campus := models.Campus{Code: "MAIN", Name: "Main"}
	require.NoError(t, campuses.Create(ctx, &campus, actor))

	first := models.Building{CampusID: campus.ID, Code: "B1", Name: "Science"}
	require.NoError(t, buildings.Create(ctx, &first, actor))

	duplicate := models.Building{CampusID: campus.ID, Code: "B1", Name: "Duplicate"}
	err := buildings.Create(ctx, &duplicate, actor)
	require.True(t, apperror.IsConflict(err), "live duplicate should hit the unique index: %v", err)

	exists, err := buildings.ExistsUnique(ctx, CampusScope(campus.ID), "B1", nil)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = buildings.ExistsUnique(ctx, CampusScope(campus.ID), "B1", &first.ID)
	require.NoError(t, err)
	require.False(t, exists, "a row never conflicts with itself")

	require.NoError(t, buildings.SoftDelete(ctx, &first, actor))

	exists, err = buildings.ExistsUnique(ctx, CampusScope(campus.ID), "B1", nil)
	require.NoError(t, err)
	require.False(t, exists)

	reused := models.Building{CampusID: campus.ID, Code: "B1", Name: "Science II"}
	require.NoError(t, buildings.Create(ctx, &reused, actor))
	require.NotEqual(t, first.ID, reused.ID)
}

func TestBuildingRepositoryCodeIsScopedToCampus(t *testing.T) {
	db := setupTestDB(t)
	campuses := NewCampusRepository(db)
	buildings := NewBuildingRepository(db)
	ctx := context.Background()
	actor := uuid.New()

	north := models.Campus{Code: "N", Name: "North"}
	south := models.Campus{Code: "S", Name: "South"}
	require.NoError(t, campuses.Create(ctx, &north, actor))
	require.NoError(t, campuses.Create(ctx, &south, actor))

	require.NoError(t, buildings.Create(ctx, &models.Building{CampusID: north.ID, Code: "LIB", Name: "Library"}, actor))
	require.NoError(t, buildings.Create(ctx, &models.Building{CampusID: south.ID, Code: "LIB", Name: "Library"}, actor))
	require.NoError(t, buildings.Create(ctx, &models.Building{CampusID: north.ID, Code: "ADM", Name: "Admin"}, actor))

	northOnly, err := buildings.List(ctx, CampusScope(north.ID))
	require.NoError(t, err)
	require.Len(t, northOnly, 2)
	require.Equal(t, "ADM", northOnly[0].Code, "list is ordered by code")
	require.Equal(t, "LIB", northOnly[1].Code)

	all, err := buildings.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)

	total, err := buildings.Count(ctx, CampusScope(south.ID))
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestRoomRepositoryUpdateAppliesSparseFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	creator, editor := uuid.New(), uuid.New()

	campus := models.Campus{Code: "MAIN", Name: "Main"}
	require.NoError(t, NewCampusRepository(db).Create(ctx, &campus, creator))
	building := models.Building{CampusID: campus.ID, Code: "B1", Name: "Science"}
	require.NoError(t, NewBuildingRepository(db).Create(ctx, &building, creator))

	rooms := NewRoomRepository(db)
	capacity := 40
	room := models.Room{BuildingID: building.ID, Code: "101", Capacity: &capacity, Metadata: map[string]interface{}{"projector": true}}
	require.NoError(t, rooms.Create(ctx, &room, creator))
	require.Equal(t, models.RoomStatusAvailable, room.Status)

	err := rooms.Update(ctx, &room, map[string]interface{}{"capacity": 60, "status": models.RoomStatusMaintenance}, editor)
	require.NoError(t, err)
	require.Equal(t, 60, *room.Capacity)
	require.Equal(t, models.RoomStatusMaintenance, room.Status)
	require.Equal(t, "101", room.Code, "untouched columns keep their value")
	require.Equal(t, creator, *room.CreatedByID)
	require.Equal(t, editor, *room.UpdatedByID)
	require.Equal(t, true, room.Metadata["projector"])

	live, err := rooms.Count(ctx, BuildingScope(building.ID))
	require.NoError(t, err)
	require.Equal(t, int64(1), live)

	require.NoError(t, rooms.SoftDelete(ctx, &room, editor))
	err = rooms.Update(ctx, &room, map[string]interface{}{"capacity": 10}, editor)
	require.True(t, apperror.IsNotFound(err), "soft-deleted rows cannot be updated")

	live, err = rooms.Count(ctx, BuildingScope(building.ID))
	require.NoError(t, err)
	require.Zero(t, live)
}

func TestDirectoryRepositorySurfacesStorageFailures(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCampusRepository(db)
	require.NoError(t, db.Migrator().DropTable(&models.Campus{}))

	_, err := repo.List(context.Background(), nil)
	require.True(t, apperror.IsStorage(err))

	_, err = repo.GetByID(context.Background(), uuid.New())
	require.True(t, apperror.IsStorage(err))
	require.False(t, apperror.IsNotFound(err))
}
