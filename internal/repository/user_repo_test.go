package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/models"
)

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := models.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &user))
	require.NotEqual(t, uuid.Nil, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)
	require.Equal(t, models.UserStatusActive, byID.Status)
	require.Equal(t, models.RoleDataManager, byID.Role)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByUsername(ctx, "bob")
	require.True(t, apperror.IsNotFound(err))
}

func TestUserRepositoryDuplicatesReportTheCollidingField(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}))

	err := repo.Create(ctx, &models.User{Username: "alice", Email: "other@x.com", PasswordHash: "hash"})
	var conflict *apperror.ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, "username", conflict.Field)

	err = repo.Create(ctx, &models.User{Username: "alice2", Email: "a@x.com", PasswordHash: "hash"})
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, "email", conflict.Field)
}

func TestUserRepositoryHidesSoftDeletedAccounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.User{Username: "carol", Email: "c@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &user))
	require.NoError(t, db.Model(&user).Update("deleted_at", time.Now()).Error)

	_, err := repo.GetByID(ctx, user.ID)
	require.True(t, apperror.IsNotFound(err))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	err = repo.UpdatePasswordHash(ctx, user.ID, "new")
	require.True(t, apperror.IsNotFound(err))
}

func TestUserRepositoryUpdatePasswordHash(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := models.User{Username: "dave", Email: "d@x.com", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, &user))
	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "new"))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "new", stored.PasswordHash)
}

func TestUserRepositoryUpdate(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	alice := models.User{Username: "alice", Email: "a@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &alice))
	bob := models.User{Username: "bob", Email: "b@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &bob))

	require.NoError(t, repo.Update(ctx, &alice, map[string]interface{}{"role": models.RoleAdmin, "status": models.UserStatusSuspended}))
	require.Equal(t, models.RoleAdmin, alice.Role)
	require.Equal(t, models.UserStatusSuspended, alice.Status)
	require.Equal(t, "hash", alice.PasswordHash)

	err := repo.Update(ctx, &bob, map[string]interface{}{"username": "alice"})
	require.True(t, apperror.IsConflict(err))

	ghost := models.User{ID: uuid.New()}
	err = repo.Update(ctx, &ghost, map[string]interface{}{"username": "ghost"})
	require.True(t, apperror.IsNotFound(err))
}

func TestActivityLogRepositoryFiltersAndPaginates(t *testing.T) {
	repo := NewActivityLogRepository(setupTestDB(t))
	ctx := context.Background()
	actor, other := uuid.New(), uuid.New()
	campusID := uuid.New()

	entries := []models.ActivityLog{
		{ActorID: actor, ActorRole: "admin", Action: "create", EntityType: "campus", EntityID: &campusID, CreatedAt: time.Now().Add(-2 * time.Minute)},
		{ActorID: actor, ActorRole: "admin", Action: "update", EntityType: "campus", EntityID: &campusID, CreatedAt: time.Now().Add(-time.Minute)},
		{ActorID: other, ActorRole: "data_manager", Action: "create", EntityType: "room", CreatedAt: time.Now()},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	items, total, err := repo.List(ctx, ActivityLogFilter{ActorID: &actor})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "update", items[0].Action, "newest first")

	items, total, err = repo.List(ctx, ActivityLogFilter{EntityType: "room"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, other, items[0].ActorID)

	items, total, err = repo.List(ctx, ActivityLogFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 1)
	require.Equal(t, "create", items[0].Action)
	require.Equal(t, "campus", items[0].EntityType)
}
