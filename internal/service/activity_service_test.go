package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.ActivityLog
	err     error
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	return append([]models.ActivityLog(nil), m.entries...), int64(len(m.entries)), nil
}

func TestActivityServiceRecordMasksSensitiveMetadata(t *testing.T) {
	repo := &memoryActivityRepo{}
	publisher := &recordingPublisher{}
	svc := NewActivityService(repo, publisher, testLogger())

	actor := models.User{ID: uuid.New(), Role: models.RoleDataManager}
	entityID := uuid.New()
	entry, err := svc.Record(context.Background(), ActivityEntry{
		Actor:      actor,
		Action:     "Update",
		EntityType: "Room",
		EntityID:   entityID,
		Metadata: map[string]interface{}{
			"contact_email": "ops@example.com",
			"field":         "capacity",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "***", entry.Metadata["contact_email"])
	require.Equal(t, "capacity", entry.Metadata["field"])
	require.Equal(t, actor.ID, entry.ActorID)
	require.Equal(t, "data_manager", entry.ActorRole)
	require.Equal(t, "update", entry.Action)
	require.Equal(t, entityID, *entry.EntityID)

	require.Equal(t, []string{"room.update"}, publisher.actions())
	require.Equal(t, "***", publisher.events[0].Metadata["contact_email"])
}

func TestActivityServiceRecordRequiresActionAndEntity(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, nil, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{EntityType: "room"})
	require.True(t, apperror.IsValidation(err))

	_, err = svc.Record(context.Background(), ActivityEntry{Action: "create"})
	require.True(t, apperror.IsValidation(err))
}

func TestActivityServiceSkipsEventWhenPersistFails(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewActivityService(&memoryActivityRepo{err: errors.New("disk full")}, publisher, testLogger())

	_, err := svc.Record(context.Background(), ActivityEntry{Action: "delete", EntityType: "campus", EntityID: uuid.New()})
	require.Error(t, err)
	require.Empty(t, publisher.actions())
}

func TestActivityServiceListPaginates(t *testing.T) {
	repo := &memoryActivityRepo{}
	svc := NewActivityService(repo, nil, testLogger())
	for i := 0; i < 3; i++ {
		_, err := svc.Record(context.Background(), ActivityEntry{Action: "create", EntityType: "campus", EntityID: uuid.New()})
		require.NoError(t, err)
	}

	result, err := svc.List(context.Background(), dto.ActivityListRequest{Page: 0, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 3)
	require.Equal(t, 1, result.Pagination.Page)
	require.Equal(t, int64(3), result.Pagination.TotalItems)
	require.Equal(t, 2, result.Pagination.TotalPages)
	require.Equal(t, "system", result.Items[0].ActorRole)
}
