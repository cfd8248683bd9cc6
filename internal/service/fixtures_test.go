package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/udata-api/internal/database"
	"github.com/noah-isme/udata-api/internal/events"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/repository"
	"github.com/noah-isme/udata-api/internal/security"
)

var fastArgon2 = security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func setupServiceDB(t *testing.T) *gorm.DB {
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

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Entity+"."+event.Action)
	}
	return out
}

type directoryFixture struct {
	db        *gorm.DB
	campuses  CampusService
	buildings BuildingService
	rooms     RoomService
	activity  ActivityService
	publisher *recordingPublisher
	actor     models.User
}

func newDirectoryFixture(t *testing.T) directoryFixture {
	t.Helper()
	db := setupServiceDB(t)

	campusRepo := repository.NewCampusRepository(db)
	buildingRepo := repository.NewBuildingRepository(db)
	roomRepo := repository.NewRoomRepository(db)

	publisher := &recordingPublisher{}
	activity := NewActivityService(repository.NewActivityLogRepository(db), publisher, testLogger())
	validate := testValidator()

	actor := models.User{Username: "manager", Email: "manager@example.com", PasswordHash: "x", Role: models.RoleDataManager}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), &actor))

	return directoryFixture{
		db:        db,
		campuses:  NewCampusService(campusRepo, buildingRepo, roomRepo, activity, validate, testLogger()),
		buildings: NewBuildingService(campusRepo, buildingRepo, roomRepo, activity, validate, testLogger()),
		rooms:     NewRoomService(buildingRepo, roomRepo, activity, validate, testLogger()),
		activity:  activity,
		publisher: publisher,
		actor:     actor,
	}
}

func newTestTokens(t *testing.T) *security.TokenIssuer {
	t.Helper()
	tokens, err := security.NewTokenIssuer([]byte("service-test-secret"), time.Hour, security.WithIssuer("udata-api"))
	require.NoError(t, err)
	return tokens
}

func ptr[T any](v T) *T {
	return &v
}
