package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/events"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/observability"
	"github.com/noah-isme/udata-api/internal/repository"
)

// Directory mutation actions recorded in the activity log.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Actor      models.User
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Metadata   map[string]interface{}
}

// ActivityRecorder records committed directory mutations.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error)
}

// ActivityService exposes methods to query and persist activity logs.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewActivityService constructs the activity log service. A nil publisher disables events.
func NewActivityService(repo repository.ActivityLogRepository, publisher events.Publisher, logger zerolog.Logger) ActivityService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &activityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.ActivityResponse, error) {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	entityType := strings.ToLower(strings.TrimSpace(entry.EntityType))
	if action == "" {
		return dto.ActivityResponse{}, apperror.NewValidation("action", "action is required")
	}
	if entityType == "" {
		return dto.ActivityResponse{}, apperror.NewValidation("entity_type", "entity type is required")
	}

	entityID := entry.EntityID
	model := models.ActivityLog{
		ActorID:    entry.Actor.ID,
		ActorRole:  normalizeRole(string(entry.Actor.Role)),
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Metadata:   sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist activity log")
		return dto.ActivityResponse{}, err
	}

	observability.DirectoryMutations().WithLabelValues(entityType, action).Inc()

	event := events.Event{
		ID:         model.ID.String(),
		Entity:     entityType,
		Action:     action,
		EntityID:   entityID,
		ActorID:    entry.Actor.ID,
		Metadata:   map[string]interface{}(model.Metadata),
		OccurredAt: model.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("entity", entityType).Str("action", action).Msg("failed to publish directory event")
	}

	return dto.NewActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		ActorID:    req.ActorID,
		EntityID:   req.EntityID,
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: responses, Pagination: pagination}, nil
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") || strings.Contains(lower, "password") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func normalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
