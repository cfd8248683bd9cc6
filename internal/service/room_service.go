package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/repository"
)

const entityRoom = "room"

// RoomService manages rooms within buildings.
type RoomService interface {
	Create(ctx context.Context, actor models.User, req dto.RoomCreateRequest) (dto.RoomResponse, error)
	List(ctx context.Context, buildingID *uuid.UUID) ([]dto.RoomResponse, error)
	Get(ctx context.Context, id uuid.UUID) (dto.RoomResponse, error)
	Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.RoomUpdateRequest) (dto.RoomResponse, error)
	Delete(ctx context.Context, actor models.User, id uuid.UUID) (dto.DeleteResponse, error)
}

type roomService struct {
	buildings repository.BuildingRepository
	rooms     repository.RoomRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewRoomService constructs the room service.
func NewRoomService(buildings repository.BuildingRepository, rooms repository.RoomRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) RoomService {
	return &roomService{
		buildings: buildings,
		rooms:     rooms,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "room_service").Logger(),
	}
}

func (s *roomService) Create(ctx context.Context, actor models.User, req dto.RoomCreateRequest) (dto.RoomResponse, error) {
	ctx, span, err := startMutation(ctx, entityRoom, ActionCreate, actor)
	defer span.End()
	if err != nil {
		return dto.RoomResponse{}, err
	}

	req.Code = strings.TrimSpace(req.Code)
	if err := s.validator.Struct(req); err != nil {
		return dto.RoomResponse{}, failSpan(span, err, "validation_failed")
	}
	buildingID, err := parseParentID("building_id", req.BuildingID)
	if err != nil {
		return dto.RoomResponse{}, failSpan(span, err, "validation_failed")
	}

	if _, err := s.buildings.GetByID(ctx, buildingID); err != nil {
		return dto.RoomResponse{}, failSpan(span, err, "building_lookup_failed")
	}

	taken, err := s.rooms.ExistsUnique(ctx, repository.BuildingScope(buildingID), req.Code, nil)
	if err != nil {
		return dto.RoomResponse{}, failSpan(span, err, "uniqueness_check_failed")
	}
	if taken {
		return dto.RoomResponse{}, failSpan(span, apperror.NewConflict(entityRoom, "code", req.Code), "code_taken")
	}

	room := models.Room{
		BuildingID: buildingID,
		Code:       req.Code,
		Name:       sanitizeOptional(s.sanitizer, req.Name),
		Capacity:   req.Capacity,
		Floor:      req.Floor,
		Type:       models.RoomTypeOther,
		Status:     models.RoomStatusAvailable,
		Metadata:   roomMetadata(req.Metadata),
	}
	if req.Type != "" {
		room.Type = models.RoomType(req.Type)
	}
	if req.Status != nil {
		room.Status = models.RoomStatus(*req.Status)
	}

	if err := s.rooms.Create(ctx, &room, actor.ID); err != nil {
		return dto.RoomResponse{}, failSpan(span, err, "create_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionCreate, entityRoom, room.ID, map[string]interface{}{
		"code":        room.Code,
		"building_id": room.BuildingID.String(),
	})

	return dto.NewRoomResponse(room), nil
}

func (s *roomService) List(ctx context.Context, buildingID *uuid.UUID) ([]dto.RoomResponse, error) {
	var scope *repository.Scope
	if buildingID != nil {
		scope = repository.BuildingScope(*buildingID)
	}

	rooms, err := s.rooms.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		responses = append(responses, dto.NewRoomResponse(room))
	}
	return responses, nil
}

func (s *roomService) Get(ctx context.Context, id uuid.UUID) (dto.RoomResponse, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return dto.RoomResponse{}, err
	}
	return dto.NewRoomResponse(room), nil
}

func (s *roomService) Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.RoomUpdateRequest) (dto.RoomResponse, error) {
	ctx, span, err := startMutation(ctx, entityRoom, ActionUpdate, actor)
	defer span.End()
	if err != nil {
		return dto.RoomResponse{}, err
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.RoomResponse{}, failSpan(span, err, "validation_failed")
	}

	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return dto.RoomResponse{}, failSpan(span, err, "room_lookup_failed")
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = sanitizeOptional(s.sanitizer, req.Name)
	}
	if req.Capacity != nil {
		fields["capacity"] = *req.Capacity
	}
	if req.Floor != nil {
		fields["floor"] = *req.Floor
	}
	if req.Type != nil {
		fields["type"] = models.RoomType(*req.Type)
	}
	if req.Status != nil {
		fields["status"] = models.RoomStatus(*req.Status)
	}
	if req.Metadata != nil {
		fields["metadata"] = roomMetadata(req.Metadata)
	}

	if len(fields) == 0 {
		return dto.NewRoomResponse(room), nil
	}

	if err := s.rooms.Update(ctx, &room, fields, actor.ID); err != nil {
		return dto.RoomResponse{}, failSpan(span, err, "update_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionUpdate, entityRoom, room.ID, map[string]interface{}{"fields": fieldNames(fields)})
	return dto.NewRoomResponse(room), nil
}

func (s *roomService) Delete(ctx context.Context, actor models.User, id uuid.UUID) (dto.DeleteResponse, error) {
	ctx, span, err := startMutation(ctx, entityRoom, ActionDelete, actor)
	defer span.End()
	if err != nil {
		return dto.DeleteResponse{}, err
	}

	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return dto.DeleteResponse{}, failSpan(span, err, "room_lookup_failed")
	}

	if err := s.rooms.SoftDelete(ctx, &room, actor.ID); err != nil {
		return dto.DeleteResponse{}, failSpan(span, err, "delete_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionDelete, entityRoom, room.ID, map[string]interface{}{"code": room.Code})
	return dto.NewDeleteResponse(room.ID, room.Audit), nil
}

func roomMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return nil
	}
	return datatypes.JSONMap(metadata)
}
