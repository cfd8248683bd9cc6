package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/repository"
)

const entityBuilding = "building"

// ReasonBuildingHasRooms is the conflict reason reported while live rooms remain.
const ReasonBuildingHasRooms = "building still has live rooms"

// BuildingService manages buildings within campuses.
type BuildingService interface {
	Create(ctx context.Context, actor models.User, req dto.BuildingCreateRequest) (dto.BuildingResponse, error)
	List(ctx context.Context, campusID *uuid.UUID) ([]dto.BuildingResponse, error)
	ListNested(ctx context.Context, campusID *uuid.UUID) ([]dto.BuildingWithRooms, error)
	Get(ctx context.Context, id uuid.UUID) (dto.BuildingResponse, error)
	Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.BuildingUpdateRequest) (dto.BuildingResponse, error)
	Delete(ctx context.Context, actor models.User, id uuid.UUID) (dto.DeleteResponse, error)
}

type buildingService struct {
	campuses  repository.CampusRepository
	buildings repository.BuildingRepository
	rooms     repository.RoomRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewBuildingService constructs the building service.
func NewBuildingService(campuses repository.CampusRepository, buildings repository.BuildingRepository, rooms repository.RoomRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) BuildingService {
	return &buildingService{
		campuses:  campuses,
		buildings: buildings,
		rooms:     rooms,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "building_service").Logger(),
	}
}

func (s *buildingService) Create(ctx context.Context, actor models.User, req dto.BuildingCreateRequest) (dto.BuildingResponse, error) {
	ctx, span, err := startMutation(ctx, entityBuilding, ActionCreate, actor)
	defer span.End()
	if err != nil {
		return dto.BuildingResponse{}, err
	}

	req.Code = strings.TrimSpace(req.Code)
	if err := s.validator.Struct(req); err != nil {
		return dto.BuildingResponse{}, failSpan(span, err, "validation_failed")
	}
	campusID, err := parseParentID("campus_id", req.CampusID)
	if err != nil {
		return dto.BuildingResponse{}, failSpan(span, err, "validation_failed")
	}
	name := sanitizeText(s.sanitizer, req.Name)
	if name == "" {
		return dto.BuildingResponse{}, failSpan(span, apperror.NewValidation("name", "must not be empty"), "validation_failed")
	}

	if _, err := s.campuses.GetByID(ctx, campusID); err != nil {
		return dto.BuildingResponse{}, failSpan(span, err, "campus_lookup_failed")
	}

	taken, err := s.buildings.ExistsUnique(ctx, repository.CampusScope(campusID), req.Code, nil)
	if err != nil {
		return dto.BuildingResponse{}, failSpan(span, err, "uniqueness_check_failed")
	}
	if taken {
		return dto.BuildingResponse{}, failSpan(span, apperror.NewConflict(entityBuilding, "code", req.Code), "code_taken")
	}

	building := models.Building{
		CampusID: campusID,
		Code:     req.Code,
		Name:     name,
		Floors:   req.Floors,
		Type:     models.BuildingTypeOther,
		Status:   models.BuildingStatusActive,
	}
	if req.Type != "" {
		building.Type = models.BuildingType(req.Type)
	}
	if req.Status != nil {
		building.Status = models.BuildingStatus(*req.Status)
	}

	if err := s.buildings.Create(ctx, &building, actor.ID); err != nil {
		return dto.BuildingResponse{}, failSpan(span, err, "create_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionCreate, entityBuilding, building.ID, map[string]interface{}{
		"code":      building.Code,
		"campus_id": building.CampusID.String(),
	})

	return dto.NewBuildingResponse(building), nil
}

func (s *buildingService) List(ctx context.Context, campusID *uuid.UUID) ([]dto.BuildingResponse, error) {
	buildings, err := s.buildings.List(ctx, campusScope(campusID))
	if err != nil {
		return nil, err
	}

	responses := make([]dto.BuildingResponse, 0, len(buildings))
	for _, building := range buildings {
		responses = append(responses, dto.NewBuildingResponse(building))
	}
	return responses, nil
}

func (s *buildingService) ListNested(ctx context.Context, campusID *uuid.UUID) ([]dto.BuildingWithRooms, error) {
	buildings, err := s.buildings.List(ctx, campusScope(campusID))
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return nestBuildings(buildings, rooms), nil
}

func (s *buildingService) Get(ctx context.Context, id uuid.UUID) (dto.BuildingResponse, error) {
	building, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		return dto.BuildingResponse{}, err
	}
	return dto.NewBuildingResponse(building), nil
}

func (s *buildingService) Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.BuildingUpdateRequest) (dto.BuildingResponse, error) {
	ctx, span, err := startMutation(ctx, entityBuilding, ActionUpdate, actor)
	defer span.End()
	if err != nil {
		return dto.BuildingResponse{}, err
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.BuildingResponse{}, failSpan(span, err, "validation_failed")
	}

	building, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		return dto.BuildingResponse{}, failSpan(span, err, "building_lookup_failed")
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := sanitizeText(s.sanitizer, *req.Name)
		if name == "" {
			return dto.BuildingResponse{}, failSpan(span, apperror.NewValidation("name", "must not be empty"), "validation_failed")
		}
		fields["name"] = name
	}
	if req.Floors != nil {
		fields["floors"] = *req.Floors
	}
	if req.Type != nil {
		fields["type"] = models.BuildingType(*req.Type)
	}
	if req.Status != nil {
		fields["status"] = models.BuildingStatus(*req.Status)
	}

	if len(fields) == 0 {
		return dto.NewBuildingResponse(building), nil
	}

	if err := s.buildings.Update(ctx, &building, fields, actor.ID); err != nil {
		return dto.BuildingResponse{}, failSpan(span, err, "update_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionUpdate, entityBuilding, building.ID, map[string]interface{}{"fields": fieldNames(fields)})
	return dto.NewBuildingResponse(building), nil
}

// Delete soft-deletes the building once none of its rooms are live.
func (s *buildingService) Delete(ctx context.Context, actor models.User, id uuid.UUID) (dto.DeleteResponse, error) {
	ctx, span, err := startMutation(ctx, entityBuilding, ActionDelete, actor)
	defer span.End()
	if err != nil {
		return dto.DeleteResponse{}, err
	}

	building, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		return dto.DeleteResponse{}, failSpan(span, err, "building_lookup_failed")
	}

	liveRooms, err := s.rooms.Count(ctx, repository.BuildingScope(building.ID))
	if err != nil {
		return dto.DeleteResponse{}, failSpan(span, err, "room_count_failed")
	}
	span.SetAttributes(attribute.Int64("directory.live_rooms", liveRooms))
	if liveRooms > 0 {
		conflict := &apperror.ConflictError{Entity: entityBuilding, Reason: ReasonBuildingHasRooms}
		return dto.DeleteResponse{}, failSpan(span, conflict, "building_has_rooms")
	}

	if err := s.buildings.SoftDelete(ctx, &building, actor.ID); err != nil {
		return dto.DeleteResponse{}, failSpan(span, err, "delete_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionDelete, entityBuilding, building.ID, map[string]interface{}{"code": building.Code})
	s.logger.Info().Str("building_id", building.ID.String()).Str("actor_id", actor.ID.String()).Msg("building deleted")

	return dto.NewDeleteResponse(building.ID, building.Audit), nil
}

func campusScope(campusID *uuid.UUID) *repository.Scope {
	if campusID == nil {
		return nil
	}
	return repository.CampusScope(*campusID)
}

// nestBuildings attaches each live room to its building, preserving the input order.
func nestBuildings(buildings []models.Building, rooms []models.Room) []dto.BuildingWithRooms {
	byBuilding := make(map[uuid.UUID][]dto.RoomResponse, len(buildings))
	for _, room := range rooms {
		byBuilding[room.BuildingID] = append(byBuilding[room.BuildingID], dto.NewRoomResponse(room))
	}

	nested := make([]dto.BuildingWithRooms, 0, len(buildings))
	for _, building := range buildings {
		children := byBuilding[building.ID]
		if children == nil {
			children = []dto.RoomResponse{}
		}
		nested = append(nested, dto.BuildingWithRooms{
			BuildingResponse: dto.NewBuildingResponse(building),
			Rooms:            children,
		})
	}
	return nested
}
