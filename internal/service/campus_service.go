package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/dto"
	"github.com/noah-isme/udata-api/internal/models"
	"github.com/noah-isme/udata-api/internal/repository"
)

const entityCampus = "campus"

// CampusService manages the top level of the directory.
type CampusService interface {
	Create(ctx context.Context, actor models.User, req dto.CampusCreateRequest) (dto.CampusResponse, error)
	List(ctx context.Context) ([]dto.CampusResponse, error)
	ListNested(ctx context.Context) ([]dto.CampusWithBuildings, error)
	Get(ctx context.Context, id uuid.UUID) (dto.CampusResponse, error)
	Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.CampusUpdateRequest) (dto.CampusResponse, error)
	Delete(ctx context.Context, actor models.User, id uuid.UUID) (dto.DeleteResponse, error)
}

type campusService struct {
	campuses  repository.CampusRepository
	buildings repository.BuildingRepository
	rooms     repository.RoomRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCampusService constructs the campus service.
func NewCampusService(campuses repository.CampusRepository, buildings repository.BuildingRepository, rooms repository.RoomRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) CampusService {
	return &campusService{
		campuses:  campuses,
		buildings: buildings,
		rooms:     rooms,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "campus_service").Logger(),
	}
}

func (s *campusService) Create(ctx context.Context, actor models.User, req dto.CampusCreateRequest) (dto.CampusResponse, error) {
	ctx, span, err := startMutation(ctx, entityCampus, ActionCreate, actor)
	defer span.End()
	if err != nil {
		return dto.CampusResponse{}, err
	}

	req.Code = strings.TrimSpace(req.Code)
	if err := s.validator.Struct(req); err != nil {
		return dto.CampusResponse{}, failSpan(span, err, "validation_failed")
	}
	name := sanitizeText(s.sanitizer, req.Name)
	if name == "" {
		return dto.CampusResponse{}, failSpan(span, apperror.NewValidation("name", "must not be empty"), "validation_failed")
	}

	taken, err := s.campuses.ExistsUnique(ctx, nil, req.Code, nil)
	if err != nil {
		return dto.CampusResponse{}, failSpan(span, err, "uniqueness_check_failed")
	}
	if taken {
		return dto.CampusResponse{}, failSpan(span, apperror.NewConflict(entityCampus, "code", req.Code), "code_taken")
	}

	campus := models.Campus{
		Code:    req.Code,
		Name:    name,
		Address: sanitizeOptional(s.sanitizer, req.Address),
		Status:  models.CampusStatusActive,
	}
	if req.Status != "" {
		campus.Status = models.CampusStatus(req.Status)
	}

	if err := s.campuses.Create(ctx, &campus, actor.ID); err != nil {
		return dto.CampusResponse{}, failSpan(span, err, "create_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionCreate, entityCampus, campus.ID, map[string]interface{}{"code": campus.Code})
	s.logger.Info().Str("campus_id", campus.ID.String()).Str("actor_id", actor.ID.String()).Msg("campus created")

	return dto.NewCampusResponse(campus), nil
}

func (s *campusService) List(ctx context.Context) ([]dto.CampusResponse, error) {
	campuses, err := s.campuses.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CampusResponse, 0, len(campuses))
	for _, campus := range campuses {
		responses = append(responses, dto.NewCampusResponse(campus))
	}
	return responses, nil
}

// ListNested returns every live campus with its live buildings and their live rooms.
func (s *campusService) ListNested(ctx context.Context) ([]dto.CampusWithBuildings, error) {
	campuses, err := s.campuses.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	buildings, err := s.buildings.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	nested := nestBuildings(buildings, rooms)
	byCampus := make(map[uuid.UUID][]dto.BuildingWithRooms, len(campuses))
	for _, building := range nested {
		byCampus[building.CampusID] = append(byCampus[building.CampusID], building)
	}

	responses := make([]dto.CampusWithBuildings, 0, len(campuses))
	for _, campus := range campuses {
		children := byCampus[campus.ID]
		if children == nil {
			children = []dto.BuildingWithRooms{}
		}
		responses = append(responses, dto.CampusWithBuildings{
			CampusResponse: dto.NewCampusResponse(campus),
			Buildings:      children,
		})
	}
	return responses, nil
}

func (s *campusService) Get(ctx context.Context, id uuid.UUID) (dto.CampusResponse, error) {
	campus, err := s.campuses.GetByID(ctx, id)
	if err != nil {
		return dto.CampusResponse{}, err
	}
	return dto.NewCampusResponse(campus), nil
}

func (s *campusService) Update(ctx context.Context, actor models.User, id uuid.UUID, req dto.CampusUpdateRequest) (dto.CampusResponse, error) {
	ctx, span, err := startMutation(ctx, entityCampus, ActionUpdate, actor)
	defer span.End()
	if err != nil {
		return dto.CampusResponse{}, err
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.CampusResponse{}, failSpan(span, err, "validation_failed")
	}

	campus, err := s.campuses.GetByID(ctx, id)
	if err != nil {
		return dto.CampusResponse{}, failSpan(span, err, "campus_lookup_failed")
	}

	fields := map[string]interface{}{}
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return dto.CampusResponse{}, failSpan(span, apperror.NewValidation("code", "must not be empty"), "validation_failed")
		}
		if code != campus.Code {
			taken, err := s.campuses.ExistsUnique(ctx, nil, code, &campus.ID)
			if err != nil {
				return dto.CampusResponse{}, failSpan(span, err, "uniqueness_check_failed")
			}
			if taken {
				return dto.CampusResponse{}, failSpan(span, apperror.NewConflict(entityCampus, "code", code), "code_taken")
			}
			fields["code"] = code
		}
	}
	if req.Name != nil {
		name := sanitizeText(s.sanitizer, *req.Name)
		if name == "" {
			return dto.CampusResponse{}, failSpan(span, apperror.NewValidation("name", "must not be empty"), "validation_failed")
		}
		fields["name"] = name
	}
	if req.Address != nil {
		fields["address"] = sanitizeOptional(s.sanitizer, req.Address)
	}
	if req.Status != nil {
		fields["status"] = models.CampusStatus(*req.Status)
	}

	if len(fields) == 0 {
		return dto.NewCampusResponse(campus), nil
	}

	if err := s.campuses.Update(ctx, &campus, fields, actor.ID); err != nil {
		return dto.CampusResponse{}, failSpan(span, err, "update_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionUpdate, entityCampus, campus.ID, map[string]interface{}{"fields": fieldNames(fields)})
	return dto.NewCampusResponse(campus), nil
}

// Delete soft-deletes the campus. Its buildings are left untouched.
func (s *campusService) Delete(ctx context.Context, actor models.User, id uuid.UUID) (dto.DeleteResponse, error) {
	ctx, span, err := startMutation(ctx, entityCampus, ActionDelete, actor)
	defer span.End()
	if err != nil {
		return dto.DeleteResponse{}, err
	}

	campus, err := s.campuses.GetByID(ctx, id)
	if err != nil {
		return dto.DeleteResponse{}, failSpan(span, err, "campus_lookup_failed")
	}

	if err := s.campuses.SoftDelete(ctx, &campus, actor.ID); err != nil {
		return dto.DeleteResponse{}, failSpan(span, err, "delete_failed")
	}

	recordActivity(ctx, s.activity, actor, ActionDelete, entityCampus, campus.ID, map[string]interface{}{"code": campus.Code})
	s.logger.Info().Str("campus_id", campus.ID.String()).Str("actor_id", actor.ID.String()).Msg("campus deleted")

	return dto.NewDeleteResponse(campus.ID, campus.Audit), nil
}
