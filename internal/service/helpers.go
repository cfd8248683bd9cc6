package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/udata-api/internal/apperror"
	"github.com/noah-isme/udata-api/internal/models"
)

const directoryTracerName = "github.com/noah-isme/udata-api/internal/service/directory"

var errActorRequired = apperror.Unauthenticated("authenticated actor required", nil)

func sanitizeText(policy *bluemonday.Policy, value string) string {
	return strings.TrimSpace(policy.Sanitize(strings.TrimSpace(value)))
}

// sanitizeOptional returns nil when nothing remains after sanitising.
func sanitizeOptional(policy *bluemonday.Policy, value *string) *string {
	if value == nil {
		return nil
	}
	clean := sanitizeText(policy, *value)
	if clean == "" {
		return nil
	}
	return &clean
}

// startMutation opens the span wrapping one directory mutation and checks the actor.
func startMutation(ctx context.Context, entity, action string, actor models.User) (context.Context, trace.Span, error) {
	ctx, span := otel.Tracer(directoryTracerName).Start(ctx, "directory."+entity+"."+action)
	span.SetAttributes(
		attribute.String("directory.entity", entity),
		attribute.String("directory.actor_id", actor.ID.String()),
	)
	if actor.ID == uuid.Nil {
		span.SetStatus(codes.Error, "actor_missing")
		return ctx, span, errActorRequired
	}
	return ctx, span, nil
}

func failSpan(span trace.Span, err error, status string) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}
	return err
}

// recordActivity is best effort; the mutation has already been committed.
func recordActivity(ctx context.Context, recorder ActivityRecorder, actor models.User, action, entity string, id uuid.UUID, metadata map[string]interface{}) {
	if recorder == nil {
		return
	}
	_, _ = recorder.Record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		Metadata:   metadata,
	})
}

// parseParentID validates a parent reference supplied as text.
func parseParentID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperror.NewValidation(field, "must be a valid uuid")
	}
	return id, nil
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
