package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func TestNATSPublisherUsesEntityActionSubject(t *testing.T) {
	nc := &recordingConn{}
	publisher := NewNATSPublisher(nc, "udata.", zerolog.Nop())

	entityID, actorID := uuid.New(), uuid.New()
	err := publisher.Publish(context.Background(), Event{Entity: "Building", Action: "DELETE", EntityID: entityID, ActorID: actorID})
	require.NoError(t, err)

	require.Equal(t, []string{"udata.building.delete"}, nc.subjects)

	var decoded Event
	require.NoError(t, json.Unmarshal(nc.payloads[0], &decoded))
	require.Equal(t, entityID, decoded.EntityID)
	require.Equal(t, actorID, decoded.ActorID)
	require.NotEmpty(t, decoded.ID)
	require.False(t, decoded.OccurredAt.IsZero())
}

func TestNATSPublisherDefaultsPrefix(t *testing.T) {
	publisher := NewNATSPublisher(&recordingConn{}, "  ", zerolog.Nop())
	require.Equal(t, "udata.room.create", publisher.Subject(Event{Entity: "room", Action: "create"}))
}

func TestNATSPublisherWrapsBrokerErrors(t *testing.T) {
	broken := errors.New("connection closed")
	publisher := NewNATSPublisher(&recordingConn{err: broken}, "udata", zerolog.Nop())

	err := publisher.Publish(context.Background(), Event{Entity: "campus", Action: "update"})
	require.ErrorIs(t, err, broken)
}

func TestNATSPublisherHonoursCancelledContext(t *testing.T) {
	nc := &recordingConn{}
	publisher := NewNATSPublisher(nc, "udata", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, publisher.Publish(ctx, Event{Entity: "campus", Action: "create"}), context.Canceled)
	require.Empty(t, nc.subjects)
}

func TestNopPublisher(t *testing.T) {
	require.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}
