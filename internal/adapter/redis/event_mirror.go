package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/streampulse/internal/domain"
)

const (
	eventsChannel  = "room:events"
	publishTimeout = 2 * time.Second
)

type mirroredEvent struct {
	StreamID string `json:"streamId"`
	Event    any    `json:"event"`
}

// EventMirror decorates an emitter, publishing every room-wide event onto a
// Redis channel as well. Direct per-connection events are not mirrored.
// Publishing is best effort and never blocks or fails the local broadcast.
type EventMirror struct {
	next   domain.Emitter
	client *Client
	logger *slog.Logger
}

func NewEventMirror(next domain.Emitter, client *Client, logger *slog.Logger) *EventMirror {
	return &EventMirror{next: next, client: client, logger: logger}
}

func (m *EventMirror) ToConnection(connectionID uuid.UUID, event any) {
	m.next.ToConnection(connectionID, event)
}

func (m *EventMirror) ToRoom(streamID string, event any) {
	m.next.ToRoom(streamID, event)
	m.publish(streamID, event)
}

func (m *EventMirror) ToRoomExcept(streamID string, except uuid.UUID, event any) {
	m.next.ToRoomExcept(streamID, except, event)
	m.publish(streamID, event)
}

func (m *EventMirror) publish(streamID string, event any) {
	data, err := json.Marshal(mirroredEvent{StreamID: streamID, Event: event})
	if err != nil {
		m.logger.Warn("failed to marshal mirrored event", slog.String("error", err.Error()))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := m.client.rdb.Publish(ctx, eventsChannel, data).Err(); err != nil {
			m.logger.Warn("failed to mirror event to redis",
				slog.String("stream_id", streamID), slog.String("error", err.Error()))
		}
	}()
}
