// Package relay forwards WebRTC signaling payloads between peers. Payload
// contents are never interpreted; the relay only tags messages with the
// sender and a relay timestamp, then routes them.
package relay

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/metrics"
)

// userDirectory resolves a user id to that user's live connections, so
// offers and answers can reach every device a user has open.
type userDirectory interface {
	ConnectionsForUser(userID string) []uuid.UUID
}

type Relay struct {
	emitter domain.Emitter
	users   userDirectory
	clock   clockwork.Clock
}

func New(emitter domain.Emitter, users userDirectory, clock clockwork.Clock) *Relay {
	return &Relay{
		emitter: emitter,
		users:   users,
		clock:   clock,
	}
}

// Signal forwards an opaque payload verbatim to one target connection,
// tagged with the sender. There is no check that sender and target share a
// room; membership checks happen upstream at join time.
func (r *Relay) Signal(from domain.Identity, toConnectionID uuid.UUID, payload json.RawMessage) {
	if toConnectionID == uuid.Nil || len(payload) == 0 {
		return
	}
	metrics.RelayMessagesTotal.WithLabelValues(domain.EventSignal).Inc()

	r.emitter.ToConnection(toConnectionID, r.event(domain.EventSignal, "", from, payload))
}

// Offer routes an SDP offer. With a target user id it goes to each of that
// user's connections; without one it falls back to a room broadcast for
// peer discovery.
func (r *Relay) Offer(from domain.Identity, streamID, toUserID string, payload json.RawMessage) {
	r.route(domain.EventOffer, from, streamID, toUserID, payload, false)
}

// Answer routes an SDP answer with the same dual routing as Offer.
func (r *Relay) Answer(from domain.Identity, streamID, toUserID string, payload json.RawMessage) {
	r.route(domain.EventAnswer, from, streamID, toUserID, payload, false)
}

// ICECandidate routes a candidate like Offer/Answer, except the room
// fallback excludes the sender to avoid echoing candidates back.
func (r *Relay) ICECandidate(from domain.Identity, streamID, toUserID string, payload json.RawMessage) {
	r.route(domain.EventICECandidate, from, streamID, toUserID, payload, true)
}

// ModerateTrack tells one connection to mute or unmute a media track. The
// caller is responsible for the authorization check; the event goes to the
// target connection only, never the room.
func (r *Relay) ModerateTrack(streamID string, targetConnectionID uuid.UUID, kind, action string) {
	if targetConnectionID == uuid.Nil || kind == "" || action == "" {
		return
	}
	metrics.RelayMessagesTotal.WithLabelValues(domain.EventTrackModerated).Inc()

	r.emitter.ToConnection(targetConnectionID, domain.TrackModeratedEvent{
		Type:     domain.EventTrackModerated,
		StreamID: streamID,
		Kind:     kind,
		Action:   action,
	})
}

func (r *Relay) route(eventType string, from domain.Identity, streamID, toUserID string, payload json.RawMessage, excludeSender bool) {
	if len(payload) == 0 {
		return
	}
	metrics.RelayMessagesTotal.WithLabelValues(eventType).Inc()

	event := r.event(eventType, streamID, from, payload)

	if toUserID != "" {
		for _, connID := range r.users.ConnectionsForUser(toUserID) {
			r.emitter.ToConnection(connID, event)
		}
		return
	}

	if streamID == "" {
		return
	}
	if excludeSender {
		r.emitter.ToRoomExcept(streamID, from.ConnectionID, event)
		return
	}
	r.emitter.ToRoom(streamID, event)
}

func (r *Relay) event(eventType, streamID string, from domain.Identity, payload json.RawMessage) domain.SignalEvent {
	return domain.SignalEvent{
		Type:       eventType,
		StreamID:   streamID,
		FromConnID: from.ConnectionID,
		FromUserID: from.UserID,
		Payload:    payload,
		Timestamp:  r.clock.Now(),
	}
}
