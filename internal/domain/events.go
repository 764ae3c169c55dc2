package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Server -> client event types.
const (
	EventAuthResult       = "auth_result"
	EventRoomUpdate       = "room_update"
	EventHostsUpdate      = "hosts_update"
	EventPublishersUpdate = "publishers_update"

	EventPublishRequested = "publish_requested"
	EventPublishApproved  = "publish_approved"
	EventPublishDenied    = "publish_denied"
	EventPublishExpired   = "publish_expired"
	EventPublishRevoked   = "publish_revoked"
	EventKicked           = "kicked"
	EventTrackModerated   = "track_moderated"

	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice_candidate"
	EventSignal       = "signal"

	EventLike            = "like"
	EventGift            = "gift"
	EventGoalUpdate      = "goal_update"
	EventGoalAchieved    = "goal_achieved"
	EventGoalCleared     = "goal_cleared"
	EventPollStarted     = "poll_started"
	EventPollUpdate      = "poll_update"
	EventPollEnded       = "poll_ended"
	EventMessagePinned   = "message_pinned"
	EventMessageUnpinned = "message_unpinned"

	EventError = "error"
)

// Emitter delivers events to connections and room subscriber sets. The hub
// implements it; services only ever read state before emitting, never mutate.
type Emitter interface {
	ToConnection(connectionID uuid.UUID, event any)
	ToRoom(streamID string, event any)
	ToRoomExcept(streamID string, except uuid.UUID, event any)
}

type AuthResultEvent struct {
	Type        string `json:"type"`
	Success     bool   `json:"success"`
	UserID      string `json:"userId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

type RoomUpdateEvent struct {
	Type string `json:"type"`
	RoomSnapshot
	Timestamp time.Time `json:"timestamp"`
}

type IdentityListEvent struct {
	Type       string     `json:"type"`
	StreamID   string     `json:"streamId"`
	Identities []Identity `json:"identities"`
}

type PublishRequestedEvent struct {
	Type     string         `json:"type"`
	StreamID string         `json:"streamId"`
	Request  PendingRequest `json:"request"`
}

type PublishResultEvent struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

type PublishExpiredEvent struct {
	Type         string    `json:"type"`
	StreamID     string    `json:"streamId"`
	ConnectionID uuid.UUID `json:"connectionId"`
	DisplayName  string    `json:"displayName"`
}

type TrackModeratedEvent struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
	Kind     string `json:"kind"`
	Action   string `json:"action"`
}

// SignalEvent carries a relayed WebRTC payload. The payload is forwarded
// verbatim, tagged with the sender and a relay timestamp.
type SignalEvent struct {
	Type       string          `json:"type"`
	StreamID   string          `json:"streamId,omitempty"`
	FromConnID uuid.UUID       `json:"fromConnectionId"`
	FromUserID string          `json:"fromUserId,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
}

type ReactionEvent struct {
	Type        string    `json:"type"`
	StreamID    string    `json:"streamId"`
	DisplayName string    `json:"displayName"`
	Amount      float64   `json:"amount,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type GoalEvent struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
	Goal     *Goal  `json:"goal,omitempty"`
}

type PollEvent struct {
	Type     string   `json:"type"`
	StreamID string   `json:"streamId"`
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	Counts   []int    `json:"counts,omitempty"`
}

type PinEvent struct {
	Type     string         `json:"type"`
	StreamID string         `json:"streamId"`
	Pinned   *PinnedMessage `json:"pinned,omitempty"`
}
