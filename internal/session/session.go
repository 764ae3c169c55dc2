// Package session owns the per-connection protocol: it parses inbound
// client messages, runs authorization checks, and drives the room
// coordinator, signaling relay, and interaction store. One Session exists
// per WebSocket connection, handled from that connection's read loop, so no
// two messages of the same connection are ever processed concurrently.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/interaction"
	"github.com/pscheid92/streampulse/internal/relay"
	"github.com/pscheid92/streampulse/internal/rooms"
)

const sideEffectTimeout = 5 * time.Second

// transport is the slice of the hub the session needs: room subscription
// with a capacity check, and unsubscription on leave.
type transport interface {
	Subscribe(connectionID uuid.UUID, streamID string) error
	Unsubscribe(connectionID uuid.UUID, streamID string)
}

// connections is the slice of the registry the session drives directly.
type connections interface {
	Register(connectionID uuid.UUID) domain.Identity
	Authenticate(ctx context.Context, connectionID uuid.UUID, userID string) (domain.Identity, error)
	Unregister(connectionID uuid.UUID)
}

// Deps bundles the collaborators shared by all sessions.
type Deps struct {
	Registry     connections
	Transport    transport
	Coordinator  *rooms.Coordinator
	Interactions *interaction.Store
	Relay        *relay.Relay
	Arbiter      domain.Arbiter
	Verifier     domain.TokenVerifier
	Streams      domain.StreamRepository
	Emitter      domain.Emitter
	Clock        clockwork.Clock
	Logger       *slog.Logger
}

// Session tracks one connection's identity and room memberships. It is not
// safe for concurrent use; the owning read loop is its only caller.
type Session struct {
	deps Deps

	connectionID uuid.UUID
	identity     domain.Identity
	joined       map[string]struct{}
	logger       *slog.Logger
}

// New registers the connection and returns its session. The identity starts
// anonymous until an auth message attaches a user.
func New(deps Deps, connectionID uuid.UUID) *Session {
	identity := deps.Registry.Register(connectionID)
	return &Session{
		deps:         deps,
		connectionID: connectionID,
		identity:     identity,
		joined:       make(map[string]struct{}),
		logger:       deps.Logger.With(slog.String("connection_id", connectionID.String())),
	}
}

// Identity returns the session's current identity.
func (s *Session) Identity() domain.Identity {
	return s.identity
}

// HandleMessage parses and dispatches one inbound message. Malformed or
// unauthorized messages are dropped without closing the connection.
func (s *Session) HandleMessage(ctx context.Context, raw []byte) {
	var msg domain.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Debug("dropping malformed message", slog.String("error", err.Error()))
		return
	}

	switch msg.Type {
	case domain.MsgAuth:
		s.handleAuth(ctx, msg)

	case domain.MsgJoin:
		s.handleJoin(ctx, msg)
	case domain.MsgLeave:
		s.handleLeave(msg)

	case domain.MsgRequestPublish:
		s.handleRequestPublish(msg)
	case domain.MsgApprovePublish:
		s.handlePublishDecision(ctx, msg, true)
	case domain.MsgDenyPublish:
		s.handlePublishDecision(ctx, msg, false)
	case domain.MsgRevokePublish:
		s.handleRevokePublish(ctx, msg)
	case domain.MsgClearRequests:
		s.handleClearRequests(ctx, msg)
	case domain.MsgKick:
		s.handleKick(ctx, msg)

	case domain.MsgSignal:
		s.deps.Relay.Signal(s.identity, msg.ConnectionID, msg.Payload)
	case domain.MsgOffer:
		s.deps.Relay.Offer(s.identity, msg.StreamID, msg.ToUserID, msg.Payload)
	case domain.MsgAnswer:
		s.deps.Relay.Answer(s.identity, msg.StreamID, msg.ToUserID, msg.Payload)
	case domain.MsgICECandidate:
		s.deps.Relay.ICECandidate(s.identity, msg.StreamID, msg.ToUserID, msg.Payload)
	case domain.MsgModerateTrack:
		s.handleModerateTrack(ctx, msg)

	case domain.MsgLike:
		s.handleLike(msg)
	case domain.MsgGift:
		s.handleGift(msg)
	case domain.MsgSetGoal:
		s.handleSetGoal(ctx, msg)
	case domain.MsgClearGoal:
		s.handleClearGoal(ctx, msg)
	case domain.MsgStartPoll:
		s.handleStartPoll(ctx, msg)
	case domain.MsgVote:
		s.handleVote(msg)
	case domain.MsgStopPoll:
		s.handleStopPoll(ctx, msg)
	case domain.MsgPinMessage:
		s.handlePinMessage(ctx, msg)
	case domain.MsgUnpin:
		s.handleUnpin(ctx, msg)

	default:
		s.logger.Debug("dropping unknown message type", slog.String("type", msg.Type))
	}
}

// Close tears down all connection state after the socket is gone.
func (s *Session) Close() {
	s.deps.Coordinator.Disconnect(s.connectionID)
	s.deps.Interactions.RemoveConnection(s.connectionID)
	s.deps.Registry.Unregister(s.connectionID)

	for streamID := range s.joined {
		s.decrementViewers(streamID)
	}
	s.joined = make(map[string]struct{})
}

// isAuthorized gates moderation actions: the session must be authenticated
// and the user must be the stream's owner or moderator. Fails closed.
func (s *Session) isAuthorized(ctx context.Context, streamID string) bool {
	if s.identity.UserID == "" {
		return false
	}
	return s.deps.Arbiter.IsAuthorized(ctx, streamID, s.identity.UserID)
}

// incrementViewers mirrors the in-memory count into the stream record. Best
// effort: the room snapshot is the source of truth, the column is cosmetic.
func (s *Session) incrementViewers(streamID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.deps.Streams.IncrementViewers(ctx, streamID); err != nil {
			s.logger.Warn("failed to increment viewer count",
				slog.String("stream_id", streamID), slog.String("error", err.Error()))
		}
	}()
}

func (s *Session) decrementViewers(streamID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.deps.Streams.DecrementViewers(ctx, streamID); err != nil {
			s.logger.Warn("failed to decrement viewer count",
				slog.String("stream_id", streamID), slog.String("error", err.Error()))
		}
	}()
}
