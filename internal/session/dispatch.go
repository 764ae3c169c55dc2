package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pscheid92/streampulse/internal/domain"
)

func (s *Session) handleAuth(ctx context.Context, msg domain.ClientMessage) {
	userID, err := s.deps.Verifier.Verify(ctx, msg.Token)
	if err != nil {
		s.logger.Debug("token rejected", slog.String("error", err.Error()))
		s.deps.Emitter.ToConnection(s.connectionID, domain.AuthResultEvent{
			Type: domain.EventAuthResult,
		})
		return
	}

	identity, err := s.deps.Registry.Authenticate(ctx, s.connectionID, userID)
	if err != nil {
		s.logger.Warn("authentication failed",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		s.deps.Emitter.ToConnection(s.connectionID, domain.AuthResultEvent{
			Type: domain.EventAuthResult,
		})
		return
	}

	s.identity = identity
	s.logger = s.logger.With(slog.String("user_id", identity.UserID))
	s.deps.Emitter.ToConnection(s.connectionID, domain.AuthResultEvent{
		Type:        domain.EventAuthResult,
		Success:     true,
		UserID:      identity.UserID,
		DisplayName: identity.DisplayName,
	})
}

func (s *Session) handleJoin(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}

	if err := s.deps.Transport.Subscribe(s.connectionID, msg.StreamID); err != nil {
		s.logger.Warn("join rejected",
			slog.String("stream_id", msg.StreamID), slog.String("error", err.Error()))
		return
	}

	// A host claim is only honored for the stream's owner or moderators;
	// everyone else joins as a plain viewer.
	asHost := msg.AsHost && s.isAuthorized(ctx, msg.StreamID)
	s.deps.Coordinator.Join(msg.StreamID, s.connectionID, asHost)

	if _, already := s.joined[msg.StreamID]; !already {
		s.joined[msg.StreamID] = struct{}{}
		s.incrementViewers(msg.StreamID)
	}
}

func (s *Session) handleLeave(msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if _, member := s.joined[msg.StreamID]; !member {
		return
	}

	s.deps.Coordinator.Leave(msg.StreamID, s.connectionID)
	s.deps.Transport.Unsubscribe(s.connectionID, msg.StreamID)
	delete(s.joined, msg.StreamID)
	s.decrementViewers(msg.StreamID)
}

func (s *Session) handleRequestPublish(msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if _, member := s.joined[msg.StreamID]; !member {
		return
	}
	s.deps.Coordinator.RequestPublish(msg.StreamID, s.connectionID)
}

func (s *Session) handlePublishDecision(ctx context.Context, msg domain.ClientMessage, approve bool) {
	if msg.StreamID == "" || msg.ConnectionID == uuid.Nil {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	if approve {
		s.deps.Coordinator.ApprovePublish(msg.StreamID, msg.ConnectionID)
		return
	}
	s.deps.Coordinator.DenyPublish(msg.StreamID, msg.ConnectionID)
}

func (s *Session) handleRevokePublish(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" || msg.ConnectionID == uuid.Nil {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Coordinator.RevokePublish(msg.StreamID, msg.ConnectionID)
}

func (s *Session) handleClearRequests(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Coordinator.ClearRequests(msg.StreamID)
}

func (s *Session) handleKick(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" || msg.ConnectionID == uuid.Nil {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Coordinator.Kick(msg.StreamID, msg.ConnectionID)
}

func (s *Session) handleModerateTrack(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Relay.ModerateTrack(msg.StreamID, msg.ConnectionID, msg.Kind, msg.Action)
}

func (s *Session) handleLike(msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if _, member := s.joined[msg.StreamID]; !member {
		return
	}
	if !s.deps.Interactions.AllowLike(s.connectionID) {
		return
	}

	s.deps.Emitter.ToRoom(msg.StreamID, domain.ReactionEvent{
		Type:        domain.EventLike,
		StreamID:    msg.StreamID,
		DisplayName: s.identity.DisplayName,
		Timestamp:   s.deps.Clock.Now(),
	})

	if goal, ok := s.deps.Interactions.Goal(msg.StreamID); ok && goal.Type == domain.GoalLikes {
		s.deps.Interactions.IncrementGoal(msg.StreamID, 1)
	}
}

func (s *Session) handleGift(msg domain.ClientMessage) {
	if msg.StreamID == "" || msg.Amount <= 0 {
		return
	}
	if _, member := s.joined[msg.StreamID]; !member {
		return
	}

	s.deps.Emitter.ToRoom(msg.StreamID, domain.ReactionEvent{
		Type:        domain.EventGift,
		StreamID:    msg.StreamID,
		DisplayName: s.identity.DisplayName,
		Amount:      msg.Amount,
		Timestamp:   s.deps.Clock.Now(),
	})

	if goal, ok := s.deps.Interactions.Goal(msg.StreamID); ok && goal.Type == domain.GoalDonations {
		s.deps.Interactions.IncrementGoal(msg.StreamID, msg.Amount)
	}
}

func (s *Session) handleSetGoal(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Interactions.SetGoal(msg.StreamID, domain.GoalType(msg.GoalType), msg.Target, msg.Title)
}

func (s *Session) handleClearGoal(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Interactions.ClearGoal(msg.StreamID)
}

func (s *Session) handleStartPoll(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Interactions.StartPoll(msg.StreamID, msg.Question, msg.Options)
}

func (s *Session) handleVote(msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	s.deps.Interactions.Vote(msg.StreamID, s.voterKey(), msg.OptionIndex)
}

func (s *Session) handleStopPoll(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Interactions.StopPoll(msg.StreamID)
}

func (s *Session) handlePinMessage(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Interactions.PinMessage(msg.StreamID, msg.MessageID, msg.AuthorName, msg.Text, s.identity.UserID)
}

func (s *Session) handleUnpin(ctx context.Context, msg domain.ClientMessage) {
	if msg.StreamID == "" {
		return
	}
	if !s.isAuthorized(ctx, msg.StreamID) {
		return
	}
	s.deps.Interactions.UnpinMessage(msg.StreamID)
}

// voterKey identifies a voter across reconnects when authenticated, and
// falls back to the connection id for anonymous viewers.
func (s *Session) voterKey() string {
	if s.identity.UserID != "" {
		return s.identity.UserID
	}
	return s.connectionID.String()
}
