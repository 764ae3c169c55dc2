// Package auth resolves identities and moderation permissions.
package auth

import (
	"context"
	"log/slog"

	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/metrics"
)

// StreamArbiter checks moderation permission against the persisted stream
// record on every call. No caching: moderator list changes take effect on
// the next check. Any lookup failure resolves to unauthorized.
type StreamArbiter struct {
	streams domain.StreamRepository
	logger  *slog.Logger
}

func NewStreamArbiter(streams domain.StreamRepository, logger *slog.Logger) *StreamArbiter {
	return &StreamArbiter{streams: streams, logger: logger}
}

// IsAuthorized reports whether the user is the stream's owner or on its
// moderator list. Anonymous callers are never authorized.
func (a *StreamArbiter) IsAuthorized(ctx context.Context, streamID, userID string) bool {
	if streamID == "" || userID == "" {
		metrics.AuthorizationChecksTotal.WithLabelValues("denied").Inc()
		return false
	}

	stream, err := a.streams.GetByID(ctx, streamID)
	if err != nil {
		a.logger.Warn("authorization check failed, denying",
			slog.String("stream_id", streamID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		metrics.AuthorizationChecksTotal.WithLabelValues("denied").Inc()
		return false
	}

	if stream.OwnerID == userID {
		metrics.AuthorizationChecksTotal.WithLabelValues("allowed").Inc()
		return true
	}
	for _, moderator := range stream.Moderators {
		if moderator == userID {
			metrics.AuthorizationChecksTotal.WithLabelValues("allowed").Inc()
			return true
		}
	}

	metrics.AuthorizationChecksTotal.WithLabelValues("denied").Inc()
	return false
}
