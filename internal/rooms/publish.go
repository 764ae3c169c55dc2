package rooms

import (
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/metrics"
)

// handleRequestPublish records a pending request and starts its expiry timer.
// A repeated request from the same connection replaces the prior record and
// restarts the timer.
func (c *Coordinator) handleRequestPublish(streamID string, connectionID uuid.UUID) {
	rm := c.roomFor(streamID)

	identity, ok := c.identities.Lookup(connectionID)
	if !ok {
		return
	}

	now := c.clock.Now()
	request := domain.PendingRequest{
		ConnectionID: connectionID,
		UserID:       identity.UserID,
		DisplayName:  identity.DisplayName,
		RequestedAt:  now,
		ExpiresAt:    now.Add(c.requestTTL),
	}
	c.setPendingRequest(streamID, rm, request)
	metrics.PublishRequestsTotal.WithLabelValues("requested").Inc()

	event := domain.PublishRequestedEvent{
		Type:     domain.EventPublishRequested,
		StreamID: streamID,
		Request:  request,
	}
	for hostID := range rm.hosts {
		c.emitter.ToConnection(hostID, event)
	}
}

// setPendingRequest is the only place a request timer is installed. It
// cancels any prior timer for the requester first, so timers can never leak
// or fire for a superseded request.
func (c *Coordinator) setPendingRequest(streamID string, rm *room, request domain.PendingRequest) {
	c.cancelRequestTimer(rm, request.ConnectionID)
	rm.pending[request.ConnectionID] = request

	connectionID := request.ConnectionID
	requestedAt := request.RequestedAt
	rm.timers[connectionID] = c.clock.AfterFunc(c.requestTTL, func() {
		c.cmdCh <- cmdExpireRequest{
			streamID:     streamID,
			connectionID: connectionID,
			requestedAt:  requestedAt,
		}
	})
}

func (c *Coordinator) clearPendingRequest(rm *room, connectionID uuid.UUID) {
	c.cancelRequestTimer(rm, connectionID)
	delete(rm.pending, connectionID)
}

func (c *Coordinator) cancelRequestTimer(rm *room, connectionID uuid.UUID) {
	if timer, exists := rm.timers[connectionID]; exists {
		timer.Stop()
		delete(rm.timers, connectionID)
	}
}

// handleResolveRequest applies an approve or deny decision. If no pending
// record exists (already resolved, or expired in the meantime) it is a silent
// no-op; the expiry notification has already told hosts everything they need.
func (c *Coordinator) handleResolveRequest(streamID string, requesterID uuid.UUID, approve bool) {
	rm, exists := c.rooms[streamID]
	if !exists {
		return
	}
	if _, pending := rm.pending[requesterID]; !pending {
		return
	}
	c.clearPendingRequest(rm, requesterID)

	if !approve {
		metrics.PublishRequestsTotal.WithLabelValues("denied").Inc()
		c.emitter.ToConnection(requesterID, domain.PublishResultEvent{
			Type:     domain.EventPublishDenied,
			StreamID: streamID,
		})
		return
	}

	rm.publishers[requesterID] = struct{}{}
	metrics.PublishRequestsTotal.WithLabelValues("approved").Inc()

	c.emitter.ToConnection(requesterID, domain.PublishResultEvent{
		Type:     domain.EventPublishApproved,
		StreamID: streamID,
	})
	c.emitPublishers(streamID, rm)
}

// handleExpireRequest fires when a request's TTL elapses. The requestedAt
// guard makes the timer a no-op if the request it belonged to was replaced
// or resolved before the command was processed.
func (c *Coordinator) handleExpireRequest(streamID string, connectionID uuid.UUID, requestedAt time.Time) {
	rm, exists := c.rooms[streamID]
	if !exists {
		return
	}
	request, pending := rm.pending[connectionID]
	if !pending || !request.RequestedAt.Equal(requestedAt) {
		return
	}
	c.clearPendingRequest(rm, connectionID)
	metrics.PublishRequestsTotal.WithLabelValues("expired").Inc()

	event := domain.PublishExpiredEvent{
		Type:         domain.EventPublishExpired,
		StreamID:     streamID,
		ConnectionID: connectionID,
		DisplayName:  request.DisplayName,
	}
	for hostID := range rm.hosts {
		c.emitter.ToConnection(hostID, event)
	}
}

func (c *Coordinator) handleRevokePublish(streamID string, connectionID uuid.UUID) {
	rm, exists := c.rooms[streamID]
	if !exists {
		return
	}
	if _, publishing := rm.publishers[connectionID]; !publishing {
		return
	}
	delete(rm.publishers, connectionID)
	metrics.PublishRequestsTotal.WithLabelValues("revoked").Inc()

	c.emitter.ToConnection(connectionID, domain.PublishResultEvent{
		Type:     domain.EventPublishRevoked,
		StreamID: streamID,
	})
	c.emitPublishers(streamID, rm)
}

func (c *Coordinator) handleClearRequests(streamID string) {
	rm, exists := c.rooms[streamID]
	if !exists {
		return
	}
	for connectionID := range rm.pending {
		c.clearPendingRequest(rm, connectionID)
		metrics.PublishRequestsTotal.WithLabelValues("cleared").Inc()
	}
}

func (c *Coordinator) pendingRequests(streamID string) []domain.PendingRequest {
	rm, exists := c.rooms[streamID]
	if !exists {
		return nil
	}
	requests := make([]domain.PendingRequest, 0, len(rm.pending))
	for _, request := range rm.pending {
		requests = append(requests, request)
	}
	return requests
}
