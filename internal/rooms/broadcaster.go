package rooms

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/metrics"
)

// The emit helpers read current state and broadcast it. They never mutate, so
// redundant calls are harmless.

func (c *Coordinator) handleEmit(streamID, event string) {
	rm, exists := c.rooms[streamID]
	if !exists {
		return
	}
	switch event {
	case domain.EventRoomUpdate:
		c.emitRoomUpdate(streamID, rm)
	case domain.EventHostsUpdate:
		c.emitHosts(streamID, rm)
	case domain.EventPublishersUpdate:
		c.emitPublishers(streamID, rm)
	}
}

func (c *Coordinator) snapshot(streamID string) domain.RoomSnapshot {
	rm, exists := c.rooms[streamID]
	if !exists {
		return domain.RoomSnapshot{StreamID: streamID}
	}
	return c.buildSnapshot(streamID, rm)
}

func (c *Coordinator) buildSnapshot(streamID string, rm *room) domain.RoomSnapshot {
	members := make([]uuid.UUID, 0, len(rm.viewers)+len(rm.hosts))
	for id := range rm.viewers {
		members = append(members, id)
	}
	for id := range rm.hosts {
		members = append(members, id)
	}

	viewers := c.identities.Resolve(members)
	sortIdentities(viewers)

	return domain.RoomSnapshot{
		StreamID:        streamID,
		ViewerCount:     len(rm.viewers) + len(rm.hosts),
		PeakViewerCount: rm.peak,
		Viewers:         viewers,
	}
}

func (c *Coordinator) emitRoomUpdate(streamID string, rm *room) {
	metrics.BroadcastsTotal.WithLabelValues(domain.EventRoomUpdate).Inc()
	c.emitter.ToRoom(streamID, domain.RoomUpdateEvent{
		Type:         domain.EventRoomUpdate,
		RoomSnapshot: c.buildSnapshot(streamID, rm),
		Timestamp:    c.clock.Now(),
	})
}

func (c *Coordinator) emitHosts(streamID string, rm *room) {
	metrics.BroadcastsTotal.WithLabelValues(domain.EventHostsUpdate).Inc()
	c.emitter.ToRoom(streamID, domain.IdentityListEvent{
		Type:       domain.EventHostsUpdate,
		StreamID:   streamID,
		Identities: c.resolveSet(rm.hosts),
	})
}

func (c *Coordinator) emitPublishers(streamID string, rm *room) {
	metrics.BroadcastsTotal.WithLabelValues(domain.EventPublishersUpdate).Inc()
	c.emitter.ToRoom(streamID, domain.IdentityListEvent{
		Type:       domain.EventPublishersUpdate,
		StreamID:   streamID,
		Identities: c.resolveSet(rm.publishers),
	})
}

func (c *Coordinator) emitKicked(streamID string, connectionID uuid.UUID) {
	c.emitter.ToConnection(connectionID, domain.PublishResultEvent{
		Type:     domain.EventKicked,
		StreamID: streamID,
	})
}

func (c *Coordinator) resolveSet(set map[uuid.UUID]struct{}) []domain.Identity {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	identities := c.identities.Resolve(ids)
	sortIdentities(identities)
	return identities
}

func sortIdentities(identities []domain.Identity) {
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].ConnectionID.String() < identities[j].ConnectionID.String()
	})
}
