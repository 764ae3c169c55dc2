package rooms

import (
	"github.com/google/uuid"
	"github.com/pscheid92/streampulse/internal/metrics"
)

// roomFor returns the room for a stream, creating it lazily on first join.
// Rooms are never deleted; they persist until process restart.
func (c *Coordinator) roomFor(streamID string) *room {
	rm, exists := c.rooms[streamID]
	if !exists {
		rm = newRoom()
		c.rooms[streamID] = rm
	}
	return rm
}

func (c *Coordinator) handleJoin(streamID string, connectionID uuid.UUID, asHost bool) {
	rm := c.roomFor(streamID)

	// A connection is a member of at most one of {viewers, hosts}; removal
	// from the opposite set is unconditional.
	if asHost {
		delete(rm.viewers, connectionID)
		rm.hosts[connectionID] = struct{}{}
		rm.publishers[connectionID] = struct{}{} // hosts auto-publish
		metrics.RoomJoinsTotal.WithLabelValues("host").Inc()
	} else {
		delete(rm.hosts, connectionID)
		rm.viewers[connectionID] = struct{}{}
		metrics.RoomJoinsTotal.WithLabelValues("viewer").Inc()
	}

	c.updatePeak(rm)
	c.emitRoomUpdate(streamID, rm)
	if asHost {
		c.emitHosts(streamID, rm)
		c.emitPublishers(streamID, rm)
	}
}

func (c *Coordinator) handleLeave(streamID string, connectionID uuid.UUID) {
	rm, exists := c.rooms[streamID]
	if !exists {
		return
	}
	c.removeFromRoom(streamID, rm, connectionID)
}

// handleDisconnect removes the connection from every room it appears in.
// O(rooms) scan; acceptable at expected scale. A reverse index would be
// needed well beyond a few thousand rooms per process.
func (c *Coordinator) handleDisconnect(connectionID uuid.UUID) {
	for streamID, rm := range c.rooms {
		c.removeFromRoom(streamID, rm, connectionID)
	}
}

// removeFromRoom drops the connection from all sets and clears its pending
// request. Broadcasts fire only for sets that actually changed.
func (c *Coordinator) removeFromRoom(streamID string, rm *room, connectionID uuid.UUID) {
	_, wasViewer := rm.viewers[connectionID]
	_, wasHost := rm.hosts[connectionID]
	_, wasPublisher := rm.publishers[connectionID]

	delete(rm.viewers, connectionID)
	delete(rm.hosts, connectionID)
	delete(rm.publishers, connectionID)
	c.clearPendingRequest(rm, connectionID)

	if wasViewer || wasHost {
		c.emitRoomUpdate(streamID, rm)
	}
	if wasHost {
		c.emitHosts(streamID, rm)
	}
	if wasPublisher {
		c.emitPublishers(streamID, rm)
	}
}

func (c *Coordinator) handleKick(streamID string, connectionID uuid.UUID) {
	rm, exists := c.rooms[streamID]
	if !exists {
		return
	}

	c.emitKicked(streamID, connectionID)
	c.removeFromRoom(streamID, rm, connectionID)

	if c.transport != nil {
		c.transport.Unsubscribe(connectionID, streamID)
	}
}

// updatePeak records the highest observed viewer+host count. Monotonically
// non-decreasing for the room's lifetime.
func (c *Coordinator) updatePeak(rm *room) {
	count := len(rm.viewers) + len(rm.hosts)
	if count > rm.peak {
		rm.peak = count
	}
}

func (c *Coordinator) memberCounts(streamID string) MemberCounts {
	rm, exists := c.rooms[streamID]
	if !exists {
		return MemberCounts{}
	}
	return MemberCounts{
		Viewers:    len(rm.viewers),
		Hosts:      len(rm.hosts),
		Publishers: len(rm.publishers),
		Pending:    len(rm.pending),
	}
}

func (c *Coordinator) isPublisher(streamID string, connectionID uuid.UUID) bool {
	rm, exists := c.rooms[streamID]
	if !exists {
		return false
	}
	_, ok := rm.publishers[connectionID]
	return ok
}
