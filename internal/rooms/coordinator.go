// Package rooms owns the in-memory room state for live streams: who is a
// viewer, host, or publisher, plus the pending guest-publish requests and
// their expiry timers.
//
// A single actor goroutine owns all room maps; public methods communicate
// with it through a command channel, so no two mutations for the same room
// can interleave. State is process-local: horizontal scaling requires sticky
// sessions per stream or an external store behind the same interface.
package rooms

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/streampulse/internal/domain"
)

// identityResolver is the subset of the connection registry the coordinator
// needs to turn connection ids into display identities.
type identityResolver interface {
	Lookup(connectionID uuid.UUID) (domain.Identity, bool)
	Resolve(connectionIDs []uuid.UUID) []domain.Identity
}

// transport lets the coordinator force-drop a kicked connection's room
// subscription.
type transport interface {
	Unsubscribe(connectionID uuid.UUID, streamID string)
}

type room struct {
	viewers    map[uuid.UUID]struct{}
	hosts      map[uuid.UUID]struct{}
	publishers map[uuid.UUID]struct{}
	pending    map[uuid.UUID]domain.PendingRequest
	timers     map[uuid.UUID]clockwork.Timer
	peak       int
}

func newRoom() *room {
	return &room{
		viewers:    make(map[uuid.UUID]struct{}),
		hosts:      make(map[uuid.UUID]struct{}),
		publishers: make(map[uuid.UUID]struct{}),
		pending:    make(map[uuid.UUID]domain.PendingRequest),
		timers:     make(map[uuid.UUID]clockwork.Timer),
	}
}

// --- Command types ---

type coordinatorCmd interface{ coordinatorCmd() }

type baseCmd struct{}

func (baseCmd) coordinatorCmd() {}

type cmdJoin struct {
	baseCmd
	streamID     string
	connectionID uuid.UUID
	asHost       bool
	doneCh       chan struct{}
}

type cmdLeave struct {
	baseCmd
	streamID     string
	connectionID uuid.UUID
	doneCh       chan struct{}
}

type cmdDisconnect struct {
	baseCmd
	connectionID uuid.UUID
	doneCh       chan struct{}
}

type cmdRequestPublish struct {
	baseCmd
	streamID     string
	connectionID uuid.UUID
	doneCh       chan struct{}
}

type cmdResolveRequest struct {
	baseCmd
	streamID     string
	connectionID uuid.UUID
	approve      bool
	doneCh       chan struct{}
}

type cmdRevokePublish struct {
	baseCmd
	streamID     string
	connectionID uuid.UUID
	doneCh       chan struct{}
}

type cmdClearRequests struct {
	baseCmd
	streamID string
	doneCh   chan struct{}
}

type cmdKick struct {
	baseCmd
	streamID     string
	connectionID uuid.UUID
	doneCh       chan struct{}
}

type cmdExpireRequest struct {
	baseCmd
	streamID     string
	connectionID uuid.UUID
	requestedAt  time.Time
}

type cmdEmit struct {
	baseCmd
	streamID string
	event    string
}

type cmdSnapshot struct {
	baseCmd
	streamID string
	replyCh  chan domain.RoomSnapshot
}

type cmdPendingRequests struct {
	baseCmd
	streamID string
	replyCh  chan []domain.PendingRequest
}

type cmdIsPublisher struct {
	baseCmd
	streamID     string
	connectionID uuid.UUID
	replyCh      chan bool
}

type cmdMemberCounts struct {
	baseCmd
	streamID string
	replyCh  chan MemberCounts
}

type cmdStop struct {
	baseCmd
	doneCh chan struct{}
}

// MemberCounts is a read-only view of a room's set sizes.
type MemberCounts struct {
	Viewers    int
	Hosts      int
	Publishers int
	Pending    int
}

// Coordinator is the room/session coordinator actor.
type Coordinator struct {
	cmdCh      chan coordinatorCmd
	rooms      map[string]*room
	clock      clockwork.Clock
	emitter    domain.Emitter
	identities identityResolver
	transport  transport
	requestTTL time.Duration
}

// New creates and starts a coordinator. transport may be nil in tests.
func New(emitter domain.Emitter, identities identityResolver, tr transport, clock clockwork.Clock, requestTTL time.Duration) *Coordinator {
	c := &Coordinator{
		cmdCh:      make(chan coordinatorCmd, 512),
		rooms:      make(map[string]*room),
		clock:      clock,
		emitter:    emitter,
		identities: identities,
		transport:  tr,
		requestTTL: requestTTL,
	}
	go c.run()
	return c
}

func (c *Coordinator) run() {
	for cmd := range c.cmdCh {
		switch cc := cmd.(type) {
		case cmdJoin:
			c.handleJoin(cc.streamID, cc.connectionID, cc.asHost)
			close(cc.doneCh)
		case cmdLeave:
			c.handleLeave(cc.streamID, cc.connectionID)
			close(cc.doneCh)
		case cmdDisconnect:
			c.handleDisconnect(cc.connectionID)
			close(cc.doneCh)
		case cmdRequestPublish:
			c.handleRequestPublish(cc.streamID, cc.connectionID)
			close(cc.doneCh)
		case cmdResolveRequest:
			c.handleResolveRequest(cc.streamID, cc.connectionID, cc.approve)
			close(cc.doneCh)
		case cmdRevokePublish:
			c.handleRevokePublish(cc.streamID, cc.connectionID)
			close(cc.doneCh)
		case cmdClearRequests:
			c.handleClearRequests(cc.streamID)
			close(cc.doneCh)
		case cmdKick:
			c.handleKick(cc.streamID, cc.connectionID)
			close(cc.doneCh)
		case cmdExpireRequest:
			c.handleExpireRequest(cc.streamID, cc.connectionID, cc.requestedAt)
		case cmdEmit:
			c.handleEmit(cc.streamID, cc.event)
		case cmdSnapshot:
			cc.replyCh <- c.snapshot(cc.streamID)
		case cmdPendingRequests:
			cc.replyCh <- c.pendingRequests(cc.streamID)
		case cmdIsPublisher:
			cc.replyCh <- c.isPublisher(cc.streamID, cc.connectionID)
		case cmdMemberCounts:
			cc.replyCh <- c.memberCounts(cc.streamID)
		case cmdStop:
			c.handleStop()
			close(cc.doneCh)
			return
		}
	}
}

func (c *Coordinator) handleStop() {
	for _, rm := range c.rooms {
		for requesterID, timer := range rm.timers {
			timer.Stop()
			delete(rm.timers, requesterID)
		}
	}
}

// --- Public API ---
// Mutations block until the actor has applied them, so a caller observes its
// own writes in subsequent queries.

func (c *Coordinator) Join(streamID string, connectionID uuid.UUID, asHost bool) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdJoin{streamID: streamID, connectionID: connectionID, asHost: asHost, doneCh: doneCh}
	<-doneCh
}

func (c *Coordinator) Leave(streamID string, connectionID uuid.UUID) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdLeave{streamID: streamID, connectionID: connectionID, doneCh: doneCh}
	<-doneCh
}

func (c *Coordinator) Disconnect(connectionID uuid.UUID) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdDisconnect{connectionID: connectionID, doneCh: doneCh}
	<-doneCh
}

func (c *Coordinator) RequestPublish(streamID string, connectionID uuid.UUID) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdRequestPublish{streamID: streamID, connectionID: connectionID, doneCh: doneCh}
	<-doneCh
}

func (c *Coordinator) ApprovePublish(streamID string, requesterID uuid.UUID) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdResolveRequest{streamID: streamID, connectionID: requesterID, approve: true, doneCh: doneCh}
	<-doneCh
}

func (c *Coordinator) DenyPublish(streamID string, requesterID uuid.UUID) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdResolveRequest{streamID: streamID, connectionID: requesterID, approve: false, doneCh: doneCh}
	<-doneCh
}

func (c *Coordinator) RevokePublish(streamID string, connectionID uuid.UUID) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdRevokePublish{streamID: streamID, connectionID: connectionID, doneCh: doneCh}
	<-doneCh
}

func (c *Coordinator) ClearRequests(streamID string) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdClearRequests{streamID: streamID, doneCh: doneCh}
	<-doneCh
}

func (c *Coordinator) Kick(streamID string, connectionID uuid.UUID) {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdKick{streamID: streamID, connectionID: connectionID, doneCh: doneCh}
	<-doneCh
}

// EmitRoomUpdate re-broadcasts the current membership snapshot. Safe to call
// redundantly: it reads and broadcasts, never mutates.
func (c *Coordinator) EmitRoomUpdate(streamID string) {
	c.cmdCh <- cmdEmit{streamID: streamID, event: domain.EventRoomUpdate}
}

// EmitHosts re-broadcasts the current host identity list.
func (c *Coordinator) EmitHosts(streamID string) {
	c.cmdCh <- cmdEmit{streamID: streamID, event: domain.EventHostsUpdate}
}

// EmitPublishers re-broadcasts the current publisher identity list.
func (c *Coordinator) EmitPublishers(streamID string) {
	c.cmdCh <- cmdEmit{streamID: streamID, event: domain.EventPublishersUpdate}
}

// Snapshot returns the current membership view for a stream.
func (c *Coordinator) Snapshot(streamID string) domain.RoomSnapshot {
	replyCh := make(chan domain.RoomSnapshot, 1)
	c.cmdCh <- cmdSnapshot{streamID: streamID, replyCh: replyCh}
	return <-replyCh
}

// PendingRequests returns the outstanding publish requests for a stream.
func (c *Coordinator) PendingRequests(streamID string) []domain.PendingRequest {
	replyCh := make(chan []domain.PendingRequest, 1)
	c.cmdCh <- cmdPendingRequests{streamID: streamID, replyCh: replyCh}
	return <-replyCh
}

// IsPublisher reports whether a connection currently holds publish permission.
func (c *Coordinator) IsPublisher(streamID string, connectionID uuid.UUID) bool {
	replyCh := make(chan bool, 1)
	c.cmdCh <- cmdIsPublisher{streamID: streamID, connectionID: connectionID, replyCh: replyCh}
	return <-replyCh
}

// Members returns the current set sizes for a stream's room.
func (c *Coordinator) Members(streamID string) MemberCounts {
	replyCh := make(chan MemberCounts, 1)
	c.cmdCh <- cmdMemberCounts{streamID: streamID, replyCh: replyCh}
	return <-replyCh
}

// Stop shuts the coordinator down, cancelling every pending request timer.
func (c *Coordinator) Stop() {
	doneCh := make(chan struct{})
	c.cmdCh <- cmdStop{doneCh: doneCh}
	<-doneCh
}
