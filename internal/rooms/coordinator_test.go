package rooms

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 30 * time.Second

// fakeEmitter records every emitted event, safe for concurrent use.
type fakeEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
}

type emittedEvent struct {
	target string // "conn:<id>", "room:<stream>", "roomExcept:<stream>"
	event  any
}

func (f *fakeEmitter) ToConnection(connectionID uuid.UUID, event any) {
	f.record("conn:"+connectionID.String(), event)
}

func (f *fakeEmitter) ToRoom(streamID string, event any) {
	f.record("room:"+streamID, event)
}

func (f *fakeEmitter) ToRoomExcept(streamID string, _ uuid.UUID, event any) {
	f.record("roomExcept:"+streamID, event)
}

func (f *fakeEmitter) record(target string, event any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emittedEvent{target: target, event: event})
}

func (f *fakeEmitter) countType(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.events {
		if typeOf(e.event) == eventType {
			count++
		}
	}
	return count
}

func (f *fakeEmitter) lastOfType(eventType string) (emittedEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		if typeOf(f.events[i].event) == eventType {
			return f.events[i], true
		}
	}
	return emittedEvent{}, false
}

func typeOf(event any) string {
	switch e := event.(type) {
	case domain.RoomUpdateEvent:
		return e.Type
	case domain.IdentityListEvent:
		return e.Type
	case domain.PublishRequestedEvent:
		return e.Type
	case domain.PublishResultEvent:
		return e.Type
	case domain.PublishExpiredEvent:
		return e.Type
	default:
		return fmt.Sprintf("%T", event)
	}
}

// fakeResolver issues deterministic identities for any connection id.
type fakeResolver struct{}

func (fakeResolver) Lookup(connectionID uuid.UUID) (domain.Identity, bool) {
	return domain.Identity{ConnectionID: connectionID, DisplayName: "viewer-" + connectionID.String()[:6]}, true
}

func (f fakeResolver) Resolve(connectionIDs []uuid.UUID) []domain.Identity {
	identities := make([]domain.Identity, 0, len(connectionIDs))
	for _, id := range connectionIDs {
		identity, _ := f.Lookup(id)
		identities = append(identities, identity)
	}
	return identities
}

type fakeTransport struct {
	mu           sync.Mutex
	unsubscribed []string
}

func (f *fakeTransport) Unsubscribe(connectionID uuid.UUID, streamID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, streamID+"/"+connectionID.String())
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeEmitter, *fakeTransport, *clockwork.FakeClock) {
	t.Helper()
	emitter := &fakeEmitter{}
	tr := &fakeTransport{}
	clock := clockwork.NewFakeClock()
	c := New(emitter, fakeResolver{}, tr, clock, testTTL)
	t.Cleanup(c.Stop)
	return c, emitter, tr, clock
}

// waitForPending polls until the stream has the expected pending count.
func waitForPending(c *Coordinator, streamID string, expected int) bool {
	for range 200 {
		if len(c.PendingRequests(streamID)) == expected {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestJoin_ViewerHostExclusive(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)
	connID := uuid.New()

	c.Join("s1", connID, false)
	counts := c.Members("s1")
	assert.Equal(t, 1, counts.Viewers)
	assert.Equal(t, 0, counts.Hosts)

	c.Join("s1", connID, true)
	counts = c.Members("s1")
	assert.Equal(t, 0, counts.Viewers)
	assert.Equal(t, 1, counts.Hosts)
	assert.Equal(t, 1, counts.Publishers, "hosts auto-publish")

	c.Join("s1", connID, false)
	counts = c.Members("s1")
	assert.Equal(t, 1, counts.Viewers)
	assert.Equal(t, 0, counts.Hosts)
}

func TestScenario_ViewerCountAndPeak(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)
	connA := uuid.New()
	connB := uuid.New()

	c.Join("s1", connA, false)
	snap := c.Snapshot("s1")
	assert.Equal(t, 1, snap.ViewerCount)
	assert.Equal(t, 1, snap.PeakViewerCount)

	c.Join("s1", connB, true)
	snap = c.Snapshot("s1")
	assert.Equal(t, 2, snap.ViewerCount)
	assert.Equal(t, 2, snap.PeakViewerCount)
	assert.Len(t, snap.Viewers, 2)

	c.Disconnect(connA)
	snap = c.Snapshot("s1")
	assert.Equal(t, 1, snap.ViewerCount)
	assert.Equal(t, 2, snap.PeakViewerCount, "peak never decreases")
}

func TestPeak_MonotonicAcrossChurn(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)

	conns := make([]uuid.UUID, 5)
	for i := range conns {
		conns[i] = uuid.New()
		c.Join("s1", conns[i], false)
	}
	require.Equal(t, 5, c.Snapshot("s1").PeakViewerCount)

	for _, id := range conns {
		c.Leave("s1", id)
	}
	assert.Equal(t, 0, c.Snapshot("s1").ViewerCount)
	assert.Equal(t, 5, c.Snapshot("s1").PeakViewerCount)

	c.Join("s1", uuid.New(), false)
	assert.Equal(t, 5, c.Snapshot("s1").PeakViewerCount)
}

func TestDisconnect_SweepsAllRooms(t *testing.T) {
	c, emitter, _, _ := newTestCoordinator(t)
	connID := uuid.New()

	c.Join("s1", connID, false)
	c.Join("s2", connID, true)
	before := emitter.countType(domain.EventRoomUpdate)

	c.Disconnect(connID)

	assert.Equal(t, 0, c.Members("s1").Viewers)
	assert.Equal(t, 0, c.Members("s2").Hosts)
	assert.Equal(t, 0, c.Members("s2").Publishers)
	assert.Equal(t, before+2, emitter.countType(domain.EventRoomUpdate), "one broadcast per affected room")
}

func TestRequestPublish_SecondRequestReplaces(t *testing.T) {
	c, _, _, clock := newTestCoordinator(t)
	host := uuid.New()
	guest := uuid.New()
	c.Join("s1", host, true)
	c.Join("s1", guest, false)

	c.RequestPublish("s1", guest)
	clock.Advance(10 * time.Second)
	c.RequestPublish("s1", guest)

	requests := c.PendingRequests("s1")
	require.Len(t, requests, 1, "exactly one pending record per requester")

	// The replaced timer must not fire: 25s after the second request the
	// original timer's deadline has long passed.
	clock.Advance(25 * time.Second)
	require.True(t, waitForPending(c, "s1", 1))

	clock.Advance(5 * time.Second)
	require.True(t, waitForPending(c, "s1", 0))
}

func TestRequestPublish_ExpiresExactlyOnce(t *testing.T) {
	c, emitter, _, clock := newTestCoordinator(t)
	host1 := uuid.New()
	host2 := uuid.New()
	guest := uuid.New()
	c.Join("s1", host1, true)
	c.Join("s1", host2, true)
	c.Join("s1", guest, false)

	c.RequestPublish("s1", guest)
	assert.Equal(t, 2, emitter.countType(domain.EventPublishRequested), "each host notified of the request")

	clock.Advance(testTTL)
	require.True(t, waitForPending(c, "s1", 0))

	assert.Equal(t, 2, emitter.countType(domain.EventPublishExpired), "each host notified exactly once")

	// No further expiry events later
	clock.Advance(testTTL)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 2, emitter.countType(domain.EventPublishExpired))
}

func TestApprovePublish_GrantsAndBroadcasts(t *testing.T) {
	c, emitter, _, _ := newTestCoordinator(t)
	host := uuid.New()
	guest := uuid.New()
	c.Join("s1", host, true)
	c.Join("s1", guest, false)

	c.RequestPublish("s1", guest)
	c.ApprovePublish("s1", guest)

	assert.True(t, c.IsPublisher("s1", guest))
	assert.Empty(t, c.PendingRequests("s1"))

	approved, ok := emitter.lastOfType(domain.EventPublishApproved)
	require.True(t, ok)
	assert.Equal(t, "conn:"+guest.String(), approved.target, "requester notified directly")

	update, ok := emitter.lastOfType(domain.EventPublishersUpdate)
	require.True(t, ok)
	assert.Equal(t, "room:s1", update.target)
}

func TestDenyPublish_NotifiesRequesterOnly(t *testing.T) {
	c, emitter, _, _ := newTestCoordinator(t)
	host := uuid.New()
	guest := uuid.New()
	c.Join("s1", host, true)
	c.Join("s1", guest, false)
	broadcastsBefore := emitter.countType(domain.EventPublishersUpdate)

	c.RequestPublish("s1", guest)
	c.DenyPublish("s1", guest)

	assert.False(t, c.IsPublisher("s1", guest))
	assert.Empty(t, c.PendingRequests("s1"))

	denied, ok := emitter.lastOfType(domain.EventPublishDenied)
	require.True(t, ok)
	assert.Equal(t, "conn:"+guest.String(), denied.target)
	assert.Equal(t, broadcastsBefore, emitter.countType(domain.EventPublishersUpdate), "deny does not broadcast")
}

func TestApprove_AfterExpiry_NoOps(t *testing.T) {
	c, emitter, _, clock := newTestCoordinator(t)
	host := uuid.New()
	guest := uuid.New()
	c.Join("s1", host, true)
	c.Join("s1", guest, false)

	c.RequestPublish("s1", guest)
	clock.Advance(testTTL)
	require.True(t, waitForPending(c, "s1", 0))

	c.ApprovePublish("s1", guest)

	assert.False(t, c.IsPublisher("s1", guest))
	assert.Equal(t, 0, emitter.countType(domain.EventPublishApproved))
}

func TestRevokePublish(t *testing.T) {
	c, emitter, _, _ := newTestCoordinator(t)
	host := uuid.New()
	guest := uuid.New()
	c.Join("s1", host, true)
	c.Join("s1", guest, false)
	c.RequestPublish("s1", guest)
	c.ApprovePublish("s1", guest)
	require.True(t, c.IsPublisher("s1", guest))

	c.RevokePublish("s1", guest)

	assert.False(t, c.IsPublisher("s1", guest))
	revoked, ok := emitter.lastOfType(domain.EventPublishRevoked)
	require.True(t, ok)
	assert.Equal(t, "conn:"+guest.String(), revoked.target)
}

func TestRevokePublish_NonPublisherNoOps(t *testing.T) {
	c, emitter, _, _ := newTestCoordinator(t)
	guest := uuid.New()
	c.Join("s1", guest, false)

	c.RevokePublish("s1", guest)

	assert.Equal(t, 0, emitter.countType(domain.EventPublishRevoked))
}

func TestClearRequests_CancelsTimers(t *testing.T) {
	c, emitter, _, clock := newTestCoordinator(t)
	host := uuid.New()
	guest1 := uuid.New()
	guest2 := uuid.New()
	c.Join("s1", host, true)
	c.Join("s1", guest1, false)
	c.Join("s1", guest2, false)

	c.RequestPublish("s1", guest1)
	c.RequestPublish("s1", guest2)
	require.Len(t, c.PendingRequests("s1"), 2)

	c.ClearRequests("s1")
	assert.Empty(t, c.PendingRequests("s1"))

	clock.Advance(2 * testTTL)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, emitter.countType(domain.EventPublishExpired), "cancelled timers never fire")
}

func TestKick_RemovesEverywhereAndDropsSubscription(t *testing.T) {
	c, emitter, tr, _ := newTestCoordinator(t)
	host := uuid.New()
	guest := uuid.New()
	c.Join("s1", host, true)
	c.Join("s1", guest, false)
	c.RequestPublish("s1", guest)
	c.ApprovePublish("s1", guest)

	c.Kick("s1", guest)

	counts := c.Members("s1")
	assert.Equal(t, 0, counts.Viewers)
	assert.Equal(t, 0, counts.Publishers)
	assert.Empty(t, c.PendingRequests("s1"))

	kicked, ok := emitter.lastOfType(domain.EventKicked)
	require.True(t, ok)
	assert.Equal(t, "conn:"+guest.String(), kicked.target)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	assert.Contains(t, tr.unsubscribed, "s1/"+guest.String())
}

func TestLeave_ClearsPendingRequest(t *testing.T) {
	c, emitter, _, clock := newTestCoordinator(t)
	host := uuid.New()
	guest := uuid.New()
	c.Join("s1", host, true)
	c.Join("s1", guest, false)
	c.RequestPublish("s1", guest)

	c.Leave("s1", guest)
	assert.Empty(t, c.PendingRequests("s1"))

	clock.Advance(2 * testTTL)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, emitter.countType(domain.EventPublishExpired))
}

func TestEmitHelpers_AreIdempotent(t *testing.T) {
	c, emitter, _, _ := newTestCoordinator(t)
	connID := uuid.New()
	c.Join("s1", connID, true)

	before := c.Snapshot("s1")
	c.EmitRoomUpdate("s1")
	c.EmitHosts("s1")
	c.EmitPublishers("s1")
	c.EmitRoomUpdate("s1")

	// Emits only read and broadcast; membership and peak are unchanged.
	assert.Equal(t, before, c.Snapshot("s1"))
	assert.GreaterOrEqual(t, emitter.countType(domain.EventRoomUpdate), 3)
}

func TestSnapshot_UnknownStream(t *testing.T) {
	c, _, _, _ := newTestCoordinator(t)
	snap := c.Snapshot("nope")
	assert.Equal(t, "nope", snap.StreamID)
	assert.Zero(t, snap.ViewerCount)
	assert.Zero(t, snap.PeakViewerCount)
}
