// Package interaction holds the ephemeral per-stream live state: goals,
// polls, pinned messages, and the per-connection like rate limiter. No
// history is retained; everything lives in process memory.
package interaction

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/streampulse/internal/domain"
	"github.com/pscheid92/streampulse/internal/metrics"
)

type pollState struct {
	poll   domain.Poll
	voters map[string]struct{}
}

// Store guards all interaction state with one mutex. Operations are short
// map reads/writes with no I/O inside the critical section; broadcasts go
// through the emitter's command channel and never block the lock.
type Store struct {
	clock           clockwork.Clock
	emitter         domain.Emitter
	likeMinInterval time.Duration

	mu       sync.Mutex
	goals    map[string]*domain.Goal
	polls    map[string]*pollState
	pins     map[string]*domain.PinnedMessage
	lastLike map[uuid.UUID]time.Time
}

func NewStore(emitter domain.Emitter, clock clockwork.Clock, likeMinInterval time.Duration) *Store {
	return &Store{
		clock:           clock,
		emitter:         emitter,
		likeMinInterval: likeMinInterval,
		goals:           make(map[string]*domain.Goal),
		polls:           make(map[string]*pollState),
		pins:            make(map[string]*domain.PinnedMessage),
		lastLike:        make(map[uuid.UUID]time.Time),
	}
}

// AllowLike enforces the minimum interval between accepted like events per
// connection. Excess events are dropped, not queued.
func (s *Store) AllowLike(connectionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if last, exists := s.lastLike[connectionID]; exists && now.Sub(last) < s.likeMinInterval {
		metrics.LikesDroppedTotal.Inc()
		return false
	}
	s.lastLike[connectionID] = now
	return true
}

// RemoveConnection drops per-connection limiter state on disconnect.
func (s *Store) RemoveConnection(connectionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lastLike, connectionID)
}
