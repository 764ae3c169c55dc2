// Package registry tracks the identity attached to each live connection.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/streampulse/internal/domain"
)

// Registry implements domain.ConnectionRegistry. Lookups are frequent and
// cheap; the user repository is only consulted when a connection attaches a
// token, so the read lock is never held across I/O.
type Registry struct {
	users domain.UserRepository

	mu     sync.RWMutex
	byConn map[uuid.UUID]domain.Identity
	byUser map[string]map[uuid.UUID]struct{}
}

var _ domain.ConnectionRegistry = (*Registry)(nil)

func New(users domain.UserRepository) *Registry {
	return &Registry{
		users:  users,
		byConn: make(map[uuid.UUID]domain.Identity),
		byUser: make(map[string]map[uuid.UUID]struct{}),
	}
}

// Register issues an anonymous identity for a new connection. The display
// name is derived from the connection id suffix until the connection
// authenticates.
func (r *Registry) Register(connectionID uuid.UUID) domain.Identity {
	identity := domain.Identity{
		ConnectionID: connectionID,
		DisplayName:  syntheticName(connectionID),
	}

	r.mu.Lock()
	r.byConn[connectionID] = identity
	r.mu.Unlock()

	return identity
}

// Authenticate attaches a verified user id to a connection, resolving the
// display name from the user record. Inactive or missing users are rejected.
func (r *Registry) Authenticate(ctx context.Context, connectionID uuid.UUID, userID string) (domain.Identity, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to resolve user %s: %w", userID, err)
	}
	if !user.Active {
		return domain.Identity{}, domain.ErrUserNotFound
	}

	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.Username
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	identity, exists := r.byConn[connectionID]
	if !exists {
		return domain.Identity{}, fmt.Errorf("connection %s is not registered", connectionID)
	}

	identity.UserID = userID
	identity.DisplayName = displayName
	r.byConn[connectionID] = identity

	conns, ok := r.byUser[userID]
	if !ok {
		conns = make(map[uuid.UUID]struct{})
		r.byUser[userID] = conns
	}
	conns[connectionID] = struct{}{}

	return identity, nil
}

// Lookup returns the identity for a connection, if registered.
func (r *Registry) Lookup(connectionID uuid.UUID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byConn[connectionID]
	return identity, ok
}

// Resolve maps connection ids to identities, skipping unknown connections.
func (r *Registry) Resolve(connectionIDs []uuid.UUID) []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identities := make([]domain.Identity, 0, len(connectionIDs))
	for _, id := range connectionIDs {
		if identity, ok := r.byConn[id]; ok {
			identities = append(identities, identity)
		}
	}
	return identities
}

// ConnectionsForUser returns all live connections for a user id.
func (r *Registry) ConnectionsForUser(userID string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[userID]
	ids := make([]uuid.UUID, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	return ids
}

// Unregister destroys a connection's identity.
func (r *Registry) Unregister(connectionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, exists := r.byConn[connectionID]
	if !exists {
		return
	}
	delete(r.byConn, connectionID)

	if identity.UserID != "" {
		if conns, ok := r.byUser[identity.UserID]; ok {
			delete(conns, connectionID)
			if len(conns) == 0 {
				delete(r.byUser, identity.UserID)
			}
		}
	}
}

func syntheticName(connectionID uuid.UUID) string {
	s := connectionID.String()
	return "viewer-" + strings.ToLower(s[len(s)-6:])
}
