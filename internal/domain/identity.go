package domain

import (
	"context"

	"github.com/google/uuid"
)

// Identity describes who is behind a live connection. UserID is empty for
// anonymous connections. DisplayName is resolved lazily: from the user record
// for authenticated connections, or derived from the connection id suffix for
// anonymous ones.
type Identity struct {
	ConnectionID uuid.UUID `json:"connectionId"`
	UserID       string    `json:"userId,omitempty"`
	DisplayName  string    `json:"displayName"`
}

// ConnectionRegistry tracks the identity attached to each live connection.
// An identity is issued once at handshake time and destroyed on disconnect.
type ConnectionRegistry interface {
	Register(connectionID uuid.UUID) Identity
	Authenticate(ctx context.Context, connectionID uuid.UUID, userID string) (Identity, error)
	Lookup(connectionID uuid.UUID) (Identity, bool)
	ConnectionsForUser(userID string) []uuid.UUID
	Unregister(connectionID uuid.UUID)
}
