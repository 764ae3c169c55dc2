package domain

import "context"

// TokenVerifier validates a bearer token and returns the user id it carries.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Arbiter resolves whether a user may act as host/moderator for a stream.
// Implementations fail closed: any lookup failure resolves to unauthorized.
type Arbiter interface {
	IsAuthorized(ctx context.Context, streamID, userID string) bool
}
