package domain

import "context"

// Stream is the persisted stream record. The coordinator only reads it for
// authorization and status; writes are limited to the viewer counter side
// effect on join/leave.
type Stream struct {
	ID               string
	OwnerID          string
	Moderators       []string
	Live             bool
	ViewerCount      int
	ChatEnabled      bool
	DonationsEnabled bool
}

// StreamRepository abstracts stream record persistence.
type StreamRepository interface {
	GetByID(ctx context.Context, streamID string) (Stream, error)
	IncrementViewers(ctx context.Context, streamID string) error
	DecrementViewers(ctx context.Context, streamID string) error
}
