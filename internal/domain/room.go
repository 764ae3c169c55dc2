package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoomSnapshot is the membership view broadcast to every room subscriber
// whenever membership changes. Publishers are a subset of viewers+hosts and
// are not counted separately.
type RoomSnapshot struct {
	StreamID        string     `json:"streamId"`
	ViewerCount     int        `json:"viewerCount"`
	PeakViewerCount int        `json:"peakViewerCount"`
	Viewers         []Identity `json:"viewers"`
}

// PendingRequest records an outstanding guest publish request. Exactly one
// exists per requester per room; a new request replaces the prior record.
type PendingRequest struct {
	ConnectionID uuid.UUID `json:"connectionId"`
	UserID       string    `json:"userId,omitempty"`
	DisplayName  string    `json:"displayName"`
	RequestedAt  time.Time `json:"requestedAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
