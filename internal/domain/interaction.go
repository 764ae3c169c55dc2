package domain

import "time"

// GoalType distinguishes what drives a live goal's progress.
type GoalType string

const (
	GoalLikes     GoalType = "likes"
	GoalDonations GoalType = "donations"
)

// Goal is the per-stream live goal. Replaced wholesale on set, no history.
type Goal struct {
	Type     GoalType `json:"type"`
	Target   float64  `json:"target"`
	Title    string   `json:"title,omitempty"`
	Progress float64  `json:"progress"`
}

// Poll is the per-stream live poll. Counts is parallel to Options. The voter
// set is never serialized; tallies are broadcast without voter identities.
type Poll struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Counts   []int    `json:"counts"`
	Active   bool     `json:"active"`
}

// PinnedMessage is the per-stream pinned chat message.
type PinnedMessage struct {
	MessageID  string    `json:"messageId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	PinnedBy   string    `json:"pinnedBy"`
	PinnedAt   time.Time `json:"pinnedAt"`
}
