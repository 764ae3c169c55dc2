package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Client -> server message types.
const (
	MsgAuth = "auth"

	MsgJoin  = "join"
	MsgLeave = "leave"

	MsgRequestPublish = "request_publish"
	MsgApprovePublish = "approve_publish"
	MsgDenyPublish    = "deny_publish"
	MsgRevokePublish  = "revoke_publish"
	MsgClearRequests  = "clear_requests"
	MsgKick           = "kick"

	MsgOffer         = "offer"
	MsgAnswer        = "answer"
	MsgICECandidate  = "ice_candidate"
	MsgSignal        = "signal"
	MsgModerateTrack = "moderate_track"

	MsgLike       = "like"
	MsgGift       = "gift"
	MsgSetGoal    = "set_goal"
	MsgClearGoal  = "clear_goal"
	MsgStartPoll  = "start_poll"
	MsgVote       = "vote"
	MsgStopPoll   = "stop_poll"
	MsgPinMessage = "pin_message"
	MsgUnpin      = "unpin_message"
)

// ClientMessage is the single inbound envelope. Fields beyond Type are
// populated only for the message kinds that use them; handlers treat missing
// required fields as a silent no-op.
type ClientMessage struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	StreamID string `json:"streamId,omitempty"`

	AsHost       bool      `json:"asHost,omitempty"`
	ConnectionID uuid.UUID `json:"connectionId,omitempty"`
	ToUserID     string    `json:"toUserId,omitempty"`

	Payload json.RawMessage `json:"payload,omitempty"`

	Kind   string `json:"kind,omitempty"`
	Action string `json:"action,omitempty"`

	Amount      float64  `json:"amount,omitempty"`
	GoalType    string   `json:"goalType,omitempty"`
	Target      float64  `json:"target,omitempty"`
	Title       string   `json:"title,omitempty"`
	Question    string   `json:"question,omitempty"`
	Options     []string `json:"options,omitempty"`
	OptionIndex int      `json:"optionIndex"`

	MessageID  string `json:"messageId,omitempty"`
	AuthorName string `json:"authorName,omitempty"`
	Text       string `json:"text,omitempty"`
}
