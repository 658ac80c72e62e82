package events

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents is the JetStream stream holding all likebot events.
const StreamEvents = "LIKEBOT_EVENTS"

// Subject constants.
const (
	SubjectFulfillment  = "likebot.events.fulfillment"
	SubjectVerification = "likebot.events.verification"
)

// FulfillmentEvent is published after the fulfillment loop reaches a terminal
// outcome for a verification entry.
type FulfillmentEvent struct {
	EntryID   uuid.UUID `json:"entry_id"`
	UserID    int64     `json:"user_id"`
	UID       string    `json:"uid"`
	Region    string    `json:"region"`
	Outcome   string    `json:"outcome"` // success, already_maxed, api_error, transport_error, quota_denied
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// VerificationEvent is published when a verification code is redeemed.
type VerificationEvent struct {
	Code      string    `json:"code"`
	Result    string    `json:"result"` // success, already_used, expired, not_found
	Timestamp time.Time `json:"timestamp"`
}
