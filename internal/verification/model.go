package verification

import (
	"time"

	"github.com/google/uuid"
)

// Entry matches the verification_entries table schema. Entries are append-only:
// verified flips once via the public callback, processed flips once via the
// fulfillment loop, and nothing is ever deleted.
type Entry struct {
	ID         uuid.UUID  `json:"id"`
	UserID     int64      `json:"user_id"`
	UID        string     `json:"uid"`
	Region     string     `json:"region"`
	Code       string     `json:"code"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at"`
	Processed  bool       `json:"processed"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ChatID     int64      `json:"chat_id"`
	MessageID  int        `json:"message_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// VerifyResult is the outcome of redeeming a verification code.
type VerifyResult int

const (
	VerifySuccess VerifyResult = iota
	VerifyAlreadyUsed
	VerifyExpired
	VerifyNotFound
)

func (r VerifyResult) String() string {
	switch r {
	case VerifySuccess:
		return "success"
	case VerifyAlreadyUsed:
		return "already_used"
	case VerifyExpired:
		return "expired"
	default:
		return "not_found"
	}
}
