package profile

import "time"

// Profile matches the profiles table schema. One row per user.
type Profile struct {
	UserID     int64      `json:"user_id"`
	VIPExpires *time.Time `json:"vip_expires"`
	LastUsed   *time.Time `json:"last_used"`
}
