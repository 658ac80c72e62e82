package quota

import "time"

// Record matches the quota_records table schema. One row per user, upserted on
// every consumption; never deleted.
type Record struct {
	UserID            int64      `json:"user_id"`
	LastRequestTime   *time.Time `json:"last_request_time"`
	RemainingRequests int        `json:"remaining_requests"`
}
