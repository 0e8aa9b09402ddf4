package model

import "time"

// RefreshJob asks the background workers to fetch every source for a user
// and aggregate the result.
type RefreshJob struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Method      Method    `json:"method"`
	RequestedAt time.Time `json:"requested_at"`
}

// DedupeKey identifies jobs that would do the same work.
func (j RefreshJob) DedupeKey() string {
	return j.UserID
}
