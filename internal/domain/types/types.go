// Package types contains the read-side views shared by the service and the
// HTTP layer.
package types

import (
	"time"

	"github.com/okian/tribureau/internal/domain/model"
)

// ReportRef is the short form of a persisted reading returned by a fetch.
type ReportRef struct {
	ID          string       `json:"id"`
	Source      model.Source `json:"source"`
	Available   bool         `json:"available"`
	CapturedAt  time.Time    `json:"captured_at"`
	ErrorReason string       `json:"error_reason,omitempty"`
}

// NewReportRef builds a ReportRef from a reading.
func NewReportRef(r model.Reading) ReportRef {
	return ReportRef{
		ID:          r.ID,
		Source:      r.Source,
		Available:   r.Available,
		CapturedAt:  r.CapturedAt,
		ErrorReason: r.ErrorReason,
	}
}

// FetchSummary is the outcome of fetching all sources for a user.
type FetchSummary struct {
	UserID        string         `json:"user_id"`
	Success       bool           `json:"success"`
	FailedSources []model.Source `json:"failed_sources"`
	Reports       []ReportRef    `json:"reports"`
}

// SourceSummary describes the latest reading of one source in a profile.
// Fetched is false when the source was never queried for the user.
type SourceSummary struct {
	Source           model.Source `json:"source"`
	Fetched          bool         `json:"fetched"`
	Available        bool         `json:"available"`
	Score            *int         `json:"score,omitempty"`
	ExternalReportID string       `json:"external_report_id,omitempty"`
	CapturedAt       *time.Time   `json:"captured_at,omitempty"`
	ErrorReason      string       `json:"error_reason,omitempty"`
}

// NewSourceSummary summarizes the latest reading for src; r may be nil.
func NewSourceSummary(src model.Source, r *model.Reading) SourceSummary {
	s := SourceSummary{Source: src}
	if r == nil {
		return s
	}
	captured := r.CapturedAt
	s.Fetched = true
	s.Available = r.Available
	s.ExternalReportID = r.ExternalReportID
	s.CapturedAt = &captured
	s.ErrorReason = r.ErrorReason
	if r.Metrics.HasScore() {
		score := r.Metrics.Score
		s.Score = &score
	}
	return s
}

// Profile is a user's credit profile: the latest reading per source plus
// the latest aggregated result, if any.
type Profile struct {
	User      model.User              `json:"user"`
	Sources   []SourceSummary         `json:"sources"`
	Aggregate *model.AggregatedResult `json:"aggregate,omitempty"`
}

// NewProfile assembles a profile in source order.
func NewProfile(u model.User, latest map[model.Source]model.Reading, agg *model.AggregatedResult) Profile {
	p := Profile{User: u, Aggregate: agg, Sources: make([]SourceSummary, 0, len(model.Sources()))}
	for _, src := range model.Sources() {
		var rp *model.Reading
		if r, ok := latest[src]; ok {
			rp = &r
		}
		p.Sources = append(p.Sources, NewSourceSummary(src, rp))
	}
	return p
}

// RefreshTicket acknowledges an asynchronous refresh request.
type RefreshTicket struct {
	JobID     string `json:"job_id,omitempty"`
	UserID    string `json:"user_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats reports service state.
type Stats struct {
	Started         bool  `json:"started"`
	Workers         int   `json:"workers"`
	QueueCapacity   int   `json:"queue_capacity"`
	QueueLength     int   `json:"queue_length"`
	PendingRefresh  int64 `json:"pending_refresh"`
	Users           int64 `json:"users"`
	Readings        int64 `json:"readings"`
	Results         int64 `json:"results"`
}
