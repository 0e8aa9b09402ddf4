// Package demo drives a running tribureau server over HTTP: it creates
// users, fetches and aggregates their reports concurrently and checks the
// responses for consistency.
package demo

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/tribureau/internal/domain/model"
)

// Config holds the settings of one demo run.
type Config struct {
	BaseURL string        // Base URL of the service
	Users   int           // Number of users to create
	Workers int           // Maximum concurrent requests
	Timeout time.Duration // Per-request timeout
	Method  model.Method  // Aggregation method; empty uses the server default
	Weights map[model.Source]float64
	Refresh bool // Queue a background refresh for every user after aggregating
	Verbose bool
}

// Stats holds the counters of one run.
type Stats struct {
	UsersCreated    int
	FetchSucceeded  int // every source answered
	FetchDegraded   int // some sources failed
	FetchFailed     int // every source failed
	Aggregated      int
	NoUsableData    int
	RefreshQueued   int
	RefreshPending  int
	RequestFailures int
	Scores          []int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// ParseWeights parses "source=weight" pairs separated by commas, as given
// on the command line. An empty string yields nil.
func ParseWeights(raw string) (map[model.Source]float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	out := make(map[model.Source]float64)
	for _, pair := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("weight %q: want source=value", pair)
		}
		src, err := model.ParseSource(key)
		if err != nil {
			return nil, err
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("weight for %s: %w", src, err)
		}
		out[src] = w
	}
	return out, nil
}
