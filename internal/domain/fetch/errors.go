package fetch

import "errors"

// Orchestrator errors. Source unavailability is reported in Result, not here.
var (
	ErrUnknownUser = errors.New("unknown user")
	ErrNoAdapters  = errors.New("no bureau adapters configured")
	ErrStore       = errors.New("failed to persist reading")

	// ErrAllSourcesFailed marks a fetch in which no source succeeded. It is
	// returned by Result.Err, never by FetchAll itself.
	ErrAllSourcesFailed = errors.New("all sources failed")
)
