// Package bureau defines the contract for credit bureau sources and the
// simulated implementations used in place of real bureau integrations.
package bureau

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tribureau/internal/domain/model"
)

// Outcome is the result of one bureau call before it is persisted.
// Exactly one of Metrics or ErrorReason is set.
type Outcome struct {
	Available        bool
	ExternalReportID string
	ErrorReason      string
	Metrics          *model.Metrics
}

// Failure builds an unavailable outcome.
func Failure(reason string) Outcome {
	return Outcome{ErrorReason: reason}
}

// Adapter fetches one source's report for a correlation key. Expected
// unavailability is reported through Outcome, never as a panic.
// Implementations must not log or store the correlation key.
type Adapter interface {
	Source() model.Source
	Fetch(ctx context.Context, correlationKey string) Outcome
}

// newReportID synthesizes a source-issued report identifier.
func newReportID(src model.Source, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", src.ReportPrefix(), now.UnixMilli(), uuid.NewString()[:8])
}

// unavailableReason is the human-readable text for a simulated outage.
func unavailableReason(src model.Source) string {
	return src.DisplayName() + " service temporarily unavailable"
}

// waitLatency blocks for d or until ctx is done.
func waitLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("request cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
