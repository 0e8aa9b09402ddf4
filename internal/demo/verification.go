package demo

import (
	"fmt"
	"math"

	"github.com/okian/tribureau/internal/domain/aggregation"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/internal/domain/types"
)

// verifyFetch checks that a fetch summary reports every source exactly once
// and that failed sources match the unavailable reports.
func verifyFetch(s types.FetchSummary) error {
	all := model.Sources()
	if len(s.Reports) != len(all) {
		return fmt.Errorf("user %s: %d reports, want %d", s.UserID, len(s.Reports), len(all))
	}
	seen := make(map[model.Source]bool, len(all))
	failed := make(map[model.Source]bool, len(s.FailedSources))
	for _, src := range s.FailedSources {
		failed[src] = true
	}
	for _, rep := range s.Reports {
		if seen[rep.Source] {
			return fmt.Errorf("user %s: duplicate report for %s", s.UserID, rep.Source)
		}
		seen[rep.Source] = true
		if rep.Available == failed[rep.Source] {
			return fmt.Errorf("user %s: %s available=%t but failed=%t", s.UserID, rep.Source, rep.Available, failed[rep.Source])
		}
	}
	if s.Success != (len(s.FailedSources) < len(all)) {
		return fmt.Errorf("user %s: success=%t with %d failed sources", s.UserID, s.Success, len(s.FailedSources))
	}
	return nil
}

// verifyAggregate checks that contributing and missing sources partition
// the bureau set, that weights sum to one and that the category matches
// the score.
func verifyAggregate(res model.AggregatedResult, want model.Method) error {
	if want != "" && res.Method != want {
		return fmt.Errorf("result %s: method %s, want %s", res.ID, res.Method, want)
	}
	seen := make(map[model.Source]int, len(model.Sources()))
	sum := 0.0
	for _, c := range res.Components {
		seen[c.Source]++
		sum += c.Weight
	}
	for _, src := range res.MissingSources {
		seen[src]++
	}
	for _, src := range model.Sources() {
		if seen[src] != 1 {
			return fmt.Errorf("result %s: source %s appears %d times", res.ID, src, seen[src])
		}
	}
	if len(res.Components) > 0 && math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("result %s: weights sum to %.6f", res.ID, sum)
	}
	if got := aggregation.Classify(res.CombinedScore); got != res.RiskCategory {
		return fmt.Errorf("result %s: score %d classified %s, reported %s", res.ID, res.CombinedScore, got, res.RiskCategory)
	}
	return nil
}

// verifyProfile checks that a profile lists every source in order and
// carries the aggregate just computed. resultID is empty when aggregation
// found no usable data.
func verifyProfile(p types.Profile, resultID string) error {
	all := model.Sources()
	if len(p.Sources) != len(all) {
		return fmt.Errorf("profile %s: %d sources, want %d", p.User.ID, len(p.Sources), len(all))
	}
	for i, s := range p.Sources {
		if s.Source != all[i] {
			return fmt.Errorf("profile %s: source %d is %s, want %s", p.User.ID, i, s.Source, all[i])
		}
		if !s.Fetched {
			return fmt.Errorf("profile %s: %s never fetched", p.User.ID, s.Source)
		}
	}
	switch {
	case resultID == "" && p.Aggregate != nil:
		return fmt.Errorf("profile %s: unexpected aggregate %s", p.User.ID, p.Aggregate.ID)
	case resultID != "" && (p.Aggregate == nil || p.Aggregate.ID != resultID):
		return fmt.Errorf("profile %s: latest aggregate is not %s", p.User.ID, resultID)
	}
	return nil
}
