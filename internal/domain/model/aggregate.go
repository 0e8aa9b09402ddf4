package model

import (
	"fmt"
	"strings"
	"time"
)

// Method selects how component scores are combined.
type Method string

// Supported aggregation methods.
const (
	MethodAverage  Method = "average"
	MethodWeighted Method = "weighted"
	MethodLowest   Method = "lowest"
	MethodHighest  Method = "highest"
	MethodMedian   Method = "median"
	MethodCustom   Method = "custom"
)

// Methods returns every supported method.
func Methods() []Method {
	return []Method{MethodAverage, MethodWeighted, MethodLowest, MethodHighest, MethodMedian, MethodCustom}
}

// Valid reports whether m is a supported method.
func (m Method) Valid() bool {
	for _, known := range Methods() {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(raw string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, raw)
	}
	return m, nil
}

// RiskCategory is one of six ordered score bands.
type RiskCategory string

// Risk categories from best to worst.
const (
	RiskExcellent RiskCategory = "Excellent"
	RiskVeryGood  RiskCategory = "Very Good"
	RiskGood      RiskCategory = "Good"
	RiskFair      RiskCategory = "Fair"
	RiskPoor      RiskCategory = "Poor"
	RiskVeryPoor  RiskCategory = "Very Poor"
)

// Component is one source's contribution to an aggregated result.
type Component struct {
	Source Source  `json:"source"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
	// ReadingID references the exact reading the score was taken from.
	ReadingID string `json:"reading_id"`
}

// AggregatedResult is the immutable output of one aggregation run.
type AggregatedResult struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	CombinedScore  int          `json:"combined_score"`
	Method         Method       `json:"method"`
	Components     []Component  `json:"components"`
	MissingSources []Source     `json:"missing_sources"`
	RiskCategory   RiskCategory `json:"risk_category"`
	Recommendation string       `json:"recommendation"`
	ComputedAt     time.Time    `json:"computed_at"`
}
