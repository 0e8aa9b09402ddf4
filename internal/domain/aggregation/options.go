package aggregation

import (
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithDefaultWeights replaces the default weight table used by the weighted
// method. Negative entries and unknown sources are ignored.
func WithDefaultWeights(weights map[model.Source]float64) Option {
	return func(e *Engine) {
		if len(weights) == 0 {
			return
		}
		table := make(map[model.Source]decimal.Decimal, len(weights))
		for src, w := range weights {
			if src.Valid() && w >= 0 {
				table[src] = decimal.NewFromFloat(w)
			}
		}
		e.defaultWeights = table
	}
}

// DefaultWeights returns the built-in weight table.
func DefaultWeights() map[model.Source]float64 {
	return map[model.Source]float64{
		model.SourceExperian:   0.35,
		model.SourceEquifax:    0.35,
		model.SourceTransUnion: 0.30,
	}
}
