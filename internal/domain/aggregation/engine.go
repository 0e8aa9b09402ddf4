// Package aggregation combines per-source readings into one credit score.
package aggregation

import (
	"fmt"
	"sort"

	"github.com/okian/tribureau/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Input is one aggregation request. Readings hold at most one reading per
// source, already resolved to the latest by the caller.
type Input struct {
	UserID        string
	Readings      []model.Reading
	Method        model.Method
	CustomWeights map[model.Source]float64
}

// Engine is a stateless score combiner. It is safe for concurrent use.
type Engine struct {
	defaultWeights map[model.Source]decimal.Decimal
}

// NewEngine creates an engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	WithDefaultWeights(DefaultWeights())(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aggregate computes the combined score, risk category and recommendation.
// The returned result has no ID or ComputedAt; persisting it is the
// caller's job.
func (e *Engine) Aggregate(in Input) (model.AggregatedResult, error) {
	if !in.Method.Valid() {
		return model.AggregatedResult{}, fmt.Errorf("%w: %q", ErrUnknownMethod, in.Method)
	}
	if in.Method == model.MethodCustom && in.CustomWeights == nil {
		return model.AggregatedResult{}, ErrMissingWeights
	}

	usable, missing, err := partition(in.Readings)
	if err != nil {
		return model.AggregatedResult{}, err
	}
	if len(usable) == 0 {
		return model.AggregatedResult{}, ErrNoUsableData
	}

	components := make([]model.Component, len(usable))
	for i, r := range usable {
		components[i] = model.Component{Source: r.Source, Score: r.Metrics.Score, ReadingID: r.ID}
	}

	var combined int
	switch in.Method {
	case model.MethodAverage:
		combined = average(components)
	case model.MethodWeighted:
		combined, err = weightedMean(components, e.defaultWeights)
	case model.MethodCustom:
		var table map[model.Source]decimal.Decimal
		if table, err = customTable(in.CustomWeights); err == nil {
			combined, err = weightedMean(components, table)
		}
	case model.MethodLowest:
		combined = pick(components, func(a, b int) bool { return a < b })
	case model.MethodHighest:
		combined = pick(components, func(a, b int) bool { return a > b })
	case model.MethodMedian:
		combined = median(components)
	}
	if err != nil {
		return model.AggregatedResult{}, err
	}

	return model.AggregatedResult{
		UserID:         in.UserID,
		CombinedScore:  combined,
		Method:         in.Method,
		Components:     components,
		MissingSources: missing,
		RiskCategory:   Classify(combined),
		Recommendation: Recommend(combined),
	}, nil
}

// partition splits readings into usable ones (ordered by source) and the
// sources that have no usable reading.
func partition(readings []model.Reading) ([]model.Reading, []model.Source, error) {
	seen := make(map[model.Source]bool, len(readings))
	usable := make([]model.Reading, 0, len(readings))
	for _, r := range readings {
		if !r.Source.Valid() {
			return nil, nil, fmt.Errorf("%w: %q", model.ErrUnknownSource, r.Source)
		}
		if seen[r.Source] {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateSource, r.Source)
		}
		seen[r.Source] = true
		if r.Usable() {
			usable = append(usable, r)
		}
	}
	sort.Slice(usable, func(i, j int) bool { return usable[i].Source.Index() < usable[j].Source.Index() })

	have := make(map[model.Source]bool, len(usable))
	for _, r := range usable {
		have[r.Source] = true
	}
	missing := make([]model.Source, 0, len(model.Sources()))
	for _, src := range model.Sources() {
		if !have[src] {
			missing = append(missing, src)
		}
	}
	return usable, missing, nil
}

func average(components []model.Component) int {
	sum := decimal.Zero
	for _, c := range components {
		sum = sum.Add(decimal.NewFromInt(int64(c.Score)))
	}
	n := decimal.NewFromInt(int64(len(components)))
	weight := 1 / float64(len(components))
	for i := range components {
		components[i].Weight = weight
	}
	return int(sum.Div(n).Round(0).IntPart())
}

// weightedMean normalizes the table entries of the contributing sources to
// sum to one, stores them on the components and returns the rounded mean.
func weightedMean(components []model.Component, table map[model.Source]decimal.Decimal) (int, error) {
	total := decimal.Zero
	for _, c := range components {
		w, ok := table[c.Source]
		if !ok {
			return 0, fmt.Errorf("%w: no weight for %s", ErrInvalidWeights, c.Source)
		}
		total = total.Add(w)
	}
	if !total.IsPositive() {
		return 0, fmt.Errorf("%w: weights of contributing sources sum to zero", ErrInvalidWeights)
	}

	if len(components) == 1 {
		components[0].Weight = 1
		return components[0].Score, nil
	}

	acc := decimal.Zero
	for i, c := range components {
		w := table[c.Source]
		acc = acc.Add(w.Mul(decimal.NewFromInt(int64(c.Score))))
		components[i].Weight = w.Div(total).InexactFloat64()
	}
	return int(acc.Div(total).Round(0).IntPart()), nil
}

func customTable(weights map[model.Source]float64) (map[model.Source]decimal.Decimal, error) {
	table := make(map[model.Source]decimal.Decimal, len(weights))
	for src, w := range weights {
		if !src.Valid() {
			return nil, fmt.Errorf("%w: unknown source %q", ErrInvalidWeights, src)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight for %s", ErrInvalidWeights, src)
		}
		table[src] = decimal.NewFromFloat(w)
	}
	return table, nil
}

// pick gives weight 1 to the first component that wins under better, in
// source order.
func pick(components []model.Component, better func(a, b int) bool) int {
	best := 0
	for i := 1; i < len(components); i++ {
		if better(components[i].Score, components[best].Score) {
			best = i
		}
	}
	components[best].Weight = 1
	return components[best].Score
}

func median(components []model.Component) int {
	order := make([]int, len(components))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return components[order[a]].Score < components[order[b]].Score
	})

	n := len(order)
	if n%2 == 1 {
		mid := order[n/2]
		components[mid].Weight = 1
		return components[mid].Score
	}
	lo, hi := order[n/2-1], order[n/2]
	components[lo].Weight = 0.5
	components[hi].Weight = 0.5
	sum := decimal.NewFromInt(int64(components[lo].Score + components[hi].Score))
	return int(sum.Div(decimal.NewFromInt(2)).Round(0).IntPart())
}
