package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/tribureau/internal/domain/aggregation"
	"github.com/okian/tribureau/internal/domain/model"
)

// CreditHandler serves fetch, aggregate, profile and source reports.
type CreditHandler struct {
	deps     CreditDependencies
	fallback float64
}

// NewCreditHandler creates a new credit handler. fallback is the weight of
// sources a custom weights object leaves out.
func NewCreditHandler(deps CreditDependencies, fallback float64) *CreditHandler {
	return &CreditHandler{deps: deps, fallback: fallback}
}

// aggregateRequest is the body of POST .../aggregate. Both fields are
// optional.
type aggregateRequest struct {
	Method  string             `json:"method"`
	Weights map[string]float64 `json:"weights"`
}

// HandleFetch handles POST /api/credit-reports/users/{userId}/fetch. A fetch
// in which every source failed is answered with 200 and success false.
func (h *CreditHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	summary, err := h.deps.FetchAll(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, Wrap("api.fetch", err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleAggregate handles POST /api/credit-reports/users/{userId}/aggregate.
func (h *CreditHandler) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	const op = "api.aggregate"
	var req aggregateRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	method := resolveMethod(req.Method)
	var weights map[model.Source]float64
	if method == model.MethodCustom && req.Weights != nil {
		var err error
		if weights, err = completeWeights(req.Weights, h.fallback); err != nil {
			writeError(w, WrapKind(op, ErrBadRequest, err))
			return
		}
	}

	res, err := h.deps.Aggregate(r.Context(), r.PathValue("userId"), method, weights)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleProfile handles GET /api/credit-reports/users/{userId}/profile.
func (h *CreditHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Profile(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, Wrap("api.profile", err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleSource handles GET /api/credit-reports/users/{userId}/sources/{source}.
func (h *CreditHandler) HandleSource(w http.ResponseWriter, r *http.Request) {
	const op = "api.source_report"
	src, err := model.ParseSource(r.PathValue("source"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	reading, err := h.deps.SourceReport(r.Context(), r.PathValue("userId"), src)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// resolveMethod parses a method name. Unknown and empty names resolve to
// the empty method, which the service replaces with its default.
func resolveMethod(raw string) model.Method {
	m, err := model.ParseMethod(raw)
	if err != nil {
		return ""
	}
	return m
}

// completeWeights validates a custom weights object and gives every source
// it leaves out the fallback weight.
func completeWeights(raw map[string]float64, fallback float64) (map[model.Source]float64, error) {
	out := make(map[model.Source]float64, len(model.Sources()))
	for key, w := range raw {
		src, err := model.ParseSource(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", aggregation.ErrInvalidWeights, err)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight for %s", aggregation.ErrInvalidWeights, strings.ToLower(key))
		}
		out[src] = w
	}
	for _, src := range model.Sources() {
		if _, ok := out[src]; !ok {
			out[src] = fallback
		}
	}
	return out, nil
}
