// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	service "github.com/okian/tribureau/internal/app"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/internal/domain/types"
)

const maxBodyBytes = 1 << 20

// UserDependencies is the user directory used by the user handlers.
type UserDependencies interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, userID string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, userID string, upd service.UserUpdate) (model.User, error)
}

// CreditDependencies are the credit report operations.
type CreditDependencies interface {
	FetchAll(ctx context.Context, userID string) (types.FetchSummary, error)
	Aggregate(ctx context.Context, userID string, method model.Method, weights map[model.Source]float64) (model.AggregatedResult, error)
	Profile(ctx context.Context, userID string) (types.Profile, error)
	SourceReport(ctx context.Context, userID string, src model.Source) (model.Reading, error)
}

// RefreshDependencies queues background refreshes.
type RefreshDependencies interface {
	Refresh(ctx context.Context, userID string) (types.RefreshTicket, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	UserDependencies
	CreditDependencies
	RefreshDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	usersHandler   *UsersHandler
	creditHandler  *CreditHandler
	refreshHandler *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:  NewHealthHandler(cfg.version),
		statsHandler:   NewStatsHandler(deps),
		usersHandler:   NewUsersHandler(deps),
		creditHandler:  NewCreditHandler(deps, cfg.customWeightFallback),
		refreshHandler: NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	const reports = "/api/credit-reports/users/{userId}"

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleMetrics, "healthz"))
	mux.HandleFunc("GET /api/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /api/users", MetricsMiddleware(s.usersHandler.HandleCreate, "users_create"))
	mux.HandleFunc("GET /api/users", MetricsMiddleware(s.usersHandler.HandleList, "users_list"))
	mux.HandleFunc("GET /api/users/{userId}", MetricsMiddleware(s.usersHandler.HandleGet, "users_get"))
	mux.HandleFunc("PUT /api/users/{userId}", MetricsMiddleware(s.usersHandler.HandleUpdate, "users_update"))

	mux.HandleFunc("POST "+reports+"/fetch", MetricsMiddleware(s.creditHandler.HandleFetch, "fetch"))
	mux.HandleFunc("POST "+reports+"/aggregate", MetricsMiddleware(s.creditHandler.HandleAggregate, "aggregate"))
	mux.HandleFunc("GET "+reports+"/profile", MetricsMiddleware(s.creditHandler.HandleProfile, "profile"))
	mux.HandleFunc("GET "+reports+"/sources/{source}", MetricsMiddleware(s.creditHandler.HandleSource, "source"))
	mux.HandleFunc("POST "+reports+"/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
}

type errorResponse struct {
	Code       string     `json:"code"`
	Message    string     `json:"message"`
	Reason     string     `json:"reason,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes the error body.
func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	resp := errorResponse{Code: code, Message: http.StatusText(status)}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		resp.Message = apiErr.message()
	} else if err != nil {
		resp.Message = err.Error()
	}

	var unavailable *service.UnavailableError
	if errors.As(err, &unavailable) {
		captured := unavailable.CapturedAt
		resp.Reason = unavailable.Reason
		resp.CapturedAt = &captured
	}
	writeJSON(w, status, resp)
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched
// when allowEmpty is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
