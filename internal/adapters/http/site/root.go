// Package site serves the service index at the root path.
package site

import (
	"context"
	"encoding/json"
	"net/http"
)

// Link describes one entry of the index.
type Link struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Index is the body of GET /.
type Index struct {
	Name  string `json:"name"`
	Docs  string `json:"docs"`
	Links []Link `json:"links"`
}

// DefaultIndex lists the public routes.
func DefaultIndex() Index {
	const reports = "/api/credit-reports/users/{userId}"
	return Index{
		Name: "tribureau",
		Docs: "/api-docs",
		Links: []Link{
			{http.MethodPost, "/api/users", "create a user"},
			{http.MethodGet, "/api/users", "list users"},
			{http.MethodGet, "/api/users/{userId}", "get a user"},
			{http.MethodPut, "/api/users/{userId}", "update a user"},
			{http.MethodPost, reports + "/fetch", "fetch from every bureau"},
			{http.MethodPost, reports + "/aggregate", "combine the latest scores"},
			{http.MethodGet, reports + "/profile", "per-source status and latest aggregate"},
			{http.MethodGet, reports + "/sources/{source}", "latest report of one bureau"},
			{http.MethodPost, reports + "/refresh", "queue a background refresh"},
			{http.MethodGet, "/api/health", "liveness"},
			{http.MethodGet, "/healthz", "prometheus metrics"},
			{http.MethodGet, "/stats", "queue and store counters"},
			{http.MethodGet, "/openapi.yaml", "OpenAPI document"},
		},
	}
}

// Register attaches the index to the exact root path of mux. Other unknown
// paths stay 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", NewRootHandler(DefaultIndex()).HandleRoot)
}

// RootHandler serves the index.
type RootHandler struct {
	body []byte
}

// NewRootHandler creates a root handler for idx.
func NewRootHandler(idx Index) *RootHandler {
	body, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		panic(err)
	}
	return &RootHandler{body: body}
}

// HandleRoot handles GET /.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(h.body)
}
