package api

import (
	"net/http"

	service "github.com/okian/tribureau/internal/app"
	"github.com/okian/tribureau/internal/domain/model"
)

// UsersHandler serves the user directory.
type UsersHandler struct {
	deps UserDependencies
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(deps UserDependencies) *UsersHandler {
	return &UsersHandler{deps: deps}
}

// createUserRequest is the body of POST /api/users. The correlation key is
// accepted here and never returned.
type createUserRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	CorrelationKey string `json:"correlation_key"`
}

// updateUserRequest is the body of PUT /api/users/{userId}.
type updateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type userListResponse struct {
	Users []model.User `json:"users"`
	Count int          `json:"count"`
}

// HandleCreate handles POST /api/users.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_user"
	var req createUserRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	u, err := h.deps.CreateUser(r.Context(), model.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		CorrelationKey: req.CorrelationKey,
	})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// HandleList handles GET /api/users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.deps.ListUsers(r.Context())
	if err != nil {
		writeError(w, Wrap("api.list_users", err))
		return
	}
	writeJSON(w, http.StatusOK, userListResponse{Users: users, Count: len(users)})
}

// HandleGet handles GET /api/users/{userId}.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.deps.GetUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, Wrap("api.get_user", err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleUpdate handles PUT /api/users/{userId}.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_user"
	var req updateUserRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	u, err := h.deps.UpdateUser(r.Context(), r.PathValue("userId"), service.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}
