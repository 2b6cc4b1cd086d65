// Package handler exposes the user registration and profile endpoints over HTTP.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"user-management-backend/internal/audit"
	"user-management-backend/internal/platform/rbac"
	"user-management-backend/internal/server/httpx"
	"user-management-backend/internal/server/middleware"
	"user-management-backend/internal/user/domain"
	"user-management-backend/internal/user/service"
)

// Handler serves the user routes.
type Handler struct {
	users   *service.UserService
	checker rbac.Checker
	audit   audit.AuditLogger
}

// New returns a Handler. audit may be nil.
func New(users *service.UserService, checker rbac.Checker, auditLogger audit.AuditLogger) *Handler {
	return &Handler{users: users, checker: checker, audit: auditLogger}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
}

type updateRequest struct {
	Name     *string `json:"name"`
	Lastname *string `json:"lastname"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Lastname  string    `json:"lastname"`
	RoleID    *string   `json:"role_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type pageResponse struct {
	Items      []userResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Lastname:  u.Lastname,
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Register handles POST /users. Open to unauthenticated callers.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Lastname: req.Lastname,
	})
	if err != nil {
		h.respondServiceError(w, err, "register")
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), user.ID, "register", "user:"+user.ID, "")
	}
	httpx.RespondJSON(w, http.StatusCreated, toUserResponse(user))
}

// List handles GET /users with page/per_page query params. Requires the
// view_users permission.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequirePermission(r.Context(), h.checker, "view_users"); err != nil {
		respondGuardError(w, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.users.List(r.Context(), page, perPage)
	if err != nil {
		log.Printf("user: list: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]userResponse, 0, len(result.Items))
	for _, u := range result.Items {
		items = append(items, toUserResponse(u))
	}
	httpx.RespondJSON(w, http.StatusOK, pageResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PerPage:    result.PerPage,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /users/{id}. Callers may read themselves; reading anyone
// else requires the view_users permission.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if id != callerID {
		if _, err := rbac.RequirePermission(r.Context(), h.checker, "view_users"); err != nil {
			respondGuardError(w, err)
			return
		}
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "get")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err, "me")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateMe handles PUT /me. Only the allow-listed fields can change; a JSON
// body naming any other field is rejected.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	user, err := h.users.Update(r.Context(), userID, service.UserPatch{
		Name:     req.Name,
		Lastname: req.Lastname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondServiceError(w, err, "update")
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), userID, "update_profile", "user:"+userID, "")
	}
	httpx.RespondJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteMe handles DELETE /me. The FK cascade takes the user's sessions with
// the row.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		h.respondServiceError(w, err, "delete")
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), userID, "delete_account", "user:"+userID, "")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		httpx.RespondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.RespondError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrValidation):
		httpx.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("user: %s: %v", op, err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondGuardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
	case errors.Is(err, rbac.ErrForbidden):
		httpx.RespondError(w, http.StatusForbidden, "permission denied")
	default:
		log.Printf("rbac: guard: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
