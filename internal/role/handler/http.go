// Package handler exposes the role administration endpoints over HTTP. Every
// route requires the manage_roles permission.
package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"user-management-backend/internal/audit"
	"user-management-backend/internal/platform/rbac"
	"user-management-backend/internal/role/domain"
	"user-management-backend/internal/role/service"
	"user-management-backend/internal/server/httpx"
)

// Handler serves the role routes.
type Handler struct {
	roles   *service.RoleService
	checker rbac.Checker
	audit   audit.AuditLogger
}

// New returns a Handler. audit may be nil.
func New(roles *service.RoleService, checker rbac.Checker, auditLogger audit.AuditLogger) *Handler {
	return &Handler{roles: roles, checker: checker, audit: auditLogger}
}

type createRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permission_ids"`
}

type updateRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	PermissionIDs *[]string `json:"permission_ids"`
}

type assignRequest struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}

type permissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type roleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	Permissions []permissionResponse `json:"permissions"`
}

func toPermissionResponses(perms []*domain.Permission) []permissionResponse {
	out := make([]permissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionResponse{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return out
}

func toRoleResponse(rp *service.RoleWithPermissions) roleResponse {
	return roleResponse{
		ID:          rp.Role.ID,
		Name:        rp.Role.Name,
		Description: rp.Role.Description,
		CreatedAt:   rp.Role.CreatedAt,
		Permissions: toPermissionResponses(rp.Permissions),
	}
}

// List handles GET /roles.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequirePermission(r.Context(), h.checker, "manage_roles"); err != nil {
		respondGuardError(w, err)
		return
	}
	roles, err := h.roles.List(r.Context())
	if err != nil {
		log.Printf("role: list: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]roleResponse, 0, len(roles))
	for _, rp := range roles {
		out = append(out, toRoleResponse(rp))
	}
	httpx.RespondJSON(w, http.StatusOK, out)
}

// ListPermissions handles GET /roles/permissions: the permission catalog.
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequirePermission(r.Context(), h.checker, "manage_roles"); err != nil {
		respondGuardError(w, err)
		return
	}
	perms, err := h.roles.ListPermissions(r.Context())
	if err != nil {
		log.Printf("role: list permissions: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toPermissionResponses(perms))
}

// Get handles GET /roles/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequirePermission(r.Context(), h.checker, "manage_roles"); err != nil {
		respondGuardError(w, err)
		return
	}
	role, err := h.roles.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, err, "get")
		return
	}
	httpx.RespondJSON(w, http.StatusOK, toRoleResponse(role))
}

// Create handles POST /roles. Duplicate names answer 409.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, err := rbac.RequirePermission(r.Context(), h.checker, "manage_roles")
	if err != nil {
		respondGuardError(w, err)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	role, err := h.roles.Create(r.Context(), req.Name, req.Description, req.PermissionIDs)
	if err != nil {
		h.respondServiceError(w, err, "create")
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), callerID, "create_role", "role:"+role.Role.ID, "")
	}
	httpx.RespondJSON(w, http.StatusCreated, toRoleResponse(role))
}

// Update handles PUT /roles/{id}. A permission_ids field replaces the whole
// permission set.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, err := rbac.RequirePermission(r.Context(), h.checker, "manage_roles")
	if err != nil {
		respondGuardError(w, err)
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	id := chi.URLParam(r, "id")
	role, err := h.roles.Update(r.Context(), id, service.RolePatch{
		Name:          req.Name,
		Description:   req.Description,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		h.respondServiceError(w, err, "update")
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), callerID, "update_role", "role:"+id, "")
	}
	httpx.RespondJSON(w, http.StatusOK, toRoleResponse(role))
}

// Delete handles DELETE /roles/{id}. A role still held by any user answers
// 409 until every holder is reassigned.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, err := rbac.RequirePermission(r.Context(), h.checker, "manage_roles")
	if err != nil {
		respondGuardError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.roles.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "delete")
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), callerID, "delete_role", "role:"+id, "")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Assign handles POST /roles/assign with JSON {"user_id", "role_id"}.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	callerID, err := rbac.RequirePermission(r.Context(), h.checker, "manage_roles")
	if err != nil {
		respondGuardError(w, err)
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	if err := h.roles.Assign(r.Context(), req.UserID, req.RoleID); err != nil {
		h.respondServiceError(w, err, "assign")
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), callerID, "assign_role", "user:"+req.UserID, "")
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrRoleNotFound):
		httpx.RespondError(w, http.StatusNotFound, "role not found")
	case errors.Is(err, service.ErrRoleNameTaken):
		httpx.RespondError(w, http.StatusConflict, "role name already exists")
	case errors.Is(err, service.ErrRoleInUse):
		httpx.RespondError(w, http.StatusConflict, "role is assigned to users")
	case errors.Is(err, service.ErrPermissionNotFound):
		httpx.RespondError(w, http.StatusUnprocessableEntity, "unknown permission id")
	case errors.Is(err, service.ErrValidation):
		httpx.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("role: %s: %v", op, err)
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
