// Package handler exposes the auth and session endpoints over HTTP.
package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"user-management-backend/internal/audit"
	"user-management-backend/internal/auth/service"
	"user-management-backend/internal/metrics"
	"user-management-backend/internal/server/httpx"
	"user-management-backend/internal/server/middleware"
	"user-management-backend/internal/telemetry"
	telemetrydomain "user-management-backend/internal/telemetry/domain"
)

// Handler serves the token, refresh, and session routes.
type Handler struct {
	auth    *service.AuthService
	audit   audit.AuditLogger
	emitter telemetry.EventEmitter
	metrics *metrics.Metrics
}

// New returns a Handler. audit and emitter may be nil; those paths become no-ops.
func New(auth *service.AuthService, auditLogger audit.AuditLogger, emitter telemetry.EventEmitter, m *metrics.Metrics) *Handler {
	return &Handler{auth: auth, audit: auditLogger, emitter: emitter, metrics: m}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	SessionID    string `json:"session_id"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	ID         string     `json:"id"`
	DeviceInfo string     `json:"device_info,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	IsCurrent  bool       `json:"is_current"`
}

// Login handles POST /auth/token. The body is form-encoded with username and
// password fields plus an optional device_info.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.RespondError(w, http.StatusUnprocessableEntity, "malformed form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	deviceInfo := r.PostFormValue("device_info")
	ip := middleware.ClientIP(r)

	pair, err := h.auth.Login(r.Context(), username, password, deviceInfo, ip)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.LoginFailed.WithLabelValues("invalid_credentials").Inc()
			if h.audit != nil {
				h.audit.LogEvent(r.Context(), "", "login_failed", "user:"+username, "")
			}
			httpx.RespondError(w, http.StatusUnauthorized, "incorrect email or password")
			return
		}
		log.Printf("auth: login: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.LoginSuccess.WithLabelValues("password").Inc()
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), pair.UserID, "login", "session:"+pair.SessionID, "")
	}
	telemetry.EmitAsync(h.emitter, r.Context(), telemetrydomain.NewEvent("login", pair.UserID, pair.SessionID, ip))

	httpx.RespondJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		SessionID:    pair.SessionID,
	})
}

// Refresh handles POST /auth/refresh. The body is JSON {"refresh_token": "..."}.
// A new refresh token is present in the response only when rotation is enabled.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, http.StatusUnprocessableEntity, "malformed request body")
		return
	}
	ip := middleware.ClientIP(r)

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenReuse):
			h.metrics.TokenRefresh.WithLabelValues("reuse").Inc()
			if h.audit != nil {
				h.audit.LogEvent(r.Context(), "", "refresh_reuse", "session", "")
			}
			httpx.RespondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		case errors.Is(err, service.ErrInvalidRefreshToken):
			h.metrics.TokenRefresh.WithLabelValues("invalid").Inc()
			httpx.RespondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		default:
			log.Printf("auth: refresh: %v", err)
			httpx.RespondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.metrics.TokenRefresh.WithLabelValues("success").Inc()
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), pair.UserID, "token_refresh", "session:"+pair.SessionID, "")
	}
	telemetry.EmitAsync(h.emitter, r.Context(), telemetrydomain.NewEvent("token_refresh", pair.UserID, pair.SessionID, ip))

	httpx.RespondJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		SessionID:    pair.SessionID,
	})
}

// Sessions handles GET /me/sessions: the caller's valid sessions, newest first,
// with the one backing the presented access token marked is_current.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	currentSessionID, _ := middleware.GetSessionID(r.Context())

	views, err := h.auth.Sessions(r.Context(), userID, currentSessionID)
	if err != nil {
		log.Printf("auth: list sessions: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]sessionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, sessionResponse{
			ID:         v.Session.ID,
			DeviceInfo: v.Session.DeviceInfo,
			IPAddress:  v.Session.IPAddress,
			CreatedAt:  v.Session.CreatedAt,
			LastUsedAt: v.Session.LastUsedAt,
			ExpiresAt:  v.Session.ExpiresAt,
			IsCurrent:  v.IsCurrent,
		})
	}
	httpx.RespondJSON(w, http.StatusOK, out)
}

// RevokeSession handles DELETE /me/sessions/{id}. Unknown, foreign, and
// already-revoked sessions all answer 404.
func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	sessionID := chi.URLParam(r, "id")

	if err := h.auth.Logout(r.Context(), userID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		log.Printf("auth: revoke session: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.SessionsRevoked.WithLabelValues("one").Inc()
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), userID, "logout", "session:"+sessionID, "")
	}
	telemetry.EmitAsync(h.emitter, r.Context(), telemetrydomain.NewEvent("logout", userID, sessionID, middleware.ClientIP(r)))

	w.WriteHeader(http.StatusNoContent)
}

// RevokeAllSessions handles DELETE /me/sessions. Always 204; revoking zero
// sessions is not an error, and the count is observable through the
// sessions-revoked metric.
func (h *Handler) RevokeAllSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	n, err := h.auth.LogoutAll(r.Context(), userID)
	if err != nil {
		log.Printf("auth: revoke all sessions: %v", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.SessionsRevoked.WithLabelValues("all").Add(float64(n))
	if h.audit != nil {
		h.audit.LogEvent(r.Context(), userID, "logout_all", "session", "")
	}
	telemetry.EmitAsync(h.emitter, r.Context(), telemetrydomain.NewEvent("logout_all", userID, "", middleware.ClientIP(r)))

	w.WriteHeader(http.StatusNoContent)
}
