package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	authhandler "user-management-backend/internal/auth/handler"
	authservice "user-management-backend/internal/auth/service"
	"user-management-backend/internal/metrics"
	roledomain "user-management-backend/internal/role/domain"
	rolehandler "user-management-backend/internal/role/handler"
	roleservice "user-management-backend/internal/role/service"
	"user-management-backend/internal/security"
	"user-management-backend/internal/server/middleware"
	sessiondomain "user-management-backend/internal/session/domain"
	userdomain "user-management-backend/internal/user/domain"
	userhandler "user-management-backend/internal/user/handler"
	userservice "user-management-backend/internal/user/service"
)

// memUserRepo backs the user, auth, and role services in router tests.
type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*userdomain.User
	byEmail map[string]*userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[string]*userdomain.User),
		byEmail: make(map[string]*userdomain.User),
	}
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u2 := *u
		return &u2, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		u2 := *u
		return &u2, nil
	}
	return nil, nil
}

func (r *memUserRepo) List(ctx context.Context, offset, limit int) ([]*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*userdomain.User, 0, len(r.byID))
	for _, u := range r.byID {
		u2 := *u
		all = append(all, &u2)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

func (r *memUserRepo) CountByRole(ctx context.Context, roleID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.byID {
		if u.RoleID != nil && *u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u2 := *u
	r.byID[u.ID] = &u2
	r.byEmail[u.Email] = &u2
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[u.ID]
	if !ok {
		return nil
	}
	if old.Email != u.Email {
		delete(r.byEmail, old.Email)
	}
	u2 := *u
	r.byID[u.ID] = &u2
	r.byEmail[u.Email] = &u2
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, id)
	}
	return nil
}

func (r *memUserRepo) SetRole(ctx context.Context, userID string, roleID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[userID]; ok {
		u.RoleID = roleID
	}
	return nil
}

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*sessiondomain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{m: make(map[string]*sessiondomain.Session)}
}

func (r *memSessionRepo) Create(ctx context.Context, s *sessiondomain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

func (r *memSessionRepo) GetByTokenHash(ctx context.Context, hash string) (*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.RefreshTokenHash == hash {
			s2 := *s
			return &s2, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) ListByUser(ctx context.Context, userID string) ([]*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*sessiondomain.Session
	for _, s := range r.m {
		if s.UserID == userID && !s.IsRevoked {
			s2 := *s
			out = append(out, &s2)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSessionRepo) ClaimForRefresh(ctx context.Context, hash string, at time.Time) (*sessiondomain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.RefreshTokenHash == hash && !s.IsRevoked && s.ExpiresAt.After(at) {
			t := at
			s.LastUsedAt = &t
			s2 := *s
			return &s2, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) Rotate(ctx context.Context, id, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s.RefreshTokenHash = newHash
	}
	return nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok || s.UserID != userID || s.IsRevoked {
		return false, nil
	}
	s.IsRevoked = true
	return true, nil
}

func (r *memSessionRepo) RevokeAllByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.m {
		if s.UserID == userID && !s.IsRevoked {
			s.IsRevoked = true
			n++
		}
	}
	return n, nil
}

type memRoleRepo struct {
	mu    sync.Mutex
	roles map[string]*roledomain.Role
	perms map[string]*roledomain.Permission
	grant map[string][]string
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{
		roles: make(map[string]*roledomain.Role),
		perms: make(map[string]*roledomain.Permission),
		grant: make(map[string][]string),
	}
}

func (r *memRoleRepo) GetByID(ctx context.Context, id string) (*roledomain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[id]; ok {
		r2 := *role
		return &r2, nil
	}
	return nil, nil
}

func (r *memRoleRepo) GetByName(ctx context.Context, name string) (*roledomain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			r2 := *role
			return &r2, nil
		}
	}
	return nil, nil
}

func (r *memRoleRepo) List(ctx context.Context) ([]*roledomain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*roledomain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		r2 := *role
		out = append(out, &r2)
	}
	return out, nil
}

func (r *memRoleRepo) Create(ctx context.Context, role *roledomain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r2 := *role
	r.roles[role.ID] = &r2
	return nil
}

func (r *memRoleRepo) Update(ctx context.Context, role *roledomain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r2 := *role
	r.roles[role.ID] = &r2
	return nil
}

func (r *memRoleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roles, id)
	delete(r.grant, id)
	return nil
}

func (r *memRoleRepo) ListPermissions(ctx context.Context) ([]*roledomain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*roledomain.Permission, 0, len(r.perms))
	for _, p := range r.perms {
		p2 := *p
		out = append(out, &p2)
	}
	return out, nil
}

func (r *memRoleRepo) GetPermissionsByIDs(ctx context.Context, ids []string) ([]*roledomain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*roledomain.Permission
	for _, id := range ids {
		if p, ok := r.perms[id]; ok {
			p2 := *p
			out = append(out, &p2)
		}
	}
	return out, nil
}

func (r *memRoleRepo) PermissionsOf(ctx context.Context, roleID string) ([]*roledomain.Permission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*roledomain.Permission
	for _, id := range r.grant[roleID] {
		if p, ok := r.perms[id]; ok {
			p2 := *p
			out = append(out, &p2)
		}
	}
	return out, nil
}

func (r *memRoleRepo) SetPermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grant[roleID] = append([]string(nil), permissionIDs...)
	return nil
}

type testEnv struct {
	router   http.Handler
	users    *memUserRepo
	sessions *memSessionRepo
	roles    *memRoleRepo
	roleSvc  *roleservice.RoleService
}

func newTestEnv(t *testing.T, limiter *middleware.RateLimiter) *testEnv {
	t.Helper()
	users := newMemUserRepo()
	sessions := newMemSessionRepo()
	roles := newMemRoleRepo()

	hasher := security.NewHasher(4)
	tokens := security.NewTestTokenProvider()

	authSvc := authservice.NewAuthService(users, sessions, hasher, tokens, 24*time.Hour, false)
	userSvc := userservice.NewUserService(users, hasher)
	roleSvc := roleservice.NewRoleService(roles, users)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	router := NewRouter(Deps{
		Auth:           authhandler.New(authSvc, nil, nil, m),
		Users:          userhandler.New(userSvc, roleSvc, nil),
		Roles:          rolehandler.New(roleSvc, roleSvc, nil),
		Tokens:         tokens,
		RateLimiter:    limiter,
		Metrics:        m,
		Registry:       registry,
		AllowedOrigins: []string{"*"},
	})
	return &testEnv{router: router, users: users, sessions: sessions, roles: roles, roleSvc: roleSvc}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, email string) {
	t.Helper()
	body := `{"email":"` + email + `","password":"Sup3rSecret!","name":"Alice","lastname":"Smith"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := e.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func (e *testEnv) login(t *testing.T, email string) map[string]string {
	t.Helper()
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", "Sup3rSecret!")
	form.Set("device_info", "test-suite")
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := e.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("login: decode: %v", err)
	}
	return out
}

func authed(req *http.Request, accessToken string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return req
}

func TestRouter_LoginRefreshRevokeFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice@example.com")
	tokens := env.login(t, "alice@example.com")

	if tokens["token_type"] != "bearer" {
		t.Errorf("token_type = %q, want %q", tokens["token_type"], "bearer")
	}
	if tokens["session_id"] == "" {
		t.Fatal("session_id missing from login response")
	}

	// Authenticated profile read.
	rec := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/me", nil), tokens["access_token"]))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /me: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var me map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("GET /me: decode: %v", err)
	}
	if me["email"] != "alice@example.com" {
		t.Errorf("email = %v, want alice@example.com", me["email"])
	}

	// The session listing marks the current session.
	rec = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/me/sessions", nil), tokens["access_token"]))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /me/sessions: status = %d", rec.Code)
	}
	var sessions []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatalf("GET /me/sessions: decode: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	if sessions[0]["is_current"] != true {
		t.Error("session should be marked is_current")
	}
	if sessions[0]["device_info"] != "test-suite" {
		t.Errorf("device_info = %v, want test-suite", sessions[0]["device_info"])
	}

	// Refresh issues a fresh access token against the same session.
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"`+tokens["refresh_token"]+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /auth/refresh: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var refreshed map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("refresh: decode: %v", err)
	}
	if refreshed["access_token"] == "" {
		t.Error("refresh should return an access token")
	}
	if refreshed["session_id"] != tokens["session_id"] {
		t.Errorf("refresh session_id = %q, want %q", refreshed["session_id"], tokens["session_id"])
	}
	if _, ok := refreshed["refresh_token"]; ok {
		t.Error("rotation off: refresh_token should be omitted")
	}

	// Revoke everything, then the refresh secret is dead.
	rec = env.do(t, authed(httptest.NewRequest(http.MethodDelete, "/me/sessions", nil), tokens["access_token"]))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE /me/sessions: status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("DELETE /me/sessions: body = %q, want empty", rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"`+tokens["refresh_token"]+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after revoke-all: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRouter_RevokeSingleSession(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice@example.com")
	first := env.login(t, "alice@example.com")
	second := env.login(t, "alice@example.com")

	// Revoke the second session from the first.
	rec := env.do(t, authed(httptest.NewRequest(http.MethodDelete, "/me/sessions/"+second["session_id"], nil), first["access_token"]))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE /me/sessions/{id}: status = %d, body %s", rec.Code, rec.Body.String())
	}
	// Second delete of the same session: 404.
	rec = env.do(t, authed(httptest.NewRequest(http.MethodDelete, "/me/sessions/"+second["session_id"], nil), first["access_token"]))
	if rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_ForeignSessionIs404(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice@example.com")
	env.register(t, "bob@example.com")
	alice := env.login(t, "alice@example.com")
	bob := env.login(t, "bob@example.com")

	rec := env.do(t, authed(httptest.NewRequest(http.MethodDelete, "/me/sessions/"+alice["session_id"], nil), bob["access_token"]))
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign session delete: status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_BadCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice@example.com")

	form := url.Values{}
	form.Set("username", "alice@example.com")
	form.Set("password", "wrong-password")
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := env.do(t, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["detail"] == "" {
		t.Error("error body should carry detail")
	}
}

func TestRouter_UnauthenticatedIs401(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/me", "/me/sessions", "/users", "/roles"} {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s: status = %d, want %d", path, rec.Code, http.StatusUnauthorized)
		}
		if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("GET %s: WWW-Authenticate = %q, want %q", path, got, "Bearer")
		}
	}
}

func TestRouter_ForbiddenWithoutPermission(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice@example.com")
	tokens := env.login(t, "alice@example.com")

	for _, path := range []string{"/users", "/roles"} {
		rec := env.do(t, authed(httptest.NewRequest(http.MethodGet, path, nil), tokens["access_token"]))
		if rec.Code != http.StatusForbidden {
			t.Errorf("GET %s: status = %d, want %d", path, rec.Code, http.StatusForbidden)
		}
	}
}

func TestRouter_AdminRoleFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "admin@example.com")
	ctx := context.Background()

	// Bootstrap: permission catalog plus an admin role assigned directly.
	env.roles.perms["perm-manage-roles"] = &roledomain.Permission{ID: "perm-manage-roles", Name: "manage_roles"}
	env.roles.perms["perm-view-users"] = &roledomain.Permission{ID: "perm-view-users", Name: "view_users"}
	adminRole, err := env.roleSvc.Create(ctx, "admin", "", []string{"perm-manage-roles", "perm-view-users"})
	if err != nil {
		t.Fatalf("create admin role: %v", err)
	}
	admin, err := env.users.GetByEmail(ctx, "admin@example.com")
	if err != nil || admin == nil {
		t.Fatalf("admin user missing: %v", err)
	}
	if err := env.users.SetRole(ctx, admin.ID, &adminRole.Role.ID); err != nil {
		t.Fatalf("assign admin role: %v", err)
	}
	tokens := env.login(t, "admin@example.com")

	// Role listing now allowed.
	rec := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/roles", nil), tokens["access_token"]))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /roles: status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Creating a duplicate role conflicts.
	req := httptest.NewRequest(http.MethodPost, "/roles", strings.NewReader(`{"name":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(t, authed(req, tokens["access_token"]))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate role: status = %d, want %d", rec.Code, http.StatusConflict)
	}

	// Deleting the role still held by the admin conflicts.
	rec = env.do(t, authed(httptest.NewRequest(http.MethodDelete, "/roles/"+adminRole.Role.ID, nil), tokens["access_token"]))
	if rec.Code != http.StatusConflict {
		t.Errorf("delete held role: status = %d, want %d", rec.Code, http.StatusConflict)
	}

	// Paginated user listing with view_users.
	rec = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/users?page=1&per_page=10", nil), tokens["access_token"]))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /users: status = %d", rec.Code)
	}
	var page map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("users page: decode: %v", err)
	}
	if page["total"] != float64(1) {
		t.Errorf("total = %v, want 1", page["total"])
	}
}

func TestRouter_DuplicateEmailIs409(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "alice@example.com")

	body := `{"email":"alice@example.com","password":"Sup3rSecret!","name":"Alice","lastname":"Smith"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(t, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestRouter_MalformedRefreshBodyIs422(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(t, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	env := newTestEnv(t, middleware.NewRateLimiter(2, time.Minute))
	env.register(t, "alice@example.com")

	form := url.Values{}
	form.Set("username", "alice@example.com")
	form.Set("password", "wrong-password")

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "10.0.0.9:4000"
		last = env.do(t, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: status = %d, want %d", last.Code, http.StatusTooManyRequests)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("429 should carry Retry-After")
	}
}

func TestRouter_Healthz(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz: status = %d, want %d", rec.Code, http.StatusOK)
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz: status = %d, want %d", rec.Code, http.StatusOK)
	}
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /metrics: status = %d, want %d", rec.Code, http.StatusOK)
	}
}
