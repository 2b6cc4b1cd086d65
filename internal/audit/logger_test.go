package audit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"user-management-backend/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	mu        sync.Mutex
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) all() []*domain.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditLog(nil), m.entries...)
}

// blockingAuditRepo parks Create until released, to prove LogEvent returns
// without waiting for the write.
type blockingAuditRepo struct {
	release chan struct{}
	created atomic.Bool
}

func (b *blockingAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (b *blockingAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	<-b.release
	b.created.Store(true)
	return nil
}

func (b *blockingAuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	ipExtractor := func(ctx context.Context) string {
		return "192.168.1.1"
	}
	logger := NewLogger(repo, ipExtractor)

	logger.LogEvent(context.Background(), "user-1", "login", "session:s1", `{"session_id":"s1"}`)
	logger.Flush()

	entries := repo.all()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", entry.UserID, "user-1")
	}
	if entry.Action != "login" {
		t.Errorf("action = %q, want %q", entry.Action, "login")
	}
	if entry.Resource != "session:s1" {
		t.Errorf("resource = %q, want %q", entry.Resource, "session:s1")
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_NilIPExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)

	logger.LogEvent(context.Background(), "user-1", "action", "resource", "")
	logger.Flush()

	entries := repo.all()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want %q", entries[0].IP, "unknown")
	}
}

func TestLogger_LogEvent_CancelledRequestContext(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)

	// Simulates a client that disconnects right after the handler logs: the
	// write runs on a detached context and must still land.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	logger.LogEvent(ctx, "user-1", "login", "session:s1", "")
	logger.Flush()

	if got := len(repo.all()); got != 1 {
		t.Fatalf("expected 1 entry despite cancelled caller context, got %d", got)
	}
}

func TestLogger_LogEvent_DoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	repo := &blockingAuditRepo{release: release}
	logger := NewLogger(repo, nil)

	// Must return while the repository write is still parked.
	logger.LogEvent(context.Background(), "user-1", "login", "session:s1", "")

	close(release)
	logger.Flush()
	if !repo.created.Load() {
		t.Error("write should have completed after release")
	}
}

func TestLogger_LogEvent_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("database error")}
	logger := NewLogger(repo, nil)

	// Best-effort: must not panic or surface the error.
	logger.LogEvent(context.Background(), "user-1", "action", "resource", "")
	logger.Flush()
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil)

	// No-op when repo is nil.
	logger.LogEvent(context.Background(), "user-1", "action", "resource", "")
	logger.Flush()
}
