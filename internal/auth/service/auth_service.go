package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"user-management-backend/internal/security"
	sessiondomain "user-management-backend/internal/session/domain"
	userdomain "user-management-backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse   = errors.New("refresh token reuse detected; all sessions revoked")
	ErrSessionNotFound     = errors.New("session not found")
)

// TokenPair holds the outcome of Login or Refresh. RefreshToken is empty on
// Refresh unless rotation is enabled.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	SessionID    string
	UserID       string
}

// SessionView is a session annotated with whether it backs the caller's
// current access token.
type SessionView struct {
	Session   *sessiondomain.Session
	IsCurrent bool
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	GetByTokenHash(ctx context.Context, hash string) (*sessiondomain.Session, error)
	ListByUser(ctx context.Context, userID string) ([]*sessiondomain.Session, error)
	ClaimForRefresh(ctx context.Context, hash string, at time.Time) (*sessiondomain.Session, error)
	Rotate(ctx context.Context, id, newHash string) error
	Revoke(ctx context.Context, id, userID string) (bool, error)
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
}

// AuthService implements login, refresh, logout, and session listing over
// persisted revocable sessions.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	refreshTTL  time.Duration
	rotation    bool

	// dummyHash is compared against on the unknown-email path so login cost
	// is one bcrypt either way.
	dummyHash string
}

// NewAuthService returns an AuthService with the given dependencies.
// rotation enables refresh-token rotation with replay containment.
func NewAuthService(
	userRepo UserRepo,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	refreshTTL time.Duration,
	rotation bool,
) *AuthService {
	dummy, err := hasher.Hash([]byte("dummy-password-for-timing-equalization"))
	if err != nil {
		dummy = ""
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		refreshTTL:  refreshTTL,
		rotation:    rotation,
		dummyHash:   dummy,
	}
}

// Login authenticates with email/password, creates a session, and returns the
// token pair. Unknown email and wrong password return the same error, and the
// unknown-email path still performs a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password, deviceInfo, ipAddress string) (*TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.hasher.Compare(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	refreshSecret, err := security.NewRefreshSecret()
	if err != nil {
		return nil, err
	}
	sessionID := uuid.New().String()
	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: security.HashRefreshSecret(refreshSecret),
		DeviceInfo:       strings.TrimSpace(deviceInfo),
		IPAddress:        ipAddress,
		ExpiresAt:        now.Add(s.refreshTTL),
		CreatedAt:        now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, user.Name, user.Lastname, sessionID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshSecret,
		TokenType:    "bearer",
		ExpiresAt:    accessExp,
		SessionID:    sessionID,
		UserID:       user.ID,
	}, nil
}

// Refresh exchanges a refresh secret for a new access token. Unknown, revoked,
// and expired secrets all return ErrInvalidRefreshToken; with rotation on, a
// secret matching a revoked session revokes every session of that user and
// returns ErrRefreshTokenReuse.
func (s *AuthService) Refresh(ctx context.Context, refreshSecret string) (*TokenPair, error) {
	if refreshSecret == "" {
		return nil, ErrInvalidRefreshToken
	}
	hash := security.HashRefreshSecret(refreshSecret)
	now := time.Now().UTC()
	sess, err := s.sessionRepo.ClaimForRefresh(ctx, hash, now)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		if s.rotation {
			// A revoked session's old secret showing up again is a replay.
			stale, err := s.sessionRepo.GetByTokenHash(ctx, hash)
			if err != nil {
				return nil, err
			}
			if stale != nil && stale.IsRevoked {
				_, _ = s.sessionRepo.RevokeAllByUser(ctx, stale.UserID)
				return nil, ErrRefreshTokenReuse
			}
		}
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}

	newSecret := ""
	if s.rotation {
		newSecret, err = security.NewRefreshSecret()
		if err != nil {
			return nil, err
		}
		if err := s.sessionRepo.Rotate(ctx, sess.ID, security.HashRefreshSecret(newSecret)); err != nil {
			return nil, err
		}
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Email, user.Name, user.Lastname, sess.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newSecret,
		TokenType:    "bearer",
		ExpiresAt:    accessExp,
		SessionID:    sess.ID,
		UserID:       user.ID,
	}, nil
}

// Logout revokes a single session owned by userID. Returns ErrSessionNotFound
// when the session is unknown, foreign, or already revoked; the caller cannot
// tell which.
func (s *AuthService) Logout(ctx context.Context, userID, sessionID string) error {
	ok, err := s.sessionRepo.Revoke(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// LogoutAll revokes every active session of the user and returns the number
// newly revoked. Zero is success, not an error.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	return s.sessionRepo.RevokeAllByUser(ctx, userID)
}

// Sessions lists the user's valid sessions, newest first, marking the one
// backing currentSessionID.
func (s *AuthService) Sessions(ctx context.Context, userID, currentSessionID string) ([]*SessionView, error) {
	list, err := s.sessionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]*SessionView, 0, len(list))
	for _, sess := range list {
		if !sess.IsValid(now) {
			continue
		}
		out = append(out, &SessionView{Session: sess, IsCurrent: sess.ID == currentSessionID})
	}
	return out, nil
}
