package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"user-management-backend/internal/security"
	"user-management-backend/internal/user/domain"
)

// Sentinel errors for the user service; the handler maps them to HTTP statuses.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	// ErrValidation wraps input validation failures; inspect with errors.Is.
	ErrValidation = errors.New("invalid input")
)

const maxPerPage = 100

// UserPatch is the allow-listed set of updatable fields. A nil field is left
// unchanged; anything not listed here cannot be patched.
type UserPatch struct {
	Name     *string
	Lastname *string
	Email    *string
	Password *string
}

// Page is a paginated listing of users.
type Page struct {
	Items      []*domain.User
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// Repo is the minimal user repository needed by the user service.
type Repo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

// UserService implements registration, profile reads, allow-listed updates,
// and deletion.
type UserService struct {
	repo   Repo
	hasher *security.Hasher

	// dummyHash keeps the duplicate-email path at one bcrypt like the
	// success path.
	dummyHash string
}

// NewUserService returns a UserService with the given dependencies.
func NewUserService(repo Repo, hasher *security.Hasher) *UserService {
	dummy, err := hasher.Hash([]byte("dummy-password-for-timing-equalization"))
	if err != nil {
		dummy = ""
	}
	return &UserService{repo: repo, hasher: hasher, dummyHash: dummy}
}

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Lastname string
}

// Register creates a user. Duplicate emails return ErrEmailTaken after a
// dummy hash so registration cost does not reveal whether an email exists;
// a concurrent insert racing past the lookup is caught on the unique index.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		_, _ = s.hasher.Hash([]byte(in.Password))
		return nil, ErrEmailTaken
	}
	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		Name:         strings.TrimSpace(in.Name),
		Lastname:     strings.TrimSpace(in.Lastname),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Get returns the user for id or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List returns a page of users. page starts at 1; perPage is clamped to 100.
func (s *UserService) List(ctx context.Context, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, err
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Page{Items: items, Total: total, Page: page, PerPage: perPage, TotalPages: totalPages}, nil
}

// Update applies the allow-listed patch to the user. Email changes re-run
// syntax and uniqueness checks; password changes re-run the policy.
func (s *UserService) Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if patch.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			existing, err := s.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrEmailTaken
			}
			user.Email = email
		}
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hasher.Hash([]byte(*patch.Password))
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Lastname != nil {
		user.Lastname = strings.TrimSpace(*patch.Lastname)
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the user. Their sessions go with the row via the FK cascade.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.repo.Delete(ctx, id)
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("%w: password must contain at least one uppercase letter", ErrValidation)
	}
	if !hasLower {
		return fmt.Errorf("%w: password must contain at least one lowercase letter", ErrValidation)
	}
	if !hasNumber {
		return fmt.Errorf("%w: password must contain at least one number", ErrValidation)
	}
	if !hasSymbol {
		return fmt.Errorf("%w: password must contain at least one symbol", ErrValidation)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
