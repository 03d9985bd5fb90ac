package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/ritesshguptaa/recipy-app-api/internal/auth"
	"github.com/ritesshguptaa/recipy-app-api/internal/metrics"
	"github.com/ritesshguptaa/recipy-app-api/internal/model"
	"github.com/ritesshguptaa/recipy-app-api/internal/repository"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 5
	maxEmailLength    = 255
	maxNameLength     = 255
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, upd repository.UserUpdate) (*model.User, []string, error)
}

// AuthCache caches resolved tokens by digest. After DeleteAuthContext a
// digest must not be cached again by SetAuthContext for at least one TTL.
type AuthCache interface {
	GetAuthContext(ctx context.Context, digest string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, digest string, auth *model.AuthContext) error
	DeleteAuthContext(ctx context.Context, digests ...string) error
}

// UserService handles account creation and profile updates.
type UserService struct {
	users   UserStore
	hasher  auth.Hasher
	cache   AuthCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserService creates a new UserService. cache may be nil.
func NewUserService(users UserStore, hasher auth.Hasher, cache AuthCache, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:   users,
		hasher:  hasher,
		cache:   cache,
		metrics: recorder,
		logger:  logger,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
}

// CreateUser registers a regular account.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	return s.create(ctx, input, false)
}

// CreateSuperuser registers a staff account with superuser rights.
func (s *UserService) CreateSuperuser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	return s.create(ctx, input, true)
}

func (s *UserService) create(ctx context.Context, input CreateUserInput, superuser bool) (*model.User, error) {
	email := NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)

	verr := &ValidationError{}
	if msg := validateEmail(email); msg != "" {
		verr.Add("email", msg)
	}
	if msg := validatePassword(input.Password); msg != "" {
		verr.Add("password", msg)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		verr.Add("name", msgMaxLength(maxNameLength))
	}

	if _, ok := verr.Fields["email"]; !ok {
		_, err := s.users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			verr.Add("email", msgEmailTaken)
		case !errors.Is(err, repository.ErrUserNotFound):
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, fieldError("email", msgEmailTaken)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()
	return user, nil
}

// GetUser returns the current state of an account.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUserInput defines a partial profile update. Nil fields are unchanged.
type UpdateUserInput struct {
	Name     *string
	Password *string
}

// UpdateProfile applies a partial update to the caller's own account.
// A password change revokes every token of the user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateUserInput) (*model.User, error) {
	var upd repository.UserUpdate

	verr := &ValidationError{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if utf8.RuneCountInString(name) > maxNameLength {
			verr.Add("name", msgMaxLength(maxNameLength))
		}
		upd.Name = &name
	}
	if input.Password != nil {
		if msg := validatePassword(*input.Password); msg != "" {
			verr.Add("password", msg)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}

	user, revoked, err := s.users.UpdateUser(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if len(revoked) > 0 && s.cache != nil {
		if err := s.cache.DeleteAuthContext(context.WithoutCancel(ctx), revoked...); err != nil {
			s.logger.Warn("failed to evict revoked tokens",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.metrics.IncProfileUpdated()
	return user, nil
}

// NormalizeEmail trims surrounding space and lower-cases the whole address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) string {
	if email == "" {
		return msgBlank
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return msgMaxLength(maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return msgInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return msgInvalidEmail
	}
	return ""
}

func validatePassword(password string) string {
	if password == "" {
		return msgBlank
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return msgMinLength(MinPasswordLength)
	}
	return ""
}
