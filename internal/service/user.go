package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/savourapp/savour-server/internal/auth"
	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/errors"
	"github.com/savourapp/savour-server/internal/id"
	"github.com/savourapp/savour-server/internal/normalize"
	"github.com/savourapp/savour-server/internal/store"
)

// UserService manages user accounts.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// Register creates a new user account. The username is unique after
// normalization, so "Alice" cannot register while "alice" exists.
func (s *UserService) Register(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canonical := normalize.Username(username)
	if canonical == "" {
		return nil, errors.Validation("username cannot be empty")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "invalid password")
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := domain.NewUser(userID, username, canonical, passwordHash)
	user.DisplayName = displayName

	if err := s.store.Users.Create(ctx, user.ID, user); err != nil {
		return nil, translateStoreErr(err, "user does not exist", "username already taken")
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", canonical)

	return user, nil
}

// Authenticate verifies a username and password pair. Unknown users and
// wrong passwords both fail with InvalidCredentials so callers cannot
// probe which usernames exist.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.store.Users.GetByIndex(ctx, "username", username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.InvalidCredentials("invalid username or password")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "password verification failed")
	}
	if !ok {
		return nil, errors.InvalidCredentials("invalid username or password")
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users.Get(ctx, userID)
	if err != nil {
		return nil, translateStoreErr(err, "user does not exist", "")
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.Users.GetByIndex(ctx, "username", username)
	if err != nil {
		return nil, translateStoreErr(err, "user does not exist", "")
	}
	return user, nil
}

// ListUsers returns all users, most recently updated first.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	for user, err := range s.store.Users.List(ctx) {
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
		}
		users = append(users, user)
	}
	sortByRecency(users, func(u *domain.User) time.Time { return u.UpdatedAt })
	return users, nil
}

// UpdateProfile changes the caller's display name and/or password.
// Nil pointers leave the corresponding field untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, displayName, password *string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if displayName != nil {
		user.DisplayName = *displayName
	}
	if password != nil {
		passwordHash, err := auth.HashPassword(*password)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidation, "invalid password")
		}
		user.PasswordHash = passwordHash
	}
	user.Touch()

	if err := s.store.Users.Update(ctx, user.ID, user); err != nil {
		return nil, translateStoreErr(err, "user does not exist", "username already taken")
	}

	s.logger.Info("user profile updated", "user_id", user.ID)

	return user, nil
}

// DeleteUser removes the caller's account. Their posts, tags, and
// saves remain; shaped responses render their author as deleted.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.store.Users.Delete(ctx, userID); err != nil {
		return translateStoreErr(err, "user does not exist", "")
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}
