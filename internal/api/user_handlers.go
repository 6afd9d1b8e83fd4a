package api

import (
	"context"
	"net/http"

	"github.com/savourapp/savour-server/internal/dispatch"
	"github.com/savourapp/savour-server/internal/dto"
	"github.com/savourapp/savour-server/internal/session"
)

func (s *Server) registerUserRoutes(d *dispatch.Dispatcher) {
	dispatch.Register(d, http.MethodGet, "/users", s.handleListUsers)
	dispatch.Register(d, http.MethodGet, "/users/{username}", s.handleGetUser)
	dispatch.Register(d, http.MethodPost, "/users", s.handleRegister)
	dispatch.Register(d, http.MethodPatch, "/users", s.handleUpdateProfile)
	dispatch.Register(d, http.MethodDelete, "/users", s.handleDeleteAccount)
}

// === DTOs ===

// GetUserInput identifies a user by username.
type GetUserInput struct {
	Username string `path:"username" validate:"required"`
}

// RegisterRequest carries a new account's credentials.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=1,max=50"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=100"`
}

// UpdateProfileRequest carries profile changes. Nil fields are left
// untouched.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
}

// UserListResponse contains shaped user records.
type UserListResponse struct {
	Users []*dto.User `json:"users"`
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, _ *emptyInput) (*UserListResponse, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	return &UserListResponse{Users: s.shaper.ShapeUsers(users)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, in *GetUserInput) (*dto.User, error) {
	user, err := s.users.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapeUser(user), nil
}

func (s *Server) handleRegister(ctx context.Context, in *RegisterRequest) (*dto.User, error) {
	if err := session.RequireLoggedOut(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.Register(ctx, in.Username, in.Password, in.DisplayName)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapeUser(user), nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, in *UpdateProfileRequest) (*dto.User, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, userID, in.DisplayName, in.Password)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapeUser(user), nil
}

// handleDeleteAccount deletes the caller's account and destroys the
// session outright: the cookie is cleared, not just unbound.
func (s *Server) handleDeleteAccount(ctx context.Context, _ *emptyInput) (*struct{}, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.sessions.Destroy(ctx); err != nil {
		return nil, err
	}

	return nil, nil
}
