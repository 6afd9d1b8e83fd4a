package api

import (
	"context"
	"net/http"

	"github.com/savourapp/savour-server/internal/dispatch"
	"github.com/savourapp/savour-server/internal/dto"
	"github.com/savourapp/savour-server/internal/session"
)

func (s *Server) registerAuthRoutes(d *dispatch.Dispatcher) {
	dispatch.Register(d, http.MethodGet, "/session", s.handleGetSession)
	dispatch.Register(d, http.MethodPost, "/logout", s.handleLogout)

	// Login is the one credential-guessing surface, so it alone sits
	// behind the keyed limiter.
	limited := d.Group(s.rateLimitByIP(s.loginLimiter))
	dispatch.Register(limited, http.MethodPost, "/login", s.handleLogin,
		dispatch.WithSuccessStatus(http.StatusOK))
}

// === DTOs ===

type emptyInput struct{}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// === Handlers ===

func (s *Server) handleGetSession(ctx context.Context, _ *emptyInput) (*dto.User, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapeUser(user), nil
}

func (s *Server) handleLogin(ctx context.Context, in *LoginRequest) (*dto.User, error) {
	if err := session.RequireLoggedOut(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Start(ctx, user.ID); err != nil {
		return nil, err
	}

	return s.shaper.ShapeUser(user), nil
}

func (s *Server) handleLogout(ctx context.Context, _ *emptyInput) (*struct{}, error) {
	if _, err := session.UserID(ctx); err != nil {
		return nil, err
	}

	if err := s.sessions.End(ctx); err != nil {
		return nil, err
	}

	return nil, nil
}
