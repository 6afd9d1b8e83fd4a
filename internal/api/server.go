// Package api provides the HTTP server and route handlers for Savour.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/savourapp/savour-server/internal/config"
	"github.com/savourapp/savour-server/internal/dispatch"
	"github.com/savourapp/savour-server/internal/dto"
	"github.com/savourapp/savour-server/internal/http/response"
	"github.com/savourapp/savour-server/internal/ratelimit"
	"github.com/savourapp/savour-server/internal/service"
	"github.com/savourapp/savour-server/internal/session"
	"github.com/savourapp/savour-server/internal/validation"
)

// Server holds dependencies for HTTP handlers. All routes go through
// the dispatcher, which owns session loading, input binding,
// validation, and error mapping.
type Server struct {
	users    *service.UserService
	posts    *service.PostService
	tags     *service.TagService
	saves    *service.SaveService
	features *service.FeatureService
	sessions *session.Manager
	shaper   *dto.Shaper
	router   *chi.Mux
	logger   *slog.Logger

	loginLimiter *ratelimit.KeyedRateLimiter
	corsOrigins  []string
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(
	cfg *config.Config,
	users *service.UserService,
	posts *service.PostService,
	tags *service.TagService,
	saves *service.SaveService,
	features *service.FeatureService,
	sessions *session.Manager,
	shaper *dto.Shaper,
	validator *validation.Validator,
	logger *slog.Logger,
) *Server {
	s := &Server{
		users:        users,
		posts:        posts,
		tags:         tags,
		saves:        saves,
		features:     features,
		sessions:     sessions,
		shaper:       shaper,
		router:       chi.NewRouter(),
		logger:       logger,
		loginLimiter: ratelimit.New(cfg.Login.RatePerMinute/60, cfg.Login.Burst),
		corsOrigins:  cfg.Server.CORSOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes(validator)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.loginLimiter.Stop()
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(s.corsOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes(validator *validation.Validator) {
	s.router.Get("/health", s.handleHealthCheck)

	d := dispatch.New(s.router, validator, s.sessions, s.logger)

	s.registerAuthRoutes(d)
	s.registerUserRoutes(d)
	s.registerPostRoutes(d)
	s.registerTagRoutes(d)
	s.registerSaveRoutes(d)
	s.registerFeatureRoutes(d)
}

// handleHealthCheck returns server health status. Served outside the
// dispatcher so it never touches the session store.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

// rateLimitByIP guards a route group with the keyed limiter. RealIP
// runs earlier in the chain, so RemoteAddr is the client address.
func (s *Server) rateLimitByIP(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				s.logger.Warn("Rate limit exceeded", "ip", clientIP(r), "path", r.URL.Path)
				response.TooManyRequests(w, "too many attempts, try again later", s.logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerID returns the logged-in user's ID, or "" for anonymous
// callers. Used by routes that are public but show more to a known
// caller.
func callerID(ctx context.Context) string {
	if sess, ok := session.FromContext(ctx); ok {
		return sess.UserID
	}
	return ""
}

func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}
