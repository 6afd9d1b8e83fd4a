package session

import (
	"context"
	"net/http"

	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/errors"
)

type contextKey struct{}

type responderKey struct{}

// WithResponder returns a context carrying the response writer, so the
// manager can reissue or clear cookies from inside handlers.
func WithResponder(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, responderKey{}, w)
}

func responderFrom(ctx context.Context) (http.ResponseWriter, bool) {
	w, ok := ctx.Value(responderKey{}).(http.ResponseWriter)
	return w, ok
}

// WithSession returns a context carrying the request's session.
func WithSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session attached to the request context.
func FromContext(ctx context.Context) (*domain.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*domain.Session)
	return sess, ok
}

// UserID returns the logged-in user's ID from the request context.
// Returns an Unauthorized error when nobody is logged in.
func UserID(ctx context.Context) (string, error) {
	sess, ok := FromContext(ctx)
	if !ok || !sess.IsAuthenticated() {
		return "", errors.Unauthorized("must be logged in")
	}
	return sess.UserID, nil
}

// RequireLoggedOut fails when a user is already logged in on this
// session. Login and registration both require a logged-out session.
func RequireLoggedOut(ctx context.Context) error {
	sess, ok := FromContext(ctx)
	if ok && sess.IsAuthenticated() {
		return errors.Forbidden("already logged in")
	}
	return nil
}
