// Package session manages cookie-bound server-side login sessions.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/savourapp/savour-server/internal/auth"
	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/errors"
	"github.com/savourapp/savour-server/internal/store"
)

// touchInterval is the minimum gap between sliding-expiry writes for
// one session.
const touchInterval = time.Minute

// Manager issues, loads, and retires sessions. The browser holds a
// sealed cookie carrying only the session ID; everything else lives in
// the store. A request always has a session, anonymous until login.
type Manager struct {
	store      *store.Store
	codec      *auth.CookieCodec
	logger     *slog.Logger
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Options configures a Manager.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// NewManager creates a session manager.
func NewManager(s *store.Store, codec *auth.CookieCodec, logger *slog.Logger, opts Options) *Manager {
	return &Manager{
		store:      s,
		codec:      codec,
		logger:     logger,
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
	}
}

// Load resolves the request's session from its cookie, creating a fresh
// anonymous session when the cookie is absent, invalid, or points at an
// expired or deleted record. A new cookie is written to w when needed.
func (m *Manager) Load(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.Session, error) {
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		sessionID, err := m.codec.Open(cookie.Value)
		if err == nil {
			sess, err := m.store.Sessions.Get(ctx, sessionID)
			if err == nil && !sess.IsExpired(time.Now()) {
				// Sliding expiry: active logged-in users stay logged
				// in. Touches are spaced out and best-effort, so
				// concurrent requests on one session don't turn a
				// badger write conflict into a failed request.
				if sess.IsAuthenticated() && time.Since(sess.LastSeenAt) >= touchInterval {
					if err := m.Touch(ctx, sess); err != nil {
						m.logger.Debug("session touch failed", "error", err)
					}
				}
				return sess, nil
			}
		}
		// Fall through to a fresh session on any failure. An attacker
		// who mints garbage cookies just gets anonymous sessions.
		m.logger.Debug("session cookie rejected, issuing fresh session")
	}

	sess := domain.NewSession("sess-"+uuid.NewString(), m.ttl)
	if err := m.store.Sessions.Create(ctx, sess.ID, sess); err != nil {
		return nil, err
	}
	if err := m.setCookie(w, sess.ID); err != nil {
		return nil, err
	}
	return sess, nil
}

// Start logs userID in on the request's session and extends its life.
// The cookie is reissued with a fresh expiry when a responder is bound
// to the context.
func (m *Manager) Start(ctx context.Context, userID string) error {
	sess, ok := FromContext(ctx)
	if !ok {
		return errors.Internal("no session bound to request")
	}

	sess.Bind(userID, m.ttl)
	if err := m.store.Sessions.Update(ctx, sess.ID, sess); err != nil {
		return err
	}

	if w, ok := responderFrom(ctx); ok {
		return m.setCookie(w, sess.ID)
	}
	return nil
}

// End logs the current user out but keeps the anonymous session alive,
// so the client keeps its cookie.
func (m *Manager) End(ctx context.Context) error {
	sess, ok := FromContext(ctx)
	if !ok {
		return errors.Internal("no session bound to request")
	}

	sess.Unbind()
	return m.store.Sessions.Update(ctx, sess.ID, sess)
}

// Touch slides the session's expiry window forward. Called on
// authenticated requests so active users stay logged in.
func (m *Manager) Touch(ctx context.Context, sess *domain.Session) error {
	sess.Refresh(m.ttl)
	return m.store.Sessions.Update(ctx, sess.ID, sess)
}

// Destroy deletes the session record entirely and clears the cookie.
// Used when the account behind the session is deleted.
func (m *Manager) Destroy(ctx context.Context) error {
	sess, ok := FromContext(ctx)
	if !ok {
		return errors.Internal("no session bound to request")
	}

	if err := m.store.Sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	sess.Unbind()

	if w, ok := responderFrom(ctx); ok {
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return nil
}

func (m *Manager) setCookie(w http.ResponseWriter, sessionID string) error {
	token, err := m.codec.Seal(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
