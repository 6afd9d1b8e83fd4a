package domain

import "time"

// Session is a server-side login session bound to a browser cookie.
// UserID is empty while the session is anonymous (cookie issued but
// nobody logged in yet).
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewSession creates a new anonymous session that expires after ttl.
func NewSession(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

// IsAuthenticated reports whether a user is logged in on this session.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// IsExpired reports whether the session has lapsed.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Bind logs userID in on this session and extends its life by ttl.
func (s *Session) Bind(userID string, ttl time.Duration) {
	now := time.Now()
	s.UserID = userID
	s.LastSeenAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Unbind logs the current user out but keeps the session alive.
func (s *Session) Unbind() {
	s.UserID = ""
	s.LastSeenAt = time.Now()
}

// Refresh slides the expiry window forward by ttl.
func (s *Session) Refresh(ttl time.Duration) {
	now := time.Now()
	s.LastSeenAt = now
	s.ExpiresAt = now.Add(ttl)
}
