package domain

import "time"

// User is a registered account. Username holds the display form the
// user typed; CanonicalUsername is the normalized form used for
// uniqueness checks and login lookups.
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	CanonicalUsername string    `json:"canonical_username"`
	DisplayName       string    `json:"display_name,omitempty"`
	PasswordHash      string    `json:"password_hash,omitempty"` // Stored hashed, never serialized to API responses
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewUser creates a new user record.
func NewUser(id, username, canonicalUsername, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:                id,
		Username:          username,
		CanonicalUsername: canonicalUsername,
		PasswordHash:      passwordHash,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Touch bumps UpdatedAt.
func (u *User) Touch() {
	u.UpdatedAt = time.Now()
}
