package domain

import "time"

// SaveOptions holds optional presentation settings for a save.
type SaveOptions struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Save is a private bookmark of a post with optional notes. A user may
// save the same post more than once; each save is its own record.
type Save struct {
	ID           string       `json:"id"`
	SaveAuthorID string       `json:"save_author_id"`
	PostID       string       `json:"post_id"`
	Notes        string       `json:"notes"`
	Options      *SaveOptions `json:"options,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewSave creates a new save record.
func NewSave(id, saveAuthorID, postID, notes string, options *SaveOptions) *Save {
	now := time.Now()
	return &Save{
		ID:           id,
		SaveAuthorID: saveAuthorID,
		PostID:       postID,
		Notes:        notes,
		Options:      options,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsOwnedBy reports whether userID created this save.
func (s *Save) IsOwnedBy(userID string) bool {
	return s.SaveAuthorID == userID
}

// SetNotes replaces the notes and bumps UpdatedAt.
func (s *Save) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
}
