package domain

import "time"

// Feature marks a post as editorially featured. At most one feature
// exists per post.
type Feature struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFeature creates a new feature record.
func NewFeature(id, postID string) *Feature {
	now := time.Now()
	return &Feature{
		ID:        id,
		PostID:    postID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
