package domain

import "time"

// PostOptions holds optional presentation settings chosen by the author.
type PostOptions struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
}

// Post is a piece of user-authored content.
type Post struct {
	ID        string       `json:"id"`
	AuthorID  string       `json:"author_id"`
	Content   string       `json:"content"`
	Options   *PostOptions `json:"options,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewPost creates a new post record.
func NewPost(id, authorID, content string, options *PostOptions) *Post {
	now := time.Now()
	return &Post{
		ID:        id,
		AuthorID:  authorID,
		Content:   content,
		Options:   options,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAuthoredBy reports whether userID wrote this post.
func (p *Post) IsAuthoredBy(userID string) bool {
	return p.AuthorID == userID
}

// Touch bumps UpdatedAt.
func (p *Post) Touch() {
	p.UpdatedAt = time.Now()
}
