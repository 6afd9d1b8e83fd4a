// Package dto shapes domain records into externally-stable response
// payloads, resolving owner IDs to usernames and dropping fields that
// never leave the server.
package dto

import (
	"context"
	"time"

	"github.com/savourapp/savour-server/internal/domain"
)

// UserResolver resolves user IDs to user records. The user service
// satisfies this; a deleted user resolves to an error and is shaped as
// "DELETED_USER", matching what clients expect for orphaned content.
type UserResolver interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// DeletedUserLabel stands in for authors whose accounts are gone.
const DeletedUserLabel = "DELETED_USER"

// Shaper converts domain records into response payloads.
type Shaper struct {
	users UserResolver
}

// NewShaper creates a response shaper.
func NewShaper(users UserResolver) *Shaper {
	return &Shaper{users: users}
}

// User is the external shape of a user record.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Post is the external shape of a post, with the author resolved to a
// username.
type Post struct {
	ID        string              `json:"id"`
	Author    string              `json:"author"`
	Content   string              `json:"content"`
	Options   *domain.PostOptions `json:"options,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Save is the external shape of a save, with the save author resolved
// to a username.
type Save struct {
	ID         string              `json:"id"`
	SaveAuthor string              `json:"save_author"`
	PostID     string              `json:"post_id"`
	Notes      string              `json:"notes,omitempty"`
	Options    *domain.SaveOptions `json:"options,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// ShapeUser strips internal fields from a user record.
func (s *Shaper) ShapeUser(u *domain.User) *User {
	return &User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ShapeUsers shapes a slice of users.
func (s *Shaper) ShapeUsers(users []*domain.User) []*User {
	out := make([]*User, 0, len(users))
	for _, u := range users {
		out = append(out, s.ShapeUser(u))
	}
	return out
}

// ShapePost resolves the post's author to a username.
func (s *Shaper) ShapePost(ctx context.Context, p *domain.Post) *Post {
	return &Post{
		ID:        p.ID,
		Author:    s.username(ctx, p.AuthorID),
		Content:   p.Content,
		Options:   p.Options,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ShapePosts shapes a slice of posts, resolving each author once.
func (s *Shaper) ShapePosts(ctx context.Context, posts []*domain.Post) []*Post {
	names := make(map[string]string)
	out := make([]*Post, 0, len(posts))
	for _, p := range posts {
		name, ok := names[p.AuthorID]
		if !ok {
			name = s.username(ctx, p.AuthorID)
			names[p.AuthorID] = name
		}
		out = append(out, &Post{
			ID:        p.ID,
			Author:    name,
			Content:   p.Content,
			Options:   p.Options,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	return out
}

// ShapeSave resolves the save's author to a username.
func (s *Shaper) ShapeSave(ctx context.Context, sv *domain.Save) *Save {
	return &Save{
		ID:         sv.ID,
		SaveAuthor: s.username(ctx, sv.SaveAuthorID),
		PostID:     sv.PostID,
		Notes:      sv.Notes,
		Options:    sv.Options,
		CreatedAt:  sv.CreatedAt,
		UpdatedAt:  sv.UpdatedAt,
	}
}

// ShapeSaves shapes a slice of saves.
func (s *Shaper) ShapeSaves(ctx context.Context, saves []*domain.Save) []*Save {
	out := make([]*Save, 0, len(saves))
	for _, sv := range saves {
		out = append(out, s.ShapeSave(ctx, sv))
	}
	return out
}

func (s *Shaper) username(ctx context.Context, userID string) string {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return DeletedUserLabel
	}
	return u.Username
}
