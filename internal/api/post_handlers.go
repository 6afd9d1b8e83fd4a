package api

import (
	"context"
	"net/http"

	"github.com/savourapp/savour-server/internal/dispatch"
	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/dto"
	"github.com/savourapp/savour-server/internal/session"
)

func (s *Server) registerPostRoutes(d *dispatch.Dispatcher) {
	dispatch.Register(d, http.MethodGet, "/posts", s.handleListPosts)
	dispatch.Register(d, http.MethodPost, "/posts", s.handleCreatePost)
	dispatch.Register(d, http.MethodPatch, "/posts/{id}", s.handleUpdatePost)
	dispatch.Register(d, http.MethodDelete, "/posts/{id}", s.handleDeletePost)
	dispatch.Register(d, http.MethodGet, "/match", s.handleMatchPosts)
}

// === DTOs ===

// ListPostsInput optionally filters the listing by author username.
type ListPostsInput struct {
	Author string `query:"author"`
}

// CreatePostRequest carries a new post's content.
type CreatePostRequest struct {
	Content string              `json:"content" validate:"required,max=10000"`
	Options *domain.PostOptions `json:"options,omitempty"`
}

// UpdatePostRequest carries partial changes to a post. The ID always
// comes from the path.
type UpdatePostRequest struct {
	ID      string              `path:"id" validate:"required,recordid"`
	Content *string             `json:"content,omitempty" validate:"omitempty,max=10000"`
	Options *domain.PostOptions `json:"options,omitempty"`
}

// PostIDInput identifies a post by path.
type PostIDInput struct {
	ID string `path:"id" validate:"required,recordid"`
}

// MatchPostsInput carries the search keyword.
type MatchPostsInput struct {
	Keyword string `query:"keyword"`
}

// PostListResponse contains shaped posts, most recently updated first.
type PostListResponse struct {
	Posts []*dto.Post `json:"posts"`
}

// === Handlers ===

func (s *Server) handleListPosts(ctx context.Context, in *ListPostsInput) (*PostListResponse, error) {
	posts, err := s.posts.ListPosts(ctx, in.Author)
	if err != nil {
		return nil, err
	}

	return &PostListResponse{Posts: s.shaper.ShapePosts(ctx, posts)}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, in *CreatePostRequest) (*dto.Post, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.CreatePost(ctx, userID, in.Content, in.Options)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapePost(ctx, post), nil
}

func (s *Server) handleUpdatePost(ctx context.Context, in *UpdatePostRequest) (*dto.Post, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.UpdatePost(ctx, userID, in.ID, in.Content, in.Options)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapePost(ctx, post), nil
}

func (s *Server) handleDeletePost(ctx context.Context, in *PostIDInput) (*struct{}, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.posts.DeletePost(ctx, userID, in.ID); err != nil {
		return nil, err
	}

	return nil, nil
}

func (s *Server) handleMatchPosts(ctx context.Context, in *MatchPostsInput) (*PostListResponse, error) {
	posts, err := s.posts.MatchPosts(ctx, in.Keyword)
	if err != nil {
		return nil, err
	}

	return &PostListResponse{Posts: s.shaper.ShapePosts(ctx, posts)}, nil
}
