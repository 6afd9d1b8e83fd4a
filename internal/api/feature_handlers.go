package api

import (
	"context"
	"net/http"

	"github.com/savourapp/savour-server/internal/dispatch"
	"github.com/savourapp/savour-server/internal/dto"
)

func (s *Server) registerFeatureRoutes(d *dispatch.Dispatcher) {
	dispatch.Register(d, http.MethodGet, "/feature", s.handleListFeatured)
	dispatch.Register(d, http.MethodPost, "/feature", s.handleFeaturePost)
	dispatch.Register(d, http.MethodDelete, "/feature", s.handleUnfeaturePost)
}

// === DTOs ===

// FeatureRequest identifies the post to feature or unfeature.
type FeatureRequest struct {
	PostID string `json:"post_id" validate:"required,recordid"`
}

// === Handlers ===

func (s *Server) handleListFeatured(ctx context.Context, _ *emptyInput) (*PostListResponse, error) {
	posts, err := s.features.ListFeatured(ctx)
	if err != nil {
		return nil, err
	}

	return &PostListResponse{Posts: s.shaper.ShapePosts(ctx, posts)}, nil
}

func (s *Server) handleFeaturePost(ctx context.Context, in *FeatureRequest) (*dto.Post, error) {
	if _, err := s.features.FeaturePost(ctx, in.PostID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapePost(ctx, post), nil
}

func (s *Server) handleUnfeaturePost(ctx context.Context, in *FeatureRequest) (*struct{}, error) {
	if err := s.features.UnfeaturePost(ctx, in.PostID); err != nil {
		return nil, err
	}

	return nil, nil
}
