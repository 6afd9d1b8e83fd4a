package api

import (
	"context"
	"net/http"

	"github.com/savourapp/savour-server/internal/dispatch"
	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/session"
)

func (s *Server) registerTagRoutes(d *dispatch.Dispatcher) {
	dispatch.Register(d, http.MethodPost, "/tags", s.handleCreateTag)
	dispatch.Register(d, http.MethodGet, "/tags", s.handleListTags)
	dispatch.Register(d, http.MethodPost, "/tags/{id}", s.handleAssociateTag)
	dispatch.Register(d, http.MethodGet, "/tags/{id}", s.handleListAssociations)
	dispatch.Register(d, http.MethodDelete, "/tags/{id}", s.handleDissociateTag)
}

// === DTOs ===

// CreateTagRequest carries a new tag's name and visibility. Visibility
// defaults to public when omitted.
type CreateTagRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=50"`
	Visibility string `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// AssociateTagRequest attaches the tag in the path to a post. An empty
// visibility defaults to public for the post's author and private for
// everyone else.
type AssociateTagRequest struct {
	TagID      string `path:"id" validate:"required,recordid"`
	PostID     string `json:"post_id" validate:"required,recordid"`
	Visibility string `json:"visibility,omitempty" validate:"omitempty,oneof=public private"`
}

// ListAssociationsInput identifies a tag by path, with an optional
// visibility narrowing the listing to just public or just private
// associations.
type ListAssociationsInput struct {
	ID         string `path:"id" validate:"required,recordid"`
	Visibility string `query:"visibility" validate:"omitempty,oneof=public private"`
}

// DissociateTagRequest detaches the tag in the path from a post.
type DissociateTagRequest struct {
	TagID  string `path:"id" validate:"required,recordid"`
	PostID string `json:"post_id" validate:"required,recordid"`
}

// TagListResponse contains tag records visible to the caller.
type TagListResponse struct {
	Tags []*domain.Tag `json:"tags"`
}

// AssociationListResponse contains tag-post associations visible to
// the caller.
type AssociationListResponse struct {
	Associations []*domain.TaggedPost `json:"associations"`
}

// === Handlers ===

func (s *Server) handleCreateTag(ctx context.Context, in *CreateTagRequest) (*domain.Tag, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	return s.tags.CreateTag(ctx, userID, in.Name, in.Visibility)
}

func (s *Server) handleListTags(ctx context.Context, _ *emptyInput) (*TagListResponse, error) {
	tags, err := s.tags.ListTags(ctx, callerID(ctx))
	if err != nil {
		return nil, err
	}

	return &TagListResponse{Tags: tags}, nil
}

func (s *Server) handleAssociateTag(ctx context.Context, in *AssociateTagRequest) (*domain.TaggedPost, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	return s.tags.Associate(ctx, userID, in.TagID, in.PostID, in.Visibility)
}

func (s *Server) handleListAssociations(ctx context.Context, in *ListAssociationsInput) (*AssociationListResponse, error) {
	assocs, err := s.tags.ListAssociations(ctx, callerID(ctx), in.ID, in.Visibility)
	if err != nil {
		return nil, err
	}

	return &AssociationListResponse{Associations: assocs}, nil
}

func (s *Server) handleDissociateTag(ctx context.Context, in *DissociateTagRequest) (*struct{}, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.tags.Dissociate(ctx, userID, in.TagID, in.PostID); err != nil {
		return nil, err
	}

	return nil, nil
}
