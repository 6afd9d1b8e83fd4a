package api

import (
	"context"
	"net/http"

	"github.com/savourapp/savour-server/internal/dispatch"
	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/dto"
	"github.com/savourapp/savour-server/internal/session"
)

func (s *Server) registerSaveRoutes(d *dispatch.Dispatcher) {
	dispatch.Register(d, http.MethodGet, "/saves", s.handleListSaves)
	dispatch.Register(d, http.MethodGet, "/saves/notes", s.handleListSavesWithNotes)
	dispatch.Register(d, http.MethodPost, "/saves/{id}", s.handleCreateSave)
	dispatch.Register(d, http.MethodPatch, "/saves", s.handleUpdateSaveNotes)
	dispatch.Register(d, http.MethodDelete, "/saves", s.handleDeleteSave)
}

// === DTOs ===

// CreateSaveRequest bookmarks the post in the path, with optional
// notes. Saving the same post again creates a second, independent
// record.
type CreateSaveRequest struct {
	PostID  string              `path:"id" validate:"required,recordid"`
	Notes   string              `json:"notes,omitempty" validate:"omitempty,max=5000"`
	Options *domain.SaveOptions `json:"options,omitempty"`
}

// UpdateSaveNotesRequest replaces the notes on one of the caller's
// saves.
type UpdateSaveNotesRequest struct {
	ID    string `json:"id" validate:"required,recordid"`
	Notes string `json:"notes" validate:"max=5000"`
}

// DeleteSaveRequest removes one of the caller's saves.
type DeleteSaveRequest struct {
	ID string `json:"id" validate:"required,recordid"`
}

// SaveListResponse contains the caller's shaped saves.
type SaveListResponse struct {
	Saves []*dto.Save `json:"saves"`
}

// === Handlers ===

func (s *Server) handleListSaves(ctx context.Context, _ *emptyInput) (*SaveListResponse, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	saves, err := s.saves.ListSaves(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SaveListResponse{Saves: s.shaper.ShapeSaves(ctx, saves)}, nil
}

func (s *Server) handleListSavesWithNotes(ctx context.Context, _ *emptyInput) (*SaveListResponse, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	saves, err := s.saves.ListSavesWithNotes(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SaveListResponse{Saves: s.shaper.ShapeSaves(ctx, saves)}, nil
}

func (s *Server) handleCreateSave(ctx context.Context, in *CreateSaveRequest) (*dto.Save, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	save, err := s.saves.CreateSave(ctx, userID, in.PostID, in.Notes, in.Options)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapeSave(ctx, save), nil
}

func (s *Server) handleUpdateSaveNotes(ctx context.Context, in *UpdateSaveNotesRequest) (*dto.Save, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	save, err := s.saves.UpdateNotes(ctx, userID, in.ID, in.Notes)
	if err != nil {
		return nil, err
	}

	return s.shaper.ShapeSave(ctx, save), nil
}

func (s *Server) handleDeleteSave(ctx context.Context, in *DeleteSaveRequest) (*struct{}, error) {
	userID, err := session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.saves.DeleteSave(ctx, userID, in.ID); err != nil {
		return nil, err
	}

	return nil, nil
}
