package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/errors"
	"github.com/savourapp/savour-server/internal/id"
	"github.com/savourapp/savour-server/internal/store"
)

// SaveService manages private bookmarks of posts. Saving the same post
// twice is allowed and creates two distinct records.
type SaveService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSaveService creates a new save service.
func NewSaveService(store *store.Store, logger *slog.Logger) *SaveService {
	return &SaveService{
		store:  store,
		logger: logger,
	}
}

// CreateSave bookmarks a post for userID with optional notes.
func (s *SaveService) CreateSave(ctx context.Context, userID, postID, notes string, options *domain.SaveOptions) (*domain.Save, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.Posts.Get(ctx, postID); err != nil {
		return nil, translateStoreErr(err, "post does not exist", "")
	}

	saveID, err := id.Generate("save")
	if err != nil {
		return nil, fmt.Errorf("generate save ID: %w", err)
	}

	save := domain.NewSave(saveID, userID, postID, notes, options)

	if err := s.store.Saves.Create(ctx, save.ID, save); err != nil {
		return nil, translateStoreErr(err, "save does not exist", "save already exists")
	}

	s.logger.Info("post saved", "save_id", save.ID, "post_id", postID, "save_author_id", userID)

	return save, nil
}

// GetSave retrieves a save by ID.
func (s *SaveService) GetSave(ctx context.Context, saveID string) (*domain.Save, error) {
	save, err := s.store.Saves.Get(ctx, saveID)
	if err != nil {
		return nil, translateStoreErr(err, "save does not exist", "")
	}
	return save, nil
}

// ListSaves returns the caller's saves, most recently updated first.
func (s *SaveService) ListSaves(ctx context.Context, userID string) ([]*domain.Save, error) {
	saves, err := s.store.Saves.ListByIndex(ctx, "save_author", userID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
	}
	sortByRecency(saves, func(sv *domain.Save) time.Time { return sv.UpdatedAt })
	return saves, nil
}

// ListSavesWithNotes returns the caller's saves that carry notes,
// most recently updated first.
func (s *SaveService) ListSavesWithNotes(ctx context.Context, userID string) ([]*domain.Save, error) {
	all, err := s.ListSaves(ctx, userID)
	if err != nil {
		return nil, err
	}

	withNotes := make([]*domain.Save, 0, len(all))
	for _, save := range all {
		if save.Notes != "" {
			withNotes = append(withNotes, save)
		}
	}
	return withNotes, nil
}

// IsSaveAuthor verifies that userID owns the save. Fails NotFound when
// the save is missing and Forbidden on owner mismatch; never mutates.
func (s *SaveService) IsSaveAuthor(ctx context.Context, userID, saveID string) error {
	save, err := s.GetSave(ctx, saveID)
	if err != nil {
		return err
	}
	if !save.IsOwnedBy(userID) {
		return errors.Forbidden("not the author of this save")
	}
	return nil
}

// UpdateNotes replaces the notes on the caller's own save.
func (s *SaveService) UpdateNotes(ctx context.Context, userID, saveID, notes string) (*domain.Save, error) {
	if err := s.IsSaveAuthor(ctx, userID, saveID); err != nil {
		return nil, err
	}

	save, err := s.GetSave(ctx, saveID)
	if err != nil {
		return nil, err
	}

	save.SetNotes(notes)

	if err := s.store.Saves.Update(ctx, save.ID, save); err != nil {
		return nil, translateStoreErr(err, "save does not exist", "")
	}

	return save, nil
}

// DeleteSave removes the caller's own save.
func (s *SaveService) DeleteSave(ctx context.Context, userID, saveID string) error {
	if err := s.IsSaveAuthor(ctx, userID, saveID); err != nil {
		return err
	}

	if err := s.store.Saves.Delete(ctx, saveID); err != nil {
		return translateStoreErr(err, "save does not exist", "")
	}

	s.logger.Info("save deleted", "save_id", saveID, "save_author_id", userID)
	return nil
}
