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

// FeatureService curates the featured-post list. At most one feature
// record exists per post.
type FeatureService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewFeatureService creates a new feature service.
func NewFeatureService(store *store.Store, logger *slog.Logger) *FeatureService {
	return &FeatureService{
		store:  store,
		logger: logger,
	}
}

// FeaturePost marks a post as featured. Featuring an already-featured
// post is a conflict.
func (s *FeatureService) FeaturePost(ctx context.Context, postID string) (*domain.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.Posts.Get(ctx, postID); err != nil {
		return nil, translateStoreErr(err, "post does not exist", "")
	}

	featureID, err := id.Generate("feature")
	if err != nil {
		return nil, fmt.Errorf("generate feature ID: %w", err)
	}

	feature := domain.NewFeature(featureID, postID)

	if err := s.store.Features.Create(ctx, feature.ID, feature); err != nil {
		return nil, translateStoreErr(err, "feature does not exist", "post already featured")
	}

	s.logger.Info("post featured", "feature_id", feature.ID, "post_id", postID)

	return feature, nil
}

// ListFeatured returns the featured posts, most recently featured
// first. Posts deleted since being featured are skipped.
func (s *FeatureService) ListFeatured(ctx context.Context) ([]*domain.Post, error) {
	var features []*domain.Feature
	for feature, err := range s.store.Features.List(ctx) {
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
		}
		features = append(features, feature)
	}
	sortByRecency(features, func(f *domain.Feature) time.Time { return f.UpdatedAt })

	posts := make([]*domain.Post, 0, len(features))
	for _, feature := range features {
		post, err := s.store.Posts.Get(ctx, feature.PostID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// UnfeaturePost removes a post from the featured list.
func (s *FeatureService) UnfeaturePost(ctx context.Context, postID string) error {
	feature, err := s.store.Features.GetByIndex(ctx, "post", postID)
	if err != nil {
		return translateStoreErr(err, "post is not featured", "")
	}

	if err := s.store.Features.Delete(ctx, feature.ID); err != nil {
		return translateStoreErr(err, "post is not featured", "")
	}

	s.logger.Info("post unfeatured", "feature_id", feature.ID, "post_id", postID)
	return nil
}
