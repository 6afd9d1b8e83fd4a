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

// Searcher is the full-text index the post service keeps in sync and
// queries for keyword matches. search.Index satisfies this.
type Searcher interface {
	IndexPost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, postID string) error
	IndexAll(posts []*domain.Post) error
	MatchPosts(ctx context.Context, term string, limit int) ([]string, error)
}

// PostService manages posts and keyword search over their content.
type PostService struct {
	store  *store.Store
	search Searcher
	logger *slog.Logger
}

// NewPostService creates a new post service.
func NewPostService(store *store.Store, search Searcher, logger *slog.Logger) *PostService {
	return &PostService{
		store:  store,
		search: search,
		logger: logger,
	}
}

// CreatePost creates a post owned by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID, content string, options *domain.PostOptions) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	postID, err := id.Generate("post")
	if err != nil {
		return nil, fmt.Errorf("generate post ID: %w", err)
	}

	post := domain.NewPost(postID, authorID, content, options)

	if err := s.store.Posts.Create(ctx, post.ID, post); err != nil {
		return nil, translateStoreErr(err, "post does not exist", "post already exists")
	}

	if err := s.search.IndexPost(ctx, post); err != nil {
		s.logger.Warn("failed to index post", "post_id", post.ID, "error", err)
	}

	s.logger.Info("post created", "post_id", post.ID, "author_id", authorID)

	return post, nil
}

// GetPost retrieves a post by ID.
func (s *PostService) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, translateStoreErr(err, "post does not exist", "")
	}
	return post, nil
}

// ListPosts returns posts, most recently updated first. When
// authorUsername is non-empty, only that user's posts are returned;
// an unknown username fails with NotFound.
func (s *PostService) ListPosts(ctx context.Context, authorUsername string) ([]*domain.Post, error) {
	var posts []*domain.Post

	if authorUsername != "" {
		author, err := s.store.Users.GetByIndex(ctx, "username", authorUsername)
		if err != nil {
			return nil, translateStoreErr(err, "user does not exist", "")
		}
		posts, err = s.store.Posts.ListByIndex(ctx, "author", author.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
		}
	} else {
		for post, err := range s.store.Posts.List(ctx) {
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
			}
			posts = append(posts, post)
		}
	}

	sortByRecency(posts, func(p *domain.Post) time.Time { return p.UpdatedAt })
	return posts, nil
}

// IsAuthor verifies that userID wrote the post. Fails NotFound when the
// post is missing and Forbidden on owner mismatch; never mutates.
func (s *PostService) IsAuthor(ctx context.Context, userID, postID string) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if !post.IsAuthoredBy(userID) {
		return errors.Forbidden("not the author of this post")
	}
	return nil
}

// UpdatePost edits the caller's own post. Nil fields are untouched.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, content *string, options *domain.PostOptions) (*domain.Post, error) {
	if err := s.IsAuthor(ctx, userID, postID); err != nil {
		return nil, err
	}

	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if content != nil {
		post.Content = *content
	}
	if options != nil {
		post.Options = options
	}
	post.Touch()

	if err := s.store.Posts.Update(ctx, post.ID, post); err != nil {
		return nil, translateStoreErr(err, "post does not exist", "")
	}

	if err := s.search.IndexPost(ctx, post); err != nil {
		s.logger.Warn("failed to reindex post", "post_id", post.ID, "error", err)
	}

	return post, nil
}

// DeletePost deletes the caller's own post. Saves and tag associations
// referencing it are left in place and tolerate the dangling reference.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	if err := s.IsAuthor(ctx, userID, postID); err != nil {
		return err
	}

	if err := s.store.Posts.Delete(ctx, postID); err != nil {
		return translateStoreErr(err, "post does not exist", "")
	}

	if err := s.search.DeletePost(ctx, postID); err != nil {
		s.logger.Warn("failed to remove post from index", "post_id", postID, "error", err)
	}

	s.logger.Info("post deleted", "post_id", postID, "author_id", userID)
	return nil
}

// MatchPosts returns posts whose content matches the keyword, best
// matches first. Posts deleted since indexing are skipped.
func (s *PostService) MatchPosts(ctx context.Context, keyword string) ([]*domain.Post, error) {
	ids, err := s.search.MatchPosts(ctx, keyword, 50)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search failure")
	}

	posts := make([]*domain.Post, 0, len(ids))
	for _, postID := range ids {
		post, err := s.store.Posts.Get(ctx, postID)
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

// ReindexAll rebuilds the search index from stored posts. Called at
// startup so the index catches up with writes it missed.
func (s *PostService) ReindexAll(ctx context.Context) error {
	var posts []*domain.Post
	for post, err := range s.store.Posts.List(ctx) {
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "storage failure")
		}
		posts = append(posts, post)
	}
	return s.search.IndexAll(posts)
}
