package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/errors"
	"github.com/savourapp/savour-server/internal/id"
	"github.com/savourapp/savour-server/internal/normalize"
	"github.com/savourapp/savour-server/internal/store"
)

// Visibility values accepted on the wire for tags and associations.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// TagService manages tags and tag-post associations. Three owners are
// in play and never conflated: the tag's creator, the post's author,
// and the association's tagger. A user may tag another user's post,
// and only the tagger may later remove that specific association.
type TagService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// CreateTag creates a tag owned by creatorID. Tags default to public.
func (s *TagService) CreateTag(ctx context.Context, creatorID, name, visibility string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canonical := normalize.TagName(name)
	if canonical == "" {
		return nil, errors.Validation("tag name cannot be empty")
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	isPublic := visibility != VisibilityPrivate
	tag := domain.NewTag(tagID, creatorID, name, canonical, isPublic)

	if err := s.store.Tags.Create(ctx, tag.ID, tag); err != nil {
		return nil, translateStoreErr(err, "tag does not exist", "you already have a tag with this name")
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "creator_id", creatorID, "name", canonical)

	return tag, nil
}

// GetTag retrieves a tag by ID.
func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	tag, err := s.store.Tags.Get(ctx, tagID)
	if err != nil {
		return nil, translateStoreErr(err, "tag does not exist", "")
	}
	return tag, nil
}

// ListTags returns the tags visible to userID: every public tag plus
// the caller's own private ones. An empty userID sees only public
// tags. Most recently updated first.
func (s *TagService) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	for tag, err := range s.store.Tags.List(ctx) {
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
		}
		if tag.IsPublic || (userID != "" && tag.IsCreatedBy(userID)) {
			tags = append(tags, tag)
		}
	}
	sortByRecency(tags, func(t *domain.Tag) time.Time { return t.UpdatedAt })
	return tags, nil
}

// Associate attaches a tag to a post on behalf of userID. A public
// association may only be made by the post's author; when no
// visibility is requested, the association defaults to public for the
// author and private for everyone else. Re-tagging the same post with
// the same tag is a conflict.
func (s *TagService) Associate(ctx context.Context, userID, tagID, postID, visibility string) (*domain.TaggedPost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := s.GetTag(ctx, tagID); err != nil {
		return nil, err
	}

	post, err := s.store.Posts.Get(ctx, postID)
	if err != nil {
		return nil, translateStoreErr(err, "post does not exist", "")
	}

	isAuthor := post.IsAuthoredBy(userID)

	var isPrivate bool
	switch visibility {
	case VisibilityPublic:
		if !isAuthor {
			return nil, errors.Forbidden("only the post author can tag it publicly")
		}
		isPrivate = false
	case VisibilityPrivate:
		isPrivate = true
	case "":
		isPrivate = !isAuthor
	default:
		return nil, errors.Validationf("unknown visibility %q", visibility)
	}

	taggedID, err := id.Generate("tagged")
	if err != nil {
		return nil, fmt.Errorf("generate association ID: %w", err)
	}

	tagged := domain.NewTaggedPost(taggedID, tagID, postID, userID, isPrivate)

	if err := s.store.TaggedPosts.Create(ctx, tagged.ID, tagged); err != nil {
		return nil, translateStoreErr(err, "association does not exist", "post already tagged")
	}

	s.logger.Info("tag associated",
		"tagged_id", tagged.ID,
		"tag_id", tagID,
		"post_id", postID,
		"tagger_id", userID,
		"private", isPrivate,
	)

	return tagged, nil
}

// ListAssociations returns the tag's associations visible to userID:
// public ones plus the caller's own private ones. A non-empty
// visibility narrows the listing to just public or just private
// associations; private ones still only ever show to their tagger.
// Most recently updated first.
func (s *TagService) ListAssociations(ctx context.Context, userID, tagID, visibility string) ([]*domain.TaggedPost, error) {
	if _, err := s.GetTag(ctx, tagID); err != nil {
		return nil, err
	}
	if visibility != "" && visibility != VisibilityPublic && visibility != VisibilityPrivate {
		return nil, errors.Validationf("unknown visibility %q", visibility)
	}

	all, err := s.store.TaggedPosts.ListByIndex(ctx, "tag", tagID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "storage failure")
	}

	visible := make([]*domain.TaggedPost, 0, len(all))
	for _, tagged := range all {
		if !tagged.VisibleTo(userID) {
			continue
		}
		if visibility == VisibilityPublic && tagged.IsPrivate {
			continue
		}
		if visibility == VisibilityPrivate && !tagged.IsPrivate {
			continue
		}
		visible = append(visible, tagged)
	}
	sortByRecency(visible, func(tp *domain.TaggedPost) time.Time { return tp.UpdatedAt })
	return visible, nil
}

// IsTagger verifies that userID made the association. Fails NotFound
// when the association is missing and Forbidden on mismatch; never
// mutates.
func (s *TagService) IsTagger(ctx context.Context, userID, taggedID string) error {
	tagged, err := s.store.TaggedPosts.Get(ctx, taggedID)
	if err != nil {
		return translateStoreErr(err, "association does not exist", "")
	}
	if !tagged.IsTaggedBy(userID) {
		return errors.Forbidden("not the creator of this association")
	}
	return nil
}

// Dissociate removes userID's association of a tag with a post. When
// associations by other users exist but none by the caller, the
// failure is Forbidden, not NotFound: the caller can see the
// association exists but doesn't own it.
func (s *TagService) Dissociate(ctx context.Context, userID, tagID, postID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	all, err := s.store.TaggedPosts.ListByIndex(ctx, "tag", tagID)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "storage failure")
	}

	var mine *domain.TaggedPost
	found := false
	for _, tagged := range all {
		if tagged.PostID != postID {
			continue
		}
		found = true
		if tagged.IsTaggedBy(userID) {
			mine = tagged
			break
		}
	}

	if mine == nil {
		if found {
			return errors.Forbidden("not the creator of this association")
		}
		return errors.NotFound("association does not exist")
	}

	if err := s.store.TaggedPosts.Delete(ctx, mine.ID); err != nil {
		return translateStoreErr(err, "association does not exist", "")
	}

	s.logger.Info("tag dissociated", "tagged_id", mine.ID, "tag_id", tagID, "post_id", postID)
	return nil
}
