package domain

import "time"

// Tag is a named label owned by its creator. Name holds the display
// form; CanonicalName is the normalized form used for per-creator
// uniqueness. A public tag's public associations are visible to
// everyone; a private tag is visible only to its creator.
type Tag struct {
	ID            string    `json:"id"`
	CreatorID     string    `json:"creator_id"`
	Name          string    `json:"name"`
	CanonicalName string    `json:"canonical_name"`
	IsPublic      bool      `json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewTag creates a new tag record.
func NewTag(id, creatorID, name, canonicalName string, isPublic bool) *Tag {
	now := time.Now()
	return &Tag{
		ID:            id,
		CreatorID:     creatorID,
		Name:          name,
		CanonicalName: canonicalName,
		IsPublic:      isPublic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsCreatedBy reports whether userID owns this tag.
func (t *Tag) IsCreatedBy(userID string) bool {
	return t.CreatorID == userID
}

// TaggedPost associates a post with a tag. TaggerID is the user who
// made the association; only they can remove it. A private association
// is visible only to its tagger regardless of tag visibility.
type TaggedPost struct {
	ID        string    `json:"id"`
	TagID     string    `json:"tag_id"`
	PostID    string    `json:"post_id"`
	TaggerID  string    `json:"tagger_id"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTaggedPost creates a new tag-post association.
func NewTaggedPost(id, tagID, postID, taggerID string, isPrivate bool) *TaggedPost {
	now := time.Now()
	return &TaggedPost{
		ID:        id,
		TagID:     tagID,
		PostID:    postID,
		TaggerID:  taggerID,
		IsPrivate: isPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsTaggedBy reports whether userID made this association.
func (tp *TaggedPost) IsTaggedBy(userID string) bool {
	return tp.TaggerID == userID
}

// VisibleTo reports whether userID may see this association.
// Private associations are visible only to their tagger.
func (tp *TaggedPost) VisibleTo(userID string) bool {
	return !tp.IsPrivate || tp.TaggerID == userID
}
