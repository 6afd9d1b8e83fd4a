// Package store persists domain records in a Badger key-value database.
package store

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/normalize"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Users       *Collection[domain.User]
	Posts       *Collection[domain.Post]
	Tags        *Collection[domain.Tag]
	TaggedPosts *Collection[domain.TaggedPost]
	Saves       *Collection[domain.Save]
	Features    *Collection[domain.Feature]
	Sessions    *Collection[domain.Session]
}

// New creates a new Store instance backed by the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to survive crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}
	s.initCollections()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

func (s *Store) initCollections() {
	// Usernames are unique after normalization, so "Alice" and "alice"
	// cannot both register.
	s.Users = NewCollection[domain.User](s, "user:").
		WithUniqueIndexTransform("username",
			func(u *domain.User) []string { return []string{u.CanonicalUsername} },
			normalize.Username,
		)

	s.Posts = NewCollection[domain.Post](s, "post:").
		WithMultiIndex("author", func(p *domain.Post) []string {
			return []string{p.AuthorID}
		})

	// A creator cannot hold two tags with the same normalized name.
	s.Tags = NewCollection[domain.Tag](s, "tag:").
		WithUniqueIndex("creator_name", func(t *domain.Tag) []string {
			return []string{t.CreatorID + "/" + t.CanonicalName}
		}).
		WithMultiIndex("creator", func(t *domain.Tag) []string {
			return []string{t.CreatorID}
		})

	// One association per (tag, post, tagger) triple; re-tagging the
	// same post with the same tag is a conflict, not a duplicate row.
	s.TaggedPosts = NewCollection[domain.TaggedPost](s, "tagged:").
		WithUniqueIndex("assoc", func(tp *domain.TaggedPost) []string {
			return []string{tp.TagID + "/" + tp.PostID + "/" + tp.TaggerID}
		}).
		WithMultiIndex("tag", func(tp *domain.TaggedPost) []string {
			return []string{tp.TagID}
		}).
		WithMultiIndex("post", func(tp *domain.TaggedPost) []string {
			return []string{tp.PostID}
		}).
		WithMultiIndex("tagger", func(tp *domain.TaggedPost) []string {
			return []string{tp.TaggerID}
		})

	// Saves are intentionally unconstrained: a user may save the same
	// post any number of times.
	s.Saves = NewCollection[domain.Save](s, "save:").
		WithMultiIndex("save_author", func(sv *domain.Save) []string {
			return []string{sv.SaveAuthorID}
		}).
		WithMultiIndex("post", func(sv *domain.Save) []string {
			return []string{sv.PostID}
		})

	// At most one feature per post.
	s.Features = NewCollection[domain.Feature](s, "feature:").
		WithUniqueIndex("post", func(f *domain.Feature) []string {
			return []string{f.PostID}
		})

	s.Sessions = NewCollection[domain.Session](s, "session:").
		WithMultiIndex("user", func(sess *domain.Session) []string {
			if sess.UserID == "" {
				return nil
			}
			return []string{sess.UserID}
		})
}
