package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savourapp/savour-server/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()

	ix, err := New(Options{
		DataPath: t.TempDir(),
		Logger:   slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestMatchPostsWordMatch(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexPost(ctx, domain.NewPost("post-1", "user-1", "I love reading books", nil)))
	require.NoError(t, ix.IndexPost(ctx, domain.NewPost("post-2", "user-1", "cooking pasta tonight", nil)))

	ids, err := ix.MatchPosts(ctx, "reading", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"post-1"}, ids)
}

func TestMatchPostsSubstring(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexPost(ctx, domain.NewPost("post-1", "user-1", "proofreading my essay", nil)))

	ids, err := ix.MatchPosts(ctx, "read", 10)
	require.NoError(t, err)
	assert.Contains(t, ids, "post-1")
}

func TestMatchPostsCaseInsensitive(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexPost(ctx, domain.NewPost("post-1", "user-1", "Savour Every Moment", nil)))

	ids, err := ix.MatchPosts(ctx, "SAVOUR", 10)
	require.NoError(t, err)
	assert.Contains(t, ids, "post-1")
}

func TestMatchPostsEmptyTerm(t *testing.T) {
	ix := newTestIndex(t)

	ids, err := ix.MatchPosts(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeletePostRemovesFromIndex(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.IndexPost(ctx, domain.NewPost("post-1", "user-1", "ephemeral thought", nil)))
	require.NoError(t, ix.DeletePost(ctx, "post-1"))

	ids, err := ix.MatchPosts(ctx, "ephemeral", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateReplacesContent(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	post := domain.NewPost("post-1", "user-1", "original wording", nil)
	require.NoError(t, ix.IndexPost(ctx, post))

	post.Content = "revised wording"
	require.NoError(t, ix.IndexPost(ctx, post))

	ids, err := ix.MatchPosts(ctx, "original", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = ix.MatchPosts(ctx, "revised", 10)
	require.NoError(t, err)
	assert.Contains(t, ids, "post-1")
}

func TestIndexAllBatch(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	posts := []*domain.Post{
		domain.NewPost("post-1", "user-1", "alpha", nil),
		domain.NewPost("post-2", "user-1", "beta", nil),
		domain.NewPost("post-3", "user-2", "gamma", nil),
	}
	require.NoError(t, ix.IndexAll(posts))

	ids, err := ix.MatchPosts(ctx, "beta", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"post-2"}, ids)
}
