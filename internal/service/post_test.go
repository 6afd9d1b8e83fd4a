package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savourapp/savour-server/internal/errors"
)

func TestListPostsByAuthorOrdered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")

	first := env.mustPost(t, alice.ID, "first")
	settle()
	second := env.mustPost(t, alice.ID, "second")
	settle()
	env.mustPost(t, bob.ID, "interloper")

	posts, err := env.posts.ListPosts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Most recently updated first.
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}

func TestListPostsUnknownAuthor(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.posts.ListPosts(context.Background(), "nobody")
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeNotFound, domainErr.Code)
}

func TestUpdateBumpsOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	first := env.mustPost(t, alice.ID, "first")
	settle()
	env.mustPost(t, alice.ID, "second")
	settle()

	content := "first, edited"
	_, err := env.posts.UpdatePost(ctx, alice.ID, first.ID, &content, nil)
	require.NoError(t, err)

	posts, err := env.posts.ListPosts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, posts[0].ID)
}

func TestIsAuthorOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice.ID, "mine")

	require.NoError(t, env.posts.IsAuthor(ctx, alice.ID, post.ID))

	err := env.posts.IsAuthor(ctx, bob.ID, post.ID)
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeForbidden, domainErr.Code)

	// Missing record is NotFound, not Forbidden.
	err = env.posts.IsAuthor(ctx, alice.ID, "post-aaaaaaaaaaaaaaaaaaaaa")
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeNotFound, domainErr.Code)
}

func TestUpdatePostByNonAuthorLeavesPostUnmodified(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice.ID, "original")

	content := "defaced"
	_, err := env.posts.UpdatePost(ctx, bob.ID, post.ID, &content, nil)
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeForbidden, domainErr.Code)

	got, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)
}

func TestDeletePostByNonAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice.ID, "keep me")

	err := env.posts.DeletePost(ctx, bob.ID, post.ID)
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeForbidden, domainErr.Code)

	_, err = env.posts.GetPost(ctx, post.ID)
	assert.NoError(t, err)
}

func TestMatchPostsSearchesContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	hit := env.mustPost(t, alice.ID, "slow cooked ragu recipe")
	env.mustPost(t, alice.ID, "completely unrelated")

	posts, err := env.posts.MatchPosts(ctx, "ragu")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, hit.ID, posts[0].ID)
}

func TestMatchPostsSkipsDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	post := env.mustPost(t, alice.ID, "fleeting thought")

	require.NoError(t, env.posts.DeletePost(ctx, alice.ID, post.ID))

	posts, err := env.posts.MatchPosts(ctx, "fleeting")
	require.NoError(t, err)
	assert.Empty(t, posts)
}
