package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savourapp/savour-server/internal/errors"
)

func TestCreateTagDefaultsPublic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")

	tag, err := env.tags.CreateTag(ctx, alice.ID, "Good Reads", "")
	require.NoError(t, err)
	assert.True(t, tag.IsPublic)
	assert.Equal(t, "good reads", tag.CanonicalName)

	private, err := env.tags.CreateTag(ctx, alice.ID, "guilty pleasures", VisibilityPrivate)
	require.NoError(t, err)
	assert.False(t, private.IsPublic)
}

func TestCreateTagDuplicateNamePerCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")

	_, err := env.tags.CreateTag(ctx, alice.ID, "recipes", "")
	require.NoError(t, err)

	// Same creator, same normalized name: conflict.
	_, err = env.tags.CreateTag(ctx, alice.ID, "  RECIPES ", "")
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeAlreadyExists, domainErr.Code)

	// A different creator can reuse the name.
	_, err = env.tags.CreateTag(ctx, bob.ID, "recipes", "")
	assert.NoError(t, err)
}

func TestListTagsVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")

	_, err := env.tags.CreateTag(ctx, alice.ID, "shared", "")
	require.NoError(t, err)
	_, err = env.tags.CreateTag(ctx, alice.ID, "secret", VisibilityPrivate)
	require.NoError(t, err)

	aliceView, err := env.tags.ListTags(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceView, 2)

	bobView, err := env.tags.ListTags(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobView, 1)
	assert.Equal(t, "shared", bobView[0].CanonicalName)

	anonView, err := env.tags.ListTags(ctx, "")
	require.NoError(t, err)
	assert.Len(t, anonView, 1)
}

func TestAssociateDefaultsByAuthorship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice.ID, "alice's post")

	tag, err := env.tags.CreateTag(ctx, alice.ID, "topic", "")
	require.NoError(t, err)

	// The author's association defaults to public.
	mine, err := env.tags.Associate(ctx, alice.ID, tag.ID, post.ID, "")
	require.NoError(t, err)
	assert.False(t, mine.IsPrivate)

	// Someone else's association defaults to private.
	theirs, err := env.tags.Associate(ctx, bob.ID, tag.ID, post.ID, "")
	require.NoError(t, err)
	assert.True(t, theirs.IsPrivate)
}

func TestAssociatePublicRequiresAuthorship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice.ID, "alice's post")

	tag, err := env.tags.CreateTag(ctx, bob.ID, "topic", "")
	require.NoError(t, err)

	_, err = env.tags.Associate(ctx, bob.ID, tag.ID, post.ID, VisibilityPublic)
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeForbidden, domainErr.Code)
}

func TestAssociateDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	post := env.mustPost(t, alice.ID, "post")
	tag, err := env.tags.CreateTag(ctx, alice.ID, "topic", "")
	require.NoError(t, err)

	_, err = env.tags.Associate(ctx, alice.ID, tag.ID, post.ID, "")
	require.NoError(t, err)

	_, err = env.tags.Associate(ctx, alice.ID, tag.ID, post.ID, "")
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeAlreadyExists, domainErr.Code)
}

func TestListAssociationsFiltersPrivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice.ID, "alice's post")

	tag, err := env.tags.CreateTag(ctx, alice.ID, "topic", "")
	require.NoError(t, err)

	_, err = env.tags.Associate(ctx, alice.ID, tag.ID, post.ID, VisibilityPublic)
	require.NoError(t, err)
	_, err = env.tags.Associate(ctx, bob.ID, tag.ID, post.ID, VisibilityPrivate)
	require.NoError(t, err)

	// Bob sees the public association and his own private one.
	bobView, err := env.tags.ListAssociations(ctx, bob.ID, tag.ID, "")
	require.NoError(t, err)
	assert.Len(t, bobView, 2)

	// Alice sees only the public one.
	aliceView, err := env.tags.ListAssociations(ctx, alice.ID, tag.ID, "")
	require.NoError(t, err)
	require.Len(t, aliceView, 1)
	assert.False(t, aliceView[0].IsPrivate)
}

func TestListAssociationsVisibilityFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice.ID, "alice's post")

	tag, err := env.tags.CreateTag(ctx, alice.ID, "topic", "")
	require.NoError(t, err)

	_, err = env.tags.Associate(ctx, alice.ID, tag.ID, post.ID, VisibilityPublic)
	require.NoError(t, err)
	_, err = env.tags.Associate(ctx, bob.ID, tag.ID, post.ID, VisibilityPrivate)
	require.NoError(t, err)

	// Bob can ask for just his private associations.
	private, err := env.tags.ListAssociations(ctx, bob.ID, tag.ID, VisibilityPrivate)
	require.NoError(t, err)
	require.Len(t, private, 1)
	assert.True(t, private[0].IsPrivate)
	assert.Equal(t, bob.ID, private[0].TaggerID)

	public, err := env.tags.ListAssociations(ctx, bob.ID, tag.ID, VisibilityPublic)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.False(t, public[0].IsPrivate)

	// Private narrowing never exposes other users' associations.
	none, err := env.tags.ListAssociations(ctx, alice.ID, tag.ID, VisibilityPrivate)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = env.tags.ListAssociations(ctx, bob.ID, tag.ID, "sideways")
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeValidation, domainErr.Code)
}

// A user may tag another user's post, and only the tagger may remove
// that specific association.
func TestDissociateOnlyByTagger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	bob := env.mustRegister(t, "bob")
	post := env.mustPost(t, alice.ID, "alice's post")

	tag, err := env.tags.CreateTag(ctx, alice.ID, "topic", "")
	require.NoError(t, err)

	// Bob tags Alice's post.
	_, err = env.tags.Associate(ctx, bob.ID, tag.ID, post.ID, "")
	require.NoError(t, err)

	// Alice (post author, tag creator, but not the tagger) cannot
	// remove Bob's association.
	err = env.tags.Dissociate(ctx, alice.ID, tag.ID, post.ID)
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeForbidden, domainErr.Code)

	// Bob can, and afterwards it no longer lists.
	require.NoError(t, env.tags.Dissociate(ctx, bob.ID, tag.ID, post.ID))

	assocs, err := env.tags.ListAssociations(ctx, bob.ID, tag.ID, "")
	require.NoError(t, err)
	assert.Empty(t, assocs)
}

func TestDissociateMissingAssociation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.mustRegister(t, "alice")
	post := env.mustPost(t, alice.ID, "post")
	tag, err := env.tags.CreateTag(ctx, alice.ID, "topic", "")
	require.NoError(t, err)

	err = env.tags.Dissociate(ctx, alice.ID, tag.ID, post.ID)
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, errors.CodeNotFound, domainErr.Code)
}
