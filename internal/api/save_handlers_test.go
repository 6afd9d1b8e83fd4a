package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savourapp/savour-server/internal/dto"
	"github.com/savourapp/savour-server/internal/errors"
)

func (c *client) savePost(postID, notes string) *dto.Save {
	c.t.Helper()

	body := ""
	if notes != "" {
		body = fmt.Sprintf(`{"notes":%q}`, notes)
	}
	rec := c.do(http.MethodPost, "/saves/"+postID, body)
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[*dto.Save](c.t, rec)
}

func TestSaveAndListSaves(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t, srv)
	bob := newClient(t, srv)

	alice.register("alice", "correct horse")
	alice.mustLogin("alice", "correct horse")
	bob.register("bob", "correct horse")
	bob.mustLogin("bob", "correct horse")

	post := alice.createPost("worth keeping")

	save := bob.savePost(post.ID, "read later")
	assert.Equal(t, "bob", save.SaveAuthor)
	assert.Equal(t, post.ID, save.PostID)

	// Saving again makes a second, independent record.
	bob.savePost(post.ID, "")

	rec := bob.do(http.MethodGet, "/saves", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[*SaveListResponse](t, rec).Saves, 2)

	// Saves are private to their author.
	rec = alice.do(http.MethodGet, "/saves", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[*SaveListResponse](t, rec).Saves)

	rec = bob.do(http.MethodGet, "/saves/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	withNotes := decodeData[*SaveListResponse](t, rec)
	require.Len(t, withNotes.Saves, 1)
	assert.Equal(t, "read later", withNotes.Saves[0].Notes)
}

func TestSaveUnknownPost(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	c.register("alice", "correct horse")
	c.mustLogin("alice", "correct horse")

	rec := c.do(http.MethodPost, "/saves/post-aaaaaaaaaaaaaaaaaaaaa", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(errors.CodeNotFound), decodeError(t, rec).Code)
}

func TestUpdateSaveNotesOwnership(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t, srv)
	bob := newClient(t, srv)

	alice.register("alice", "correct horse")
	alice.mustLogin("alice", "correct horse")
	bob.register("bob", "correct horse")
	bob.mustLogin("bob", "correct horse")

	post := alice.createPost("post")
	save := alice.savePost(post.ID, "original")

	rec := bob.do(http.MethodPatch, "/saves",
		fmt.Sprintf(`{"id":%q,"notes":"hijacked"}`, save.ID))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = alice.do(http.MethodPatch, "/saves",
		fmt.Sprintf(`{"id":%q,"notes":"revised"}`, save.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revised", decodeData[*dto.Save](t, rec).Notes)
}

func TestDeleteSaveOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	c.register("alice", "correct horse")
	c.mustLogin("alice", "correct horse")

	post := c.createPost("post")
	save := c.savePost(post.ID, "")

	rec := c.do(http.MethodDelete, "/saves", fmt.Sprintf(`{"id":%q}`, save.ID))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/saves", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[*SaveListResponse](t, rec).Saves)
}

func TestFeatureRoutes(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	c.register("alice", "correct horse")
	c.mustLogin("alice", "correct horse")
	post := c.createPost("featured content")

	rec := c.do(http.MethodPost, "/feature", fmt.Sprintf(`{"post_id":%q}`, post.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, post.ID, decodeData[*dto.Post](t, rec).ID)

	// Featuring twice conflicts.
	rec = c.do(http.MethodPost, "/feature", fmt.Sprintf(`{"post_id":%q}`, post.ID))
	require.Equal(t, http.StatusConflict, rec.Code)

	// The featured listing is public.
	anon := newClient(t, srv)
	rec = anon.do(http.MethodGet, "/feature", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeData[*PostListResponse](t, rec)
	require.Len(t, listing.Posts, 1)
	assert.Equal(t, post.ID, listing.Posts[0].ID)

	rec = c.do(http.MethodDelete, "/feature", fmt.Sprintf(`{"post_id":%q}`, post.ID))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodDelete, "/feature", fmt.Sprintf(`{"post_id":%q}`, post.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
