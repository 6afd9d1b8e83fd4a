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

func (c *client) createPost(content string) *dto.Post {
	c.t.Helper()

	rec := c.do(http.MethodPost, "/posts", fmt.Sprintf(`{"content":%q}`, content))
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[*dto.Post](c.t, rec)
}

func TestCreatePostRequiresLogin(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	rec := c.do(http.MethodPost, "/posts", `{"content":"drive-by"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePostValidation(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	c.register("alice", "correct horse")
	c.mustLogin("alice", "correct horse")

	rec := c.do(http.MethodPost, "/posts", `{"content":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(errors.CodeValidation), decodeError(t, rec).Code)
}

func TestCreateAndListPosts(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t, srv)
	bob := newClient(t, srv)

	alice.register("alice", "correct horse")
	alice.mustLogin("alice", "correct horse")
	bob.register("bob", "correct horse")
	bob.mustLogin("bob", "correct horse")

	alice.createPost("first")
	alice.createPost("second")
	bob.createPost("interloper")

	rec := alice.do(http.MethodGet, "/posts?author=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeData[*PostListResponse](t, rec)
	require.Len(t, listing.Posts, 2)
	assert.Equal(t, "alice", listing.Posts[0].Author)

	rec = alice.do(http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[*PostListResponse](t, rec).Posts, 3)

	rec = alice.do(http.MethodGet, "/posts?author=nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePostOwnership(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t, srv)
	bob := newClient(t, srv)

	alice.register("alice", "correct horse")
	alice.mustLogin("alice", "correct horse")
	bob.register("bob", "correct horse")
	bob.mustLogin("bob", "correct horse")

	post := alice.createPost("original")

	rec := bob.do(http.MethodPatch, "/posts/"+post.ID, `{"content":"defaced"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, string(errors.CodeForbidden), decodeError(t, rec).Code)

	rec = alice.do(http.MethodPatch, "/posts/"+post.ID, `{"content":"revised"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revised", decodeData[*dto.Post](t, rec).Content)
}

func TestDeletePost(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	c.register("alice", "correct horse")
	c.mustLogin("alice", "correct horse")
	post := c.createPost("fleeting")

	rec := c.do(http.MethodDelete, "/posts/"+post.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/posts?author=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[*PostListResponse](t, rec).Posts)
}

func TestPostsByDeletedAuthor(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	c.register("alice", "correct horse")
	c.mustLogin("alice", "correct horse")
	c.createPost("orphan soon")

	rec := c.do(http.MethodDelete, "/users", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The post survives its author, with a placeholder byline.
	rec = c.do(http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeData[*PostListResponse](t, rec)
	require.Len(t, listing.Posts, 1)
	assert.Equal(t, dto.DeletedUserLabel, listing.Posts[0].Author)
}

func TestMatchPosts(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	c.register("alice", "correct horse")
	c.mustLogin("alice", "correct horse")
	hit := c.createPost("slow cooked ragu recipe")
	c.createPost("completely unrelated")

	rec := c.do(http.MethodGet, "/match?keyword=ragu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeData[*PostListResponse](t, rec)
	require.Len(t, listing.Posts, 1)
	assert.Equal(t, hit.ID, listing.Posts[0].ID)

	// Substrings inside words match too.
	rec = c.do(http.MethodGet, "/match?keyword=rag", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[*PostListResponse](t, rec).Posts, 1)

	// An empty keyword matches nothing rather than everything.
	rec = c.do(http.MethodGet, "/match", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[*PostListResponse](t, rec).Posts)
}
