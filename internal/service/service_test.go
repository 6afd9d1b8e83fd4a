package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/search"
	"github.com/savourapp/savour-server/internal/store"
)

type testEnv struct {
	store    *store.Store
	users    *UserService
	posts    *PostService
	tags     *TagService
	saves    *SaveService
	features *FeatureService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ix, err := search.New(search.Options{DataPath: t.TempDir(), Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	return &testEnv{
		store:    s,
		users:    NewUserService(s, logger),
		posts:    NewPostService(s, ix, logger),
		tags:     NewTagService(s, logger),
		saves:    NewSaveService(s, logger),
		features: NewFeatureService(s, logger),
	}
}

func (e *testEnv) mustRegister(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), username, "hunter2hunter2", "")
	require.NoError(t, err)
	return u
}

func (e *testEnv) mustPost(t *testing.T, authorID, content string) *domain.Post {
	t.Helper()
	p, err := e.posts.CreatePost(context.Background(), authorID, content, nil)
	require.NoError(t, err)
	return p
}

// settle spaces out writes so updated-at ordering is unambiguous.
func settle() {
	time.Sleep(2 * time.Millisecond)
}
