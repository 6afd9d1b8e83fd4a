package dispatch

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/errors"
	"github.com/savourapp/savour-server/internal/http/response"
	"github.com/savourapp/savour-server/internal/session"
	"github.com/savourapp/savour-server/internal/validation"
)

// stubSessions hands every request the same session without touching
// a store.
type stubSessions struct {
	session *domain.Session
}

func (s *stubSessions) Load(_ context.Context, _ http.ResponseWriter, _ *http.Request) (*domain.Session, error) {
	return s.session, nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *domain.Session) {
	t.Helper()

	sess := domain.NewSession("sess-test", time.Hour)
	d := New(chi.NewRouter(), validation.New(), &stubSessions{session: sess}, slog.New(slog.DiscardHandler))
	return d, sess
}

func (d *Dispatcher) serve(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	d.router.ServeHTTP(rec, req)
	return rec
}

type echoInput struct {
	ID      string `path:"id" json:"id" validate:"omitempty"`
	Filter  string `query:"filter" json:"filter"`
	Content string `json:"content"`
}

type echoOutput struct {
	ID      string `json:"id"`
	Filter  string `json:"filter"`
	Content string `json:"content"`
}

func echoHandler(_ context.Context, in *echoInput) (*echoOutput, error) {
	return &echoOutput{ID: in.ID, Filter: in.Filter, Content: in.Content}, nil
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data    T    `json:"data"`
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)
	return env.Data
}

func TestBodyBinding(t *testing.T) {
	d, _ := newTestDispatcher(t)
	Register(d, http.MethodPost, "/echo", echoHandler)

	rec := d.serve(http.MethodPost, "/echo", `{"content":"hello"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	out := decodeData[echoOutput](t, rec)
	assert.Equal(t, "hello", out.Content)
}

func TestQueryOverridesBody(t *testing.T) {
	d, _ := newTestDispatcher(t)
	Register(d, http.MethodPost, "/echo", echoHandler)

	rec := d.serve(http.MethodPost, "/echo?filter=from-query", `{"filter":"from-body"}`)
	out := decodeData[echoOutput](t, rec)
	assert.Equal(t, "from-query", out.Filter)
}

func TestPathOverridesBody(t *testing.T) {
	d, _ := newTestDispatcher(t)
	Register(d, http.MethodPost, "/echo/{id}", echoHandler)

	rec := d.serve(http.MethodPost, "/echo/real-id", `{"id":"smuggled-id"}`)
	out := decodeData[echoOutput](t, rec)
	assert.Equal(t, "real-id", out.ID)
}

func TestMalformedBodyRejected(t *testing.T) {
	d, _ := newTestDispatcher(t)
	Register(d, http.MethodPost, "/echo", echoHandler)

	rec := d.serve(http.MethodPost, "/echo", `{"content":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type validatedInput struct {
	PostID string `path:"id" validate:"required,recordid"`
}

func TestPathValidation(t *testing.T) {
	d, _ := newTestDispatcher(t)
	Register(d, http.MethodGet, "/posts/{id}", func(_ context.Context, in *validatedInput) (*echoOutput, error) {
		return &echoOutput{ID: in.PostID}, nil
	})

	rec := d.serve(http.MethodGet, "/posts/not-a-record-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	d, _ := newTestDispatcher(t)
	Register(d, http.MethodGet, "/dup", echoHandler)

	assert.Panics(t, func() {
		Register(d, http.MethodGet, "/dup", echoHandler)
	})
}

func TestPathTagMustMatchPattern(t *testing.T) {
	d, _ := newTestDispatcher(t)

	assert.Panics(t, func() {
		Register(d, http.MethodGet, "/posts", func(_ context.Context, in *validatedInput) (*echoOutput, error) {
			return nil, nil
		})
	})
}

func TestLiteralRouteBeatsPlaceholder(t *testing.T) {
	d, _ := newTestDispatcher(t)

	type emptyInput struct{}
	type whichOutput struct {
		Which string `json:"which"`
	}

	Register(d, http.MethodGet, "/things/{id}", func(_ context.Context, _ *emptyInput) (*whichOutput, error) {
		return &whichOutput{Which: "placeholder"}, nil
	})
	Register(d, http.MethodGet, "/things/search", func(_ context.Context, _ *emptyInput) (*whichOutput, error) {
		return &whichOutput{Which: "literal"}, nil
	})

	rec := d.serve(http.MethodGet, "/things/search", "")
	out := decodeData[whichOutput](t, rec)
	assert.Equal(t, "literal", out.Which)

	rec = d.serve(http.MethodGet, "/things/xyz", "")
	out = decodeData[whichOutput](t, rec)
	assert.Equal(t, "placeholder", out.Which)
}

func TestSessionInjection(t *testing.T) {
	d, sess := newTestDispatcher(t)
	sess.Bind("user-42", time.Hour)

	type emptyInput struct{}
	type userOutput struct {
		UserID string `json:"user_id"`
	}

	Register(d, http.MethodGet, "/whoami", func(ctx context.Context, _ *emptyInput) (*userOutput, error) {
		userID, err := session.UserID(ctx)
		if err != nil {
			return nil, err
		}
		return &userOutput{UserID: userID}, nil
	})

	rec := d.serve(http.MethodGet, "/whoami", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	out := decodeData[userOutput](t, rec)
	assert.Equal(t, "user-42", out.UserID)
}

func TestHandlerErrorMapping(t *testing.T) {
	d, _ := newTestDispatcher(t)

	type emptyInput struct{}
	Register(d, http.MethodGet, "/missing", func(_ context.Context, _ *emptyInput) (*echoOutput, error) {
		return nil, errors.NotFound("nothing here")
	})

	rec := d.serve(http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNilOutputIsNoContent(t *testing.T) {
	d, _ := newTestDispatcher(t)

	type emptyInput struct{}
	Register(d, http.MethodDelete, "/gone", func(_ context.Context, _ *emptyInput) (*echoOutput, error) {
		return nil, nil
	})

	rec := d.serve(http.MethodDelete, "/gone", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSuccessStatusOverride(t *testing.T) {
	d, _ := newTestDispatcher(t)

	type emptyInput struct{}
	Register(d, http.MethodPost, "/login-like", func(_ context.Context, _ *emptyInput) (*echoOutput, error) {
		return &echoOutput{}, nil
	}, WithSuccessStatus(http.StatusOK))

	rec := d.serve(http.MethodPost, "/login-like", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
