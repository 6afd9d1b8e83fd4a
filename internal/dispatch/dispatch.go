// Package dispatch registers typed HTTP operations on a chi router.
//
// A handler is a function from a request struct to a response struct.
// Struct tags declare where each input field comes from: `path` fields
// bind from route placeholders, `query` fields from the query string,
// and `json` fields from the request body. When the same field is
// declared in several sources, path wins over query and query wins over
// body, so a client cannot smuggle a different record ID in the body of
// a request addressed to /posts/{id}.
package dispatch

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/savourapp/savour-server/internal/domain"
	"github.com/savourapp/savour-server/internal/errors"
	"github.com/savourapp/savour-server/internal/http/response"
	"github.com/savourapp/savour-server/internal/session"
	"github.com/savourapp/savour-server/internal/validation"
)

// Request bodies larger than this are rejected outright.
const maxBodyBytes = 1 << 20

// SessionLoader resolves the request's session before the handler runs.
// session.Manager satisfies this.
type SessionLoader interface {
	Load(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.Session, error)
}

// HandlerFunc is a typed operation handler. The bound, validated input
// is passed in; the output is wrapped in the standard response envelope.
type HandlerFunc[I, O any] func(ctx context.Context, in *I) (*O, error)

// Dispatcher owns a chi router and the cross-cutting request plumbing:
// session loading, input binding, validation, and error mapping.
type Dispatcher struct {
	router     chi.Router
	validator  *validation.Validator
	sessions   SessionLoader
	logger     *slog.Logger
	registered map[string]bool
}

// New creates a dispatcher on the given router.
func New(router chi.Router, validator *validation.Validator, sessions SessionLoader, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		router:     router,
		validator:  validator,
		sessions:   sessions,
		logger:     logger,
		registered: make(map[string]bool),
	}
}

// Group returns a dispatcher whose registrations run behind the given
// middleware. The duplicate-registration table is shared with the
// parent, so a route cannot be mounted twice across groups.
func (d *Dispatcher) Group(mw ...func(http.Handler) http.Handler) *Dispatcher {
	return &Dispatcher{
		router:     d.router.With(mw...),
		validator:  d.validator,
		sessions:   d.sessions,
		logger:     d.logger,
		registered: d.registered,
	}
}

// Option tweaks a single registration.
type Option func(*operation)

// WithSuccessStatus overrides the status code written on success.
// The default is 200, or 201 for POST.
func WithSuccessStatus(status int) Option {
	return func(op *operation) {
		op.successStatus = status
	}
}

type operation struct {
	successStatus int
}

// Register mounts a typed handler at method+pattern. Registering the
// same method and pattern twice panics: silent overwrites are route
// bugs that should fail at startup, not in production traffic.
func Register[I, O any](d *Dispatcher, method, pattern string, handler HandlerFunc[I, O], opts ...Option) {
	key := method + " " + pattern
	if d.registered[key] {
		panic(fmt.Sprintf("dispatch: duplicate registration for %s", key))
	}
	d.registered[key] = true

	op := &operation{successStatus: http.StatusOK}
	if method == http.MethodPost {
		op.successStatus = http.StatusCreated
	}
	for _, opt := range opts {
		opt(op)
	}

	plan := buildPlan[I](method, pattern)

	d.router.MethodFunc(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess, err := d.sessions.Load(ctx, w, r)
		if err != nil {
			d.logger.Error("Failed to load session", "error", err)
			response.InternalError(w, d.logger)
			return
		}
		ctx = session.WithSession(ctx, sess)
		ctx = session.WithResponder(ctx, w)

		in := new(I)
		if err := plan.bind(r, in); err != nil {
			response.HandleError(w, err, d.logger)
			return
		}

		if err := d.validator.Validate(in); err != nil {
			response.HandleError(w, err, d.logger)
			return
		}

		out, err := handler(ctx, in)
		if err != nil {
			response.HandleError(w, err, d.logger)
			return
		}

		if out == nil {
			response.NoContent(w)
			return
		}
		response.JSON(w, op.successStatus, out, d.logger)
	})
}

// bindingPlan is the per-operation binding strategy, computed once at
// registration from the input struct's tags.
type bindingPlan struct {
	hasBody bool
	query   []fieldBinding
	path    []fieldBinding
}

type fieldBinding struct {
	index []int
	name  string
}

func buildPlan[I any](method, pattern string) *bindingPlan {
	t := reflect.TypeFor[I]()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("dispatch: input type %s is not a struct", t))
	}

	plan := &bindingPlan{}
	placeholders := patternPlaceholders(pattern)

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		if name := field.Tag.Get("path"); name != "" {
			if !placeholders[name] {
				panic(fmt.Sprintf("dispatch: field %s.%s binds path param %q absent from pattern %s",
					t.Name(), field.Name, name, pattern))
			}
			checkBindableKind(t, field)
			plan.path = append(plan.path, fieldBinding{index: field.Index, name: name})
			continue
		}

		if name := field.Tag.Get("query"); name != "" {
			checkBindableKind(t, field)
			plan.query = append(plan.query, fieldBinding{index: field.Index, name: name})
			continue
		}

		if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name != "" && name != "-" {
			plan.hasBody = true
		}
	}

	if plan.hasBody && (method == http.MethodGet || method == http.MethodHead) {
		panic(fmt.Sprintf("dispatch: %s %s declares body fields", method, pattern))
	}

	return plan
}

func checkBindableKind(t reflect.Type, field reflect.StructField) {
	switch field.Type.Kind() {
	case reflect.String, reflect.Bool, reflect.Int, reflect.Int64, reflect.Float64:
	default:
		panic(fmt.Sprintf("dispatch: field %s.%s has unbindable type %s", t.Name(), field.Name, field.Type))
	}
}

func patternPlaceholders(pattern string) map[string]bool {
	placeholders := make(map[string]bool)
	for _, segment := range strings.Split(pattern, "/") {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			placeholders[segment[1:len(segment)-1]] = true
		}
	}
	return placeholders
}

// bind fills in from the request: body first, then query, then path,
// so the more authoritative source always lands last.
func (p *bindingPlan) bind(r *http.Request, in any) error {
	if p.hasBody && r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return errors.Validation("failed to read request body")
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, in); err != nil {
				return errors.Validation("malformed JSON body").WithCause(err)
			}
		}
	}

	v := reflect.ValueOf(in).Elem()

	queryValues := r.URL.Query()
	for _, b := range p.query {
		if !queryValues.Has(b.name) {
			continue
		}
		if err := setField(v.FieldByIndex(b.index), queryValues.Get(b.name)); err != nil {
			return errors.Validationf("invalid query parameter %q", b.name)
		}
	}

	for _, b := range p.path {
		raw := chi.URLParam(r, b.name)
		if raw == "" {
			continue
		}
		if err := setField(v.FieldByIndex(b.index), raw); err != nil {
			return errors.Validationf("invalid path parameter %q", b.name)
		}
	}

	return nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(parsed)
	case reflect.Int, reflect.Int64:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(parsed)
	case reflect.Float64:
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(parsed)
	default:
		return fmt.Errorf("unbindable kind %s", field.Kind())
	}
	return nil
}
