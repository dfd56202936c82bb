// Package handler implements the /api/v1 REST endpoints. Handlers read and
// write through storage.Storage, walk associations with relation.Resolver
// and answer with the dict form of each entity.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/queue"
	"github.com/iliyamo/rental-api/internal/relation"
	"github.com/iliyamo/rental-api/internal/search"
	"github.com/iliyamo/rental-api/internal/storage"
	"github.com/iliyamo/rental-api/internal/utils"
)

const (
	msgNotFound = "Not found"
	msgNotJSON  = "Not a JSON"
	msgInternal = "internal error"
)

// Keys a client can never set.
var managedKeys = []string{"id", "created_at", "updated_at", "__class__", "amenity_ids", "amenities"}

// Events receives a notification after every successful write.
type Events interface {
	Publish(ctx context.Context, event queue.ChangeEvent) error
}

// Handler bundles the dependencies shared by every endpoint.
type Handler struct {
	Store      storage.Storage
	Rel        *relation.Resolver
	Search     *search.Engine
	Events     Events // nil disables change events
	BcryptCost int

	validate *validator.Validate
}

// NewHandler constructs a Handler and panics if a required dependency is nil.
func NewHandler(store storage.Storage, rel *relation.Resolver, engine *search.Engine, events Events, bcryptCost int) *Handler {
	if store == nil || rel == nil || engine == nil {
		panic("nil dependency passed to NewHandler")
	}
	return &Handler{
		Store:      store,
		Rel:        rel,
		Search:     engine,
		Events:     events,
		BcryptCost: bcryptCost,
		validate:   newValidator(),
	}
}

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// object is a request body decoded one level deep.
type object map[string]json.RawMessage

// readObject decodes the request body as a JSON object. ok is false when
// the body is absent, malformed or not an object.
func readObject(c echo.Context) (object, bool) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, false
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return nil, false
	}
	return o, true
}

// set reports whether key is present with a non-null value.
func (o object) set(key string) bool {
	raw, ok := o[key]
	return ok && string(bytes.TrimSpace(raw)) != "null"
}

// without returns a copy of o minus keys.
func (o object) without(keys ...string) object {
	out := make(object, len(o))
	for k, v := range o {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// decodeInto applies the fields of o to dst.
func (o object) decodeInto(dst any) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// missing validates the named fields of in (all of them when none are
// named) and returns the JSON name of the first one absent.
func (h *Handler) missing(in any, fields ...string) (string, bool) {
	var err error
	if len(fields) == 0 {
		err = h.validate.Struct(in)
	} else {
		err = h.validate.StructPartial(in, fields...)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), true
	}
	return "", false
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func notFound(c echo.Context) error { return errorJSON(c, http.StatusNotFound, msgNotFound) }

func badRequest(c echo.Context, msg string) error {
	return errorJSON(c, http.StatusBadRequest, msg)
}

func missingField(c echo.Context, field string) error {
	return badRequest(c, "Missing "+field)
}

// badInput maps a decoding failure to a 400 naming the offending field.
func badInput(c echo.Context, err error) error {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) && te.Field != "" {
		return badRequest(c, "Invalid "+te.Field)
	}
	return badRequest(c, msgNotJSON)
}

// fail maps storage and association errors to responses.
func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, relation.ErrNotLinked):
		return notFound(c)
	}
	slog.Error("request failed",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"err", err)
	return errorJSON(c, http.StatusInternalServerError, msgInternal)
}

// render is the API form of e. Places carry their resolved amenities.
func (h *Handler) render(ctx context.Context, e model.Entity) (map[string]any, error) {
	m, err := model.PublicDict(e)
	if err != nil {
		return nil, err
	}
	if p, ok := e.(*model.Place); ok {
		amenities, err := h.Rel.AmenitiesOfPlace(ctx, p)
		if err != nil {
			return nil, err
		}
		if m["amenities"], err = publicDicts(amenities); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func publicDicts[T model.Entity](items []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m, err := model.PublicDict(it)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func renderList[T model.Entity](ctx context.Context, h *Handler, items []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m, err := h.render(ctx, it)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (h *Handler) respond(c echo.Context, code int, e model.Entity) error {
	m, err := h.render(c.Request().Context(), e)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(code, m)
}

func respondList[T model.Entity](c echo.Context, h *Handler, items []T) error {
	out, err := renderList(c.Request().Context(), h, items)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// publish emits a change event. Failures are logged by the publisher and
// never reach the client.
func (h *Handler) publish(ctx context.Context, action string, e model.Entity, parentID string) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	ev := queue.ChangeEvent{
		Action:   action,
		Kind:     string(e.Kind()),
		ID:       e.Base().ID,
		ParentID: parentID,
	}
	if err := h.Events.Publish(ctx, ev); err != nil {
		slog.Debug("change event dropped", "action", action, "kind", ev.Kind, "id", ev.ID)
	}
}

// hashPassword replaces the plain password on a User with its bcrypt hash.
func (h *Handler) hashPassword(e model.Entity) error {
	u, ok := e.(*model.User)
	if !ok {
		return nil
	}
	hash, err := utils.HashPassword(u.Password, h.BcryptCost)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

// passwordFail answers 400 for a password bcrypt cannot hash.
func (h *Handler) passwordFail(c echo.Context, err error) error {
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return badRequest(c, "Invalid password")
	}
	return h.fail(c, err)
}

// insert assigns identity to a decoded entity, persists it and answers 201.
func (h *Handler) insert(c echo.Context, e model.Entity, parentID string) error {
	ctx := c.Request().Context()
	e.Base().Init()
	if err := h.hashPassword(e); err != nil {
		return h.passwordFail(c, err)
	}
	if err := storage.Persist(ctx, h.Store, e); err != nil {
		return h.fail(c, err)
	}
	h.publish(ctx, queue.ActionCreated, e, parentID)
	return h.respond(c, http.StatusCreated, e)
}

// readCreate reads a create body into in and checks the named required
// fields. It writes the error response itself and returns ok=false then.
func (h *Handler) readCreate(c echo.Context, in any, fields ...string) (object, bool, error) {
	body, ok := readObject(c)
	if !ok || len(body) == 0 {
		return nil, false, badRequest(c, msgNotJSON)
	}
	if err := body.decodeInto(in); err != nil {
		return nil, false, badInput(c, err)
	}
	if field, miss := h.missing(in, fields...); miss {
		return nil, false, missingField(c, field)
	}
	return body.without(managedKeys...), true, nil
}

func show[T model.Entity](c echo.Context, h *Handler, param string) error {
	e, err := storage.Get[T](c.Request().Context(), h.Store, c.Param(param))
	if err != nil {
		return h.fail(c, err)
	}
	return h.respond(c, http.StatusOK, e)
}

func list[T model.Entity](c echo.Context, h *Handler) error {
	items, err := storage.List[T](c.Request().Context(), h.Store)
	if err != nil {
		return h.fail(c, err)
	}
	return respondList(c, h, items)
}

// remove deletes the entity named by param together with its dependents.
func remove[T model.Entity](c echo.Context, h *Handler, param string) error {
	ctx := c.Request().Context()
	e, err := storage.Get[T](ctx, h.Store, c.Param(param))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Rel.Delete(ctx, e); err != nil {
		return h.fail(c, err)
	}
	h.publish(ctx, queue.ActionDeleted, e, "")
	return c.JSON(http.StatusOK, map[string]any{})
}

// update merges the request body into the entity named by param. Managed
// keys and the given immutable keys are ignored. The merge happens on a copy
// so a bad body leaves the stored entity untouched.
func update[T model.Entity](c echo.Context, h *Handler, param string, immutable ...string) error {
	ctx := c.Request().Context()
	cur, err := storage.Get[T](ctx, h.Store, c.Param(param))
	if err != nil {
		return h.fail(c, err)
	}
	body, ok := readObject(c)
	if !ok || len(body) == 0 {
		return badRequest(c, msgNotJSON)
	}
	next, err := model.Clone(cur)
	if err != nil {
		return h.fail(c, err)
	}
	patch := body.without(append(append([]string(nil), managedKeys...), immutable...)...)
	if !patch.set("password") {
		// null keeps the stored hash
		delete(patch, "password")
	}
	if err := patch.decodeInto(next); err != nil {
		return badInput(c, err)
	}
	if patch.set("password") {
		if err := h.hashPassword(next); err != nil {
			return h.passwordFail(c, err)
		}
	}
	next.Base().Touch()
	if err := storage.Persist(ctx, h.Store, next); err != nil {
		return h.fail(c, err)
	}
	h.publish(ctx, queue.ActionUpdated, next, "")
	return h.respond(c, http.StatusOK, next)
}
