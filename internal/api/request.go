package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/core"
	"github.com/artpar/feedsync/internal/lifecycle"
)

const (
	msgItemNotFound   = "The article was not found on the server."
	msgFeedNotFound   = "The feed was not found on the server."
	msgFolderNotFound = "The folder was not found on the server."

	msgInvalidItemID = "The article ID is not valid."
	msgEmptyGUIDHash = "The GUID hash can not be empty."
)

// toggle is the empty payload sent by the mark and star endpoints.
var toggle = struct{}{}

func strID(v int64) string {
	return strconv.FormatInt(v, 10)
}

func newGet(route core.Route) (*core.Request, error) {
	return core.NewRequest(http.MethodGet, route)
}

func newDelete(route core.Route) (*core.Request, error) {
	return core.NewRequest(http.MethodDelete, route)
}

func newWithPayload(method string, route core.Route, payload any) (*core.Request, error) {
	req, err := core.NewRequest(method, route)
	if err != nil {
		return nil, err
	}
	body, err := core.NewJSONBody(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	req.SetBody(body)
	return req, nil
}

func checkID(v int64, message string) *apierr.Error {
	if v <= 0 {
		return apierr.Input(apierr.CodeInvalidID, message)
	}
	return nil
}

func checkNotEmpty(v, message string) *apierr.Error {
	if v == "" {
		return apierr.Input(apierr.CodeEmptyValue, message)
	}
	return nil
}

// firstErr returns the first failed check.
func firstErr(checks ...func() *apierr.Error) *apierr.Error {
	for _, check := range checks {
		if e := check(); e != nil {
			return e
		}
	}
	return nil
}

// member decodes one member of an object body.
func member[T any](body json.RawMessage, name string) (T, error) {
	var out T
	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return out, err
	}
	raw, ok := members[name]
	if !ok {
		return out, fmt.Errorf("missing member %q", name)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode %q: %w", name, err)
	}
	return out, nil
}

// set assigns v to *dst through the component so that changes are rejected
// while a request is in flight.
func set[V comparable, R any](c *lifecycle.Component[R], field string, dst *V, v V) bool {
	return c.Mutate(field, func() bool {
		if *dst == v {
			return false
		}
		*dst = v
		return true
	})
}

func setSlice[V comparable, R any](c *lifecycle.Component[R], field string, dst *[]V, v []V) bool {
	return c.Mutate(field, func() bool {
		if slices.Equal(*dst, v) {
			return false
		}
		*dst = slices.Clone(v)
		return true
	})
}

func get[V any, R any](c *lifecycle.Component[R], src *V) V {
	var v V
	c.View(func() { v = *src })
	return v
}

// classifyConflict maps the 409 and 422 replies of create and rename calls.
func classifyConflict(conflict, invalid string) func(int, []byte) *apierr.Error {
	return func(status int, _ []byte) *apierr.Error {
		switch status {
		case http.StatusConflict:
			return apierr.Input(apierr.CodeAlreadyExists, conflict)
		case http.StatusUnprocessableEntity:
			return apierr.Input(apierr.CodeInvalidValue, invalid)
		}
		return nil
	}
}
