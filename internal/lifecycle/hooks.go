// Package lifecycle runs one News API request at a time: it validates input,
// dispatches the request, classifies the outcome, mirrors confirmed changes
// into local storage and notifies the caller.
package lifecycle

import (
	"context"
	"encoding/json"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/core"
)

// Requester sends a resolved request. Any status code is a response; an error
// means no response was obtained.
type Requester interface {
	Send(ctx context.Context, req *core.Request) (*core.Response, error)
}

// Shape is the body a successful response must carry.
type Shape int

const (
	// ShapeNone ignores the body.
	ShapeNone Shape = iota
	ShapeObject
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Hooks describe one concrete operation. CheckInput and Build run with the
// component lock held and must not call back into the component.
type Hooks[T any] struct {
	// Name labels logs and metrics, e.g. "mark_item".
	Name string

	// Anonymous operations do not require credentials.
	Anonymous bool

	// CheckInput validates operation fields after the base checks.
	CheckInput func() *apierr.Error

	// Build creates the logical request for one attempt.
	Build func() (*core.Request, error)

	// Expect is the required shape of a successful body. Required lists the
	// members an object body must contain.
	Expect   Shape
	Required []string

	// NotFoundMessage turns a 404 into an input error with this message.
	// Leave empty for operations not scoped to a resource.
	NotFoundMessage string

	// ClassifyStatus maps operation specific statuses. Returning nil falls
	// through to the common table.
	ClassifyStatus func(status int, body []byte) *apierr.Error

	// Decode builds the result from a successful body. body is nil for
	// ShapeNone operations.
	Decode func(body json.RawMessage) (T, error)

	// Sync mirrors a confirmed result into local storage.
	Sync func(ctx context.Context, result T) error
}
