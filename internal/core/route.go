package core

import (
	"fmt"
	"strings"
)

// Route is an ordered list of path segments identifying an API resource and
// action, e.g. ["items", "42", "read"].
type Route []string

// NewRoute builds a route from the given segments. An empty segment is a
// programming error in the calling operation and panics.
func NewRoute(segments ...string) Route {
	route := make(Route, 0, len(segments))
	for i, s := range segments {
		if s == "" {
			panic(fmt.Sprintf("core: empty route segment at position %d in %q", i, segments))
		}
		route = append(route, s)
	}
	return route
}

// Append returns a new route with the given segments added.
func (r Route) Append(segments ...string) Route {
	out := make([]string, 0, len(r)+len(segments))
	out = append(out, r...)
	out = append(out, segments...)
	return NewRoute(out...)
}

// Path joins the segments with slashes, without a leading slash.
func (r Route) Path() string {
	return strings.Join(r, "/")
}

func (r Route) String() string {
	return r.Path()
}

// IsEmpty reports whether the route has no segments.
func (r Route) IsEmpty() bool {
	return len(r) == 0
}
