package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Request is the logical request of one attempt: a method, an API route and
// a payload. It is resolved against a base location before being sent.
type Request struct {
	id       string
	method   string
	route    Route
	query    url.Values
	headers  http.Header
	body     Body
	endpoint string
}

// NewRequest creates a new request for the given method and route.
func NewRequest(method string, route Route) (*Request, error) {
	if method == "" {
		return nil, errors.New("method cannot be empty")
	}
	if route.IsEmpty() {
		return nil, errors.New("route cannot be empty")
	}

	return &Request{
		id:      uuid.New().String(),
		method:  method,
		route:   route,
		query:   url.Values{},
		headers: http.Header{},
		body:    NewEmptyBody(),
	}, nil
}

func (r *Request) ID() string {
	return r.id
}

func (r *Request) Method() string {
	return r.method
}

func (r *Request) Route() Route {
	return r.route
}

// Query returns a copy of the query values.
func (r *Request) Query() url.Values {
	out := url.Values{}
	for k, v := range r.query {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// SetQuery sets a query parameter, replacing previous values.
func (r *Request) SetQuery(key, value string) {
	r.query.Set(key, value)
}

// Headers returns the request headers.
func (r *Request) Headers() http.Header {
	return r.headers
}

func (r *Request) SetHeader(key, value string) {
	r.headers.Set(key, value)
}

func (r *Request) Body() Body {
	return r.body
}

func (r *Request) SetBody(body Body) {
	if body == nil {
		body = NewEmptyBody()
	}
	r.body = body
}

// Endpoint returns the absolute URL once the request has been resolved.
func (r *Request) Endpoint() string {
	return r.endpoint
}

// Resolve sets the absolute URL from the given base. The route and query are
// appended to base.Path.
func (r *Request) Resolve(base *url.URL) {
	u := *base
	u.Path = base.Path + "/" + r.route.Path()
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}
	r.endpoint = u.String()
}

// Clone creates a copy with a new ID.
func (r *Request) Clone() *Request {
	return &Request{
		id:       uuid.New().String(),
		method:   r.method,
		route:    append(Route(nil), r.route...),
		query:    r.Query(),
		headers:  r.headers.Clone(),
		body:     r.body,
		endpoint: r.endpoint,
	}
}

// Validate checks that the request can be sent.
func (r *Request) Validate() error {
	if r.method == "" {
		return errors.New("method cannot be empty")
	}
	if r.route.IsEmpty() {
		return errors.New("route cannot be empty")
	}
	if r.endpoint == "" {
		return errors.New("request has not been resolved")
	}
	return nil
}

// Body represents a request or response body.
type Body interface {
	ContentType() string
	IsEmpty() bool
	Size() int64
	Bytes() []byte
	String() string
	Reader() io.Reader
	Decode(v any) error
}

type emptyBody struct{}

// NewEmptyBody creates an empty body.
func NewEmptyBody() Body {
	return emptyBody{}
}

func (emptyBody) ContentType() string { return "" }
func (emptyBody) IsEmpty() bool       { return true }
func (emptyBody) Size() int64         { return 0 }
func (emptyBody) Bytes() []byte       { return nil }
func (emptyBody) String() string      { return "" }
func (emptyBody) Reader() io.Reader   { return bytes.NewReader(nil) }
func (emptyBody) Decode(any) error    { return errors.New("empty body") }

// NewJSONBody encodes data as a JSON body.
func NewJSONBody(data any) (Body, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return NewRawBody(encoded, "application/json"), nil
}

type rawBody struct {
	content     []byte
	contentType string
}

// NewRawBody creates a raw body with the given content and content type.
func NewRawBody(content []byte, contentType string) Body {
	return &rawBody{
		content:     content,
		contentType: contentType,
	}
}

func (b *rawBody) ContentType() string { return b.contentType }
func (b *rawBody) IsEmpty() bool       { return len(b.content) == 0 }
func (b *rawBody) Size() int64         { return int64(len(b.content)) }
func (b *rawBody) Bytes() []byte       { return b.content }
func (b *rawBody) String() string      { return string(b.content) }
func (b *rawBody) Reader() io.Reader   { return bytes.NewReader(b.content) }
func (b *rawBody) Decode(v any) error  { return json.Unmarshal(b.content, v) }
