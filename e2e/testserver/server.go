// Package testserver provides a fake News API server for tests.
package testserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/artpar/feedsync/internal/config"
	"github.com/artpar/feedsync/internal/news"
)

// Default credentials accepted by the server.
const (
	Username = "reader"
	Password = "secret"
)

// Server wraps httptest.Server with an in-memory News app.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []*RecordedRequest
	overrides map[string]http.HandlerFunc

	username string
	password string
	version  string
	warnings news.Warnings
	nextID   int64
	folders  []news.Folder
	feeds    []news.Feed
	items    []news.Item
}

// RecordedRequest stores request details for verification.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Headers http.Header
	Body    []byte
	Time    time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials changes the accepted user name and password.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.username = username
		s.password = password
	}
}

// WithVersion sets the reported News app version.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithWarnings sets the warnings reported by the status endpoint.
func WithWarnings(w news.Warnings) Option {
	return func(s *Server) {
		s.warnings = w
	}
}

// New starts a server with an empty News app.
func New(opts ...Option) *Server {
	s := &Server{
		requests:  make([]*RecordedRequest, 0),
		overrides: make(map[string]http.HandlerFunc),
		username:  Username,
		password:  Password,
		version:   "25.0.0",
		nextID:    1000,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	s.register(mux)

	s.Server = httptest.NewServer(mux)
	return s
}

// Account returns an account pointing at the server.
func (s *Server) Account() *config.Account {
	account, err := config.FromURL(s.URL, s.username, s.password)
	if err != nil {
		panic(err)
	}
	return account
}

// Override replaces the handler for a method and API route such as
// "items/42/read". It takes precedence over the fake app and over auth.
func (s *Server) Override(method, route string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+apiPath(route)] = h
}

// recordingWrapper wraps handlers to record requests.
func (s *Server) recordingWrapper(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, &RecordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Headers: r.Header.Clone(),
			Body:    body,
			Time:    time.Now(),
		})
		override := s.overrides[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != s.username || pass != s.password {
			Handlers{}.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})(w, r)
			return
		}
		h(w, withBody(r, body))
	}
}

// LastRequest returns the last recorded request.
func (s *Server) LastRequest() *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// Requests returns all recorded requests.
func (s *Server) Requests() []*RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*RecordedRequest, len(s.requests))
	copy(result, s.requests)
	return result
}

// RequestCount returns the number of recorded requests.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// ClearRequests clears recorded requests.
func (s *Server) ClearRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = s.requests[:0]
}
