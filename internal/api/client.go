// Package api implements the News API v1-2 operations on top of the request
// lifecycle.
package api

import (
	"github.com/artpar/feedsync/internal/config"
	"github.com/artpar/feedsync/internal/lifecycle"
	"github.com/artpar/feedsync/internal/metrics"
	"github.com/artpar/feedsync/internal/storage"
	"github.com/artpar/feedsync/internal/transport"
	"github.com/sirupsen/logrus"
)

// Client holds the collaborators shared by all operations it creates. It
// does not own them.
type Client struct {
	cfg       config.Configuration
	requester lifecycle.Requester
	store     storage.Syncer
	log       *logrus.Entry
	metrics   *metrics.Metrics
	executor  lifecycle.Executor
	recorder  lifecycle.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithRequester sets the transport. By default a transport.Client is built
// from the configured timeout and TLS settings.
func WithRequester(r lifecycle.Requester) Option {
	return func(c *Client) {
		c.requester = r
	}
}

// WithStore mirrors confirmed changes into s.
func WithStore(s storage.Syncer) Option {
	return func(c *Client) {
		c.store = s
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) {
		c.log = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRecorder journals every exchange into r.
func WithRecorder(r lifecycle.Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// WithExecutor delivers all outcome notifications through exec.
func WithExecutor(exec lifecycle.Executor) Option {
	return func(c *Client) {
		c.executor = exec
	}
}

// NewClient creates a client for the server described by cfg.
func NewClient(cfg config.Configuration, opts ...Option) *Client {
	c := &Client{
		cfg: cfg,
		log: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.requester == nil {
		topts := []transport.Option{transport.WithLogger(c.log)}
		if cfg != nil {
			if loc, err := cfg.ResolveBaseLocation(); err == nil {
				topts = append(topts,
					transport.WithTimeout(loc.Timeout),
					transport.WithInsecureSkipVerify(loc.IgnoreTLSErrors),
				)
			}
		}
		c.requester = transport.NewClient(topts...)
	}

	return c
}

// Store returns the attached store, or nil.
func (c *Client) Store() storage.Syncer {
	return c.store
}

func (c *Client) componentOptions() []lifecycle.Option {
	opts := []lifecycle.Option{
		lifecycle.WithLogger(c.log),
		lifecycle.WithMetrics(c.metrics),
	}
	if c.executor != nil {
		opts = append(opts, lifecycle.WithExecutor(c.executor))
	}
	if c.recorder != nil {
		opts = append(opts, lifecycle.WithRecorder(c.recorder))
	}
	return opts
}

func newComponent[T any](c *Client, hooks lifecycle.Hooks[T]) *lifecycle.Component[T] {
	return lifecycle.New(c.cfg, c.requester, hooks, c.componentOptions()...)
}
