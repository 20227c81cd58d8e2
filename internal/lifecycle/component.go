package lifecycle

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/artpar/feedsync/internal/apierr"
	"github.com/artpar/feedsync/internal/config"
	"github.com/artpar/feedsync/internal/core"
	"github.com/artpar/feedsync/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Executor runs outcome notifications, e.g. on a caller's event loop.
type Executor func(func())

type options struct {
	log            *logrus.Entry
	metrics        *metrics.Metrics
	executor       Executor
	recorder       Recorder
	storageEnabled bool
}

// Option configures a Component.
type Option func(*options)

// WithLogger sets the base log entry. The operation name is added to it.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics records attempts in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithExecutor delivers notifications through exec instead of on the
// completing goroutine. The component is idle before exec is called.
func WithExecutor(exec Executor) Option {
	return func(o *options) {
		o.executor = exec
	}
}

// WithStorage enables or disables the storage hook. It is enabled by default.
func WithStorage(enabled bool) Option {
	return func(o *options) {
		o.storageEnabled = enabled
	}
}

// Component drives the request lifecycle of one operation instance. At most
// one attempt is in flight at a time.
type Component[T any] struct {
	hooks     Hooks[T]
	cfg       config.Configuration
	requester Requester
	opts      options
	log       *logrus.Entry

	mu           sync.Mutex
	state        State
	err          *apierr.Error
	result       T
	succeeded    []func(T)
	failed       []func(*apierr.Error)
	fieldChanged []func(string)
}

// New creates a component. cfg may be nil; Execute then fails with a fatal
// input error.
func New[T any](cfg config.Configuration, requester Requester, hooks Hooks[T], opts ...Option) *Component[T] {
	o := options{
		log:            logrus.NewEntry(logrus.StandardLogger()),
		storageEnabled: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Component[T]{
		hooks:     hooks,
		cfg:       cfg,
		requester: requester,
		opts:      o,
		log:       o.log.WithField("operation", hooks.Name),
	}
}

func (c *Component[T]) Name() string {
	return c.hooks.Name
}

func (c *Component[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Component[T]) InProgress() bool {
	return c.State() == StateInProgress
}

// Err returns the error of the last completed attempt, or nil.
func (c *Component[T]) Err() *apierr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Result returns the result of the last successful attempt.
func (c *Component[T]) Result() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// OnSucceeded registers fn to receive every successful result.
func (c *Component[T]) OnSucceeded(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.succeeded = append(c.succeeded, fn)
}

// OnFailed registers fn to receive every failure.
func (c *Component[T]) OnFailed(fn func(*apierr.Error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = append(c.failed, fn)
}

// OnFieldChanged registers fn to receive the name of every changed field.
func (c *Component[T]) OnFieldChanged(fn func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fieldChanged = append(c.fieldChanged, fn)
}

// Mutate runs set unless an attempt is in flight. set reports whether the
// value changed; only then are field listeners notified. It returns false
// when the change was rejected or had no effect.
func (c *Component[T]) Mutate(field string, set func() bool) bool {
	c.mu.Lock()
	if c.state == StateInProgress {
		c.mu.Unlock()
		c.log.WithField("field", field).Warn("cannot change field while a request is in progress")
		return false
	}
	changed := set()
	listeners := c.fieldChanged
	c.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(field)
		}
	}
	return changed
}

// View runs read with the component lock held, for consistent field reads.
func (c *Component[T]) View(read func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	read()
}

// Execute starts an attempt and returns without waiting for it. While an
// attempt is in flight it returns ErrInProgress and changes nothing. Input
// failures complete the returned attempt before Execute returns.
func (c *Component[T]) Execute(ctx context.Context) (*Attempt[T], error) {
	attempt := newAttempt[T]()
	log := c.log.WithField("attempt", attempt.ID())

	req, host, aerr, err := c.begin()
	if err != nil {
		log.Warn("execute called while a request is in progress")
		c.opts.metrics.Rejected(c.hooks.Name)
		return nil, err
	}

	if aerr != nil {
		log.WithFields(logrus.Fields{
			"kind": aerr.Kind().String(),
			"code": aerr.Code(),
		}).Debug("input rejected")
		c.opts.metrics.Finished(c.hooks.Name, metrics.OutcomeFailure, aerr.Kind().String(), 0, false)
		var zero T
		c.deliver(attempt, zero, aerr)
		return attempt, nil
	}

	log.WithFields(logrus.Fields{
		"method": req.Method(),
		"route":  req.Route().Path(),
	}).Debug("request dispatched")
	c.opts.metrics.Started(c.hooks.Name)

	go c.run(ctx, log, attempt, req, host, time.Now())
	return attempt, nil
}

// begin validates input and moves the component to in progress. The
// returned *apierr.Error is an input failure; the returned error is
// ErrInProgress.
func (c *Component[T]) begin() (*core.Request, string, *apierr.Error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateInProgress {
		return nil, "", nil, ErrInProgress
	}
	c.err = nil

	loc, aerr := c.checkBase()
	if aerr == nil && c.hooks.CheckInput != nil {
		aerr = c.hooks.CheckInput()
	}
	var req *core.Request
	if aerr == nil {
		req, aerr = c.buildRequest(loc)
	}
	if aerr != nil {
		c.err = aerr
		return nil, "", aerr, nil
	}

	c.transition(StateInProgress)
	return req, loc.Host, nil, nil
}

func (c *Component[T]) checkBase() (config.Location, *apierr.Error) {
	if c.cfg == nil {
		return config.Location{}, apierr.New(apierr.KindInput, apierr.SeverityFatal,
			apierr.CodeNoConfiguration, "No configuration available.")
	}

	loc, err := c.cfg.ResolveBaseLocation()
	if err != nil {
		if errors.Is(err, config.ErrNoAccount) {
			return loc, apierr.Wrap(apierr.KindInput, apierr.SeverityFatal,
				apierr.CodeNoConfiguration, "No account has been configured.", err)
		}
		return loc, apierr.Wrap(apierr.KindInput, apierr.SeverityFatal,
			apierr.CodeNoHost, "The server host is not configured.", err)
	}

	if !c.hooks.Anonymous && !loc.HasCredentials() {
		return loc, apierr.Input(apierr.CodeMissingCredentials,
			"You have to specify a username and a password.")
	}
	return loc, nil
}

func (c *Component[T]) buildRequest(loc config.Location) (*core.Request, *apierr.Error) {
	if c.hooks.Build == nil {
		return nil, apierr.Input(apierr.CodeInvalidValue, "The operation does not define a request.")
	}

	req, err := c.hooks.Build()
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInput, apierr.SeverityCritical, apierr.CodeInvalidValue,
			"The request could not be built.", err)
	}

	switch req.Method() {
	case http.MethodPut, http.MethodPost:
		if req.Body().IsEmpty() {
			return nil, apierr.Input(apierr.CodeEmptyPayload,
				"Empty payload when trying to perform a PUT or POST network operation.")
		}
	}

	req.SetHeader("User-Agent", loc.UserAgent)
	if c.hooks.Expect != ShapeNone {
		req.SetHeader("Accept", "application/json")
	}
	if ct := req.Body().ContentType(); ct != "" {
		req.SetHeader("Content-Type", ct)
	}
	if !c.hooks.Anonymous {
		creds := base64.StdEncoding.EncodeToString([]byte(loc.Username + ":" + loc.Password))
		req.SetHeader("Authorization", "Basic "+creds)
	}

	req.Resolve(loc.BaseURL())
	return req, nil
}

// run performs the exchange on its own goroutine.
func (c *Component[T]) run(ctx context.Context, log *logrus.Entry, attempt *Attempt[T], req *core.Request, host string, start time.Time) {
	resp, sendErr := c.requester.Send(ctx, req)
	result, aerr := c.classify(resp, sendErr, host)

	if aerr == nil && c.hooks.Sync != nil && c.opts.storageEnabled {
		// Still in progress: the store is updated before anyone is told.
		if err := c.hooks.Sync(context.WithoutCancel(ctx), result); err != nil {
			log.WithError(err).Error("failed to update local storage")
			c.opts.metrics.StorageFailed(c.hooks.Name)
		}
	}

	c.mu.Lock()
	c.transition(StateIdle)
	c.err = aerr
	if aerr == nil {
		c.result = result
	}
	c.mu.Unlock()

	elapsed := time.Since(start)
	if c.opts.recorder != nil {
		ex := Exchange{
			AttemptID: attempt.ID(),
			Operation: c.hooks.Name,
			Method:    req.Method(),
			Route:     req.Route().Path(),
			Err:       aerr,
			Started:   start,
			Elapsed:   elapsed,
		}
		if resp != nil && resp.Status() != nil {
			ex.Status = resp.Status().Code()
		}
		if err := c.opts.recorder.Record(context.WithoutCancel(ctx), ex); err != nil {
			log.WithError(err).Warn("failed to record exchange")
		}
	}

	if aerr != nil {
		log.WithFields(logrus.Fields{
			"kind":     aerr.Kind().String(),
			"code":     aerr.Code(),
			"duration": elapsed,
		}).Debug("request failed")
		c.opts.metrics.Finished(c.hooks.Name, metrics.OutcomeFailure, aerr.Kind().String(), elapsed, true)
	} else {
		log.WithField("duration", elapsed).Debug("request succeeded")
		c.opts.metrics.Finished(c.hooks.Name, metrics.OutcomeSuccess, "", elapsed, true)
	}

	c.deliver(attempt, result, aerr)
}

// transition must be called with c.mu held.
func (c *Component[T]) transition(to State) {
	if !canTransition(c.state, to) {
		c.log.WithFields(logrus.Fields{
			"from": c.state.String(),
			"to":   to.String(),
		}).Error("invalid state transition")
		return
	}
	c.log.WithField("state", to.String()).Debug("state changed")
	c.state = to
}

// deliver notifies listeners and then resolves the attempt. It must be
// called without c.mu held.
func (c *Component[T]) deliver(attempt *Attempt[T], result T, aerr *apierr.Error) {
	c.mu.Lock()
	succeeded := c.succeeded
	failed := c.failed
	c.mu.Unlock()

	notify := func() {
		if aerr != nil {
			for _, fn := range failed {
				fn(aerr)
			}
		} else {
			for _, fn := range succeeded {
				fn(result)
			}
		}
		attempt.resolve(result, aerr)
	}

	if c.opts.executor != nil {
		c.opts.executor(notify)
		return
	}
	notify()
}
