// Package transport sends resolved requests over HTTP.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/artpar/feedsync/internal/core"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

// DefaultTimeout applies when no timeout option is given.
const DefaultTimeout = 30 * time.Second

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 64 << 20

// Client sends core requests with a shared http.Client.
type Client struct {
	httpClient *http.Client
	config     Config
	log        *logrus.Entry
}

// Config holds HTTP client configuration.
type Config struct {
	Timeout            time.Duration
	FollowRedirect     bool
	InsecureSkipVerify bool
	Cookies            bool
}

// Option is a function that configures the Client.
type Option func(*Client)

// NewClient creates a new HTTP client with the given options. Cookies are
// kept in a jar using the public suffix list unless disabled.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		config: Config{
			Timeout:        DefaultTimeout,
			FollowRedirect: true,
			Cookies:        true,
		},
		log: logrus.NewEntry(logrus.StandardLogger()),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.config.Cookies && client.httpClient.Jar == nil {
		// cookiejar.New never returns an error.
		jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		client.httpClient.Jar = jar
	}

	return client
}

// WithTimeout sets the request timeout. Zero keeps the default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			return
		}
		c.config.Timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithTransport sets a custom round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithInsecureSkipVerify disables certificate verification. It replaces the
// round tripper with a clone of the default transport.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.config.InsecureSkipVerify = skip
		if !skip {
			return
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in per account
		c.httpClient.Transport = t
	}
}

// WithNoRedirects disables automatic redirect following.
func WithNoRedirects() Option {
	return func(c *Client) {
		c.config.FollowRedirect = false
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// WithoutCookies disables the cookie jar.
func WithoutCookies() Option {
	return func(c *Client) {
		c.config.Cookies = false
		c.httpClient.Jar = nil
	}
}

// WithCookieJar sets the cookie jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.config.Cookies = jar != nil
		c.httpClient.Jar = jar
	}
}

// WithLogger sets the log entry used for request tracing.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Send executes the request and returns the response. Any status code is a
// response; only failures to obtain one are returned as errors.
func (c *Client) Send(ctx context.Context, req *core.Request) (*core.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	startTime := time.Now()

	httpReq, err := c.toHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"request": req.ID(),
		"method":  req.Method(),
		"route":   req.Route().Path(),
	}).Debug("sending request")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	endTime := time.Now()

	c.log.WithFields(logrus.Fields{
		"request":  req.ID(),
		"status":   httpResp.StatusCode,
		"duration": endTime.Sub(startTime),
	}).Debug("received response")

	return c.fromHTTPResponse(req, httpResp, bodyBytes, startTime, endTime), nil
}

func (c *Client) toHTTPRequest(ctx context.Context, req *core.Request) (*http.Request, error) {
	var bodyReader io.Reader
	if !req.Body().IsEmpty() {
		bodyReader = req.Body().Reader()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), req.Endpoint(), bodyReader)
	if err != nil {
		return nil, err
	}

	httpReq.Header = req.Headers().Clone()
	if ct := req.Body().ContentType(); ct != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", ct)
	}

	return httpReq, nil
}

func (c *Client) fromHTTPResponse(req *core.Request, httpResp *http.Response, bodyBytes []byte, startTime, endTime time.Time) *core.Response {
	status := core.NewStatus(httpResp.StatusCode, httpResp.Status)

	var body core.Body
	if len(bodyBytes) > 0 {
		body = core.NewRawBody(bodyBytes, httpResp.Header.Get("Content-Type"))
	} else {
		body = core.NewEmptyBody()
	}

	return core.NewResponse(req.ID(), status).
		WithHeaders(httpResp.Header.Clone()).
		WithBody(body).
		WithTiming(core.Timing{
			StartTime: startTime,
			EndTime:   endTime,
			Total:     endTime.Sub(startTime),
		})
}
