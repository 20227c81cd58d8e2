// Package config holds the account settings needed to reach a News server
// and the configuration file that stores them.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// APIRoute is the path of the News API below the installation path.
const APIRoute = "/index.php/apps/news/api/v1-2"

// DefaultUserAgent is sent when the account does not set one.
const DefaultUserAgent = "feedsync/1.0"

var (
	// ErrNoAccount is returned when no account has been configured.
	ErrNoAccount = errors.New("no account configured")
	// ErrNoHost is returned when the account has no server host.
	ErrNoHost = errors.New("no server host configured")
)

// Configuration provides the base location of the API for each request.
type Configuration interface {
	ResolveBaseLocation() (Location, error)
}

// Location is a resolved server address together with the credentials and
// connection settings used for one request.
type Location struct {
	Scheme          string
	Host            string
	Port            int
	InstallPath     string
	Username        string
	Password        string
	UserAgent       string
	IgnoreTLSErrors bool
	Timeout         time.Duration
}

// BaseURL returns the absolute URL of the API root, without trailing slash.
func (l Location) BaseURL() *url.URL {
	host := l.Host
	if l.Port > 0 {
		host = net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
	}
	return &url.URL{
		Scheme: l.Scheme,
		Host:   host,
		Path:   strings.TrimRight(l.InstallPath, "/") + APIRoute,
	}
}

// HasCredentials reports whether both username and password are set.
func (l Location) HasCredentials() bool {
	return l.Username != "" && l.Password != ""
}

// Account is the persisted configuration of one News server account.
type Account struct {
	Host            string        `mapstructure:"host" yaml:"host" validate:"required,hostname_rfc1123|ip"`
	Port            int           `mapstructure:"port" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	UseSSL          bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	InstallPath     string        `mapstructure:"install_path" yaml:"install_path,omitempty" validate:"omitempty,startswith=/"`
	Username        string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password        string        `mapstructure:"password" yaml:"password" validate:"required"`
	UserAgent       string        `mapstructure:"user_agent" yaml:"user_agent,omitempty"`
	IgnoreTLSErrors bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors,omitempty"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty" validate:"min=0"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func accountValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the account for missing or malformed settings.
func (a *Account) Validate() error {
	if a == nil {
		return ErrNoAccount
	}
	if err := accountValidator().Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid account: field %s failed %q check", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid account: %w", err)
	}
	return nil
}

// ResolveBaseLocation implements Configuration. Only the host is required
// here; missing credentials are reported by the request itself.
func (a *Account) ResolveBaseLocation() (Location, error) {
	if a == nil {
		return Location{}, ErrNoAccount
	}
	host := strings.TrimSpace(a.Host)
	if host == "" {
		return Location{}, ErrNoHost
	}

	scheme := "http"
	if a.UseSSL {
		scheme = "https"
	}
	userAgent := a.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return Location{
		Scheme:          scheme,
		Host:            host,
		Port:            a.Port,
		InstallPath:     a.InstallPath,
		Username:        a.Username,
		Password:        a.Password,
		UserAgent:       userAgent,
		IgnoreTLSErrors: a.IgnoreTLSErrors,
		Timeout:         a.Timeout,
	}, nil
}

// FromURL builds an account from a server URL such as
// "https://cloud.example.com:8443/nextcloud".
func FromURL(raw, username, password string) (*Account, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}

	account := &Account{
		Host:        u.Hostname(),
		UseSSL:      u.Scheme == "https",
		InstallPath: strings.TrimRight(u.Path, "/"),
		Username:    username,
		Password:    password,
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid server port %q: %w", p, err)
		}
		account.Port = port
	}
	return account, nil
}
