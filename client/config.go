package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/smnsjas/go-wps/transport"
	"github.com/smnsjas/go-wps/transport/auth"
)

// AuthType specifies the authentication mechanism.
type AuthType int

const (
	// AuthNone sends no credentials.
	AuthNone AuthType = iota
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthBearer sends a static bearer token.
	AuthBearer
	// AuthNTLM uses NTLM authentication.
	AuthNTLM
	// AuthKerberos uses SPNEGO with a pure Go Kerberos client.
	AuthKerberos
)

// String returns the lower-case scheme name.
func (a AuthType) String() string {
	switch a {
	case AuthNone:
		return "none"
	case AuthBasic:
		return "basic"
	case AuthBearer:
		return "bearer"
	case AuthNTLM:
		return "ntlm"
	case AuthKerberos:
		return "kerberos"
	default:
		return fmt.Sprintf("AuthType(%d)", int(a))
	}
}

// ParseAuthType maps a scheme name (case-insensitive) to an AuthType.
// "negotiate" is accepted for AuthKerberos.
func ParseAuthType(s string) (AuthType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AuthNone, nil
	case "basic":
		return AuthBasic, nil
	case "bearer":
		return AuthBearer, nil
	case "ntlm":
		return AuthNTLM, nil
	case "kerberos", "negotiate":
		return AuthKerberos, nil
	}
	return AuthNone, fmt.Errorf("unknown auth type %q", s)
}

// Config holds configuration for a WPS client.
type Config struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// UsePost sends DescribeProcess, GetStatus and GetResult as XML POST
	// bodies instead of KVP queries.
	UsePost bool

	// InsecureSkipVerify skips TLS certificate verification.
	// WARNING: Only use for testing.
	InsecureSkipVerify bool

	// Proxy is an optional proxy URL. Empty uses the environment.
	Proxy string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// AuthType specifies the authentication type.
	AuthType AuthType

	// Username for Basic, NTLM and Kerberos authentication.
	Username string

	// Password for Basic, NTLM and Kerberos authentication.
	Password string

	// Domain for NTLM authentication.
	Domain string

	// Token for bearer authentication.
	Token string

	// Kerberos settings. TargetSPN defaults to "HTTP/<host>".
	Realm        string
	Krb5ConfPath string
	KeytabPath   string
	CCachePath   string
	TargetSPN    string

	// CircuitBreaker enables fail-fast behavior after repeated transport
	// failures. Nil disables it.
	CircuitBreaker *transport.BreakerPolicy

	// Logger receives structured logs. Nil discards them.
	Logger *slog.Logger

	// Observer receives one callback per round trip. If it also implements
	// JobObserver it is told about every polled job status.
	Observer transport.Observer

	// Doer replaces the HTTP transport entirely. Timeout, TLS, proxy, auth
	// and breaker settings are ignored when it is set.
	Doer transport.Doer
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:  transport.DefaultTimeout,
		AuthType: AuthNone,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
	}
	if c.CircuitBreaker != nil && c.CircuitBreaker.FailureThreshold <= 0 {
		return errors.New("circuit breaker failure threshold must be positive")
	}

	switch c.AuthType {
	case AuthNone:
	case AuthBasic, AuthNTLM:
		creds := c.credentials()
		return creds.Validate()
	case AuthBearer:
		if c.Token == "" {
			return errors.New("token is required for bearer authentication")
		}
	case AuthKerberos:
		if c.KeytabPath == "" && c.CCachePath == "" && (c.Username == "" || c.Password == "") {
			return errors.New("kerberos requires a keytab, a credential cache, or a username and password")
		}
		if c.KeytabPath != "" && c.Username == "" {
			return errors.New("username is required with a keytab")
		}
	default:
		return fmt.Errorf("unsupported auth type %v", c.AuthType)
	}
	return nil
}

func (c *Config) credentials() auth.Credentials {
	return auth.Credentials{Username: c.Username, Password: c.Password, Domain: c.Domain}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// authenticator builds the configured Authenticator, or nil for AuthNone.
// host is used to derive the default Kerberos SPN.
func (c *Config) authenticator(host string) (auth.Authenticator, error) {
	switch c.AuthType {
	case AuthBasic:
		return auth.NewBasicAuth(c.credentials()), nil
	case AuthBearer:
		return auth.NewBearerAuth(c.Token), nil
	case AuthNTLM:
		return auth.NewNTLMAuth(c.credentials()), nil
	case AuthKerberos:
		spn := c.TargetSPN
		if spn == "" {
			spn = "HTTP/" + host
		}
		kc := auth.KerberosConfig{
			TargetSPN:    spn,
			Realm:        c.Realm,
			Krb5ConfPath: c.Krb5ConfPath,
			KeytabPath:   c.KeytabPath,
			CCachePath:   c.CCachePath,
		}
		if c.Username != "" {
			creds := c.credentials()
			kc.Credentials = &creds
		}
		provider, err := auth.NewKerberosProvider(kc)
		if err != nil {
			return nil, err
		}
		return auth.NewNegotiateAuth(provider), nil
	}
	return nil, nil
}

// NewDoer builds the transport described by the configuration for a
// service at serviceURL.
func (c *Config) NewDoer(serviceURL string) (transport.Doer, error) {
	if c.Doer != nil {
		return c.Doer, nil
	}

	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL: %w", err)
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = transport.DefaultTimeout
	}
	opts := []transport.HTTPTransportOption{
		transport.WithTimeout(timeout),
		transport.WithLogger(c.logger()),
	}
	if c.InsecureSkipVerify {
		opts = append(opts, transport.WithInsecureSkipVerify(true))
	}
	if c.Proxy != "" {
		proxy, err := url.Parse(c.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		opts = append(opts, transport.WithProxy(proxy))
	}
	if c.UserAgent != "" {
		opts = append(opts, transport.WithUserAgent(c.UserAgent))
	}
	if c.Observer != nil {
		opts = append(opts, transport.WithObserver(c.Observer))
	}
	if c.CircuitBreaker != nil {
		opts = append(opts, transport.WithCircuitBreaker(transport.NewCircuitBreaker(*c.CircuitBreaker)))
	}

	a, err := c.authenticator(u.Hostname())
	if err != nil {
		return nil, fmt.Errorf("configure %s authentication: %w", c.AuthType, err)
	}
	if a != nil {
		opts = append(opts, transport.WithAuthenticator(a))
	}
	return transport.NewHTTPTransport(opts...), nil
}
