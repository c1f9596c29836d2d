package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smnsjas/go-wps/transport/auth"
)

var (
	// ErrUnauthorized marks a 401 Unauthorized response.
	// Use errors.Is(err, ErrUnauthorized) to check for authentication failures.
	ErrUnauthorized = errors.New("transport: authentication failed (401 Unauthorized)")

	// ErrForbidden marks a 403 Forbidden response.
	ErrForbidden = errors.New("transport: access denied (403 Forbidden)")
)

const (
	// ContentTypeXML is the content type of POSTed WPS request documents.
	ContentTypeXML = "text/xml; charset=UTF-8"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"

	defaultUserAgent = "go-wps"

	// defaultBufferSize is the initial size for pooled buffers.
	defaultBufferSize = 32 * 1024
)

// Request is one WPS round trip.
type Request struct {
	// Operation names the WPS operation for logs and metrics
	// (e.g. "GetCapabilities", "Execute").
	Operation string

	Method      string
	URL         string
	ContentType string
	Body        []byte
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the lower-cased media type of the response without
// parameters, e.g. "text/xml".
func (r *Response) ContentType() string {
	raw := r.Header.Get("Content-Type")
	if raw == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(raw)
	if err != nil {
		mt, _, _ = strings.Cut(raw, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// Doer sends a Request. Implementations return an error only when no HTTP
// response was obtained.
type Doer interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f DoerFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Observer receives one callback per completed round trip. statusCode is 0
// when no response was received.
type Observer interface {
	ObserveRequest(operation string, statusCode int, duration time.Duration, err error)
}

// bufferPool is a pool of reusable bytes.Buffer to reduce allocations.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
	},
}

// readAllPooled reads from r using a pooled buffer and returns a copy of the data.
func readAllPooled(r io.Reader) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// HTTPTransport sends WPS requests over HTTP/HTTPS.
type HTTPTransport struct {
	client    *http.Client
	auth      auth.Authenticator
	logger    *slog.Logger
	observer  Observer
	breaker   *CircuitBreaker
	userAgent string
}

// HTTPTransportOption configures an HTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// NewHTTPTransport creates a new HTTP transport with the given options.
func NewHTTPTransport(opts ...HTTPTransportOption) *HTTPTransport {
	t := &HTTPTransport{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
				// NTLM requires persistent connections for the handshake
				DisableKeepAlives:   false,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.auth != nil {
		t.client.Transport = t.auth.Transport(t.client.Transport)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}

	return t
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client.Timeout = d
	}
}

// WithInsecureSkipVerify configures TLS to skip certificate verification.
// WARNING: Only use this for testing. Never use in production.
func WithInsecureSkipVerify(skip bool) HTTPTransportOption {
	return func(t *HTTPTransport) {
		tr := t.ensureHTTPTransport()
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		tr.TLSClientConfig.InsecureSkipVerify = skip
	}
}

// WithTLSConfig sets a custom TLS configuration.
// NOTE: MinVersion is enforced to be at least TLS 1.2 for security.
func WithTLSConfig(cfg *tls.Config) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if cfg.MinVersion < tls.VersionTLS12 {
			cfg.MinVersion = tls.VersionTLS12
		}
		t.ensureHTTPTransport().TLSClientConfig = cfg
	}
}

// WithProxy routes requests through the given proxy URL.
func WithProxy(proxy *url.URL) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.ensureHTTPTransport().Proxy = http.ProxyURL(proxy)
	}
}

// WithAuthenticator wraps the transport with an authentication handler.
func WithAuthenticator(a auth.Authenticator) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.auth = a
	}
}

// WithLogger sets the logger used for per-request debug records.
func WithLogger(l *slog.Logger) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.logger = l
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.observer = o
	}
}

// WithCircuitBreaker enables fail-fast behavior after repeated failures.
func WithCircuitBreaker(cb *CircuitBreaker) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.breaker = cb
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying client. Options that configure the
// *http.Transport apply to the new client's transport.
func WithHTTPClient(c *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		t.client = c
	}
}

// ensureHTTPTransport ensures the client has an *http.Transport.
func (t *HTTPTransport) ensureHTTPTransport() *http.Transport {
	tr, ok := t.client.Transport.(*http.Transport)
	if !ok || tr == nil {
		tr = http.DefaultTransport.(*http.Transport).Clone()
		t.client.Transport = tr
	}
	return tr
}

// Do sends req and reads the full response body.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if t.breaker != nil {
		if err := t.breaker.Allow(); err != nil {
			t.observe(req.Operation, 0, 0, err)
			return nil, err
		}
	}

	start := time.Now()
	resp, err := t.do(ctx, req)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if t.breaker != nil {
		t.breaker.Record(err != nil || isUnavailable(status))
	}
	t.observe(req.Operation, status, elapsed, err)
	return resp, err
}

func (t *HTTPTransport) do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set(HeaderRequestID, requestID)
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", "application/xml, text/xml, */*")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.Debug("wps request failed",
			"operation", req.Operation,
			"method", method,
			"url", req.URL,
			"request_id", requestID,
			"error", err)
		return nil, fmt.Errorf("transport: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readAllPooled(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to read response: %w", err)
	}

	t.logger.Debug("wps request",
		"operation", req.Operation,
		"method", method,
		"url", req.URL,
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"duration", time.Since(start),
		"request_id", requestID)

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

func (t *HTTPTransport) observe(op string, status int, d time.Duration, err error) {
	if t.observer != nil {
		t.observer.ObserveRequest(op, status, d, err)
	}
}

func isUnavailable(status int) bool {
	return status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}

// Client returns the underlying HTTP client for advanced configuration.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

// CloseIdleConnections closes any idle connections in the transport.
// This is useful to force a fresh NTLM handshake for subsequent requests.
func (t *HTTPTransport) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}
