// Package transport provides the HTTP boundary used by the WPS protocol
// implementations.
//
// The transport layer handles:
//   - HTTP/HTTPS connections and TLS configuration
//   - Authentication via transport/auth
//   - Request correlation IDs, debug logging and metrics hooks
//   - An optional circuit breaker for failing endpoints
//
// Non-2xx responses are returned as values, not errors; the protocol layer
// decides whether the body is an OWS exception.
package transport
