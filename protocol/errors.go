package protocol

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/smnsjas/go-wps/transport"
)

// ErrNotImplemented is returned for operations a protocol version does not
// support (WPS 1.0 GetStatus and GetResult).
var ErrNotImplemented = errors.New("wps: operation not implemented for this protocol version")

// DocumentTypeError is returned when a document's root element is not one
// of the expected kinds.
type DocumentTypeError struct {
	Expected []string
	Actual   string
}

// Error implements the error interface.
func (e *DocumentTypeError) Error() string {
	return fmt.Sprintf("wps: unexpected document root %q (want %s)", e.Actual, strings.Join(e.Expected, " or "))
}

// UnsupportedVersionError is returned when a service announces a version
// other than 1.0.x or 2.0.x.
type UnsupportedVersionError struct {
	Version string
}

// Error implements the error interface.
func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("wps: unsupported WPS version %q", e.Version)
}

// TransportError is returned for a non-2xx response whose body is not an
// OWS ExceptionReport.
type TransportError struct {
	Operation   string
	StatusCode  int
	Status      string
	ContentType string
	Body        []byte
}

const maxBodyPreview = 512

// Error implements the error interface.
func (e *TransportError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	preview := strings.TrimSpace(string(e.Body))
	if len(preview) > maxBodyPreview {
		preview = preview[:maxBodyPreview] + "..."
	}
	msg := fmt.Sprintf("wps: %s: HTTP %s", e.Operation, status)
	if preview != "" {
		msg += ": " + preview
	}
	return msg
}

// Unwrap maps authentication failures to the transport sentinels.
func (e *TransportError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return transport.ErrUnauthorized
	case http.StatusForbidden:
		return transport.ErrForbidden
	}
	return nil
}

// IsTransportError returns true if err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ErrMissingJobID is returned when a status document names no job.
var ErrMissingJobID = errors.New("wps: status document has no job identifier")

// ErrEmptyIdentifier is returned by encoders given an empty process, input,
// output or job identifier.
var ErrEmptyIdentifier = errors.New("wps: empty identifier")
