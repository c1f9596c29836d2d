// Package ows decodes OGC Web Services ExceptionReport documents (OWS 1.1
// and 2.0) into structured errors.
package ows

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smnsjas/go-wps/internal/xmldoc"
)

// Namespace URIs of the OWS versions used by WPS 1.0.0 and 2.0.0.
const (
	Namespace11 = "http://www.opengis.net/ows/1.1"
	Namespace20 = "http://www.opengis.net/ows/2.0"
)

var namespaces = xmldoc.Namespaces{
	"ows11": Namespace11,
	"ows20": Namespace20,
}

// ErrNotException is returned by Parse when the document root is not an
// ExceptionReport.
var ErrNotException = errors.New("ows: document is not an ExceptionReport")

// Detail is one ows:Exception entry of a report.
type Detail struct {
	Code    string
	Locator string
	Texts   []string
}

// Exception is a decoded ExceptionReport. The top-level fields mirror the
// first reported exception; Details holds every entry.
type Exception struct {
	// Message is the first ExceptionText of the first exception.
	Message string

	// Locator indicates where the error occurred (e.g. a parameter name).
	Locator string

	// Code is the exceptionCode attribute (e.g. "InvalidParameterValue").
	Code string

	// Version is the version attribute of the report.
	Version string

	Details []Detail
}

// Error implements the error interface.
func (e *Exception) Error() string {
	var parts []string
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	if e.Locator != "" {
		parts = append(parts, "locator="+e.Locator)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if len(parts) == 0 {
		return "ows exception"
	}
	return "ows exception: " + strings.Join(parts, ": ")
}

// IsException returns true if err is or wraps an *Exception.
func IsException(err error) bool {
	var e *Exception
	return errors.As(err, &e)
}

// AsException extracts an *Exception from err.
func AsException(err error) (*Exception, bool) {
	var e *Exception
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Parse decodes an ExceptionReport document. Parse failures and non-report
// documents are returned as ordinary errors.
func Parse(data []byte) (*Exception, error) {
	root, err := xmldoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ows: %w", err)
	}
	return FromNode(root)
}

// FromNode decodes an already parsed ExceptionReport element.
func FromNode(root *xmldoc.Node) (*Exception, error) {
	if root.Local() != "ExceptionReport" {
		return nil, fmt.Errorf("%w (root element %q)", ErrNotException, root.Local())
	}

	exc := &Exception{}
	exc.Version, _ = root.Attr("version")

	for _, node := range root.All(namespaces, "(ows11:Exception|ows20:Exception)") {
		d := Detail{Texts: node.Values(namespaces, "(ows11:ExceptionText|ows20:ExceptionText)/text()")}
		d.Code, _ = node.Attr("exceptionCode")
		d.Locator, _ = node.Attr("locator")
		exc.Details = append(exc.Details, d)
	}

	if len(exc.Details) > 0 {
		first := exc.Details[0]
		exc.Code = first.Code
		exc.Locator = first.Locator
		if len(first.Texts) > 0 {
			exc.Message = first.Texts[0]
		}
	}
	return exc, nil
}
