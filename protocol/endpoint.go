package protocol

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/smnsjas/go-wps/ows"
	"github.com/smnsjas/go-wps/transport"
)

// XMLContentTypes are the response media types decoded as WPS documents.
var XMLContentTypes = map[string]bool{
	"application/xml": true,
	"text/xml":        true,
}

// Endpoint sends encoded requests to one service URL and turns failed
// responses into errors. It is shared by the per-version protocols.
type Endpoint struct {
	// URL is the service endpoint without WPS query parameters.
	URL string

	// UsePost selects XML POST bodies for operations that also have a KVP
	// form. Execute is always POSTed.
	UsePost bool

	Doer transport.Doer
}

// NewEndpoint creates an Endpoint. A nil doer uses a default HTTPTransport.
func NewEndpoint(url string, usePost bool, doer transport.Doer) *Endpoint {
	if doer == nil {
		doer = transport.NewHTTPTransport()
	}
	return &Endpoint{URL: url, UsePost: usePost, Doer: doer}
}

// Get sends a KVP request.
func (e *Endpoint) Get(ctx context.Context, op, query string) (*transport.Response, error) {
	sep := "?"
	if strings.Contains(e.URL, "?") {
		sep = "&"
		if strings.HasSuffix(e.URL, "?") || strings.HasSuffix(e.URL, "&") {
			sep = ""
		}
	}
	return e.send(ctx, &transport.Request{
		Operation: op,
		Method:    http.MethodGet,
		URL:       e.URL + sep + query,
	})
}

// Post sends an XML request body.
func (e *Endpoint) Post(ctx context.Context, op, body string) (*transport.Response, error) {
	return e.send(ctx, &transport.Request{
		Operation:   op,
		Method:      http.MethodPost,
		URL:         e.URL,
		ContentType: transport.ContentTypeXML,
		Body:        []byte(body),
	})
}

// Send dispatches payload as a POST body when post is true and as a KVP
// query otherwise.
func (e *Endpoint) Send(ctx context.Context, op, payload string, post bool) (*transport.Response, error) {
	if post {
		return e.Post(ctx, op, payload)
	}
	return e.Get(ctx, op, payload)
}

func (e *Endpoint) send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	resp, err := e.Doer.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("wps: %s: %w", req.Operation, err)
	}
	if !resp.OK() {
		return nil, ResponseError(req.Operation, resp)
	}
	return resp, nil
}

// ResponseError converts a failed response into an error: the decoded
// *ows.Exception when the body is an ExceptionReport, a *TransportError
// otherwise.
func ResponseError(op string, resp *transport.Response) error {
	if exc, err := ows.Parse(resp.Body); err == nil {
		return exc
	}
	return &TransportError{
		Operation:   op,
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		ContentType: resp.ContentType(),
		Body:        resp.Body,
	}
}
