package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/smnsjas/go-wps/protocol"
	"github.com/smnsjas/go-wps/transport"
	"github.com/smnsjas/go-wps/wps10"
	"github.com/smnsjas/go-wps/wps20"
)

// OpGetCapabilities is the operation name of the discovery request.
const OpGetCapabilities = "GetCapabilities"

// capabilitiesQuery asks for the newest version first.
const capabilitiesQuery = "service=WPS&request=GetCapabilities&acceptversions=2.0.0,1.0.0"

// WPS request parameters removed when deriving the protocol endpoint.
var wpsParams = []string{"service", "request", "version", "acceptversions"}

// CapabilitiesURL returns the GetCapabilities URL for endpoint. A URL that
// already carries a request parameter is returned unchanged.
func CapabilitiesURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid service URL: %w", err)
	}
	if hasParam(u.Query(), "request") {
		return endpoint, nil
	}

	switch {
	case u.RawQuery == "":
		return strings.TrimSuffix(endpoint, "?") + "?" + capabilitiesQuery, nil
	case strings.HasSuffix(endpoint, "&"):
		return endpoint + capabilitiesQuery, nil
	default:
		return endpoint + "&" + capabilitiesQuery, nil
	}
}

// ServiceEndpoint strips WPS request parameters (service, request,
// version, acceptversions) from rawURL. Other query parameters are kept.
func ServiceEndpoint(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid service URL: %w", err)
	}
	q := u.Query()
	for key := range q {
		for _, p := range wpsParams {
			if strings.EqualFold(key, p) {
				q.Del(key)
			}
		}
	}
	u.RawQuery = q.Encode()
	u.ForceQuery = false
	return u.String(), nil
}

func hasParam(q url.Values, name string) bool {
	for key := range q {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// NewProtocol returns the protocol implementation for v.
func NewProtocol(v protocol.Version, endpoint *protocol.Endpoint) (protocol.Protocol, error) {
	switch v {
	case protocol.V20:
		return wps20.New(endpoint), nil
	case protocol.V10:
		return wps10.New(endpoint), nil
	}
	return nil, &protocol.UnsupportedVersionError{Version: v.String()}
}

// NewCodec returns the wire codec for v.
func NewCodec(v protocol.Version) (protocol.Codec, error) {
	switch v {
	case protocol.V20:
		return wps20.Codec{}, nil
	case protocol.V10:
		return wps10.Codec{}, nil
	}
	return nil, &protocol.UnsupportedVersionError{Version: v.String()}
}

// Discover fetches the capabilities of the service at serviceURL, selects
// the protocol for the announced version and returns a Service.
//
// The version attribute must start with "1.0" or "2.0"; anything else is
// a *protocol.UnsupportedVersionError. A root other than Capabilities is a
// *protocol.DocumentTypeError, and an ExceptionReport an *ows.Exception.
func Discover(ctx context.Context, serviceURL string, cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	capsURL, err := CapabilitiesURL(serviceURL)
	if err != nil {
		return nil, err
	}
	endpointURL, err := ServiceEndpoint(serviceURL)
	if err != nil {
		return nil, err
	}
	doer, err := cfg.NewDoer(serviceURL)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger()
	resp, err := doer.Do(ctx, &transport.Request{
		Operation: OpGetCapabilities,
		Method:    http.MethodGet,
		URL:       capsURL,
	})
	if err != nil {
		return nil, fmt.Errorf("wps: %s: %w", OpGetCapabilities, err)
	}
	if !resp.OK() {
		return nil, protocol.ResponseError(OpGetCapabilities, resp)
	}

	version, err := protocol.SniffCapabilities(resp.Body)
	if err != nil {
		return nil, err
	}
	codec, err := NewCodec(version)
	if err != nil {
		return nil, err
	}
	caps, err := codec.DecodeCapabilities(resp.Body)
	if err != nil {
		return nil, err
	}
	proto, err := NewProtocol(version, protocol.NewEndpoint(endpointURL, cfg.UsePost, doer))
	if err != nil {
		return nil, err
	}

	logger.Info("wps service discovered",
		"endpoint", endpointURL,
		"version", version,
		"processes", len(caps.ProcessSummaries))

	svc := NewService(caps, proto, logger)
	if jo, ok := cfg.Observer.(JobObserver); ok {
		svc.jobObserver = jo
	}
	return svc, nil
}
