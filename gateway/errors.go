package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smnsjas/go-wps/client"
	"github.com/smnsjas/go-wps/model"
	"github.com/smnsjas/go-wps/ows"
	"github.com/smnsjas/go-wps/protocol"
	"github.com/smnsjas/go-wps/transport"
)

// handleError maps client errors onto HTTP problems. Errors reported by
// the WPS server surface as 502 so that callers can tell them apart from
// mistakes in their own request.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if exc, ok := ows.AsException(err); ok {
		return huma.NewError(http.StatusBadGateway, exc.Error(), &huma.ErrorDetail{
			Message:  exc.Message,
			Location: exc.Locator,
			Value:    exc.Code,
		})
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, client.ErrJobFailed):
		return huma.Error409Conflict(err.Error())
	case model.IsStateError(err):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, protocol.ErrNotImplemented):
		return huma.NewError(http.StatusNotImplemented, err.Error())
	case errors.Is(err, transport.ErrCircuitOpen):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return huma.NewError(http.StatusGatewayTimeout, err.Error())
	case protocol.IsTransportError(err):
		return huma.NewError(http.StatusBadGateway, err.Error())
	}

	var dte *protocol.DocumentTypeError
	if errors.As(err, &dte) {
		return huma.NewError(http.StatusBadGateway, err.Error())
	}
	var ute *protocol.UnsupportedVersionError
	if errors.As(err, &ute) {
		return huma.NewError(http.StatusBadGateway, err.Error())
	}
	return huma.Error500InternalServerError("internal error", err)
}

// writeProblem writes an RFC 9457 problem outside of huma handlers.
func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&huma.ErrorModel{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
