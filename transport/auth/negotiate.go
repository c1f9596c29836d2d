package auth

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// maxNegotiateLegs bounds the handshake so a misbehaving server cannot keep
// the client in a challenge loop.
const maxNegotiateLegs = 5

// NegotiateAuth implements SPNEGO authentication using a pluggable
// SecurityProvider.
//
// A handshake that the server never accepts ends with the server's last
// 401 response rather than an error, so callers see the same
// authentication failure they would for a rejected Basic or NTLM login.
type NegotiateAuth struct {
	provider SecurityProvider
}

// NewNegotiateAuth creates a new Negotiate authenticator.
func NewNegotiateAuth(provider SecurityProvider) *NegotiateAuth {
	return &NegotiateAuth{provider: provider}
}

// Name returns the scheme name.
func (a *NegotiateAuth) Name() string {
	return "Negotiate"
}

// Transport wraps base with the Negotiate handshake.
func (a *NegotiateAuth) Transport(base http.RoundTripper) http.RoundTripper {
	return &negotiateTransport{
		base:     baseOrDefault(base),
		provider: a.provider,
	}
}

type negotiateTransport struct {
	// mu serializes handshakes; the provider is stateful.
	mu       sync.Mutex
	base     http.RoundTripper
	provider SecurityProvider
}

func (t *negotiateTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	body, err := drainBody(req)
	if err != nil {
		return nil, err
	}

	var token []byte
	for leg := 1; ; leg++ {
		resp, err := t.base.RoundTrip(withToken(req, body, token))
		if err != nil {
			return nil, err
		}
		challenge, ok := negotiateChallenge(resp)
		if !ok {
			return resp, nil
		}
		if leg == maxNegotiateLegs {
			slog.Warn("negotiate handshake not accepted",
				"host", req.URL.Host, "legs", leg)
			return resp, nil
		}

		var more bool
		token, more, err = t.provider.Step(req.Context(), challenge)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("auth: negotiate step %d: %w", leg, err)
		}
		if token == nil && !more {
			// Nothing left to send; the refusal stands.
			return resp, nil
		}
		_ = resp.Body.Close()
	}
}

// drainBody reads and closes the request body so each leg can replay it.
func drainBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	defer req.Body.Close()
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("auth: read request body: %w", err)
	}
	return b, nil
}

// withToken clones req with a fresh copy of body and, when token is set,
// a Negotiate Authorization header.
func withToken(req *http.Request, body, token []byte) *http.Request {
	out := req.Clone(req.Context())
	if body != nil {
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.ContentLength = int64(len(body))
	}
	if token != nil {
		out.Header.Set("Authorization", "Negotiate "+base64.StdEncoding.EncodeToString(token))
	}
	return out
}

// negotiateChallenge reports whether resp asks for another Negotiate leg and
// returns the server token it carries. A bare "Negotiate" challenge or an
// undecodable token yields a nil token.
func negotiateChallenge(resp *http.Response) ([]byte, bool) {
	if resp.StatusCode != http.StatusUnauthorized {
		return nil, false
	}
	for _, h := range resp.Header.Values("WWW-Authenticate") {
		scheme, param, _ := strings.Cut(strings.TrimSpace(h), " ")
		if !strings.EqualFold(scheme, "Negotiate") {
			continue
		}
		tok, err := base64.StdEncoding.DecodeString(strings.TrimSpace(param))
		if err != nil || len(tok) == 0 {
			return nil, true
		}
		return tok, true
	}
	return nil, false
}
