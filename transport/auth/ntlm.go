package auth

import (
	"net/http"

	"github.com/Azure/go-ntlmssp"
)

// NTLMAuth performs the NTLM handshake used by IIS-hosted WPS servers.
type NTLMAuth struct {
	creds Credentials
}

// NewNTLMAuth creates an NTLM authenticator.
func NewNTLMAuth(creds Credentials) *NTLMAuth {
	return &NTLMAuth{creds: creds}
}

// Name returns "NTLM".
func (a *NTLMAuth) Name() string {
	return "NTLM"
}

// Transport wraps base with the handshake. ntlmssp.Negotiator reads the
// credentials from a Basic Authorization header and removes it before the
// anonymous first leg, so each request only needs them attached.
func (a *NTLMAuth) Transport(base http.RoundTripper) http.RoundTripper {
	negotiator := ntlmssp.Negotiator{RoundTripper: baseOrDefault(base)}
	principal, password := a.creds.String(), a.creds.Password
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		out := req.Clone(req.Context())
		out.SetBasicAuth(principal, password)
		return negotiator.RoundTrip(out)
	})
}
