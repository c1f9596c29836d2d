package auth

import (
	"errors"
	"net/http"
)

// Authenticator decorates the HTTP transport used for WPS requests.
type Authenticator interface {
	// Transport returns base wrapped with this scheme. A nil base means
	// http.DefaultTransport.
	Transport(base http.RoundTripper) http.RoundTripper

	// Name is the scheme as it appears in the Authorization header.
	Name() string
}

// Credentials is a user/password pair. Domain is only used by NTLM.
type Credentials struct {
	Username string
	Password string
	Domain   string
}

var (
	errNoUsername = errors.New("username is required")
	errNoPassword = errors.New("password is required")
)

// Validate reports missing fields.
func (c *Credentials) Validate() error {
	switch {
	case c.Username == "":
		return errNoUsername
	case c.Password == "":
		return errNoPassword
	}
	return nil
}

// String renders the principal as DOMAIN\user, never the password.
func (c Credentials) String() string {
	if c.Domain == "" {
		return c.Username
	}
	return c.Domain + `\` + c.Username
}

func baseOrDefault(base http.RoundTripper) http.RoundTripper {
	if base != nil {
		return base
	}
	return http.DefaultTransport
}
