package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-krb5/krb5/client"
	"github.com/go-krb5/krb5/config"
	"github.com/go-krb5/krb5/credentials"
	"github.com/go-krb5/krb5/keytab"
	"github.com/go-krb5/krb5/spnego"
)

// KerberosConfig configures a KerberosProvider. Exactly one credential
// source is used, in this order: keytab, credential cache, password.
type KerberosConfig struct {
	// TargetSPN is the service principal, e.g. "HTTP/wps.domain.com".
	TargetSPN string

	// Realm is the Kerberos realm (e.g. EXAMPLE.COM).
	Realm string

	// Krb5ConfPath defaults to $KRB5_CONFIG, then /etc/krb5.conf.
	Krb5ConfPath string

	KeytabPath string
	CCachePath string

	// Credentials are used if KeytabPath and CCachePath are empty.
	Credentials *Credentials
}

// KerberosProvider implements SecurityProvider with a pure Go Kerberos
// client. It produces a single SPNEGO NegTokenInit; WPS endpoints are
// expected to be served over TLS, so no message sealing is done.
type KerberosProvider struct {
	client    *client.Client
	targetSPN string
	loggedIn  bool
	complete  bool
}

// NewKerberosProvider loads krb5.conf and the configured credentials.
func NewKerberosProvider(cfg KerberosConfig) (*KerberosProvider, error) {
	if cfg.TargetSPN == "" {
		return nil, errors.New("kerberos: target SPN is required")
	}
	confPath := cfg.Krb5ConfPath
	if confPath == "" {
		confPath = os.Getenv("KRB5_CONFIG")
	}
	if confPath == "" {
		confPath = "/etc/krb5.conf"
	}
	conf, err := config.Load(confPath)
	if err != nil {
		return nil, fmt.Errorf("load krb5.conf from %s: %w", confPath, err)
	}

	var cl *client.Client
	switch {
	case cfg.KeytabPath != "":
		if cfg.Credentials == nil || cfg.Credentials.Username == "" {
			return nil, errors.New("kerberos: username is required with a keytab")
		}
		kt, err := keytab.Load(cfg.KeytabPath)
		if err != nil {
			return nil, fmt.Errorf("load keytab from %s: %w", cfg.KeytabPath, err)
		}
		cl = client.NewWithKeytab(cfg.Credentials.Username, cfg.Realm, kt, conf, client.DisablePAFXFAST(true))
	case cfg.CCachePath != "":
		cc, err := credentials.LoadCCache(cfg.CCachePath)
		if err != nil {
			return nil, fmt.Errorf("load ccache from %s: %w", cfg.CCachePath, err)
		}
		cl, err = client.NewFromCCache(cc, conf, client.DisablePAFXFAST(true))
		if err != nil {
			return nil, fmt.Errorf("create client from ccache: %w", err)
		}
	case cfg.Credentials != nil:
		cl = client.NewWithPassword(cfg.Credentials.Username, cfg.Realm, cfg.Credentials.Password, conf,
			client.DisablePAFXFAST(true))
	default:
		return nil, errors.New("kerberos: no credentials provided (keytab, ccache, or password required)")
	}

	return &KerberosProvider{client: cl, targetSPN: cfg.TargetSPN}, nil
}

// Step returns the SPNEGO init token on the first call. A later challenge
// from the server (mutual authentication) completes the exchange.
func (p *KerberosProvider) Step(_ context.Context, inputToken []byte) ([]byte, bool, error) {
	if len(inputToken) > 0 {
		if !p.complete {
			return nil, false, errors.New("kerberos: server token received before client token was sent")
		}
		return nil, false, nil
	}

	if !p.loggedIn {
		if err := p.client.Login(); err != nil {
			return nil, false, fmt.Errorf("kerberos login: %w", err)
		}
		p.loggedIn = true
	}

	tkn, err := spnego.SPNEGOClient(p.client, p.targetSPN).InitSecContext()
	if err != nil {
		return nil, false, fmt.Errorf("kerberos: init security context: %w", err)
	}
	token, err := tkn.Marshal()
	if err != nil {
		return nil, false, fmt.Errorf("kerberos: marshal token: %w", err)
	}
	p.complete = true
	return token, false, nil
}

// Complete returns true once a token has been produced.
func (p *KerberosProvider) Complete() bool {
	return p.complete
}

// Close destroys the Kerberos client session.
func (p *KerberosProvider) Close() error {
	p.client.Destroy()
	return nil
}
