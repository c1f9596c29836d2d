// Package auth provides HTTP authentication handlers for WPS endpoints.
//
// # Supported Authentication Methods
//
//   - Basic: HTTP Basic authentication (use only over TLS)
//   - Bearer: static OAuth2/API bearer tokens
//   - NTLM: NT LAN Manager authentication (via github.com/Azure/go-ntlmssp)
//   - Negotiate: SPNEGO with a pluggable SecurityProvider; KerberosProvider
//     implements it on top of github.com/go-krb5/krb5
//
// # Usage
//
// NTLM authentication:
//
//	a := auth.NewNTLMAuth(auth.Credentials{
//	    Username: "wpsuser",
//	    Password: "password",
//	    Domain:   "DOMAIN",
//	})
//	tr := transport.NewHTTPTransport(transport.WithAuthenticator(a))
//
// Kerberos with credential cache (after kinit):
//
//	provider, _ := auth.NewKerberosProvider(auth.KerberosConfig{
//	    TargetSPN:  "HTTP/wps.domain.com",
//	    Realm:      "DOMAIN.COM",
//	    CCachePath: "/tmp/krb5cc_1000",
//	})
//	a := auth.NewNegotiateAuth(provider)
package auth
