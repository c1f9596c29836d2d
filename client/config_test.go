package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smnsjas/go-wps/transport"
)

func TestParseAuthType(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthType
		wantErr bool
	}{
		{"", AuthNone, false},
		{"none", AuthNone, false},
		{"Basic", AuthBasic, false},
		{"bearer", AuthBearer, false},
		{"NTLM", AuthNTLM, false},
		{"kerberos", AuthKerberos, false},
		{"negotiate", AuthKerberos, false},
		{"digest", AuthNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthType_String(t *testing.T) {
	assert.Equal(t, "basic", AuthBasic.String())
	assert.Equal(t, "kerberos", AuthKerberos.String())
	assert.Equal(t, "AuthType(42)", AuthType(42).String())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, true},
		{"bad proxy", func(c *Config) { c.Proxy = "://nope" }, true},
		{"breaker threshold", func(c *Config) { c.CircuitBreaker = &transport.BreakerPolicy{} }, true},
		{"basic ok", func(c *Config) { c.AuthType, c.Username, c.Password = AuthBasic, "u", "p" }, false},
		{"basic no password", func(c *Config) { c.AuthType, c.Username = AuthBasic, "u" }, true},
		{"ntlm no username", func(c *Config) { c.AuthType, c.Password = AuthNTLM, "p" }, true},
		{"bearer ok", func(c *Config) { c.AuthType, c.Token = AuthBearer, "t" }, false},
		{"bearer no token", func(c *Config) { c.AuthType = AuthBearer }, true},
		{"kerberos nothing", func(c *Config) { c.AuthType = AuthKerberos }, true},
		{"kerberos ccache", func(c *Config) { c.AuthType, c.CCachePath = AuthKerberos, "/tmp/krb5cc" }, false},
		{"kerberos keytab no user", func(c *Config) { c.AuthType, c.KeytabPath = AuthKerberos, "/etc/krb5.keytab" }, true},
		{"unknown auth", func(c *Config) { c.AuthType = AuthType(99) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_NewDoer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthType = AuthBasic
	cfg.Username = "u"
	cfg.Password = "p"
	cfg.Proxy = "http://proxy:3128"
	cfg.CircuitBreaker = &transport.BreakerPolicy{FailureThreshold: 3, ResetTimeout: time.Second}

	doer, err := cfg.NewDoer("https://wps.example.org/wps")
	require.NoError(t, err)
	ht, ok := doer.(*transport.HTTPTransport)
	require.True(t, ok)
	assert.Equal(t, transport.DefaultTimeout, ht.Client().Timeout)
}

func TestConfig_NewDoerOverride(t *testing.T) {
	custom := transport.DoerFunc(func(context.Context, *transport.Request) (*transport.Response, error) {
		return nil, nil
	})
	cfg := Config{Doer: custom}

	doer, err := cfg.NewDoer("http://ignored")
	require.NoError(t, err)
	assert.NotNil(t, doer)
	_, isHTTP := doer.(*transport.HTTPTransport)
	assert.False(t, isHTTP)
}
