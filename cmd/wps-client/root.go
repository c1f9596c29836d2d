package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/smnsjas/go-wps/client"
	wpslog "github.com/smnsjas/go-wps/internal/log"
	"github.com/smnsjas/go-wps/transport"
)

// Viper keys, identical to the persistent flag names.
const (
	keyURL       = "url"
	keyAuth      = "auth"
	keyUser      = "user"
	keyPassword  = "password"
	keyDomain    = "domain"
	keyToken     = "token"
	keyRealm     = "realm"
	keyKrb5Conf  = "krb5-conf"
	keyKeytab    = "keytab"
	keyCCache    = "ccache"
	keySPN       = "spn"
	keyTimeout   = "timeout"
	keyInsecure  = "insecure"
	keyProxy     = "proxy"
	keyPost      = "post"
	keyBreaker   = "breaker-threshold"
	keyFormat    = "format"
	keyLogLevel  = "log-level"
	keyLogFile   = "log-file"
	keyLogSize   = "log-max-size"
	keyLogBackup = "log-max-backups"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string
	var logCloser io.Closer

	root := &cobra.Command{
		Use:           "wps-client",
		Short:         "OGC Web Processing Service client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(v, cfgFile); err != nil {
				return err
			}
			closer, err := setupLogging(v)
			if err != nil {
				return err
			}
			logCloser = closer
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.String(keyURL, "", "WPS service URL")
	pf.String(keyAuth, "none", "authentication: none, basic, bearer, ntlm, kerberos")
	pf.String(keyUser, "", "username")
	pf.String(keyPassword, "", "password (use WPS_PASSWORD instead)")
	pf.String(keyDomain, "", "NTLM domain")
	pf.String(keyToken, "", "bearer token")
	pf.String(keyRealm, "", "Kerberos realm (e.g., EXAMPLE.COM)")
	pf.String(keyKrb5Conf, "", "path to krb5.conf")
	pf.String(keyKeytab, "", "path to Kerberos keytab")
	pf.String(keyCCache, "", "path to Kerberos credential cache")
	pf.String(keySPN, "", "Kerberos service principal (default HTTP/<host>)")
	pf.Duration(keyTimeout, transport.DefaultTimeout, "per-request timeout")
	pf.Bool(keyInsecure, false, "skip TLS certificate verification")
	pf.String(keyProxy, "", "proxy URL")
	pf.Bool(keyPost, false, "send DescribeProcess, GetStatus and GetResult as XML POST")
	pf.Int(keyBreaker, 0, "open the circuit after this many consecutive transport failures (0 disables)")
	pf.StringP(keyFormat, "f", "table", "output format: table, json, yaml")
	pf.String(keyLogLevel, "warn", "log level: debug, info, warn, error")
	pf.String(keyLogFile, "", "write logs to this file instead of stderr")
	pf.Int64(keyLogSize, wpslog.DefaultMaxSize, "rotate the log file at this many bytes")
	pf.Int(keyLogBackup, 3, "rotated log files to keep")
	_ = v.BindPFlags(pf)

	root.AddCommand(
		newCapabilitiesCmd(v),
		newDescribeCmd(v),
		newExecuteCmd(v),
		newStatusCmd(v),
		newResultCmd(v),
		newServeCmd(v),
	)
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("WPS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}

// setupLogging installs the default slog logger. The returned closer is
// non-nil when logs go to a file.
func setupLogging(v *viper.Viper) (io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString(keyLogLevel))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if path := v.GetString(keyLogFile); path != "" {
		rf, err := wpslog.NewRotatingFile(path, v.GetInt64(keyLogSize), v.GetInt(keyLogBackup))
		if err != nil {
			return nil, err
		}
		w, closer = rf, rf
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(wpslog.NewRedactingHandler(handler)))
	return closer, nil
}

// clientConfig builds a client.Config from flags, environment and config
// file, prompting for a password when one is needed.
func clientConfig(v *viper.Viper) (client.Config, error) {
	cfg := client.DefaultConfig()

	authType, err := client.ParseAuthType(v.GetString(keyAuth))
	if err != nil {
		return cfg, err
	}
	cfg.AuthType = authType
	cfg.Timeout = v.GetDuration(keyTimeout)
	cfg.InsecureSkipVerify = v.GetBool(keyInsecure)
	cfg.Proxy = v.GetString(keyProxy)
	cfg.UsePost = v.GetBool(keyPost)
	cfg.UserAgent = "wps-client/" + version
	cfg.Username = v.GetString(keyUser)
	cfg.Password = v.GetString(keyPassword)
	cfg.Domain = v.GetString(keyDomain)
	cfg.Token = v.GetString(keyToken)
	cfg.Realm = v.GetString(keyRealm)
	cfg.Krb5ConfPath = v.GetString(keyKrb5Conf)
	cfg.KeytabPath = v.GetString(keyKeytab)
	cfg.CCachePath = v.GetString(keyCCache)
	cfg.TargetSPN = v.GetString(keySPN)
	cfg.Logger = slog.Default()

	if n := v.GetInt(keyBreaker); n > 0 {
		policy := transport.DefaultBreakerPolicy()
		policy.FailureThreshold = n
		cfg.CircuitBreaker = &policy
	}

	if needsPassword(cfg) {
		fmt.Fprint(os.Stderr, "Password: ")
		cfg.Password = readPassword(os.Stdin)
	}
	return cfg, nil
}

func needsPassword(cfg client.Config) bool {
	if cfg.Password != "" || cfg.Username == "" {
		return false
	}
	switch cfg.AuthType {
	case client.AuthBasic, client.AuthNTLM:
		return true
	case client.AuthKerberos:
		return cfg.KeytabPath == "" && cfg.CCachePath == ""
	}
	return false
}

func readPassword(f *os.File) string {
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		// Terminal: read password without echo
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return ""
		}
		return string(b)
	}
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

func serviceURL(v *viper.Viper) (string, error) {
	u := v.GetString(keyURL)
	if u == "" {
		return "", errors.New("service URL is required (--url or WPS_URL)")
	}
	return u, nil
}

func discover(cmd *cobra.Command, v *viper.Viper) (*client.Service, error) {
	u, err := serviceURL(v)
	if err != nil {
		return nil, err
	}
	cfg, err := clientConfig(v)
	if err != nil {
		return nil, err
	}
	return client.Discover(cmd.Context(), u, cfg)
}

// durationFlag reads a duration flag local to a command.
func durationFlag(cmd *cobra.Command, name string) time.Duration {
	d, _ := cmd.Flags().GetDuration(name)
	return d
}
