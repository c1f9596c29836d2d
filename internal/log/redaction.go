package log

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// Redacted replaces every masked value.
const Redacted = "[REDACTED]"

// sensitiveKeys are matched case-insensitively as substrings of attribute
// keys.
var sensitiveKeys = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"authorization",
	"bearer",
	"cookie",
	"apikey",
	"api_key",
	"ticket",
	"cred",
}

// sensitiveParams are query parameters masked inside URL-valued attributes.
var sensitiveParams = []string{
	"access_token",
	"token",
	"apikey",
	"api_key",
	"key",
	"password",
	"sig",
	"signature",
}

// urlKeys are attribute keys whose string values are parsed as URLs.
var urlKeys = []string{"url", "endpoint", "href", "location"}

// RedactingHandler is a slog.Handler that masks credentials: values under
// sensitive keys, inside groups too, and the password and sensitive query
// parameters of URL-valued attributes.
type RedactingHandler struct {
	next slog.Handler
}

// NewRedactingHandler wraps next.
func NewRedactingHandler(next slog.Handler) *RedactingHandler {
	return &RedactingHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted)}
}

// WithGroup implements slog.Handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		redacted := make([]any, len(members))
		for i, m := range members {
			redacted[i] = redactAttr(m)
		}
		return slog.Group(a.Key, redacted...)
	}

	key := strings.ToLower(a.Key)
	if containsAny(key, sensitiveKeys) {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() == slog.KindString && containsAny(key, urlKeys) {
		return slog.String(a.Key, RedactURL(a.Value.String()))
	}
	return a
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// RedactURL masks the userinfo password and sensitive query parameters of
// raw. Strings that do not parse as URLs are returned unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme == "" && u.Host == "") {
		return raw
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), Redacted)
		}
	}
	if u.RawQuery != "" {
		q := u.Query()
		changed := false
		for name := range q {
			for _, p := range sensitiveParams {
				if strings.EqualFold(name, p) {
					q.Set(name, Redacted)
					changed = true
				}
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}
	return u.String()
}
