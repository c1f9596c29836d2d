package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logJSON(t *testing.T, fn func(*slog.Logger)) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	fn(slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil))))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	return out
}

func TestRedactingHandler_Keys(t *testing.T) {
	out := logJSON(t, func(l *slog.Logger) {
		l.Info("request",
			"password", "secret123",
			"Authorization", "Bearer abc",
			"api_token", "abcdef",
			"Set-Cookie", "sid=1",
			"username", "analyst",
			"operation", "Execute")
	})

	assert.Equal(t, Redacted, out["password"])
	assert.Equal(t, Redacted, out["Authorization"])
	assert.Equal(t, Redacted, out["api_token"])
	assert.Equal(t, Redacted, out["Set-Cookie"])
	assert.Equal(t, "analyst", out["username"])
	assert.Equal(t, "Execute", out["operation"])
}

func TestRedactingHandler_Groups(t *testing.T) {
	out := logJSON(t, func(l *slog.Logger) {
		l.Info("auth", slog.Group("credentials",
			slog.String("password", "hidden"),
			slog.String("user", "visible"),
		))
	})

	group, ok := out["credentials"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, Redacted, group["password"])
	assert.Equal(t, "visible", group["user"])
}

func TestRedactingHandler_WithAttrs(t *testing.T) {
	out := logJSON(t, func(l *slog.Logger) {
		l.With("token", "t0k3n").Info("bound")
	})
	assert.Equal(t, Redacted, out["token"])
}

func TestRedactingHandler_URLs(t *testing.T) {
	out := logJSON(t, func(l *slog.Logger) {
		l.Info("wps request",
			"url", "https://user:pw@wps.example.org/wps?service=WPS&access_token=abc",
			"endpoint", "not a url")
	})

	u, ok := out["url"].(string)
	require.True(t, ok)
	assert.NotContains(t, u, "pw@")
	assert.NotContains(t, u, "abc")
	assert.Contains(t, u, "service=WPS")
	assert.Equal(t, "not a url", out["endpoint"])
}

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://h/wps?service=WPS", "http://h/wps?service=WPS"},
		{"http://h/wps?KEY=1&map=x", "http://h/wps?KEY=%5BREDACTED%5D&map=x"},
		{"http://u@h/wps", "http://u@h/wps"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedactURL(tt.in), tt.in)
	}
}
