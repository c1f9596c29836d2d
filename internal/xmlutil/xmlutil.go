// Package xmlutil holds the text-level helpers shared by the WPS request
// encoders and response decoders.
package xmlutil

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var escaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	"'", "&apos;",
	`"`, "&quot;",
)

// Escape replaces the five XML reserved characters in s with their entity
// references. Every value interpolated into an XML request body goes through
// Escape.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Attr renders ` name="value"` with the value escaped, or "" when value is
// empty.
func Attr(name, value string) string {
	if value == "" {
		return ""
	}
	return " " + name + `="` + Escape(value) + `"`
}

// KVP builds an ordered key-value-pair query string. Keys are written as
// given and values are query-escaped, except that commas are kept literal so
// that list parameters stay readable on the wire.
type KVP struct {
	b strings.Builder
}

// Add appends key=value.
func (k *KVP) Add(key, value string) *KVP {
	if k.b.Len() > 0 {
		k.b.WriteByte('&')
	}
	k.b.WriteString(key)
	k.b.WriteByte('=')
	k.b.WriteString(strings.ReplaceAll(url.QueryEscape(value), "%2C", ","))
	return k
}

// String returns the encoded query.
func (k *KVP) String() string {
	return k.b.String()
}

// ISOTime is the layout used for dates written into requests.
const ISOTime = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(ISOTime)
}

// ParseTime parses an xs:dateTime value. An empty string yields the zero
// time. The end-of-day form "T24:00:00" is accepted and normalized to
// midnight of the following day.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	endOfDay := false
	if i := strings.Index(s, "T24:00:00"); i >= 0 {
		endOfDay = true
		s = s[:i] + "T00:00:00" + s[i+len("T24:00:00"):]
	}

	var (
		t   time.Time
		err error
	)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		t, err = time.Parse(layout, s)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
