package protocol

import (
	"fmt"
	"strings"
)

// Version is a WPS wire version. Only V10 and V20 exist.
type Version int

const (
	// V10 is WPS 1.0.0.
	V10 Version = iota + 1
	// V20 is WPS 2.0.0.
	V20
)

// String returns the dotted version number.
func (v Version) String() string {
	switch v {
	case V10:
		return "1.0.0"
	case V20:
		return "2.0.0"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// ParseVersion maps a capabilities version attribute to a Version. It
// accepts any string starting with "1.0" or "2.0"; everything else is an
// *UnsupportedVersionError.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "2.0"):
		return V20, nil
	case strings.HasPrefix(s, "1.0"):
		return V10, nil
	}
	return 0, &UnsupportedVersionError{Version: s}
}
