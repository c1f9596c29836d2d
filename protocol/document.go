package protocol

import (
	"slices"

	"github.com/smnsjas/go-wps/internal/xmldoc"
	"github.com/smnsjas/go-wps/ows"
)

// Root element local names dispatched on.
const (
	RootCapabilities    = "Capabilities"
	RootExceptionReport = "ExceptionReport"
)

// CheckRoot returns nil if the root's local name is one of want. An
// ExceptionReport root is decoded and returned as an *ows.Exception;
// anything else is a *DocumentTypeError.
func CheckRoot(root *xmldoc.Node, want ...string) error {
	if slices.Contains(want, root.Local()) {
		return nil
	}
	if root.Local() == RootExceptionReport {
		exc, err := ows.FromNode(root)
		if err != nil {
			return err
		}
		return exc
	}
	return &DocumentTypeError{Expected: want, Actual: root.Local()}
}

// ParseRoot parses data and applies CheckRoot.
func ParseRoot(data []byte, want ...string) (*xmldoc.Node, error) {
	root, err := xmldoc.Parse(data)
	if err != nil {
		return nil, err
	}
	if err := CheckRoot(root, want...); err != nil {
		return nil, err
	}
	return root, nil
}

// SniffCapabilities reads the version attribute of a capabilities
// document. The root must be Capabilities (in any namespace) and the
// version must start with "1.0" or "2.0".
func SniffCapabilities(data []byte) (Version, error) {
	root, err := ParseRoot(data, RootCapabilities)
	if err != nil {
		return 0, err
	}
	v, _ := root.Attr("version")
	return ParseVersion(v)
}
