package wps20

import "github.com/smnsjas/go-wps/internal/xmldoc"

// XML namespace URIs used by WPS 2.0.0 documents.
const (
	// NsWPS is the WPS 2.0 namespace.
	NsWPS = "http://www.opengis.net/wps/2.0"

	// NsOWS is the OWS 2.0 common namespace.
	NsOWS = "http://www.opengis.net/ows/2.0"

	// NsXLink is the XLink namespace used for references.
	NsXLink = "http://www.w3.org/1999/xlink"

	// NsXsi is the XML Schema Instance namespace.
	NsXsi = "http://www.w3.org/2001/XMLSchema-instance"

	// SchemaLocation points at the WPS 2.0 request schema.
	SchemaLocation = "http://www.opengis.net/wps/2.0 http://schemas.opengis.net/wps/2.0/wps.xsd"
)

var ns = xmldoc.Namespaces{
	"wps":   NsWPS,
	"ows":   NsOWS,
	"xlink": NsXLink,
}

// Root element local names of 2.0 response documents.
const (
	rootProcessOfferings = "ProcessOfferings"
	rootProcessOffering  = "ProcessOffering"
	rootStatusInfo       = "StatusInfo"
	rootResult           = "Result"
)

// Job control and output transmission tokens.
const (
	tokenSyncExecute  = "sync-execute"
	tokenAsyncExecute = "async-execute"
	tokenDismiss      = "dismiss"
	tokenValue        = "value"
	tokenReference    = "reference"
)
