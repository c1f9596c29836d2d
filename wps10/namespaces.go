package wps10

import "github.com/smnsjas/go-wps/internal/xmldoc"

// XML namespace URIs used by WPS 1.0.0 documents.
const (
	// NsWPS is the WPS 1.0.0 namespace.
	NsWPS = "http://www.opengis.net/wps/1.0.0"

	// NsOWS is the OWS 1.1 common namespace.
	NsOWS = "http://www.opengis.net/ows/1.1"

	// NsXLink is the XLink namespace.
	NsXLink = "http://www.w3.org/1999/xlink"

	// NsXsi is the XML Schema Instance namespace.
	NsXsi = "http://www.w3.org/2001/XMLSchema-instance"
)

// Schema locations of the 1.0.0 request documents.
const (
	schemaDescribeProcess = "http://www.opengis.net/wps/1.0.0 http://schemas.opengis.net/wps/1.0.0/wpsDescribeProcess_request.xsd"
	schemaExecute         = "http://www.opengis.net/wps/1.0.0 http://schemas.opengis.net/wps/1.0.0/wpsExecute_request.xsd"
)

var ns = xmldoc.Namespaces{
	"wps":   NsWPS,
	"ows":   NsOWS,
	"xlink": NsXLink,
}

const (
	rootProcessDescriptions = "ProcessDescriptions"
	rootExecuteResponse     = "ExecuteResponse"
)
