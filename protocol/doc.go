// Package protocol defines the version-independent contract implemented by
// the WPS 1.0.0 (package wps10) and 2.0.0 (package wps20) protocol
// implementations, together with the shared error taxonomy and the request
// sending helper both use.
//
// A Protocol is state-free: it holds only the service URL, the GET-vs-POST
// preference and a transport. Version dispatch happens once, when a service
// is discovered; nothing below this package branches on a version string.
package protocol
