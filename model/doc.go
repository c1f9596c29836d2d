// Package model defines the version-independent records produced by the
// WPS 1.0.0 and 2.0.0 codecs: capabilities, process descriptions, job
// status snapshots and execution results, plus the request-side input and
// output selections passed to Execute.
//
// Records are plain values. The only derived state is the id lookup index of
// a ProcessDescription, built once by NewProcessDescription.
package model
