// Package wps10 implements the WPS 1.0.0 wire codec and protocol.
//
// WPS 1.0.0 support is partial. Capabilities decoding returns only the
// version, DescribeProcess and Execute are complete, and job polling
// (GetStatus and GetResult) is not implemented: those operations return
// protocol.ErrNotImplemented. An asynchronous Execute yields a job whose
// identifier is the statusLocation URL reported by the server.
package wps10
