// Package wps20 implements the WPS 2.0.0 wire codec and protocol.
//
// Codec holds the pure encoders and decoders. Protocol pairs a Codec with a
// protocol.Endpoint to perform one round trip per operation:
//
//	p := wps20.New(protocol.NewEndpoint("https://example.org/wps", false, nil))
//	descs, err := p.DescribeProcess(ctx, "buffer")
//
// Requests are built as text. Every interpolated identifier, href and
// literal passes through xmlutil.Escape.
package wps20
