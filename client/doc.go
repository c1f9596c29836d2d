// Package client is the high-level entry point for talking to a WPS
// server.
//
// Discover fetches the capabilities document, picks the wire version the
// server announces (1.0.0 or 2.0.0) and returns a Service bound to the
// matching protocol implementation:
//
//	svc, err := client.Discover(ctx, "https://example.org/wps", client.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	resp, err := svc.Execute(ctx, "buffer", inputs, outputs, client.ExecuteOptions{Async: true})
//	if err != nil {
//		return err
//	}
//	if resp.Job != nil {
//		result, err := svc.Await(ctx, resp.Job, client.DefaultPollPolicy())
//		...
//	}
//
// Nothing in this package retries a failed round trip. Await only repeats
// status polls for a job that is still pending.
package client
