// Package wps provides an OGC Web Processing Service (WPS) client for
// protocol versions 1.0.0 and 2.0.0.
//
// # Architecture
//
// The library is organized into layers:
//
//	┌─────────────────────────────────────────────────────────┐
//	│  client/       Discovery and the version-neutral API    │
//	├─────────────────────────────────────────────────────────┤
//	│  wps20/ wps10/ Per-version codecs and request flows     │
//	├─────────────────────────────────────────────────────────┤
//	│  protocol/     Endpoint, response classification        │
//	├─────────────────────────────────────────────────────────┤
//	│  transport/    HTTP, authentication, circuit breaker    │
//	└─────────────────────────────────────────────────────────┘
//
// model/ holds the shared domain types, ows/ the OWS exception report and
// job/ the asynchronous job handle. gateway/ exposes a discovered service
// as a JSON REST API and metrics/ exports Prometheus collectors.
//
// # Quick Start
//
//	svc, err := client.Discover(ctx, "https://maps.example.org/wps", client.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := svc.Execute(ctx, "buffer",
//	    []model.Input{{ID: "distance", Value: model.Literal{Value: 250}}},
//	    []model.OutputRequest{{ID: "buffered", AsValue: true}},
//	    client.ExecuteOptions{Async: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := svc.Await(ctx, resp.Job, client.DefaultPollPolicy())
package wps
