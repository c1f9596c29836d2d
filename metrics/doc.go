// Package metrics exposes Prometheus instrumentation for WPS clients.
//
// A Collector implements transport.Observer and client.JobObserver, so a
// single value set as client.Config.Observer records request counts,
// request latency and polled job statuses. Handler serves the registry in
// the Prometheus text format.
package metrics
