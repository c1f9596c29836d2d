// Package gateway serves a discovered WPS service as a small JSON REST API.
//
// Routes (relative to Config.BasePath):
//
//	GET  /health
//	GET  /capabilities
//	GET  /processes/{id}
//	POST /processes/{id}/execution
//	GET  /jobs
//	GET  /jobs/{id}
//	GET  /jobs/{id}/results
//	GET  /metrics
//
// Jobs started through the gateway are tracked in memory under a
// gateway-local identifier and are lost when the process exits. Job status
// is refreshed from the WPS server on read; nothing polls in the
// background.
//
// When Config.JWTSecret is set every route except /health requires an
// HS256 bearer token with a subject claim.
package gateway
