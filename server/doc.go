// Package server exposes datasets and the query engine over HTTP.
//
// Routes:
//
//	GET  /           liveness text "OK"
//	GET  /health     {"ok":true,"timestamp":"..."}
//	GET  /metrics    Prometheus metrics
//	GET  /datasets   dataset metadata (also POST)
//	POST /query      run a query.Request against a dataset
//	POST /authorize  {"ok":true}
//
// Dataset, query and authorize routes require the shared secret in the
// X-Secret header. Errors are reported as
//
//	{"type":{"code":400,"description":"Unknown column"},"message":"..."}
package server
