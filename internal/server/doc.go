// Package server provides the docmetrics web UI and HTTP API.
//
// Endpoints:
//
//	GET  /         upload form
//	POST /analyze  multipart "files", responds with {"results":[...]}
//	POST /export   multipart "files", responds with a report download
//	GET  /health   liveness probe
//
// Every request gets an X-Request-ID and an access log entry. Analysis
// endpoints are rate limited per client IP and run with bounded
// concurrency.
package server
