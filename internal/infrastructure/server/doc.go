// Package server serves the reference host API over gin, with tracing,
// metrics, CORS and optional per-client rate limiting, behind gzip
// compression.
package server
