// Package http holds the gin handlers of the reference host API: the
// about:experiments page and its toggle endpoint, panel and dataset
// inspection, override management, health and metrics.
package http
