// Package config provides 12-factor configuration for the switchboard
// experiments add-on and its reference host.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags override environment variables.
//
// Configuration Sections:
//   - Server: reference host HTTP listener
//   - Experiments: configuration endpoints, cache busting, sync interval
//   - Panel: panel and dataset identifiers registered with the host
//   - HTTP: outbound client timeout, rate limit, circuit breaker
//   - Storage: sqlite file backing host row storage and overrides
//   - Logging: log level and output format
//   - CORS: origins allowed to read panel datasets
//
// Environment Variables:
//   - PORT, HOST
//   - EXPERIMENTS_URL, EXPERIMENTS_PAGE_URL, EXPERIMENTS_CACHE_BUST,
//     EXPERIMENTS_SYNC_INTERVAL, EXPERIMENTS_ACTIVE, EXPERIMENTS_PAYLOAD_FORMAT
//   - PANEL_ID, PANEL_DATASET_ID, PANEL_TITLE
//   - HTTP_TIMEOUT, HTTP_USER_AGENT, HTTP_RATE_LIMIT,
//     HTTP_BREAKER_FAILURES, HTTP_BREAKER_TIMEOUT
//   - STORAGE_PATH, LOG_LEVEL, LOG_DEV, CORS_ORIGINS
package config
