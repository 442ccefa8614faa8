// Package middleware provides the gin middleware of the reference host API.
//
//   - CORS: cross-origin access for panel readers, wildcard unless
//     CORS_ORIGINS narrows it
//   - RateLimit: per-IP token bucket, enabled by SERVER_RATE_LIMIT
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.CORSFromOrigins(cfg.CORS.AllowedOrigins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
