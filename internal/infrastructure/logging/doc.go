// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Every logger is named "expt-addon" so add-on diagnostics can be filtered
// out of a shared host log. Errors that end a refresh cycle (transport,
// HTTP status, malformed payloads) are reported here and nowhere else.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("startup", zap.String("reason", "ADDON_INSTALL"))
//	logger.Error("Error making request", zap.Error(err))
package logging
