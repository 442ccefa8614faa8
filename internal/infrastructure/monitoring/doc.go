/*
Package monitoring provides Prometheus metrics for the add-on and its host.

# Metrics

  - switchboard_refresh_total{mode,outcome}: refresh cycles (sync, page, clear)
  - switchboard_fetch_duration_seconds{outcome}: configuration fetch latency
  - switchboard_rows{dataset}: rows written by the latest sync
  - switchboard_override_toggles_total{state}: page toggles
  - switchboard_override_clears_total: overrides cleared on teardown
  - switchboard_http_requests_total / _duration_seconds: host HTTP surface

Every Metrics value owns a private registry. A nil *Metrics is valid and
records nothing.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics)
	// ... fetch ...
	timer.Stop(monitoring.OutcomeDone)
*/
package monitoring
