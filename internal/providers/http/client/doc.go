// Package client provides the outbound HTTP client used to download
// experiment configuration documents.
//
// Built on go-resty/resty with the pooled transport from
// hashicorp/go-retryablehttp. Requests are never retried; repeated
// failures open a circuit breaker so periodic refreshes stop hammering a
// dead endpoint. An optional token-bucket limiter (x/time/rate) caps the
// request rate when several triggers fire close together.
//
// Example Usage:
//
//	c := client.NewClient(client.DefaultOptions())
//	resp, err := c.Get(ctx, "https://example.com/experiments.json")
package client
