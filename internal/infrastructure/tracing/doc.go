/*
Package tracing traces requests to the reference host API.

Every request gets a span; a caller may continue its own trace by sending
X-Trace-ID and X-Span-ID, and both ids are echoed on the response. Finished
spans are logged by a single collector goroutine; a full buffer drops spans
rather than blocking requests.

# Usage

	tracer := tracing.New("switchboard", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
