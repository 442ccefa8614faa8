/*
Package resilience provides a circuit breaker for the experiment
configuration endpoint.

A refresh cycle never retries. When the endpoint keeps failing, the breaker
opens and subsequent cycles fail fast instead of issuing requests that are
known to fail; after OpenTimeout a single probe request is let through.

# Usage

	breaker := resilience.New("experiments-config", resilience.Settings{
		FailureThreshold: 5,
		OpenTimeout:      5 * time.Minute,
	})

	err := breaker.Execute(func() error {
		return fetch()
	})

# States

	Closed --[threshold failures]-> Open --[timeout]-> Half-Open --[probe ok]-> Closed
	                                                       |
	                                                [probe failed]
	                                                       v
	                                                     Open
*/
package resilience
