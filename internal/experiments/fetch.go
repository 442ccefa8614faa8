package experiments

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/logging"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/monitoring"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/infrastructure/resilience"
	"github.com/idiotmax/Addon-Switchboard-Experiments/internal/providers/http/client"
	"go.uber.org/zap"
)

// Fetcher downloads and parses configuration documents.
type Fetcher struct {
	client    *client.Client
	cacheBust bool
	now       func() time.Time
	metrics   *monitoring.Metrics
	logger    *logging.Logger
}

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// CacheBust appends the current unix time as a bare query string.
	CacheBust bool
	Now       func() time.Time
	Metrics   *monitoring.Metrics
	Logger    *logging.Logger
}

// NewFetcher creates a Fetcher over c.
func NewFetcher(c *client.Client, opts FetcherOptions) *Fetcher {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Fetcher{
		client:    c,
		cacheBust: opts.CacheBust,
		now:       now,
		metrics:   opts.Metrics,
		logger:    logging.OrNop(opts.Logger),
	}
}

// Fetch issues one GET for rawURL and parses the body. It never retries and
// never returns a partial result. Errors are *FetchError values wrapping
// ErrTransport, ErrHTTPStatus or ErrMalformed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]Descriptor, error) {
	target := rawURL
	if f.cacheBust {
		target = CacheBust(rawURL, f.now())
	}
	f.logger.Debug("fetching experiments configuration", zap.String("url", target))

	timer := monitoring.NewTimer(f.metrics)

	resp, err := f.client.Get(ctx, target)
	if err != nil {
		switch {
		case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
			timer.Stop(monitoring.OutcomeCircuitOpen)
		case ctx.Err() != nil:
			timer.Stop(monitoring.OutcomeContextExpired)
		default:
			timer.Stop(monitoring.OutcomeTransport)
		}
		return nil, &FetchError{Kind: ErrTransport, URL: target, Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		timer.Stop(monitoring.OutcomeHTTPStatus)
		return nil, &FetchError{Kind: ErrHTTPStatus, URL: target, StatusCode: resp.StatusCode()}
	}

	descriptors, err := ParseConfiguration(resp.Body())
	if err != nil {
		timer.Stop(monitoring.OutcomeMalformed)
		return nil, &FetchError{Kind: ErrMalformed, URL: target, Err: err}
	}

	timer.Stop(monitoring.OutcomeDone)
	return descriptors, nil
}

// CacheBust appends the unix time in seconds to rawURL as a bare query
// component, e.g. ".../records?1462464000".
func CacheBust(rawURL string, now time.Time) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + strconv.FormatInt(now.Unix(), 10)
}
