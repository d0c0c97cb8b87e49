// Package fetch provides the bounded-retry retrieval wrapper every source
// goes through. Transient failure classes are not distinguished: connection
// errors, timeouts, and HTTP-level errors are all retried identically up to
// the attempt bound, then surfaced as source unavailability. Callers treat
// that as "source temporarily unavailable", never as a crash.
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/pkg/constants"
	"github.com/sobani/cardvault/pkg/errors"
	"github.com/sobani/cardvault/pkg/logging"
)

// Doer abstracts the HTTP client so tests can stub transport behavior.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher retries retrievals up to a fixed bound with a fixed wait between
// attempts.
type Fetcher struct {
	client   Doer
	attempts int
	wait     time.Duration
	logger   zerolog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithAttempts overrides the attempt bound.
func WithAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithWait overrides the wait between attempts.
func WithWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.wait = d
	}
}

// WithLogger sets the fetcher's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher around the given client. A nil client falls back to
// an http.Client with the default timeout.
func New(client Doer, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   client,
		attempts: constants.FetchAttempts,
		wait:     constants.FetchRetryWait,
		logger:   logging.Component("fetcher"),
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get retrieves url with the given headers and returns the response body.
// On exhaustion it returns ErrSourceUnavailable; on context cancellation,
// ErrCanceled.
func (f *Fetcher) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	for attempt := 1; attempt <= f.attempts; attempt++ {
		body, err := f.get(ctx, url, header)
		if err == nil {
			return body, nil
		}
		if errors.IsCanceled(err) {
			return nil, errors.ErrCanceled
		}

		f.logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempt).
			Msg("retrieval failed")

		if attempt == f.attempts {
			break
		}
		if err := sleep(ctx, f.wait); err != nil {
			return nil, err
		}
	}

	return nil, errors.ErrSourceUnavailable
}

// get performs one attempt.
func (f *Fetcher) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewAPIError("fetch", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return body, nil
}

// sleep waits for d or until the context is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.ErrCanceled
	case <-timer.C:
		return nil
	}
}

// Politeness waits a random duration in [min, max] or until the context is
// canceled. Sources call this between paginated requests; the delay is a
// courtesy to third-party sites and must be a real wall-clock wait.
func Politeness(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(randInt64(int64(max - min)))
	}
	return sleep(ctx, d)
}
