package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrFetchFailed marks a terminal fetch failure: every attempt was exhausted.
var ErrFetchFailed = errors.New("fetch failed")

// Fetcher retrieves a page with randomized pacing and bounded exponential backoff.
type Fetcher struct {
	requester Requester
	pacer     Pacer
	pauser    Pauser
	agents    UserAgentSelector
	sink      ErrorSink
	headers   http.Header
	logger    *zap.Logger
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithHeaders sets the fixed headers sent with every attempt alongside the user agent.
func WithHeaders(headers http.Header) FetcherOption {
	return func(f *Fetcher) { f.headers = headers.Clone() }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher wires a Fetcher from its collaborators.
func NewFetcher(
	requester Requester,
	pacer Pacer,
	pauser Pauser,
	agents UserAgentSelector,
	sink ErrorSink,
	opts ...FetcherOption,
) *Fetcher {
	f := &Fetcher{
		requester: requester,
		pacer:     pacer,
		pauser:    pauser,
		agents:    agents,
		sink:      sink,
		headers:   http.Header{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs at most maxRetries+1 attempts. Retries exhausted yield an error
// wrapping ErrFetchFailed and one entry in the error sink. A canceled ctx returns
// ctx.Err() without a sink entry; an expired deadline counts as terminal.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, maxRetries int) (PageContent, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	state := fetchAttempt{}
	for state.index = 0; state.index <= maxRetries; state.index++ {
		if state.index > 0 {
			backoff := f.pacer.BackoffDelay(state.index - 1)
			state.backoff += backoff
			FetchRetries.Inc()
			f.logger.Warn("Retrying fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", state.index),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(state.lastErr),
			)
			if err := f.pauser.Pause(ctx, backoff); err != nil {
				return PageContent{}, f.abort(rawURL, state, err)
			}
		}
		if err := f.pauser.Pause(ctx, f.pacer.PreRequestDelay()); err != nil {
			return PageContent{}, f.abort(rawURL, state, err)
		}

		body, err := f.attempt(ctx, rawURL)
		if err == nil {
			return PageContent{URL: rawURL, Body: body}, nil
		}
		state.lastErr = err
		if ctxErr := ctx.Err(); ctxErr != nil {
			return PageContent{}, f.abort(rawURL, state, ctxErr)
		}
	}
	return PageContent{}, f.fail(rawURL, state)
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string) (string, error) {
	headers := f.headers.Clone()
	userAgent := f.agents.Next()
	headers.Set("User-Agent", userAgent)

	FetchAttempts.Inc()
	f.logger.Debug("Fetching page",
		zap.String("url", rawURL),
		zap.String("user_agent", userAgent),
	)
	resp, err := f.requester.Fetch(ctx, FetchRequest{URL: rawURL, Headers: headers})
	if err != nil {
		return "", err
	}
	if !resp.Success() {
		return "", fmt.Errorf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return string(resp.Body), nil
}

func (f *Fetcher) abort(rawURL string, state fetchAttempt, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		if state.lastErr == nil {
			state.lastErr = err
		} else {
			state.lastErr = fmt.Errorf("%w (last error: %w)", err, state.lastErr)
		}
		return f.fail(rawURL, state)
	}
	f.logger.Info("Fetch canceled", zap.String("url", rawURL), zap.Int("attempt", state.index))
	return err
}

func (f *Fetcher) fail(rawURL string, state fetchAttempt) error {
	FetchFailures.Inc()
	message := fmt.Sprintf("Failed to retrieve %s: %v", rawURL, state.lastErr)
	f.sink.Record(message)
	f.logger.Error("Fetch failed",
		zap.String("url", rawURL),
		zap.Int("attempts", state.index),
		zap.Duration("total_backoff", state.backoff),
		zap.Error(state.lastErr),
	)
	return fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, state.lastErr)
}
