package scraper

import (
	"context"
	"time"
)

// Requester performs exactly one HTTP attempt.
type Requester interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Pacer computes the pre-request delay and the retry backoff.
type Pacer interface {
	PreRequestDelay() time.Duration
	BackoffDelay(attempt int) time.Duration
}

// Pauser suspends the caller for the given duration or until ctx is done.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration) error
}

// UserAgentSelector yields a browser identifier for each attempt. It never fails.
type UserAgentSelector interface {
	Next() string
}

// ErrorSink receives one message per terminal fetch failure.
type ErrorSink interface {
	Record(message string)
}

// Extractor derives an ExtractionResult from page markup.
type Extractor interface {
	Extract(page PageContent) ExtractionResult
}

// PageFetcher fetches a page with bounded retries.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, maxRetries int) (PageContent, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
