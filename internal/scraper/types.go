package scraper

import (
	"net/http"
	"time"
)

// FetchRequest captures everything needed for a single HTTP attempt.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Requester implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Success reports whether the status code is in the 2xx range.
func (r FetchResponse) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// PageContent is the raw markup of a successfully fetched page.
type PageContent struct {
	URL  string
	Body string
}

// ExtractionResult holds the four independently computed extraction categories.
// Slices are deduplicated and sorted; Metadata keys are lower-cased.
type ExtractionResult struct {
	Emails      []string
	Phones      []string
	SocialLinks []string
	Metadata    map[string]string
}

// ScrapeRecord is the final output of one successful pipeline run.
type ScrapeRecord struct {
	URL         string            `json:"url"`
	Emails      []string          `json:"emails"`
	Phones      []string          `json:"phones"`
	SocialLinks []string          `json:"social_media"`
	Metadata    map[string]string `json:"metadata"`
	Timestamp   time.Time         `json:"timestamp"`
}

// fetchAttempt is the transient retry state owned by Fetcher.Fetch.
type fetchAttempt struct {
	index   int
	backoff time.Duration
	lastErr error
}
