package scraper

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// scriptedRequester fails the first `fails` attempts, then succeeds.
type scriptedRequester struct {
	mu       sync.Mutex
	attempts int
	fails    int
	status   int
	body     string
	requests []FetchRequest
}

func (r *scriptedRequester) Fetch(_ context.Context, req FetchRequest) (FetchResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	r.requests = append(r.requests, req)
	if r.attempts <= r.fails {
		if r.status != 0 {
			return FetchResponse{URL: req.URL, StatusCode: r.status}, nil
		}
		return FetchResponse{}, errors.New("connection reset")
	}
	return FetchResponse{URL: req.URL, StatusCode: http.StatusOK, Body: []byte(r.body)}, nil
}

type fixedPacer struct {
	delay time.Duration
	unit  time.Duration
}

func (p fixedPacer) PreRequestDelay() time.Duration { return p.delay }

func (p fixedPacer) BackoffDelay(attempt int) time.Duration { return p.unit << attempt }

// recordingPauser records requested delays without sleeping.
type recordingPauser struct {
	mu     sync.Mutex
	delays []time.Duration
	// cancelAfter cancels via the returned error once this many pauses happened.
	cancelAfter int
	err         error
}

func (p *recordingPauser) Pause(ctx context.Context, delay time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.err != nil && len(p.delays) >= p.cancelAfter {
		return p.err
	}
	p.delays = append(p.delays, delay)
	return nil
}

type rotatingAgents struct {
	mu    sync.Mutex
	calls int
}

func (a *rotatingAgents) Next() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return "agent-" + string(rune('0'+a.calls))
}

type memorySink struct {
	mu      sync.Mutex
	entries []string
}

func (s *memorySink) Record(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, message)
}

func (s *memorySink) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// MockExtractor is a mock implementation of the Extractor interface.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(page PageContent) ExtractionResult {
	args := m.Called(page)
	return args.Get(0).(ExtractionResult)
}

// MockPageFetcher is a mock implementation of the PageFetcher interface.
type MockPageFetcher struct {
	mock.Mock
}

func (m *MockPageFetcher) Fetch(ctx context.Context, rawURL string, maxRetries int) (PageContent, error) {
	args := m.Called(ctx, rawURL, maxRetries)
	return args.Get(0).(PageContent), args.Error(1)
}
