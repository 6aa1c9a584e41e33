// Package useragent selects a plausible browser User-Agent for each request.
// A dynamic Source is consulted first; any failure falls back to a static pool
// spanning several browser families.
package useragent

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// FallbackPool is used whenever the dynamic source is missing or failing.
var FallbackPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; WOW64; Trident/7.0; rv:11.0) like Gecko",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36 Edg/89.0.774.57",
	"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.5 Safari/605.1.15",
}

// Source yields user agents from a dynamic catalogue.
type Source interface {
	Next() (string, error)
}

// Selector picks a user agent per call and never fails.
type Selector struct {
	source Source
	pool   []string
	intn   func(n int) int
	logger *zap.Logger
}

// NewSelector builds a Selector. source may be nil, in which case only the
// fallback pool is used.
func NewSelector(source Source, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		source: source,
		pool:   FallbackPool,
		intn:   rand.IntN,
		logger: logger,
	}
}

// Next returns a user agent from the source, or a random fallback entry.
func (s *Selector) Next() string {
	if s.source != nil {
		ua, err := s.source.Next()
		if err == nil && ua != "" {
			return ua
		}
		s.logger.Debug("User agent source unavailable; using fallback pool", zap.Error(err))
	}
	return s.pool[s.intn(len(s.pool))]
}
