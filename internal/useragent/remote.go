package useragent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// ErrEmptyCatalog is returned when the catalogue holds no usable entries.
var ErrEmptyCatalog = errors.New("user agent catalog is empty")

// Downloader retrieves a resource body.
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// RemoteSource loads a user-agent catalogue once and serves random entries from it.
// The catalogue is either a JSON array of strings or JSON objects (array or one per
// line) carrying a "useragent" field.
type RemoteSource struct {
	downloader Downloader
	url        string
	timeout    time.Duration

	once   sync.Once
	agents []string
	err    error
	intn   func(n int) int
}

// NewRemoteSource builds a RemoteSource for catalogURL.
func NewRemoteSource(downloader Downloader, catalogURL string, timeout time.Duration) *RemoteSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteSource{
		downloader: downloader,
		url:        catalogURL,
		timeout:    timeout,
		intn:       rand.IntN,
	}
}

// Next returns a random catalogue entry. The catalogue is fetched on first use;
// a failed load is remembered and returned on every call.
func (s *RemoteSource) Next() (string, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return "", s.err
	}
	return s.agents[s.intn(len(s.agents))], nil
}

func (s *RemoteSource) load() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	body, err := s.downloader.Download(ctx, s.url)
	if err != nil {
		s.err = fmt.Errorf("download user agent catalog: %w", err)
		return
	}
	agents, err := parseCatalog(body)
	if err != nil {
		s.err = fmt.Errorf("parse user agent catalog: %w", err)
		return
	}
	s.agents = agents
}

type catalogEntry struct {
	UserAgent string `json:"useragent"`
}

func parseCatalog(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		raw = nil
		for _, line := range bytes.Split(body, []byte("\n")) {
			if line = bytes.TrimSpace(line); len(line) > 0 {
				raw = append(raw, line)
			}
		}
	}
	agents := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			agents = appendAgent(agents, s)
			continue
		}
		var entry catalogEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			return nil, err
		}
		agents = appendAgent(agents, entry.UserAgent)
	}
	if len(agents) == 0 {
		return nil, ErrEmptyCatalog
	}
	return agents, nil
}

func appendAgent(agents []string, ua string) []string {
	if ua = strings.TrimSpace(ua); ua != "" {
		agents = append(agents, ua)
	}
	return agents
}
