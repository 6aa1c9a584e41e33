// Package writer persists scrape records as a structured document (JSON) or a
// tabular Type/Value file (CSV).
package writer

import (
	"crypto/sha1"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/JakeFAU/contact-scraper/internal/scraper"
)

// Format selects the serialization.
type Format string

// Supported output formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is a usage error: the format selector is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// Tabular row types.
const (
	RowEmail  = "Email"
	RowPhone  = "Phone"
	RowSocial = "Social"
)

const filenameLayout = "20060102_150405"

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ParseFormat validates a format selector.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownFormat, raw, FormatJSON, FormatCSV)
	}
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

type localClock struct{}

func (localClock) Now() time.Time { return time.Now() }

// FileWriter writes one file per record under a root directory.
type FileWriter struct {
	root  string
	clock Clock
}

// NewFileWriter returns a writer rooted at dir, creating it if needed.
func NewFileWriter(root string, clock Clock) (*FileWriter, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", root, err)
	}
	if clock == nil {
		clock = localClock{}
	}
	return &FileWriter{root: root, clock: clock}, nil
}

// Write serializes record in format and returns the file path.
func (w *FileWriter) Write(record scraper.ScrapeRecord, format Format) (string, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatJSON:
		payload, err = EncodeJSON(record)
	case FormatCSV:
		payload, err = EncodeCSV(record)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return "", err
	}
	target := filepath.Join(w.root, w.filename(record.URL, format))
	if err := os.WriteFile(target, payload, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

// EncodeJSON renders the whole record as an indented document.
func EncodeJSON(record scraper.ScrapeRecord) ([]byte, error) {
	payload, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return append(payload, '\n'), nil
}

// EncodeCSV renders (Type, Value) rows for emails, phones, and social links.
// Metadata is not flattened into the table.
func EncodeCSV(record scraper.ScrapeRecord) ([]byte, error) {
	var b strings.Builder
	cw := csv.NewWriter(&b)
	rows := [][]string{{"Type", "Value"}}
	for _, v := range record.Emails {
		rows = append(rows, []string{RowEmail, v})
	}
	for _, v := range record.Phones {
		rows = append(rows, []string{RowPhone, v})
	}
	for _, v := range record.SocialLinks {
		rows = append(rows, []string{RowSocial, v})
	}
	if err := cw.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return []byte(b.String()), nil
}

// filename is scrape_<timestamp>_<host>_<hash>.<ext>; the hash keeps parallel
// runs over different URLs from colliding within the same second.
func (w *FileWriter) filename(rawURL string, format Format) string {
	host := "page"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		host = invalidFilenameChars.ReplaceAllString(u.Hostname(), "_")
	}
	sum := sha1.Sum([]byte(rawURL))
	return fmt.Sprintf("scrape_%s_%s_%s.%s",
		w.clock.Now().Format(filenameLayout), host, hex.EncodeToString(sum[:])[:8], format)
}
