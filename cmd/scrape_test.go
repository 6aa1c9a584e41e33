package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/contact-scraper/internal/writer"
)

const contactPage = `<html><head>
<meta name="description" content="Acme contact page">
</head><body>
<p>contact c@d.com</p>
<a href="mailto:a@b.com">mail</a>
<a href="https://facebook.com/acme">facebook</a>
<p>Call 555-222-3333</p>
</body></html>`

type testEnv struct {
	dir     string
	config  string
	outDir  string
	errLog  string
	metrics string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:     dir,
		config:  filepath.Join(dir, "config.yaml"),
		outDir:  filepath.Join(dir, "output"),
		errLog:  filepath.Join(dir, "error_log.txt"),
		metrics: filepath.Join(dir, "scraper.prom"),
	}
	cfg := fmt.Sprintf(`
scraper:
  delay_min: 0s
  delay_max: 0s
  max_retries: 2
  backoff_unit: 1ms
http:
  timeout: 2s
output:
  dir: %q
errors:
  log_path: %q
metrics:
  textfile: %q
logging:
  development: false
  level: error
`, env.outDir, env.errLog, env.metrics)
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o600))
	return env
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	cfgFile = ""
	return out.String(), err
}

func TestScrapeWritesJSONRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(contactPage))
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t)

	out, err := execute(t, "--config", env.config, "scrape", srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, "Found 2 emails, 1 phone numbers")
	require.Contains(t, out, "Social media links: 1")
	require.Contains(t, out, "Metadata entries: 1")
	require.Contains(t, out, "Results saved in JSON format")

	files, err := filepath.Glob(filepath.Join(env.outDir, "scrape_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.Contains(t, string(data), `"a@b.com"`)
	require.Contains(t, string(data), `"c@d.com"`)
	require.Contains(t, string(data), `"https://facebook.com/acme"`)

	metrics, err := os.ReadFile(env.metrics)
	require.NoError(t, err)
	require.Contains(t, string(metrics), "scraper_records_total")
}

func TestScrapeWritesCSVWithFlagOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(contactPage))
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t)
	custom := filepath.Join(env.dir, "custom")

	_, err := execute(t, "--config", env.config, "scrape", srv.URL,
		"--format", "csv", "--delay", "0,0", "--output-dir", custom)
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(custom, "scrape_*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "Type,Value\n"))
	require.Contains(t, string(data), "Email,a@b.com\n")
	require.Contains(t, string(data), "Phone,555-222-3333\n")
	require.Contains(t, string(data), "Social,https://facebook.com/acme\n")
}

func TestScrapeFailingSourceReturnsAbsence(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t)

	out, err := execute(t, "--config", env.config, "scrape", srv.URL)
	require.NoError(t, err, "terminal failure is not a process error")
	require.Contains(t, out, "No data retrieved from "+srv.URL)
	require.EqualValues(t, 3, hits.Load())

	data, err := os.ReadFile(env.errLog)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "Failed to retrieve "+srv.URL)

	files, err := filepath.Glob(filepath.Join(env.outDir, "*"))
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestScrapeRejectsUnknownFormatBeforeFetching(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t)

	_, err := execute(t, "--config", env.config, "scrape", srv.URL, "--format", "xml")
	require.ErrorIs(t, err, writer.ErrUnknownFormat)
	require.Zero(t, hits.Load())
}

func TestScrapeRejectsMalformedDelay(t *testing.T) {
	env := newTestEnv(t)
	_, err := execute(t, "--config", env.config, "scrape", "https://example.com", "--delay", "1")
	require.ErrorContains(t, err, "--delay takes exactly two values")
}

func TestScrapeRequiresURL(t *testing.T) {
	env := newTestEnv(t)
	_, err := execute(t, "--config", env.config, "scrape")
	require.Error(t, err)
}

func TestScrapeMultipleURLsInParallel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(contactPage))
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t)

	out, err := execute(t, "--config", env.config, "scrape", "--concurrency", "3",
		srv.URL+"/a", srv.URL+"/b", srv.URL+"/down")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(out, "Found 2 emails"))

	files, err := filepath.Glob(filepath.Join(env.outDir, "scrape_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 2)

	data, err := os.ReadFile(env.errLog)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "\n"))
}
