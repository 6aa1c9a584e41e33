package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/contact-scraper/internal/config"
	"github.com/JakeFAU/contact-scraper/internal/errorsink"
	"github.com/JakeFAU/contact-scraper/internal/extract"
	collyfetcher "github.com/JakeFAU/contact-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/contact-scraper/internal/pacing"
	"github.com/JakeFAU/contact-scraper/internal/scraper"
	"github.com/JakeFAU/contact-scraper/internal/useragent"
	"github.com/JakeFAU/contact-scraper/internal/writer"
)

type scrapeOptions struct {
	format      string
	delay       []int
	maxRetries  int
	outputDir   string
	concurrency int
}

func newScrapeCmd() *cobra.Command {
	opts := &scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape <url> [url...]",
		Short: "Scrape contact details from one or more pages",
		Long: `Fetches each URL (only pages you are authorized to scrape), extracts emails,
phone numbers, social media links, and meta tags, and saves one result file
per page. Pages that cannot be fetched after all retries are recorded in the
error log and skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrapeCommand(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.format, "format", string(writer.FormatJSON), "output format: json or csv")
	flags.IntSliceVar(&opts.delay, "delay", []int{1, 3}, "request delay range in seconds: min,max")
	flags.IntVar(&opts.maxRetries, "max-retries", 3, "retries after the first failed attempt")
	flags.StringVar(&opts.outputDir, "output-dir", "output", "directory for result files")
	flags.IntVar(&opts.concurrency, "concurrency", 1, "pages scraped in parallel")
	return cmd
}

// apply copies explicitly set flags over the loaded configuration.
func (o *scrapeOptions) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("format") {
		cfg.Output.Format = o.format
	}
	if flags.Changed("delay") {
		if len(o.delay) != 2 {
			return fmt.Errorf("--delay takes exactly two values (min,max), got %d", len(o.delay))
		}
		cfg.Scraper.DelayMin = time.Duration(o.delay[0]) * time.Second
		cfg.Scraper.DelayMax = time.Duration(o.delay[1]) * time.Second
	}
	if flags.Changed("max-retries") {
		cfg.Scraper.MaxRetries = o.maxRetries
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = o.outputDir
	}
	if flags.Changed("concurrency") {
		cfg.Scraper.Concurrency = o.concurrency
	}
	return nil
}

func runScrapeCommand(cmd *cobra.Command, urls []string, opts *scrapeOptions) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Config
	if err := opts.apply(cmd.Flags(), &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := writer.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	svc, err := buildScrapeService(cfg, appInstance.Logger)
	if err != nil {
		return err
	}
	err = svc.run(cmd.Context(), urls, format, cmd.OutOrStdout())
	exportMetrics(cfg.Metrics.Textfile, appInstance.Logger)
	return err
}

type scrapeService struct {
	pipeline    *scraper.Pipeline
	writer      *writer.FileWriter
	concurrency int
	logger      *zap.Logger
}

func buildScrapeService(cfg config.Config, logger *zap.Logger) (*scrapeService, error) {
	policy, err := pacing.NewPolicy(pacing.Config{
		DelayMin:    cfg.Scraper.DelayMin,
		DelayMax:    cfg.Scraper.DelayMax,
		BackoffUnit: cfg.Scraper.BackoffUnit,
		BackoffMax:  cfg.Scraper.BackoffMax,
	})
	if err != nil {
		return nil, fmt.Errorf("init pacing: %w", err)
	}

	requester := collyfetcher.New(collyfetcher.Config{Timeout: cfg.HTTP.Timeout})

	var source useragent.Source
	if cfg.UserAgent.CatalogURL != "" {
		source = useragent.NewRemoteSource(requester, cfg.UserAgent.CatalogURL, cfg.UserAgent.CatalogTimeout)
	}
	agents := useragent.NewSelector(source, logger.Named("useragent"))

	sink := errorsink.NewFileSink(cfg.Errors.LogPath, nil, logger.Named("errorsink"))
	fetcher := scraper.NewFetcher(
		requester,
		policy,
		pacing.TimerPauser{},
		agents,
		sink,
		scraper.WithHeaders(cfg.RequestHeaders()),
		scraper.WithLogger(logger.Named("fetcher")),
	)

	out, err := writer.NewFileWriter(cfg.Output.Dir, nil)
	if err != nil {
		return nil, fmt.Errorf("init writer: %w", err)
	}

	pipeline := scraper.NewPipeline(
		scraper.PipelineConfig{MaxRetries: cfg.Scraper.MaxRetries, Deadline: cfg.Scraper.Deadline},
		fetcher,
		extract.New(cfg.Extract.SocialPlatforms...),
		scraper.NewAssembler(nil),
		logger.Named("pipeline"),
	)
	return &scrapeService{
		pipeline:    pipeline,
		writer:      out,
		concurrency: cfg.Scraper.Concurrency,
		logger:      logger,
	}, nil
}

// run scrapes every URL, each on its own worker, bounded by the configured concurrency.
// Pages that yield no data are skipped; write failures are returned.
func (s *scrapeService) run(ctx context.Context, urls []string, format writer.Format, out io.Writer) error {
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, rawURL := range urls {
		g.Go(func() error {
			s.logger.Info("Scraping page", zap.String("url", rawURL))
			record, ok := s.pipeline.Scrape(ctx, rawURL)
			if !ok {
				mu.Lock()
				fmt.Fprintf(out, "\nNo data retrieved from %s\n", rawURL)
				mu.Unlock()
				return nil
			}
			path, err := s.writer.Write(record, format)
			if err != nil {
				return fmt.Errorf("save results for %s: %w", rawURL, err)
			}
			mu.Lock()
			defer mu.Unlock()
			printSummary(out, record, format, path)
			return nil
		})
	}
	return g.Wait()
}

func printSummary(out io.Writer, record scraper.ScrapeRecord, format writer.Format, path string) {
	fmt.Fprintf(out, "\n%s\n", record.URL)
	fmt.Fprintf(out, "Found %d emails, %d phone numbers\n", len(record.Emails), len(record.Phones))
	fmt.Fprintf(out, "Social media links: %d\n", len(record.SocialLinks))
	fmt.Fprintf(out, "Metadata entries: %d\n", len(record.Metadata))
	fmt.Fprintf(out, "Results saved in %s format: %s\n", strings.ToUpper(string(format)), path)
}

func exportMetrics(path string, logger *zap.Logger) {
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		logger.Warn("Failed to export metrics", zap.String("path", path), zap.Error(err))
	}
}
