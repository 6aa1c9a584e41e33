package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PipelineConfig controls one pipeline instance.
type PipelineConfig struct {
	MaxRetries int
	// Deadline bounds all attempts of one Scrape call; zero disables it.
	Deadline time.Duration
}

// Pipeline runs Fetcher → Extractor → Assembler for one URL per call. It holds no
// shared mutable state, so independent instances may run in parallel.
type Pipeline struct {
	cfg       PipelineConfig
	fetcher   PageFetcher
	extractor Extractor
	assembler *Assembler
	logger    *zap.Logger
	newRunID  func() string
}

// NewPipeline wires a Pipeline.
func NewPipeline(cfg PipelineConfig, fetcher PageFetcher, extractor Extractor, assembler *Assembler, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if assembler == nil {
		assembler = NewAssembler(nil)
	}
	return &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		assembler: assembler,
		logger:    logger,
		newRunID:  newRunID,
	}
}

// Scrape fetches rawURL and returns its record. The boolean is false when no data
// is available: retries were exhausted or ctx ended first.
func (p *Pipeline) Scrape(ctx context.Context, rawURL string) (ScrapeRecord, bool) {
	logger := p.logger.With(zap.String("run_id", p.newRunID()), zap.String("url", rawURL))
	if p.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Deadline)
		defer cancel()
	}

	page, err := p.fetcher.Fetch(ctx, rawURL, p.cfg.MaxRetries)
	if err != nil {
		if errors.Is(err, ErrFetchFailed) {
			logger.Warn("No data available", zap.Error(err))
		} else {
			logger.Info("Scrape aborted", zap.Error(err))
		}
		return ScrapeRecord{}, false
	}

	result := p.extractor.Extract(page)
	record := p.assembler.Assemble(page.URL, result)
	observeRecord(record)
	logger.Info("Scrape complete",
		zap.Int("emails", len(record.Emails)),
		zap.Int("phones", len(record.Phones)),
		zap.Int("social_links", len(record.SocialLinks)),
		zap.Int("metadata", len(record.Metadata)),
	)
	return record, true
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
