package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Extraction category label values.
const (
	CategoryEmail    = "email"
	CategoryPhone    = "phone"
	CategorySocial   = "social"
	CategoryMetadata = "metadata"
)

var (
	// FetchAttempts counts HTTP attempts dispatched by the fetcher.
	FetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_fetch_attempts_total",
		Help: "The total number of HTTP attempts sent.",
	})
	// FetchRetries counts attempts that followed a transient failure.
	FetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_fetch_retries_total",
		Help: "The total number of retries after transient failures.",
	})
	// FetchFailures counts terminal fetch failures.
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_fetch_failures_total",
		Help: "The total number of fetches that exhausted their retries.",
	})
	// RecordsAssembled counts scrape records produced.
	RecordsAssembled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_records_total",
		Help: "The total number of scrape records assembled.",
	})
	// ExtractedItems counts extracted values per category.
	ExtractedItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_extracted_items_total",
		Help: "The total number of extracted values by category.",
	}, []string{"category"})
)

func observeRecord(record ScrapeRecord) {
	RecordsAssembled.Inc()
	ExtractedItems.WithLabelValues(CategoryEmail).Add(float64(len(record.Emails)))
	ExtractedItems.WithLabelValues(CategoryPhone).Add(float64(len(record.Phones)))
	ExtractedItems.WithLabelValues(CategorySocial).Add(float64(len(record.SocialLinks)))
	ExtractedItems.WithLabelValues(CategoryMetadata).Add(float64(len(record.Metadata)))
}
