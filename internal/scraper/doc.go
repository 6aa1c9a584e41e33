// Package scraper implements the fetch-and-extract pipeline: a paced,
// retrying fetcher feeding an extraction engine whose results are assembled
// into immutable scrape records.
package scraper
