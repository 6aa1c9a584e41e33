// Package extract derives contact signals (emails, phone numbers, social links,
// metadata) from page markup. Each category is computed independently and
// degrades to an empty result rather than failing.
package extract

import (
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/contact-scraper/internal/scraper"
)

const mailtoPrefix = "mailto:"

// DefaultPlatforms are the social platform tokens matched in link targets.
var DefaultPlatforms = []string{"facebook", "twitter", "linkedin", "instagram"}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)

// Matches are raw substrings; nothing is validated against numbering plans.
var phonePatterns = []*regexp.Regexp{
	// international prefix, optional separators and area code
	regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
	// parenthesized area code
	regexp.MustCompile(`\(\d{2,4}\)\s?\d{3,4}[-.\s]?\d{4}`),
	// hyphen separated
	regexp.MustCompile(`\d{3}-\d{3}-\d{4}`),
	// dot separated
	regexp.MustCompile(`\d{3}\.\d{3}\.\d{4}`),
}

// Engine implements scraper.Extractor. It is stateless after construction and
// safe for concurrent use.
type Engine struct {
	platforms []string
}

// New builds an Engine matching the given platform tokens, or DefaultPlatforms when none are given.
func New(platforms ...string) *Engine {
	normalized := make([]string, 0, len(platforms))
	for _, p := range platforms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && !slices.Contains(normalized, p) {
			normalized = append(normalized, p)
		}
	}
	if len(normalized) == 0 {
		normalized = slices.Clone(DefaultPlatforms)
	}
	return &Engine{platforms: normalized}
}

// Extract parses the markup once and runs the four extractions. Unparseable
// markup yields empty categories.
func (e *Engine) Extract(page scraper.PageContent) scraper.ExtractionResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return emptyResult()
	}
	text := visibleText(doc)
	hrefs := linkTargets(doc)
	return scraper.ExtractionResult{
		Emails:      extractEmails(text, hrefs),
		Phones:      extractPhones(text),
		SocialLinks: e.extractSocialLinks(hrefs),
		Metadata:    extractMetadata(doc),
	}
}

func extractEmails(text string, hrefs []string) []string {
	found := newStringSet()
	found.add(emailPattern.FindAllString(text, -1)...)
	for _, href := range hrefs {
		if addr, ok := strings.CutPrefix(href, mailtoPrefix); ok && addr != "" {
			found.add(addr)
		}
	}
	return found.sorted()
}

func extractPhones(text string) []string {
	found := newStringSet()
	for _, pattern := range phonePatterns {
		found.add(pattern.FindAllString(text, -1)...)
	}
	return found.sorted()
}

func (e *Engine) extractSocialLinks(hrefs []string) []string {
	found := newStringSet()
	for _, href := range hrefs {
		lower := strings.ToLower(href)
		for _, platform := range e.platforms {
			if strings.Contains(lower, platform) {
				found.add(href)
				break
			}
		}
	}
	return found.sorted()
}

// extractMetadata maps lower-cased meta names to content; later tags win.
func extractMetadata(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, hasName := s.Attr("name")
		content, hasContent := s.Attr("content")
		if hasName && hasContent {
			meta[strings.ToLower(name)] = content
		}
	})
	return meta
}

func linkTargets(doc *goquery.Document) []string {
	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

func emptyResult() scraper.ExtractionResult {
	return scraper.ExtractionResult{
		Emails:      []string{},
		Phones:      []string{},
		SocialLinks: []string{},
		Metadata:    map[string]string{},
	}
}

type stringSet map[string]struct{}

func newStringSet() stringSet { return make(stringSet) }

func (s stringSet) add(values ...string) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
