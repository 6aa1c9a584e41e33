package scraper

import (
	"maps"
	"slices"
	"time"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Assembler packages an ExtractionResult into a ScrapeRecord.
type Assembler struct {
	clock Clock
}

// NewAssembler returns an Assembler stamping records with clock. A nil clock uses UTC wall time.
func NewAssembler(clock Clock) *Assembler {
	if clock == nil {
		clock = systemClock{}
	}
	return &Assembler{clock: clock}
}

// Assemble builds the record, stamping the capture time at call time. The record
// owns copies of the result's slices and map.
func (a *Assembler) Assemble(rawURL string, result ExtractionResult) ScrapeRecord {
	return ScrapeRecord{
		URL:         rawURL,
		Emails:      cloneSet(result.Emails),
		Phones:      cloneSet(result.Phones),
		SocialLinks: cloneSet(result.SocialLinks),
		Metadata:    cloneMetadata(result.Metadata),
		Timestamp:   a.clock.Now(),
	}
}

func cloneSet(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

func cloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	return maps.Clone(in)
}
