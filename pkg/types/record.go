// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared domain and configuration types for the
// citation enrichment pipeline.
package types

// Year range covered by the per-year citation histogram. Citing works
// published outside the range still count toward CitationCount but occupy
// no histogram bucket.
const (
	HistogramYearFrom = 2014
	HistogramYearTo   = 2024
)

// Record is one paper title under enrichment. A record is enriched exactly
// once: either every bibliometric field is populated in a single pass, or
// the record is left untouched and stays pending for a later run.
type Record struct {
	// Title is the immutable key within a run.
	Title string

	// ExternalID is the canonical identifier assigned by the provider.
	// Its presence marks the record as resolved.
	ExternalID string

	// CitationCount is the canonical total citation count. It is nil until
	// an enrichment pass fully succeeds; presence of both ExternalID and
	// CitationCount is the resumability predicate.
	CitationCount *int

	// TopConfCitations and TopJournalCitations count citing works whose
	// venue matched a configured top set. Their sum never exceeds
	// CitationCount; a citing work may match neither.
	TopConfCitations    int
	TopJournalCitations int

	// YearCounts maps publication year to citing-work count for years in
	// [HistogramYearFrom, HistogramYearTo].
	YearCounts map[int]int

	// Category is the AI-assigned topic label (classification stage).
	Category string
}

// Enriched reports whether the record has been fully enriched and should be
// skipped when computing the pending set.
func (r Record) Enriched() bool {
	return r.ExternalID != "" && r.CitationCount != nil
}

// Tier classifies a citing work's venue.
type Tier int

const (
	TierNone Tier = iota
	TierConference
	TierJournal
)

func (t Tier) String() string {
	switch t {
	case TierConference:
		return "conference"
	case TierJournal:
		return "journal"
	default:
		return "none"
	}
}

// CanonicalRecord is a search candidate returned by a bibliographic provider.
type CanonicalRecord struct {
	ID            string
	Title         string
	CitationCount int
}

// CitingWork is the minimal projection of a work that cites a resolved
// record: its publication year and venue (or source) display name.
type CitingWork struct {
	Year  int
	Venue string
}

// CitationPage is one page of the citing-work listing. Total is the
// provider-reported total count used to terminate pagination.
type CitationPage struct {
	Works []CitingWork
	Total int
}

// Aggregates holds the reduced citation statistics for one resolved record.
type Aggregates struct {
	CitationCount       int
	TopConfCitations    int
	TopJournalCitations int
	YearCounts          map[int]int
}

// NewAggregates returns zeroed aggregates with every histogram year present.
func NewAggregates() Aggregates {
	counts := make(map[int]int, HistogramYearTo-HistogramYearFrom+1)
	for y := HistogramYearFrom; y <= HistogramYearTo; y++ {
		counts[y] = 0
	}
	return Aggregates{YearCounts: counts}
}
