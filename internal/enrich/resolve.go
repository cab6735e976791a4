// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich implements the bulk enrichment pipeline: resolving titles
// to canonical records, aggregating their citing works, and orchestrating
// checkpointed batches over a record table.
package enrich

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pdiddy/citation-engine/internal/provider"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// SimilarityThreshold is the minimum title similarity for accepting a search
// candidate. A false match corrupts every downstream aggregate for the
// record, so no match beats a wrong match.
const SimilarityThreshold = 0.85

// Similarity returns the normalized sequence similarity of two titles in
// [0, 1], case-insensitive. Empty input scores 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(
		strings.Split(strings.ToLower(a), ""),
		strings.Split(strings.ToLower(b), ""),
	)
	return m.Ratio()
}

// Resolve maps a free-text title to a canonical record. It fetches up to
// limit candidates, scores each against the query title, and accepts the
// best candidate only if it meets SimilarityThreshold.
//
// (nil, nil) is the authoritative not-found answer: the provider responded
// but had no acceptable match. Errors mean the question was never answered
// and the record must stay pending.
func Resolve(ctx context.Context, p provider.Provider, title string, limit int) (*types.CanonicalRecord, error) {
	candidates, err := p.Search(ctx, title, limit)
	if err != nil {
		return nil, err
	}

	var best *types.CanonicalRecord
	bestScore := 0.0
	for i := range candidates {
		if score := Similarity(title, candidates[i].Title); score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best == nil || bestScore < SimilarityThreshold {
		return nil, nil
	}
	return best, nil
}
