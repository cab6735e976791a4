// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"

	"github.com/pdiddy/citation-engine/internal/provider"
	"github.com/pdiddy/citation-engine/internal/venues"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// AggregateCitations retrieves the full citing-work set for a resolved
// record and reduces it into year and tier aggregates.
//
// The canonical total is fetched first; a zero total short-circuits with
// all-zero aggregates and no pagination request. Pagination stops on an
// empty page, when the accumulated count reaches the total, or when a page
// comes back shorter than requested. Inter-page pacing is the provider
// adapter's job.
//
// Aggregation is all-or-nothing: any failure returns an error and the
// partial aggregates are discarded, leaving the record pending.
func AggregateCitations(ctx context.Context, p provider.Provider, cls *venues.Classifier, id string) (types.Aggregates, error) {
	agg := types.NewAggregates()

	total, err := p.CitationCount(ctx, id)
	if err != nil {
		return types.Aggregates{}, err
	}
	agg.CitationCount = total
	if total == 0 {
		return agg, nil
	}

	pageSize := p.PageSize()
	fetched := 0
	for {
		page, err := p.Citations(ctx, id, fetched, pageSize)
		if err != nil {
			return types.Aggregates{}, err
		}
		if page.Total > 0 {
			// The listing reports a fresher total than the detail call;
			// trust it for both the count and the termination target.
			total = page.Total
			agg.CitationCount = total
		}
		if len(page.Works) == 0 {
			break
		}

		for _, work := range page.Works {
			if work.Year >= types.HistogramYearFrom && work.Year <= types.HistogramYearTo {
				agg.YearCounts[work.Year]++
			}
			switch cls.Classify(work.Venue) {
			case types.TierConference:
				agg.TopConfCitations++
			case types.TierJournal:
				agg.TopJournalCitations++
			}
		}

		fetched += len(page.Works)
		if fetched >= total || len(page.Works) < pageSize {
			break
		}
	}

	return agg, nil
}
