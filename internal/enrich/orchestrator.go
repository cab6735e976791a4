// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citation-engine/internal/dataset"
	"github.com/pdiddy/citation-engine/internal/provider"
	"github.com/pdiddy/citation-engine/internal/venues"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const (
	defaultConcurrency = 3
	defaultBatchSize   = 10
	defaultSearchLimit = 5
)

// Outcome classifies the result of one record's enrichment attempt.
type Outcome int

const (
	// OutcomeResolved: the record was resolved and fully aggregated.
	OutcomeResolved Outcome = iota
	// OutcomeNotFound: the provider authoritatively had no match.
	OutcomeNotFound
	// OutcomePending: a transient failure was never overcome; the record
	// is untouched and eligible for the next run.
	OutcomePending
)

// Summary counts per-record outcomes for one table's run.
type Summary struct {
	Processed int
	Resolved  int
	NotFound  int
	Pending   int
}

// taskResult carries one worker's outcome back to the merge step. Workers
// never mutate the table or ledger; all shared state changes happen
// single-threaded after the batch completes.
type taskResult struct {
	row        int
	title      string
	outcome    Outcome
	externalID string
	agg        types.Aggregates
	err        error
}

// Run enriches every pending record of the table in checkpointed batches.
//
// Pending records (missing external ID or citation count) are partitioned
// into ordered batches; each batch is dispatched to a bounded worker pool,
// results are merged in one goroutine, and the table plus ledger are
// persisted before the next batch starts. A crash therefore loses at most
// one batch of work. Per-record failures never abort the batch or the run:
// the run completes and reports however many records remain pending.
func Run(ctx context.Context, p provider.Provider, table *dataset.Table, ledger *dataset.Ledger, cls *venues.Classifier, cfg types.EnrichConfig, w io.Writer) (Summary, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	searchLimit := cfg.SearchLimit
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}
	interBatchDelay := cfg.InterBatchDelay

	pending := table.Pending()
	fmt.Fprintf(w, "Total rows: %d, rows to process: %d\n", table.Len(), len(pending))

	var summary Summary
	batches := (len(pending) + batchSize - 1) / batchSize

	for b := 0; b < batches; b++ {
		start := b * batchSize
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		fmt.Fprintf(w, "Processing batch %d/%d (%d records)...\n", b+1, batches, len(batch))

		results := make([]taskResult, len(batch))
		g := new(errgroup.Group)
		g.SetLimit(concurrency)
		for j, row := range batch {
			j, row := j, row
			g.Go(func() error {
				results[j] = processRecord(ctx, p, cls, row, table.Records[row].Title, searchLimit)
				return nil
			})
		}
		g.Wait()

		for _, res := range results {
			summary.Processed++
			switch res.outcome {
			case OutcomeResolved:
				table.Apply(res.row, res.externalID, res.agg)
				ledger.Remove(res.title)
				summary.Resolved++
				fmt.Fprintf(w, "  [+] found: %s\n", truncate(res.title, 40))
			case OutcomeNotFound:
				ledger.Add(res.title)
				summary.NotFound++
				fmt.Fprintf(w, "  [-] not found: %s\n", truncate(res.title, 40))
			case OutcomePending:
				summary.Pending++
				fmt.Fprintf(w, "  [!] still pending: %s: %v\n", truncate(res.title, 40), res.err)
			}
		}

		if err := checkpoint(table, ledger); err != nil {
			return summary, err
		}

		if b+1 < batches && interBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(interBatchDelay):
			}
		}
	}

	return summary, nil
}

// processRecord runs Resolver then Aggregator for one record. Each worker
// owns exactly one record for its lifetime.
func processRecord(ctx context.Context, p provider.Provider, cls *venues.Classifier, row int, title string, searchLimit int) taskResult {
	res := taskResult{row: row, title: title}

	rec, err := Resolve(ctx, p, title, searchLimit)
	if err != nil {
		res.outcome = OutcomePending
		res.err = err
		return res
	}
	if rec == nil {
		res.outcome = OutcomeNotFound
		return res
	}

	agg, err := AggregateCitations(ctx, p, cls, rec.ID)
	if err != nil {
		// The ID is known but the aggregates are not: discard everything
		// and let the next run re-resolve. Correctness over saved work.
		res.outcome = OutcomePending
		res.err = err
		return res
	}

	res.outcome = OutcomeResolved
	res.externalID = rec.ID
	res.agg = agg
	return res
}

// checkpoint persists the table and ledger; both writes are atomic
// rename-over replacements.
func checkpoint(table *dataset.Table, ledger *dataset.Ledger) error {
	if err := table.Save(); err != nil {
		return fmt.Errorf("checkpointing record table: %w", err)
	}
	if err := ledger.Save(); err != nil {
		return fmt.Errorf("checkpointing ledger: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
