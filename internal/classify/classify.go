// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns each record a research-area category by sending
// batches of titles to a generative AI backend.
package classify

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/citation-engine/internal/dataset"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Categories is the closed set of research areas the backend may assign.
var Categories = []string{
	"Machine Learning (including Deep Learning)",
	"Representation Learning and Optimization",
	"Probability, Statistics, and Inference",
	"Natural Language Processing",
	"Computer Vision",
	"Multimodal Learning",
	"AI Foundations and Theory",
	"Reinforcement Learning and Decision Making",
	"Interpretability, Fairness, and Applied Systems",
}

const (
	defaultBatchSize    = 5
	defaultSaveInterval = 10
	defaultMaxRetries   = 3
)

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// One call classifies one batch of titles and returns the parsed response.
type AIBackend interface {
	Classify(ctx context.Context, titles []string) (AIResponse, error)
}

// AIResponse is the structured response from the AI backend for one batch.
type AIResponse struct {
	Results []AIResult `json:"results"`
}

// AIResult pairs one title with its assigned category.
type AIResult struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

// Summary counts per-record outcomes for one table's classification run.
type Summary struct {
	Processed  int
	Classified int
	Skipped    int
}

// BatchSummary aggregates outcomes across a directory of tables.
type BatchSummary struct {
	Files      int
	Classified int
	Skipped    int
}

// ClassifyAll classifies every pending record in every CSV table under
// cfg.DataDir. Files are processed in name order; a file that fails to load
// aborts the run so a corrupt table is never silently skipped.
func ClassifyAll(ctx context.Context, backend AIBackend, cfg types.ClassifyConfig, w io.Writer) (BatchSummary, error) {
	pattern := filepath.Join(cfg.DataDir, "*.csv")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("listing tables in %s: %w", cfg.DataDir, err)
	}
	sort.Strings(paths)

	var summary BatchSummary
	for _, path := range paths {
		fmt.Fprintf(w, "Classifying %s...\n", filepath.Base(path))

		table, err := dataset.Load(path)
		if err != nil {
			return summary, fmt.Errorf("loading %s: %w", path, err)
		}

		fileSummary, err := ClassifyTable(ctx, backend, table, cfg, w)
		if err != nil {
			return summary, err
		}

		summary.Files++
		summary.Classified += fileSummary.Classified
		summary.Skipped += fileSummary.Skipped
	}

	if summary.Files == 0 {
		fmt.Fprintf(w, "No tables found under %s\n", cfg.DataDir)
	}
	return summary, nil
}

// ClassifyTable classifies every record of the table that has a title but
// no category yet. Records are sent to the backend in batches; the table is
// checkpointed every SaveInterval batches and once at the end. A batch that
// yields no usable results is logged and its records stay pending.
func ClassifyTable(ctx context.Context, backend AIBackend, table *dataset.Table, cfg types.ClassifyConfig, w io.Writer) (Summary, error) {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	saveInterval := cfg.SaveInterval
	if saveInterval <= 0 {
		saveInterval = defaultSaveInterval
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var pending []int
	for i, rec := range table.Records {
		if rec.Title != "" && rec.Category == "" {
			pending = append(pending, i)
		}
	}
	fmt.Fprintf(w, "Records pending classification: %d\n", len(pending))

	summary := Summary{Skipped: table.Len() - len(pending)}
	if len(pending) == 0 {
		return summary, nil
	}

	dirty := false
	for b := 0; b*batchSize < len(pending); b++ {
		start := b * batchSize
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		titles := make([]string, len(batch))
		for j, row := range batch {
			titles[j] = table.Records[row].Title
		}
		fmt.Fprintf(w, "Classifying records %d-%d of %d...\n", start+1, end, len(pending))

		resp, err := classifyWithRetry(ctx, backend, titles, maxRetries, w)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			fmt.Fprintf(w, "  [!] batch failed, records stay pending: %v\n", err)
			summary.Processed += len(batch)
			continue
		}

		assigned := matchResults(table, batch, titles, resp.Results)
		summary.Processed += len(batch)
		summary.Classified += assigned
		if assigned > 0 {
			dirty = true
		}

		if dirty && (b+1)%saveInterval == 0 {
			fmt.Fprintln(w, "Saving intermediate results...")
			if err := table.Save(); err != nil {
				return summary, fmt.Errorf("checkpointing record table: %w", err)
			}
			dirty = false
		}
	}

	if dirty {
		if err := table.Save(); err != nil {
			return summary, fmt.Errorf("checkpointing record table: %w", err)
		}
	}
	return summary, nil
}

// matchResults writes categories back to the table, pairing each batch row
// with a backend result by raw title, then by cleaned title, and finally by
// position within the batch. Returns the number of records assigned.
func matchResults(table *dataset.Table, batch []int, titles []string, results []AIResult) int {
	byTitle := make(map[string]string, len(results))
	for _, r := range results {
		if r.Title != "" && r.Category != "" {
			byTitle[r.Title] = r.Category
		}
	}

	assigned := 0
	for j, row := range batch {
		category := byTitle[titles[j]]
		if category == "" {
			category = byTitle[CleanTitle(titles[j])]
		}
		if category == "" && j < len(results) {
			category = results[j].Category
		}
		if category == "" {
			continue
		}
		table.SetCategory(row, category)
		assigned++
	}
	return assigned
}

// retryWaitBase scales the linear inter-attempt wait. Tests override this
// to avoid real sleeps.
var retryWaitBase = time.Second

// classifyWithRetry calls the backend with a linearly growing wait between
// attempts. Both transport errors and unparseable responses are retried.
func classifyWithRetry(ctx context.Context, backend AIBackend, titles []string, maxRetries int, w io.Writer) (AIResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(2*attempt) * retryWaitBase
			fmt.Fprintf(w, "  retrying in %s...\n", wait)
			select {
			case <-ctx.Done():
				return AIResponse{}, ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, err := backend.Classify(ctx, titles)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return AIResponse{}, fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// CleanTitle normalizes a title before it is embedded in a prompt:
// backslashes and newlines become spaces, double quotes become single
// quotes, and surrounding whitespace is trimmed.
func CleanTitle(title string) string {
	r := strings.NewReplacer(`\`, " ", `"`, "'", "\n", " ")
	return strings.TrimSpace(r.Replace(title))
}

// StripCodeFence unwraps a Markdown code fence around a model response.
// Responses without a fence pass through unchanged.
func StripCodeFence(content string) string {
	if i := strings.Index(content, "```json"); i >= 0 {
		rest := content[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(content, "```"); i >= 0 {
		rest := content[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(content)
}
