// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset persists the record table and the not-found ledger. It is
// the checkpoint store for the enrichment pipeline: both files are rewritten
// atomically after every batch, so a crash loses at most one batch of work
// and never corrupts committed data.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Column names owned by the pipeline. Any other column in a table is
// preserved verbatim across rewrites.
const (
	colTitle         = "title"
	colPaperID       = "paperId"
	colCitationCount = "citationCount"
	colTopConf       = "top_conf_citations"
	colTopJournal    = "top_journal_citations"
	colCategory      = "ai_category"
	yearColPrefix    = "citations_"
)

// Table is one CSV record table held in memory. Raw cells are kept alongside
// the parsed records so columns this pipeline does not own survive a rewrite
// byte-for-byte, and so an untouched record round-trips unchanged.
type Table struct {
	Path    string
	Records []types.Record

	header []string
	cells  []map[string]string
	index  map[string]int // title → row
}

// Load reads the CSV table at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening record table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading record table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("record table %s has no header row", path)
	}

	t := &Table{
		Path:   path,
		header: rows[0],
		index:  make(map[string]int, len(rows)-1),
	}

	for _, row := range rows[1:] {
		cells := make(map[string]string, len(t.header))
		for i, col := range t.header {
			if i < len(row) {
				cells[col] = row[i]
			} else {
				cells[col] = ""
			}
		}
		t.cells = append(t.cells, cells)

		rec := parseRecord(cells)
		if rec.Title != "" {
			if _, dup := t.index[rec.Title]; !dup {
				t.index[rec.Title] = len(t.Records)
			}
		}
		t.Records = append(t.Records, rec)
	}

	return t, nil
}

// parseRecord builds the typed view of one row from its raw cells.
func parseRecord(cells map[string]string) types.Record {
	rec := types.Record{
		Title:      strings.TrimSpace(cells[colTitle]),
		ExternalID: cells[colPaperID],
		Category:   cells[colCategory],
	}
	if n, err := strconv.Atoi(cells[colCitationCount]); err == nil {
		rec.CitationCount = &n
	}
	rec.TopConfCitations, _ = strconv.Atoi(cells[colTopConf])
	rec.TopJournalCitations, _ = strconv.Atoi(cells[colTopJournal])

	rec.YearCounts = make(map[int]int)
	for y := types.HistogramYearFrom; y <= types.HistogramYearTo; y++ {
		if n, err := strconv.Atoi(cells[yearCol(y)]); err == nil {
			rec.YearCounts[y] = n
		}
	}
	return rec
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// IndexOf returns the row index for a title.
func (t *Table) IndexOf(title string) (int, bool) {
	i, ok := t.index[strings.TrimSpace(title)]
	return i, ok
}

// Pending returns the indices of records still missing their external ID or
// citation count, in table order. Rows without a title are never pending.
func (t *Table) Pending() []int {
	var pending []int
	for i, rec := range t.Records {
		if rec.Title != "" && !rec.Enriched() {
			pending = append(pending, i)
		}
	}
	return pending
}

// Apply populates row i with a completed enrichment result. Both the typed
// record and the raw cells are updated so the next Save persists the result.
func (t *Table) Apply(i int, externalID string, agg types.Aggregates) {
	rec := &t.Records[i]
	rec.ExternalID = externalID
	count := agg.CitationCount
	rec.CitationCount = &count
	rec.TopConfCitations = agg.TopConfCitations
	rec.TopJournalCitations = agg.TopJournalCitations
	rec.YearCounts = agg.YearCounts

	t.setCell(i, colPaperID, externalID)
	t.setCell(i, colCitationCount, strconv.Itoa(agg.CitationCount))
	t.setCell(i, colTopConf, strconv.Itoa(agg.TopConfCitations))
	t.setCell(i, colTopJournal, strconv.Itoa(agg.TopJournalCitations))
	for y := types.HistogramYearFrom; y <= types.HistogramYearTo; y++ {
		t.setCell(i, yearCol(y), strconv.Itoa(agg.YearCounts[y]))
	}
}

// SetCategory records the AI topic label for row i.
func (t *Table) SetCategory(i int, category string) {
	t.Records[i].Category = category
	t.setCell(i, colCategory, category)
}

// setCell writes a raw cell, adding the column to the header if the input
// file did not carry it.
func (t *Table) setCell(i int, col, value string) {
	if _, ok := t.cells[i][col]; !ok {
		t.ensureColumn(col)
	}
	t.cells[i][col] = value
}

func (t *Table) ensureColumn(col string) {
	for _, h := range t.header {
		if h == col {
			return
		}
	}
	t.header = append(t.header, col)
}

// Save atomically rewrites the table: the new content is written to a
// temporary file in the same directory and renamed over the original.
func (t *Table) Save() error {
	tmp, err := os.CreateTemp(filepath.Dir(t.Path), filepath.Base(t.Path)+".tmp")
	if err != nil {
		return fmt.Errorf("creating temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing table header: %w", err)
	}
	row := make([]string, len(t.header))
	for _, cells := range t.cells {
		for j, col := range t.header {
			row[j] = cells[col]
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp table: %w", err)
	}

	if err := os.Rename(tmp.Name(), t.Path); err != nil {
		return fmt.Errorf("replacing record table %s: %w", t.Path, err)
	}
	return nil
}

func yearCol(year int) string {
	return yearColPrefix + strconv.Itoa(year)
}
