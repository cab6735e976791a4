// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "papers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `title,venue_rank,paperId,citationCount,top_conf_citations,top_journal_citations,citations_2014,citations_2015,citations_2016,citations_2017,citations_2018,citations_2019,citations_2020,citations_2021,citations_2022,citations_2023,citations_2024
Attention Is All You Need,A*,p1,50000,100,50,0,0,0,100,200,300,400,500,600,700,800
Some Unresolved Paper,B,,,,,,,,,,,,,,,
,C,,,,,,,,,,,,,,,
`

func TestLoadParsesRecords(t *testing.T) {
	table, err := Load(writeTable(t, sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	enriched := table.Records[0]
	assert.Equal(t, "Attention Is All You Need", enriched.Title)
	assert.Equal(t, "p1", enriched.ExternalID)
	require.NotNil(t, enriched.CitationCount)
	assert.Equal(t, 50000, *enriched.CitationCount)
	assert.Equal(t, 100, enriched.TopConfCitations)
	assert.Equal(t, 50, enriched.TopJournalCitations)
	assert.Equal(t, 800, enriched.YearCounts[2024])
	assert.True(t, enriched.Enriched())

	pending := table.Records[1]
	assert.Empty(t, pending.ExternalID)
	assert.Nil(t, pending.CitationCount)
	assert.False(t, pending.Enriched())
}

func TestPendingSkipsEnrichedAndUntitled(t *testing.T) {
	table, err := Load(writeTable(t, sampleCSV))
	require.NoError(t, err)

	// Row 0 is enriched, row 2 has no title; only row 1 is pending.
	assert.Equal(t, []int{1}, table.Pending())
}

func TestIndexOf(t *testing.T) {
	table, err := Load(writeTable(t, sampleCSV))
	require.NoError(t, err)

	i, ok := table.IndexOf("Some Unresolved Paper")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = table.IndexOf("Never Heard Of It")
	assert.False(t, ok)
}

func TestApplyAndSaveRoundTrip(t *testing.T) {
	path := writeTable(t, sampleCSV)
	table, err := Load(path)
	require.NoError(t, err)

	agg := types.NewAggregates()
	agg.CitationCount = 42
	agg.TopConfCitations = 3
	agg.TopJournalCitations = 2
	agg.YearCounts[2020] = 40

	table.Apply(1, "p2", agg)
	require.NoError(t, table.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	rec := reloaded.Records[1]
	assert.Equal(t, "p2", rec.ExternalID)
	require.NotNil(t, rec.CitationCount)
	assert.Equal(t, 42, *rec.CitationCount)
	assert.Equal(t, 3, rec.TopConfCitations)
	assert.Equal(t, 40, rec.YearCounts[2020])
	assert.Equal(t, 0, rec.YearCounts[2019])
	assert.True(t, rec.Enriched())
	assert.Empty(t, reloaded.Pending())
}

func TestSavePreservesForeignColumns(t *testing.T) {
	path := writeTable(t, sampleCSV)
	table, err := Load(path)
	require.NoError(t, err)

	agg := types.NewAggregates()
	table.Apply(1, "p2", agg)
	require.NoError(t, table.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	// venue_rank is not an owned column; its values must survive.
	assert.Equal(t, "A*", reloaded.cells[0]["venue_rank"])
	assert.Equal(t, "B", reloaded.cells[1]["venue_rank"])
	assert.Equal(t, "C", reloaded.cells[2]["venue_rank"])
}

func TestSaveIsIdempotentForUntouchedTables(t *testing.T) {
	path := writeTable(t, sampleCSV)
	table, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, table.Save())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(after))
}

func TestApplyAddsMissingOwnedColumns(t *testing.T) {
	// A bare table with only titles: enrichment must create its columns.
	path := writeTable(t, "title\nSome Paper\n")
	table, err := Load(path)
	require.NoError(t, err)

	agg := types.NewAggregates()
	agg.CitationCount = 7
	table.Apply(0, "p9", agg)
	require.NoError(t, table.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	rec := reloaded.Records[0]
	assert.Equal(t, "p9", rec.ExternalID)
	require.NotNil(t, rec.CitationCount)
	assert.Equal(t, 7, *rec.CitationCount)
}

func TestSetCategory(t *testing.T) {
	path := writeTable(t, "title,ai_category\nSome Paper,\n")
	table, err := Load(path)
	require.NoError(t, err)

	table.SetCategory(0, "Natural Language Processing")
	require.NoError(t, table.Save())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Natural Language Processing", reloaded.Records[0].Category)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := Load(writeTable(t, ""))
	assert.Error(t, err)
}
