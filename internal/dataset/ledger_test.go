// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerPathFor(t *testing.T) {
	got := LedgerPathFor("/data/neurips2020.csv", "/data-false")
	assert.Equal(t, filepath.Join("/data-false", "neurips2020.txt"), got)
}

func TestLoadLedgerMissingFile(t *testing.T) {
	l, err := LoadLedger(filepath.Join(t.TempDir(), "nope.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
}

func TestLedgerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "false", "papers.txt")

	l := &Ledger{Path: path, seen: map[string]bool{}}
	l.Add("Paper One")
	l.Add("Paper Two")
	l.Add("Paper One") // duplicate ignored
	l.Add("")          // blank ignored
	require.NoError(t, l.Save())

	reloaded, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paper One", "Paper Two"}, reloaded.Titles())
	assert.True(t, reloaded.Contains("Paper One"))
	assert.False(t, reloaded.Contains("Paper Three"))
}

func TestLedgerRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.txt")
	require.NoError(t, os.WriteFile(path, []byte("Paper One\nPaper Two\nPaper Three\n"), 0o644))

	l, err := LoadLedger(path)
	require.NoError(t, err)

	l.Remove("Paper Two")
	l.Remove("Not Listed") // no-op
	require.NoError(t, l.Save())

	reloaded, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paper One", "Paper Three"}, reloaded.Titles())
}

func TestLedgerSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.txt")
	require.NoError(t, os.WriteFile(path, []byte("Paper One\n"), 0o644))

	l, err := LoadLedger(path)
	require.NoError(t, err)
	l.Remove("Paper One")
	require.NoError(t, l.Save())

	reloaded, err := LoadLedger(path)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Len())
}
