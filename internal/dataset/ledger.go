// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ledger is the not-found ledger paired with one record table: the titles
// the provider authoritatively had no match for. Entries are appended when
// a search comes back empty or below the similarity threshold, and removed
// when a later run (possibly against a different provider) resolves the
// title. Retry exhaustion never reaches the ledger.
type Ledger struct {
	Path string

	titles []string
	seen   map[string]bool
}

// LedgerPathFor returns the ledger file paired with a record table:
// <unresolvedDir>/<table name>.txt.
func LedgerPathFor(tablePath, unresolvedDir string) string {
	base := strings.TrimSuffix(filepath.Base(tablePath), filepath.Ext(tablePath))
	return filepath.Join(unresolvedDir, base+".txt")
}

// LoadLedger reads the ledger at path, one title per line. A missing file
// yields an empty ledger.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{Path: path, seen: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		l.Add(strings.TrimSpace(line))
	}
	return l, nil
}

// Add records a title as not found. Blank and duplicate titles are ignored.
func (l *Ledger) Add(title string) {
	if title == "" || l.seen[title] {
		return
	}
	l.seen[title] = true
	l.titles = append(l.titles, title)
}

// Remove drops a title that has since resolved.
func (l *Ledger) Remove(title string) {
	if !l.seen[title] {
		return
	}
	delete(l.seen, title)
	for i, t := range l.titles {
		if t == title {
			l.titles = append(l.titles[:i], l.titles[i+1:]...)
			break
		}
	}
}

// Contains reports whether a title is ledgered.
func (l *Ledger) Contains(title string) bool { return l.seen[title] }

// Len returns the number of ledgered titles.
func (l *Ledger) Len() int { return len(l.titles) }

// Titles returns the ledgered titles in insertion order.
func (l *Ledger) Titles() []string {
	out := make([]string, len(l.titles))
	copy(out, l.titles)
	return out
}

// Save atomically rewrites the ledger file, creating its directory first.
func (l *Ledger) Save() error {
	dir := filepath.Dir(l.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.Path)+".tmp")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	for _, title := range l.titles {
		if _, err := fmt.Fprintln(tmp, title); err != nil {
			tmp.Close()
			return fmt.Errorf("writing ledger: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.Path); err != nil {
		return fmt.Errorf("replacing ledger %s: %w", l.Path, err)
	}
	return nil
}
