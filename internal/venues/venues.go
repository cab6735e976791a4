// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package venues classifies citing-work venues against configured sets of
// top conferences and journals.
package venues

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Config is the venue list document (top_conferences, top_journals).
type Config struct {
	TopConferences []string `yaml:"top_conferences"`
	TopJournals    []string `yaml:"top_journals"`
}

// LoadConfig reads the venue YAML document at path. A missing file is not
// an error: enrichment proceeds with empty sets and no citing work is ever
// classified into a tier.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading venue config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing venue config %s: %w", path, err)
	}
	return cfg, nil
}

// Classifier maps a venue display name to a Tier by case-insensitive
// substring containment. It is immutable after construction.
type Classifier struct {
	conferences []string
	journals    []string
}

// NewClassifier lower-cases the configured names once so Classify is a
// pure string scan.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{
		conferences: lowered(cfg.TopConferences),
		journals:    lowered(cfg.TopJournals),
	}
}

// Classify returns the tier for a venue display name. The conference set is
// tested first, so a name matching both sets counts as a conference. An
// empty name is TierNone.
func (c *Classifier) Classify(venue string) types.Tier {
	if venue == "" {
		return types.TierNone
	}
	v := strings.ToLower(venue)
	if containsAny(v, c.conferences) {
		return types.TierConference
	}
	if containsAny(v, c.journals) {
		return types.TierJournal
	}
	return types.TierNone
}

func containsAny(v string, names []string) bool {
	for _, name := range names {
		if strings.Contains(v, name) {
			return true
		}
	}
	return false
}

func lowered(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			out = append(out, n)
		}
	}
	return out
}
