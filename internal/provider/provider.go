// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider adapts bibliographic search services to one capability
// interface so the enrichment pipeline is written once and reused across
// providers.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// Provider is the capability set the enrichment pipeline needs from a
// bibliographic service: fuzzy title search, a canonical citation total,
// and a paginated citing-work listing.
//
// Search returns zero candidates (nil, nil) when the service authoritatively
// has no match, including non-retryable HTTP statuses; errors are reserved
// for transport failures and retry exhaustion. CitationCount and Citations
// return an error for any failure, because a half-aggregated record must
// stay pending rather than be persisted partially.
type Provider interface {
	Name() string
	Search(ctx context.Context, title string, limit int) ([]types.CanonicalRecord, error)
	CitationCount(ctx context.Context, id string) (int, error)
	Citations(ctx context.Context, id string, offset, limit int) (types.CitationPage, error)

	// PageSize is the citing-work page size this provider supports.
	PageSize() int
}

// New builds the provider selected by cfg.Provider.
func New(cfg types.EnrichConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "semantic_scholar":
		return NewSemanticScholar(cfg), nil
	case "openalex":
		return NewOpenAlex(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want semantic_scholar or openalex)", cfg.Provider)
	}
}

// newHTTPClient returns a client with the configured request timeout.
func newHTTPClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
