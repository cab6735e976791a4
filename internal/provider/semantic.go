// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// Semantic Scholar endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	semanticSearchBase = "https://api.semanticscholar.org/graph/v1/paper/search"
	semanticPaperBase  = "https://api.semanticscholar.org/graph/v1/paper/"
)

const semanticPageSize = 1000

// SemanticScholar queries the Semantic Scholar graph API.
type SemanticScholar struct {
	client      *http.Client
	apiKey      string
	userAgent   string
	maxAttempts int

	// pace throttles citing-work page fetches (1 page/s). This is a
	// cooperative throttle between pages, separate from 429 backoff.
	pace *rate.Limiter
}

// NewSemanticScholar builds the adapter from the enrichment config.
func NewSemanticScholar(cfg types.EnrichConfig) *SemanticScholar {
	return &SemanticScholar{
		client:      newHTTPClient(cfg.HTTPConfig),
		apiKey:      cfg.SemanticScholarAPIKey,
		userAgent:   cfg.UserAgent,
		maxAttempts: cfg.MaxAttempts,
		pace:        rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Name returns the provider identifier.
func (p *SemanticScholar) Name() string { return "semantic_scholar" }

// PageSize returns the citing-work page size.
func (p *SemanticScholar) PageSize() int { return semanticPageSize }

// Search queries the paper search endpoint and returns up to limit
// candidates with their canonical IDs and citation counts.
func (p *SemanticScholar) Search(ctx context.Context, title string, limit int) ([]types.CanonicalRecord, error) {
	params := url.Values{
		"query":  {title},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {"paperId,title,citationCount"},
	}

	var sr semanticSearchResponse
	ok, err := p.getJSON(ctx, semanticSearchBase+"?"+params.Encode(), &sr)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar search: %w", err)
	}
	if !ok {
		return nil, nil
	}

	records := make([]types.CanonicalRecord, 0, len(sr.Data))
	for _, paper := range sr.Data {
		records = append(records, types.CanonicalRecord{
			ID:            paper.PaperID,
			Title:         paper.Title,
			CitationCount: paper.CitationCount,
		})
	}
	return records, nil
}

// CitationCount fetches the canonical citation total for a paper ID.
func (p *SemanticScholar) CitationCount(ctx context.Context, id string) (int, error) {
	reqURL := semanticPaperBase + url.PathEscape(id) + "?fields=citationCount"

	var detail semanticPaper
	ok, err := p.getJSON(ctx, reqURL, &detail)
	if err != nil {
		return 0, fmt.Errorf("Semantic Scholar paper detail: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("Semantic Scholar paper detail for %s: unexpected status", id)
	}
	return detail.CitationCount, nil
}

// Citations fetches one page of citing works (year and venue only).
func (p *SemanticScholar) Citations(ctx context.Context, id string, offset, limit int) (types.CitationPage, error) {
	if err := p.pace.Wait(ctx); err != nil {
		return types.CitationPage{}, err
	}

	params := url.Values{
		"fields": {"year,venue"},
		"offset": {fmt.Sprintf("%d", offset)},
		"limit":  {fmt.Sprintf("%d", limit)},
	}
	reqURL := semanticPaperBase + url.PathEscape(id) + "/citations?" + params.Encode()

	var cr semanticCitationsResponse
	ok, err := p.getJSON(ctx, reqURL, &cr)
	if err != nil {
		return types.CitationPage{}, fmt.Errorf("Semantic Scholar citations page: %w", err)
	}
	if !ok {
		return types.CitationPage{}, fmt.Errorf("Semantic Scholar citations page for %s: unexpected status", id)
	}

	page := types.CitationPage{Works: make([]types.CitingWork, 0, len(cr.Data))}
	for _, c := range cr.Data {
		page.Works = append(page.Works, types.CitingWork{
			Year:  c.CitingPaper.Year,
			Venue: c.CitingPaper.Venue,
		})
	}
	return page, nil
}

// getJSON performs a GET through the retry controller and decodes a 200
// response into v. It returns ok=false, err=nil for non-2xx statuses the
// controller passed through; the caller decides what those mean.
func (p *SemanticScholar) getJSON(ctx context.Context, reqURL string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	if p.apiKey != "" {
		req.Header.Set("x-api-key", p.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, p.client, req, p.maxAttempts)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("parsing response: %w", err)
	}
	return true, nil
}

// Semantic Scholar API JSON structures.
type semanticSearchResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string `json:"paperId"`
	Title         string `json:"title"`
	CitationCount int    `json:"citationCount"`
}

type semanticCitationsResponse struct {
	Offset int                `json:"offset"`
	Next   int                `json:"next"`
	Data   []semanticCitation `json:"data"`
}

type semanticCitation struct {
	CitingPaper semanticCitingPaper `json:"citingPaper"`
}

type semanticCitingPaper struct {
	Year  int    `json:"year"`
	Venue string `json:"venue"`
}
