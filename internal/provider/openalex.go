// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// openAlexWorksBase is the OpenAlex Works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works"

const openAlexPageSize = 200

// OpenAlex queries the OpenAlex Works API.
type OpenAlex struct {
	client      *http.Client
	email       string
	userAgent   string
	maxAttempts int

	// pace throttles citing-work page fetches (2 pages/s).
	pace *rate.Limiter
}

// NewOpenAlex builds the adapter from the enrichment config.
func NewOpenAlex(cfg types.EnrichConfig) *OpenAlex {
	return &OpenAlex{
		client:      newHTTPClient(cfg.HTTPConfig),
		email:       cfg.OpenAlexEmail,
		userAgent:   cfg.UserAgent,
		maxAttempts: cfg.MaxAttempts,
		pace:        rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// Name returns the provider identifier.
func (p *OpenAlex) Name() string { return "openalex" }

// PageSize returns the citing-work page size.
func (p *OpenAlex) PageSize() int { return openAlexPageSize }

// Search queries the Works title search and returns up to limit candidates.
func (p *OpenAlex) Search(ctx context.Context, title string, limit int) ([]types.CanonicalRecord, error) {
	params := url.Values{
		"filter":   {"title.search:" + title},
		"per-page": {fmt.Sprintf("%d", limit)},
	}
	p.setMailto(params)

	var oar openAlexListResponse
	ok, err := p.getJSON(ctx, openAlexWorksBase+"?"+params.Encode(), &oar)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex search: %w", err)
	}
	if !ok {
		return nil, nil
	}

	records := make([]types.CanonicalRecord, 0, len(oar.Results))
	for _, work := range oar.Results {
		records = append(records, types.CanonicalRecord{
			ID:            work.ID,
			Title:         work.DisplayName,
			CitationCount: work.CitedByCount,
		})
	}
	return records, nil
}

// CitationCount fetches the canonical citation total for a work ID.
func (p *OpenAlex) CitationCount(ctx context.Context, id string) (int, error) {
	params := url.Values{"select": {"cited_by_count"}}
	p.setMailto(params)
	reqURL := openAlexWorksBase + "/" + url.PathEscape(shortWorkID(id)) + "?" + params.Encode()

	var work openAlexWork
	ok, err := p.getJSON(ctx, reqURL, &work)
	if err != nil {
		return 0, fmt.Errorf("OpenAlex work detail: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("OpenAlex work detail for %s: unexpected status", id)
	}
	return work.CitedByCount, nil
}

// Citations fetches one page of citing works. OpenAlex pages by number, so
// the offset must be a multiple of the requested limit.
func (p *OpenAlex) Citations(ctx context.Context, id string, offset, limit int) (types.CitationPage, error) {
	if err := p.pace.Wait(ctx); err != nil {
		return types.CitationPage{}, err
	}

	params := url.Values{
		"filter":   {"cites:" + shortWorkID(id)},
		"per-page": {fmt.Sprintf("%d", limit)},
		"page":     {fmt.Sprintf("%d", offset/limit+1)},
		"select":   {"publication_year,primary_location"},
	}
	p.setMailto(params)

	var oar openAlexListResponse
	ok, err := p.getJSON(ctx, openAlexWorksBase+"?"+params.Encode(), &oar)
	if err != nil {
		return types.CitationPage{}, fmt.Errorf("OpenAlex citations page: %w", err)
	}
	if !ok {
		return types.CitationPage{}, fmt.Errorf("OpenAlex citations page for %s: unexpected status", id)
	}

	page := types.CitationPage{
		Total: oar.Meta.Count,
		Works: make([]types.CitingWork, 0, len(oar.Results)),
	}
	for _, work := range oar.Results {
		venue := ""
		if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
			venue = work.PrimaryLocation.Source.DisplayName
		}
		page.Works = append(page.Works, types.CitingWork{
			Year:  work.PublicationYear,
			Venue: venue,
		})
	}
	return page, nil
}

func (p *OpenAlex) setMailto(params url.Values) {
	if p.email != "" {
		params.Set("mailto", p.email)
	}
}

// getJSON performs a GET through the retry controller and decodes a 200
// response into v. ok=false, err=nil means a non-2xx status was passed
// through for the caller to interpret.
func (p *OpenAlex) getJSON(ctx context.Context, reqURL string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

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

// shortWorkID strips the https://openalex.org/ prefix, keeping the bare
// W-number the filter syntax expects.
func shortWorkID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// OpenAlex API JSON structures.
type openAlexListResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID              string            `json:"id"`
	DisplayName     string            `json:"display_name"`
	CitedByCount    int               `json:"cited_by_count"`
	PublicationYear int               `json:"publication_year"`
	PrimaryLocation *openAlexLocation `json:"primary_location"`
}

type openAlexLocation struct {
	Source *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}
