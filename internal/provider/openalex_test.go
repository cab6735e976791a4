// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func swapOpenAlexBase(t *testing.T, base string) {
	t.Helper()
	old := openAlexWorksBase
	openAlexWorksBase = base + "/works"
	t.Cleanup(func() { openAlexWorksBase = old })
}

func testOpenAlexCfg() types.EnrichConfig {
	cfg := testEnrichCfg()
	cfg.Provider = "openalex"
	cfg.OpenAlexEmail = "someone@example.org"
	return cfg
}

func TestOpenAlexSearchRequestParams(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"meta":{"count":0},"results":[]}`)
	}))
	defer ts.Close()
	swapOpenAlexBase(t, ts.URL)

	p := NewOpenAlex(testOpenAlexCfg())
	_, err := p.Search(context.Background(), "Attention Is All You Need", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := capturedReq.URL.Query()
	if got := q.Get("filter"); got != "title.search:Attention Is All You Need" {
		t.Errorf("filter param = %q", got)
	}
	if got := q.Get("per-page"); got != "5" {
		t.Errorf("per-page param = %q, want 5", got)
	}
	if got := q.Get("mailto"); got != "someone@example.org" {
		t.Errorf("mailto param = %q", got)
	}
}

func TestOpenAlexSearchCandidates(t *testing.T) {
	resp := `{"meta":{"count":1},"results":[
		{"id":"https://openalex.org/W2741809807","display_name":"Attention Is All You Need","cited_by_count":50000}]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	defer ts.Close()
	swapOpenAlexBase(t, ts.URL)

	p := NewOpenAlex(testOpenAlexCfg())
	records, err := p.Search(context.Background(), "attention", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].ID != "https://openalex.org/W2741809807" {
		t.Errorf("ID = %q", records[0].ID)
	}
	if records[0].CitationCount != 50000 {
		t.Errorf("CitationCount = %d", records[0].CitationCount)
	}
}

func TestOpenAlexCitationCountUsesShortID(t *testing.T) {
	var capturedReq *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"cited_by_count":777}`)
	}))
	defer ts.Close()
	swapOpenAlexBase(t, ts.URL)

	p := NewOpenAlex(testOpenAlexCfg())
	count, err := p.CitationCount(context.Background(), "https://openalex.org/W123")
	if err != nil {
		t.Fatalf("CitationCount: %v", err)
	}
	if count != 777 {
		t.Errorf("count = %d, want 777", count)
	}
	if capturedReq.URL.Path != "/works/W123" {
		t.Errorf("path = %q, want /works/W123", capturedReq.URL.Path)
	}
	if got := capturedReq.URL.Query().Get("select"); got != "cited_by_count" {
		t.Errorf("select param = %q", got)
	}
}

func TestOpenAlexCitationsPageTranslation(t *testing.T) {
	var capturedReq *http.Request
	resp := `{"meta":{"count":450,"per_page":200,"page":3},"results":[
		{"publication_year":2021,"primary_location":{"source":{"display_name":"CVPR"}}},
		{"publication_year":2015,"primary_location":{"source":null}},
		{"publication_year":0,"primary_location":null}]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, resp)
	}))
	defer ts.Close()
	swapOpenAlexBase(t, ts.URL)

	p := NewOpenAlex(testOpenAlexCfg())
	page, err := p.Citations(context.Background(), "https://openalex.org/W123", 400, 200)
	if err != nil {
		t.Fatalf("Citations: %v", err)
	}

	q := capturedReq.URL.Query()
	if got := q.Get("filter"); got != "cites:W123" {
		t.Errorf("filter param = %q, want cites:W123", got)
	}
	// Offset 400 at page size 200 is page 3.
	if got := q.Get("page"); got != "3" {
		t.Errorf("page param = %q, want 3", got)
	}
	if got := q.Get("select"); got != "publication_year,primary_location" {
		t.Errorf("select param = %q", got)
	}

	if page.Total != 450 {
		t.Errorf("Total = %d, want 450", page.Total)
	}
	if len(page.Works) != 3 {
		t.Fatalf("len(Works) = %d, want 3", len(page.Works))
	}
	if page.Works[0].Venue != "CVPR" || page.Works[0].Year != 2021 {
		t.Errorf("Works[0] = %+v", page.Works[0])
	}
	// Null source and null location both mean "no venue".
	if page.Works[1].Venue != "" || page.Works[2].Venue != "" {
		t.Errorf("null locations should yield empty venues: %+v", page.Works[1:])
	}
}

func TestOpenAlexSearchNonRetryableStatusMeansNoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()
	swapOpenAlexBase(t, ts.URL)

	p := NewOpenAlex(testOpenAlexCfg())
	records, err := p.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("non-retryable status should not be an error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %v, want none", records)
	}
}

func TestProviderFactory(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     string
		wantErr  bool
	}{
		{"default is semantic scholar", "", "semantic_scholar", false},
		{"semantic scholar", "semantic_scholar", "semantic_scholar", false},
		{"openalex", "openalex", "openalex", false},
		{"unknown", "google_scholar", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testEnrichCfg()
			cfg.Provider = tt.provider
			p, err := New(cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}
