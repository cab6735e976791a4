// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/pdiddy/citation-engine/pkg/types"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Attention Is All You Need", "Attention Is All You Need", 1.0},
		{"case insensitive", "attention is all you need", "ATTENTION IS ALL YOU NEED", 1.0},
		{"empty a", "", "anything", 0.0},
		{"empty b", "anything", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityRatio(t *testing.T) {
	// Ratio is 2M/T: 9 matching of 10+10 characters = 0.9.
	if got := Similarity("aaaaaaaaab", "aaaaaaaaac"); got < 0.89 || got > 0.91 {
		t.Errorf("Similarity = %f, want ~0.9", got)
	}
	// 3 matching of 4+4 = 0.75.
	if got := Similarity("aaab", "aaac"); got < 0.74 || got > 0.76 {
		t.Errorf("Similarity = %f, want ~0.75", got)
	}
}

func TestResolveAcceptsBestCandidateAboveThreshold(t *testing.T) {
	p := &fakeProvider{
		searchFn: func(title string, limit int) ([]types.CanonicalRecord, error) {
			return []types.CanonicalRecord{
				{ID: "close", Title: "Attention Is All You Need It", CitationCount: 10},
				{ID: "exact", Title: "Attention Is All You Need", CitationCount: 50000},
				{ID: "far", Title: "Graph Neural Networks: A Review", CitationCount: 5},
			}, nil
		},
	}

	rec, err := Resolve(context.Background(), p, "Attention Is All You Need", 5)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a match")
	}
	if rec.ID != "exact" {
		t.Errorf("selected %q, want the maximum-similarity candidate", rec.ID)
	}
	if rec.CitationCount != 50000 {
		t.Errorf("CitationCount = %d, want 50000", rec.CitationCount)
	}
}

func TestResolveRejectsLowSimilarity(t *testing.T) {
	// Never a low-confidence match: below 0.85 means not found.
	p := &fakeProvider{
		searchFn: func(title string, limit int) ([]types.CanonicalRecord, error) {
			return []types.CanonicalRecord{
				{ID: "w1", Title: "An Entirely Unrelated Survey of Databases"},
			}, nil
		},
	}

	rec, err := Resolve(context.Background(), p, "Attention Is All You Need", 5)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec != nil {
		t.Errorf("expected not-found, got %+v", rec)
	}
}

func TestResolveZeroCandidatesIsNotFound(t *testing.T) {
	p := &fakeProvider{
		searchFn: func(title string, limit int) ([]types.CanonicalRecord, error) {
			return nil, nil
		},
	}

	rec, err := Resolve(context.Background(), p, "Some Unknown Paper", 5)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec != nil {
		t.Errorf("expected not-found, got %+v", rec)
	}
}

func TestResolvePropagatesErrors(t *testing.T) {
	wantErr := errors.New("boom")
	p := &fakeProvider{
		searchFn: func(title string, limit int) ([]types.CanonicalRecord, error) {
			return nil, wantErr
		},
	}

	_, err := Resolve(context.Background(), p, "Some Paper", 5)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}
