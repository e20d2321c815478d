package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"readily-backend/models"
)

type stubPageSearcher struct {
	pages    []models.PolicyPage
	err      error
	gotLimit int
}

func (s *stubPageSearcher) Search(_ context.Context, _ string, limit int) ([]models.PolicyPage, error) {
	s.gotLimit = limit
	return s.pages, s.err
}

func TestRetrieveSnippetMode(t *testing.T) {
	store := &stubPageSearcher{pages: []models.PolicyPage{{
		Filename:   "security.pdf",
		PageNumber: 12,
		Content: "Section 9 covers key handling.\n\n" +
			"We encrypt backup data using AES-256 before it leaves the host, " +
			"and restore drills run every quarter under change control.",
	}}}
	r := NewPolicyRetriever(store, true)

	snippets, err := r.Retrieve(context.Background(), "Do you encrypt backup data at rest?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(snippets) == 0 {
		t.Fatal("expected at least one snippet")
	}
	if !strings.Contains(strings.ToLower(snippets[0].Text), "encrypt backup data") {
		t.Errorf("snippet does not contain the matched phrase: %q", snippets[0].Text)
	}
	if snippets[0].Filename != "security.pdf" || snippets[0].PageNumber != 12 {
		t.Errorf("provenance = %s p.%d, want security.pdf p.12", snippets[0].Filename, snippets[0].PageNumber)
	}
	if len(snippets[0].Text) > maxSnippetChars {
		t.Errorf("snippet is %d chars, cap is %d", len(snippets[0].Text), maxSnippetChars)
	}
}

func TestRetrieveWholePageMode(t *testing.T) {
	content := strings.Repeat("full page content here ", 100)
	store := &stubPageSearcher{pages: []models.PolicyPage{
		{Filename: "hr.pdf", PageNumber: 1, Content: content},
		{Filename: "hr.pdf", PageNumber: 2, Content: content},
	}}
	r := NewPolicyRetriever(store, false)

	snippets, err := r.Retrieve(context.Background(), "Is there a full page policy?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want one whole page each", len(snippets))
	}
	for i, s := range snippets {
		if s.Text != content {
			t.Errorf("snippet %d should carry the full page content, got %d chars", i, len(s.Text))
		}
	}
}

func TestRetrieveContextBudget(t *testing.T) {
	page := strings.Repeat("p", 8000)
	store := &stubPageSearcher{pages: []models.PolicyPage{
		{Filename: "a.pdf", PageNumber: 1, Content: page},
		{Filename: "a.pdf", PageNumber: 2, Content: page},
		{Filename: "a.pdf", PageNumber: 3, Content: page},
	}}
	r := NewPolicyRetriever(store, false)

	snippets, err := r.Retrieve(context.Background(), "Is there a policy?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	// 8000 + 8000 fits the 18000-char budget; a third page would not
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2 within the context budget", len(snippets))
	}
	total := 0
	for _, s := range snippets {
		total += len(s.Text)
	}
	if total > maxContextChars {
		t.Errorf("total context %d exceeds budget %d", total, maxContextChars)
	}
}

func TestRetrieveAdmitsOversizedFirstBlock(t *testing.T) {
	store := &stubPageSearcher{pages: []models.PolicyPage{{
		Filename:   "huge.pdf",
		PageNumber: 1,
		Content:    strings.Repeat("x", maxContextChars+5000),
	}}}
	r := NewPolicyRetriever(store, false)

	snippets, err := r.Retrieve(context.Background(), "Is there a policy?")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("an oversized first block must still be admitted, got %d snippets", len(snippets))
	}
}

func TestRetrievePassesPageLimit(t *testing.T) {
	store := &stubPageSearcher{}
	r := NewPolicyRetriever(store, true)

	if _, err := r.Retrieve(context.Background(), "Is there a policy?"); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if store.gotLimit != maxPagesPerQuestion {
		t.Errorf("search limit = %d, want %d", store.gotLimit, maxPagesPerQuestion)
	}
}

func TestRetrieveStoreFailure(t *testing.T) {
	store := &stubPageSearcher{err: errors.New("connection refused")}
	r := NewPolicyRetriever(store, true)

	_, err := r.Retrieve(context.Background(), "Is there a policy?")
	if !errors.Is(err, ErrRetrievalFailed) {
		t.Fatalf("expected ErrRetrievalFailed, got %v", err)
	}
}
