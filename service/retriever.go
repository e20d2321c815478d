package service

import (
	"context"
	"errors"
	"fmt"

	"readily-backend/models"
)

var (
	ErrExtractionFailed = errors.New("failed to extract text from PDF")
	ErrRetrievalFailed  = errors.New("failed to retrieve policy context")
	ErrJudgmentFailed   = errors.New("failed to judge question")
)

const (
	// Hard caps keeping the judge prompt within model context limits
	maxPagesPerQuestion = 7
	maxContextChars     = 18000
)

// Retriever fetches candidate policy evidence for one audit question.
// Tests substitute deterministic implementations.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]models.PolicySnippet, error)
}

// pageSearcher is the slice of the policy page repository the retriever
// needs. Satisfied by *repository.PolicyPageRepository.
type pageSearcher interface {
	Search(ctx context.Context, question string, limit int) ([]models.PolicyPage, error)
}

// PolicyRetriever retrieves policy snippets from the Postgres-backed page
// store via full-text search
type PolicyRetriever struct {
	store       pageSearcher
	useSnippets bool
}

// NewPolicyRetriever creates a policy retriever. useSnippets selects
// keyword-snippet context blocks over whole-page content.
func NewPolicyRetriever(store pageSearcher, useSnippets bool) *PolicyRetriever {
	return &PolicyRetriever{
		store:       store,
		useSnippets: useSnippets,
	}
}

// Retrieve returns the evidence snippets for a question, best-ranked pages
// first, bounded by maxPagesPerQuestion and maxContextChars. A store failure
// is terminal for the request: a judgment without any policy context is
// meaningless.
func (r *PolicyRetriever) Retrieve(ctx context.Context, question string) ([]models.PolicySnippet, error) {
	if r.store == nil {
		return nil, errors.New("policy page store not set")
	}

	pages, err := r.store.Search(ctx, question, maxPagesPerQuestion)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}

	snippets := make([]models.PolicySnippet, 0, len(pages))
	total := 0
	for _, page := range pages {
		var blocks []string
		if r.useSnippets {
			blocks = pickSnippets(page.Content, question)
		} else {
			blocks = []string{page.Content}
		}

		for _, block := range blocks {
			// The first block is always admitted so a single oversized
			// page cannot starve the judge of all context
			if total+len(block) > maxContextChars && len(snippets) > 0 {
				return snippets, nil
			}
			snippets = append(snippets, models.PolicySnippet{
				Filename:   page.Filename,
				PageNumber: page.PageNumber,
				Text:       block,
			})
			total += len(block)
		}
	}

	return snippets, nil
}
