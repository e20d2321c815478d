package models

import (
	"github.com/google/uuid"
)

// PolicyPage represents one page of a policy document in the store.
// Pages are created once at database-population time and read-only afterwards.
type PolicyPage struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	PageNumber int       `json:"page_number"`
	Content    string    `json:"content"`
	Rank       float64   `json:"rank,omitempty"` // Full-text search rank
}

// PolicySnippet is a bounded block of policy text with document/page
// provenance, used as evidence context for the compliance judge
type PolicySnippet struct {
	Filename   string `json:"filename"`
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}
