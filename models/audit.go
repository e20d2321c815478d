package models

import (
	"time"
)

// ComplianceStatus represents the outcome of judging one audit question
type ComplianceStatus string

const (
	StatusMet     ComplianceStatus = "MET"
	StatusNotMet  ComplianceStatus = "NOT_MET"
	StatusUnknown ComplianceStatus = "UNKNOWN"
)

// AuditQuestion represents one question extracted from an uploaded audit PDF.
// Questions are write-once and scoped to a single analysis run.
type AuditQuestion struct {
	Index   int     `json:"index"`
	Text    string  `json:"text"`
	Section *string `json:"section,omitempty"`
}

// ComplianceResult represents the judged outcome for one audit question
type ComplianceResult struct {
	QuestionIndex  int              `json:"question_index"`
	Question       string           `json:"question"`
	Status         ComplianceStatus `json:"status"`
	Evidence       string           `json:"evidence,omitempty"`
	SourceDocument string           `json:"source_document,omitempty"`
	EvidencePage   int              `json:"evidence_page,omitempty"`
	Note           string           `json:"note,omitempty"`
}

// Report aggregates the per-question results of one analysis run.
// Reports exist only for the lifetime of the request; they are not persisted.
type Report struct {
	Results   []ComplianceResult `json:"results"`
	CreatedAt time.Time          `json:"created_at"`
}
