package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"readily-backend/models"
	"readily-backend/pdftext"
)

// AuditService runs the full analysis pipeline for one uploaded
// questionnaire: extract text, parse questions, retrieve policy evidence and
// judge compliance per question, then assemble the report. Questions are
// processed sequentially and results keep input order.
type AuditService struct {
	retriever Retriever
	judge     Judge
}

// AuditServiceOption is a functional option for AuditService
type AuditServiceOption func(*AuditService)

// AuditWithRetriever sets the policy snippet retriever
func AuditWithRetriever(r Retriever) AuditServiceOption {
	return func(s *AuditService) {
		s.retriever = r
	}
}

// AuditWithJudge sets the compliance judge
func AuditWithJudge(j Judge) AuditServiceOption {
	return func(s *AuditService) {
		s.judge = j
	}
}

// NewAuditService creates a new audit service
func NewAuditService(opts ...AuditServiceOption) *AuditService {
	s := &AuditService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzePDF analyzes an uploaded questionnaire PDF and returns the
// compliance report. An unparseable PDF fails with ErrExtractionFailed; a
// readable PDF with no question-like lines yields an empty report.
func (s *AuditService) AnalyzePDF(ctx context.Context, data []byte) (*models.Report, error) {
	pages, err := pdftext.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	questions := ParseQuestions(pdftext.JoinPages(pages))
	log.Printf("Extracted %d questions from %d pages", len(questions), len(pages))

	return s.AnalyzeQuestions(ctx, questions)
}

// AnalyzeQuestions runs retrieval and judgment for each question in order.
// A store failure is terminal; a judgment failure downgrades only the
// affected question to UNKNOWN so one bad answer never blocks the others.
func (s *AuditService) AnalyzeQuestions(ctx context.Context, questions []models.AuditQuestion) (*models.Report, error) {
	if s.retriever == nil {
		return nil, errors.New("retriever not set")
	}
	if s.judge == nil {
		return nil, errors.New("judge not set")
	}

	results := make([]models.ComplianceResult, 0, len(questions))
	for _, question := range questions {
		snippets, err := s.retriever.Retrieve(ctx, question.Text)
		if err != nil {
			return nil, err
		}
		if len(snippets) == 0 {
			log.Printf("No relevant context found for question %d: %.80s", question.Index, question.Text)
		}

		result, err := s.judge.Judge(ctx, question, snippets)
		if err != nil {
			log.Printf("Warning: judgment failed for question %d: %v", question.Index, err)
			results = append(results, models.ComplianceResult{
				QuestionIndex: question.Index,
				Question:      question.Text,
				Status:        models.StatusUnknown,
				Note:          "analysis failed: " + err.Error(),
			})
			continue
		}
		results = append(results, *result)
	}

	return AssembleReport(results), nil
}
