package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"readily-backend/models"

	"github.com/google/generative-ai-go/genai"
)

const (
	maxPromptContextChars = 12000
	maxRetries            = 3
	initialBackoff        = time.Second
	judgeTemperature      = 0.2
)

// Judge decides whether the retrieved policy evidence satisfies one audit
// question. The external reasoning call sits behind this interface so tests
// can substitute deterministic stubs for the live API.
type Judge interface {
	Judge(ctx context.Context, question models.AuditQuestion, snippets []models.PolicySnippet) (*models.ComplianceResult, error)
}

// GeminiJudge implements Judge against the Gemini API
type GeminiJudge struct {
	client *genai.Client
	model  string
}

// NewGeminiJudge creates a judge backed by the given Gemini client and model
func NewGeminiJudge(client *genai.Client, model string) *GeminiJudge {
	return &GeminiJudge{
		client: client,
		model:  model,
	}
}

// Judge builds a prompt from the question and its evidence snippets, invokes
// Gemini synchronously and parses the structured answer. API unavailability
// or an empty response after retries surfaces as ErrJudgmentFailed; the
// caller records it per-question rather than aborting the batch.
func (j *GeminiJudge) Judge(
	ctx context.Context,
	question models.AuditQuestion,
	snippets []models.PolicySnippet,
) (*models.ComplianceResult, error) {
	if j.client == nil {
		return nil, errors.New("gemini client not set")
	}

	prompt := buildJudgePrompt(question.Text, snippets)

	raw, err := j.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJudgmentFailed, err)
	}

	result := ParseJudgeResponse(raw, snippets)
	result.QuestionIndex = question.Index
	result.Question = question.Text
	return result, nil
}

// generate calls the Gemini API with retry and doubling backoff
func (j *GeminiJudge) generate(ctx context.Context, prompt string) (string, error) {
	model := j.client.GenerativeModel(j.model)
	model.SetTemperature(judgeTemperature)

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			backoff *= 2
		}

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			continue
		}

		text := responseText(resp)
		if text != "" {
			return text, nil
		}
		lastErr = errors.New("API returned empty content")
	}

	return "", fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

// responseText concatenates the text parts of all candidates
func responseText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return builder.String()
}

// buildJudgePrompt embeds the question and the labeled evidence blocks into
// the auditor instruction template, capped at maxPromptContextChars of
// context
func buildJudgePrompt(question string, snippets []models.PolicySnippet) string {
	context := formatContextBlocks(snippets)
	if len(context) > maxPromptContextChars {
		// Back up to a rune boundary so the cap never splits a
		// multi-byte character
		cut := maxPromptContextChars
		for cut > 0 && !utf8.RuneStart(context[cut]) {
			cut--
		}
		context = context[:cut]
	}

	return fmt.Sprintf(`You are a compliance auditor. Your task is to determine if a policy document meets a specific requirement.

Requirement (Question):
"%s"

Policy Document Excerpts (Context from Database):
"%s"

Instructions:
1. Read the Requirement and Context carefully. Pay attention to Filename and Page markers.
2. Determine if the Context *fully satisfies* the Requirement.
3. If the Requirement is vague or nonsensical, respond "STATUS: Not Met".
4. Respond ONLY in the following exact format:
    STATUS: Met|Not Met
    EVIDENCE: (From Filename: <file>, Page: <page_num>) "<exact quote>"    [ONLY if Met]
5. If Met, quote the exact text and cite the filename AND page number.

Example Response (Met):
STATUS: Met
EVIDENCE: (From Filename: GG.1508_v2.pdf, Page: 10) "For a retrospective request... no later than fourteen (14) calendar days..."

Example Response (Not Met):
STATUS: Not Met

Begin analysis.`, question, context)
}

// formatContextBlocks renders snippets with explicit provenance markers so
// the model can cite filename and page, and the parser can verify citations
func formatContextBlocks(snippets []models.PolicySnippet) string {
	if len(snippets) == 0 {
		return "No relevant policy documents found."
	}

	var builder strings.Builder
	for _, s := range snippets {
		fmt.Fprintf(&builder, "--- START (Filename: %s, Page: %d) ---\n\n", s.Filename, s.PageNumber)
		builder.WriteString(s.Text)
		fmt.Fprintf(&builder, "\n\n--- END (Filename: %s, Page: %d) ---\n\n", s.Filename, s.PageNumber)
	}
	return builder.String()
}

var (
	statusNotMetRe = regexp.MustCompile(`(?i)STATUS:\s*Not\s+Met`)
	statusMetRe    = regexp.MustCompile(`(?i)STATUS:\s*Met`)
	evidenceRe     = regexp.MustCompile(`(?is)EVIDENCE:(.*)$`)
	quoteRe        = regexp.MustCompile(`(?s)["\x{201c}](.*?)["\x{201d}]`)
	citationRe     = regexp.MustCompile(`(?i)\(\s*From\s+Filename:\s*([^,]+?)\s*,\s*Page:\s*(\d+)\s*\)`)
)

// ParseJudgeResponse parses the raw model reply into a ComplianceResult.
// A reply that does not match the expected shape degrades to UNKNOWN with an
// explanatory note; it never fails. When the model quotes evidence, the quote
// is re-attributed to the snippet that actually contains it so the citation
// cannot point outside the provided context.
func ParseJudgeResponse(raw string, snippets []models.PolicySnippet) *models.ComplianceResult {
	result := &models.ComplianceResult{}

	switch {
	case statusNotMetRe.MatchString(raw):
		result.Status = models.StatusNotMet
		return result
	case statusMetRe.MatchString(raw):
		result.Status = models.StatusMet
	default:
		result.Status = models.StatusUnknown
		result.Note = "response did not match the expected STATUS format"
		return result
	}

	evidenceMatch := evidenceRe.FindStringSubmatch(raw)
	if evidenceMatch == nil || strings.TrimSpace(evidenceMatch[1]) == "" {
		result.Note = "status was Met but no evidence section was found"
		return result
	}
	evidenceText := strings.TrimSpace(evidenceMatch[1])

	var quote string
	if m := quoteRe.FindStringSubmatch(evidenceText); m != nil {
		quote = strings.TrimSpace(m[1])
	}

	var citedFile string
	var citedPage int
	if m := citationRe.FindStringSubmatch(evidenceText); m != nil {
		citedFile = strings.TrimSpace(m[1])
		citedPage, _ = strconv.Atoi(m[2])
	}

	if quote == "" {
		// Keep whatever the model said so the row is still reviewable
		result.Evidence = evidenceText
		result.SourceDocument = citedFile
		result.EvidencePage = citedPage
		return result
	}

	result.Evidence = quote
	result.SourceDocument = citedFile
	result.EvidencePage = citedPage

	if file, page, ok := attributeQuote(quote, snippets); ok {
		result.SourceDocument = file
		result.EvidencePage = page
	}

	return result
}

// attributeQuote locates a quoted passage within the provided snippets,
// ignoring whitespace and case differences. When the quote appears in
// several snippets, the earliest-offset match wins.
func attributeQuote(quote string, snippets []models.PolicySnippet) (string, int, bool) {
	normQuote := collapseWhitespace(strings.ToLower(quote))
	if normQuote == "" {
		return "", 0, false
	}

	bestScore := -1.0
	var bestFile string
	var bestPage int
	for _, s := range snippets {
		normText := collapseWhitespace(strings.ToLower(s.Text))
		idx := strings.Index(normText, normQuote)
		if idx == -1 {
			continue
		}
		score := 1.0 / float64(idx+1)
		if score > bestScore {
			bestScore = score
			bestFile = s.Filename
			bestPage = s.PageNumber
		}
	}

	if bestScore < 0 {
		return "", 0, false
	}
	return bestFile, bestPage, true
}
