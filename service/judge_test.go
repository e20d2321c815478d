package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"readily-backend/models"
)

var encryptionSnippets = []models.PolicySnippet{
	{Filename: "security.pdf", PageNumber: 4, Text: "All data at rest is encrypted with AES-256. Keys are rotated quarterly."},
	{Filename: "security.pdf", PageNumber: 9, Text: "Visitors must sign in at the front desk."},
}

func TestParseJudgeResponseMet(t *testing.T) {
	raw := "STATUS: Met\n" +
		`EVIDENCE: (From Filename: security.pdf, Page: 4) "All data at rest is encrypted with AES-256."`

	result := ParseJudgeResponse(raw, encryptionSnippets)
	if result.Status != models.StatusMet {
		t.Fatalf("status = %s, want MET", result.Status)
	}
	if result.Evidence != "All data at rest is encrypted with AES-256." {
		t.Errorf("evidence = %q", result.Evidence)
	}
	if result.SourceDocument != "security.pdf" || result.EvidencePage != 4 {
		t.Errorf("citation = %s p.%d, want security.pdf p.4", result.SourceDocument, result.EvidencePage)
	}
}

func TestParseJudgeResponseReattributesQuote(t *testing.T) {
	// The model cited the wrong page; the quote only appears on page 4
	raw := "STATUS: Met\n" +
		`EVIDENCE: (From Filename: security.pdf, Page: 9) "All data at rest is encrypted with AES-256."`

	result := ParseJudgeResponse(raw, encryptionSnippets)
	if result.EvidencePage != 4 {
		t.Errorf("evidence page = %d, want re-attributed page 4", result.EvidencePage)
	}
}

func TestParseJudgeResponseNotMet(t *testing.T) {
	result := ParseJudgeResponse("STATUS: Not Met", encryptionSnippets)
	if result.Status != models.StatusNotMet {
		t.Fatalf("status = %s, want NOT_MET", result.Status)
	}
	if result.Evidence != "" {
		t.Errorf("unexpected evidence on NOT_MET: %q", result.Evidence)
	}
}

func TestParseJudgeResponseMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot determine compliance from the given context.",
		"COMPLIANT: yes",
	} {
		result := ParseJudgeResponse(raw, encryptionSnippets)
		if result.Status != models.StatusUnknown {
			t.Errorf("ParseJudgeResponse(%q) status = %s, want UNKNOWN", raw, result.Status)
		}
		if result.Note == "" {
			t.Errorf("ParseJudgeResponse(%q) should carry an explanatory note", raw)
		}
	}
}

func TestParseJudgeResponseMetWithoutEvidence(t *testing.T) {
	result := ParseJudgeResponse("STATUS: Met", encryptionSnippets)
	if result.Status != models.StatusMet {
		t.Fatalf("status = %s, want MET", result.Status)
	}
	if result.Note == "" {
		t.Error("missing evidence section should be noted")
	}
}

func TestBuildJudgePromptLabelsContext(t *testing.T) {
	prompt := buildJudgePrompt("Do you encrypt data at rest?", encryptionSnippets)

	if !strings.Contains(prompt, "Do you encrypt data at rest?") {
		t.Error("prompt missing the question")
	}
	if !strings.Contains(prompt, "--- START (Filename: security.pdf, Page: 4) ---") {
		t.Error("prompt missing labeled context block")
	}
	if !strings.Contains(prompt, "STATUS: Met|Not Met") {
		t.Error("prompt missing the response format instruction")
	}
}

func TestBuildJudgePromptNoSnippets(t *testing.T) {
	prompt := buildJudgePrompt("Do you encrypt data at rest?", nil)
	if !strings.Contains(prompt, "No relevant policy documents found.") {
		t.Error("prompt should flag missing context explicitly")
	}
}

func TestBuildJudgePromptTrimsAtRuneBoundary(t *testing.T) {
	// Two-byte section signs with both offset parities guarantee one case
	// where the cap lands mid-rune unless the trim backs up to a boundary
	for _, prefix := range []string{"", "x"} {
		big := []models.PolicySnippet{{
			Filename:   "legal.pdf",
			PageNumber: 1,
			Text:       prefix + strings.Repeat("§", maxPromptContextChars),
		}}
		prompt := buildJudgePrompt("Is there a policy?", big)
		if !utf8.ValidString(prompt) {
			t.Errorf("prefix %q: prompt contains an invalid UTF-8 sequence after trimming", prefix)
		}
	}
}

func TestBuildJudgePromptCapsContextSize(t *testing.T) {
	big := []models.PolicySnippet{{
		Filename:   "huge.pdf",
		PageNumber: 1,
		Text:       strings.Repeat("policy ", 5000),
	}}
	prompt := buildJudgePrompt("Is there a policy?", big)
	if len(prompt) > maxPromptContextChars+2000 {
		t.Errorf("prompt length %d exceeds context budget by too much", len(prompt))
	}
}
