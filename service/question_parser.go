package service

import (
	"regexp"
	"strings"

	"readily-backend/models"
)

// Audit questionnaires come out of PDF extraction with hard line wraps,
// answer-form boilerplate ("Yes No Citation:") and hyphenated breaks. The
// parser normalizes all of that, then accumulates lines until a line ends
// with '?' and emits the joined text as one question.
var (
	hyphenBreakRe  = regexp.MustCompile(`-\s*\n\s*`)
	lowerJoinRe    = regexp.MustCompile(`([a-z,;])\s*\n\s*([a-z])`)
	answerPrefixRe = regexp.MustCompile(`(?i)^\s*(\(\s*reference:[^)]*\)|yes\s*no\s*citation:|yes\s*no:|citation:)\s*`)
	numberedLineRe = regexp.MustCompile(`^\s*\d+\.`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	headingLineRe  = regexp.MustCompile(`^[A-Z][0-9A-Z \-/&:,.]{3,}$`)
)

// Questions shorter than this are almost always numbering artifacts
// ("See 4.1?") rather than real audit requirements
const minQuestionWords = 5

// ParseQuestions splits extracted questionnaire text into discrete audit
// questions, in source order. Deterministic for identical input. Returns an
// empty slice when no question-like lines are found; the caller decides
// whether that is a user-facing error.
func ParseQuestions(text string) []models.AuditQuestion {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = hyphenBreakRe.ReplaceAllString(text, "")
	text = lowerJoinRe.ReplaceAllString(text, "$1 $2")

	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(answerPrefixRe.ReplaceAllString(line, ""))
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	var questions []models.AuditQuestion
	var current []string
	var section *string

	for _, line := range cleaned {
		if isSectionHeading(line) {
			heading := collapseWhitespace(line)
			section = &heading
			continue
		}

		current = append(current, line)
		if strings.HasSuffix(line, "?") {
			qText := collapseWhitespace(strings.Join(current, " "))
			if len(strings.Fields(qText)) >= minQuestionWords {
				questions = append(questions, models.AuditQuestion{
					Index:   len(questions) + 1,
					Text:    qText,
					Section: section,
				})
			}
			current = nil
		} else if numberedLineRe.MatchString(line) {
			// A fresh numbered item means the accumulated lines were
			// statement text, not an unfinished question
			current = []string{line}
		}
	}

	return questions
}

// isSectionHeading reports whether a line looks like an all-caps section
// title rather than question text
func isSectionHeading(line string) bool {
	if numberedLineRe.MatchString(line) || strings.HasSuffix(line, "?") {
		return false
	}
	return headingLineRe.MatchString(line)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
