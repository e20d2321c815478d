package service

import (
	"strings"
	"testing"
)

func TestParseQuestionsNumberedList(t *testing.T) {
	text := "1. Do you encrypt data at rest?\n2. Do you log access attempts?"

	questions := ParseQuestions(text)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d: %+v", len(questions), questions)
	}
	if questions[0].Index != 1 || questions[1].Index != 2 {
		t.Fatalf("indices not sequential: %+v", questions)
	}
	if questions[0].Text != "1. Do you encrypt data at rest?" {
		t.Errorf("unexpected first question: %q", questions[0].Text)
	}
	if questions[1].Text != "2. Do you log access attempts?" {
		t.Errorf("unexpected second question: %q", questions[1].Text)
	}
}

func TestParseQuestionsPreservesSourceOrder(t *testing.T) {
	var lines []string
	for _, topic := range []string{"encryption keys", "access reviews", "incident response", "data retention"} {
		lines = append(lines, "Do you maintain documented procedures for "+topic+"?")
	}
	questions := ParseQuestions(strings.Join(lines, "\n"))

	if len(questions) != len(lines) {
		t.Fatalf("expected %d questions, got %d", len(lines), len(questions))
	}
	for i, q := range questions {
		if q.Index != i+1 {
			t.Errorf("question %d has index %d", i, q.Index)
		}
		if q.Text != lines[i] {
			t.Errorf("question %d out of order: %q", i, q.Text)
		}
	}
}

func TestParseQuestionsJoinsWrappedLines(t *testing.T) {
	text := "3. Does the policy define reten-\ntion periods\nfor audit logs?"

	questions := ParseQuestions(text)
	if len(questions) != 1 {
		t.Fatalf("expected 1 question, got %d: %+v", len(questions), questions)
	}
	want := "3. Does the policy define retention periods for audit logs?"
	if questions[0].Text != want {
		t.Errorf("got %q, want %q", questions[0].Text, want)
	}
}

func TestParseQuestionsStripsAnswerFormPrefixes(t *testing.T) {
	text := "Yes No Citation: Is access to production systems reviewed quarterly?\n" +
		"(Reference: GG.1508) Are termination checklists completed within one day?"

	questions := ParseQuestions(text)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d: %+v", len(questions), questions)
	}
	for _, q := range questions {
		lower := strings.ToLower(q.Text)
		if strings.Contains(lower, "citation:") || strings.Contains(lower, "reference:") {
			t.Errorf("answer-form prefix not stripped: %q", q.Text)
		}
	}
}

func TestParseQuestionsCapturesSectionHeading(t *testing.T) {
	text := "DATA SECURITY\n" +
		"1. Do you encrypt data at rest?\n" +
		"ACCESS CONTROL\n" +
		"2. Do you review access rights quarterly?"

	questions := ParseQuestions(text)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d: %+v", len(questions), questions)
	}
	if questions[0].Section == nil || *questions[0].Section != "DATA SECURITY" {
		t.Errorf("first question section = %v", questions[0].Section)
	}
	if questions[1].Section == nil || *questions[1].Section != "ACCESS CONTROL" {
		t.Errorf("second question section = %v", questions[1].Section)
	}
}

func TestParseQuestionsSkipsShortFragments(t *testing.T) {
	questions := ParseQuestions("See 4.1?\nWhy not?")
	if len(questions) != 0 {
		t.Fatalf("expected no questions from short fragments, got %+v", questions)
	}
}

func TestParseQuestionsEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   \n\n  ", "This document contains no questions at all."} {
		if questions := ParseQuestions(text); len(questions) != 0 {
			t.Errorf("ParseQuestions(%q) = %+v, want empty", text, questions)
		}
	}
}

func TestParseQuestionsDeterministic(t *testing.T) {
	text := "OVERVIEW\n1. Do you encrypt backups stored offsite?\n2. Do you rotate credentials on a schedule?"

	first := ParseQuestions(text)
	for i := 0; i < 10; i++ {
		again := ParseQuestions(text)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d questions, first run produced %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].Text != first[j].Text {
				t.Fatalf("run %d question %d differs: %q vs %q", i, j, again[j].Text, first[j].Text)
			}
		}
	}
}
