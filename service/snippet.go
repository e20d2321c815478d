package service

import (
	"regexp"
	"sort"
	"strings"
)

const (
	snippetsPerPage   = 3
	maxSnippetChars   = 800
	windowBeforeMatch = 400
	windowAfterMatch  = 500
)

var (
	tokenRe     = regexp.MustCompile(`[a-z0-9]+`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
)

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {},
	"in": {}, "for": {}, "on": {}, "by": {}, "with": {}, "is": {}, "are": {},
	"be": {}, "as": {}, "at": {}, "that": {}, "this": {}, "it": {}, "from": {},
}

func tokenize(text string) []string {
	return tokenRe.FindAllString(strings.ToLower(text), -1)
}

// pickSnippets selects the page-content windows most relevant to a question.
// It first looks for literal 5/4/3-word phrases from the question and cuts a
// window around the earliest hit; when no phrase matches, it falls back to
// scoring paragraphs by question-token overlap. Output order is deterministic.
func pickSnippets(content, question string) []string {
	if content == "" {
		return nil
	}

	lcContent := strings.ToLower(content)
	qTokens := tokenize(question)

	var meaningful []string
	for _, tok := range qTokens {
		if _, stop := stopwords[tok]; !stop {
			meaningful = append(meaningful, tok)
		}
	}

	var windows []string
	seen := make(map[string]struct{})
	for _, n := range []int{5, 4, 3} {
		for i := 0; i+n <= len(meaningful); i++ {
			phrase := strings.Join(meaningful[i:i+n], " ")
			if _, dup := seen[phrase]; dup {
				continue
			}
			seen[phrase] = struct{}{}

			idx := strings.Index(lcContent, phrase)
			if idx == -1 {
				continue
			}
			start := idx - windowBeforeMatch
			if start < 0 {
				start = 0
			}
			end := idx + len(phrase) + windowAfterMatch
			if end > len(content) {
				end = len(content)
			}
			windows = append(windows, content[start:end])
			if len(windows) >= snippetsPerPage {
				break
			}
		}
		if len(windows) >= snippetsPerPage {
			break
		}
	}

	if len(windows) > 0 {
		return truncateAll(windows)
	}

	// No literal phrase hit: fall back to whole paragraphs ranked by how
	// many question tokens they share
	var paragraphs []string
	for _, p := range paragraphRe.Split(content, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return nil
	}

	qSet := make(map[string]struct{}, len(qTokens))
	for _, tok := range qTokens {
		qSet[tok] = struct{}{}
	}

	score := func(p string) int {
		pSet := make(map[string]struct{})
		for _, tok := range tokenize(p) {
			pSet[tok] = struct{}{}
		}
		n := 0
		for tok := range qSet {
			if _, ok := pSet[tok]; ok {
				n++
			}
		}
		return n
	}

	scores := make([]int, len(paragraphs))
	for i, p := range paragraphs {
		scores[i] = score(p)
	}
	order := make([]int, len(paragraphs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var picked []string
	for _, i := range order {
		picked = append(picked, paragraphs[i])
		if len(picked) >= snippetsPerPage {
			break
		}
	}
	return truncateAll(picked)
}

func truncateAll(snippets []string) []string {
	out := make([]string, len(snippets))
	for i, s := range snippets {
		if len(s) > maxSnippetChars {
			s = s[:maxSnippetChars]
		}
		out[i] = s
	}
	return out
}
