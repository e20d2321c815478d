// Package pdftext converts PDF documents into page-indexed plain text.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned by ExtractFile when a PDF parses cleanly but
// contains no extractable text on any page
var ErrNoText = errors.New("no extractable text in PDF")

// Page holds the extracted plain text of a single PDF page
type Page struct {
	Number int
	Text   string
}

// Extract parses PDF bytes and returns one Page per document page, in
// order. Pages without extractable text are returned with empty Text so
// page numbering stays aligned with the source document.
func Extract(data []byte) (pages []Page, err error) {
	// The underlying parser panics on some malformed files; convert
	// that into a normal error so one bad upload cannot take the
	// request down.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	total := reader.NumPage()
	pages = make([]Page, 0, total)
	for num := 1; num <= total; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: num})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the rest
			// of the document
			pages = append(pages, Page{Number: num})
			continue
		}
		pages = append(pages, Page{Number: num, Text: strings.TrimSpace(text)})
	}

	return pages, nil
}

// ExtractFile reads a PDF from disk and returns its non-empty pages.
// Used by the database population utility, which indexes one row per page.
func ExtractFile(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	pages, err := Extract(data)
	if err != nil {
		return nil, err
	}

	withText := make([]Page, 0, len(pages))
	for _, p := range pages {
		if p.Text != "" {
			withText = append(withText, p)
		}
	}
	if len(withText) == 0 {
		return nil, ErrNoText
	}
	return withText, nil
}

// JoinPages concatenates page text into a single string for downstream
// question parsing
func JoinPages(pages []Page) string {
	var builder strings.Builder
	for _, p := range pages {
		if p.Text == "" {
			continue
		}
		builder.WriteString(p.Text)
		builder.WriteString("\n")
	}
	return builder.String()
}
