// Package ingestion processes uploads in-process when no external ingestion
// service is configured: extract text, clean it, chunk it, embed each chunk
// and insert the rows into the search index.
package ingestion

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	symbolRe     = regexp.MustCompile(`[^\w\s.,!?]`)
)

// ExtractPDFText concatenates the plain text of every page.
func ExtractPDFText(contents []byte) (string, error) {
	doc, err := fitz.NewFromMemory(contents)
	if err != nil {
		return "", fmt.Errorf("could not open PDF: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("could not extract text from page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString(" ")
	}
	return b.String(), nil
}

// CleanText collapses whitespace and strips symbols that carry no meaning for
// retrieval, keeping basic punctuation.
func CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = symbolRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
