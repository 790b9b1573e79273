package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates per-page text in page order, one page per line.
// Pages yielding no extractable text (scanned images, empty pages) contribute
// nothing; that is not an error.
func extractPDF(data []byte) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	totalPages := reader.NumPage()
	var pages []string
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page does not fail the document
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pages = append(pages, pageText)
	}

	return &Result{
		Text:  strings.Join(pages, "\n"),
		Pages: totalPages,
	}, nil
}
