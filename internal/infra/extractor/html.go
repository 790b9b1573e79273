package extractor

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// extractHTML returns the visible text of an HTML document.
// Script, style, and other non-content elements are dropped; the whole
// document body is kept (no main-content heuristics, an uploaded document
// is summarized in full).
func extractHTML(data []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return &Result{Text: doc.Text()}, nil
	}
	return &Result{Text: body.Text()}, nil
}
