package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX concatenates paragraph text in document order, one paragraph
// per line. A DOCX file is a zip archive; the document body lives in
// word/document.xml as <w:p> paragraphs containing <w:t> text runs.
func extractDOCX(data []byte) (*Result, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	doc, err := openArchiveFile(archive, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	paragraphs, err := collectXMLText(doc, "p")
	if err != nil {
		return nil, fmt.Errorf("parse docx document: %w", err)
	}

	return &Result{Text: strings.Join(paragraphs, "\n")}, nil
}

// openArchiveFile opens a named entry from a zip archive.
func openArchiveFile(archive *zip.Reader, name string) (io.ReadCloser, error) {
	for _, file := range archive.File {
		if file.Name == name {
			return file.Open()
		}
	}
	return nil, fmt.Errorf("missing %s", name)
}

// collectXMLText streams the XML document and gathers the character data of
// <t> runs, grouping them by enclosing elements with the given local name
// (e.g. "p" for Word paragraphs, "sp" for PowerPoint shapes). Groups with no
// text are skipped.
func collectXMLText(r io.Reader, groupElement string) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var groups []string
	var current strings.Builder
	inText := false
	depth := 0

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case groupElement:
				depth++
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case groupElement:
				depth--
				if depth == 0 {
					if text := strings.TrimSpace(current.String()); text != "" {
						groups = append(groups, text)
					}
					current.Reset()
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && depth > 0 {
				current.Write(t)
			}
		}
	}

	// Flush an unterminated group rather than lose its text
	if text := strings.TrimSpace(current.String()); text != "" {
		groups = append(groups, text)
	}

	return groups, nil
}
