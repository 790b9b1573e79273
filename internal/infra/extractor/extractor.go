// Package extractor converts uploaded documents into plain text.
// It supports PDF, DOCX, PPTX, HTML, and plain text uploads; format-specific
// parsing lives in one file per format. Extraction is purely in-memory and
// leaves no temporary files behind on any exit path.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"summarly/internal/domain/entity"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
	FormatHTML Format = "html"
	FormatTXT  Format = "txt"
)

// contentTypes maps declared MIME types to formats. Extension fallback covers
// clients that upload with a generic content type.
var contentTypes = map[string]Format{
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   FormatDOCX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": FormatPPTX,
	"text/html":  FormatHTML,
	"text/plain": FormatTXT,
}

// DetectFormat determines the document format from the declared content type,
// falling back to the filename extension. Returns entity.ErrUnsupportedFormat
// when neither identifies a supported format.
func DetectFormat(filename, contentType string) (Format, error) {
	// Content type may carry parameters ("text/html; charset=utf-8")
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	if format, ok := contentTypes[strings.TrimSpace(strings.ToLower(contentType))]; ok {
		return format, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".pptx":
		return FormatPPTX, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".txt", ".text":
		return FormatTXT, nil
	default:
		return "", fmt.Errorf("%w: %q (%s)", entity.ErrUnsupportedFormat, filename, contentType)
	}
}

// Result contains the extracted text and basic metadata.
type Result struct {
	// Text is the extracted plain text, page/paragraph/shape sections
	// joined with newlines. Not yet normalized.
	Text string

	// Pages is the page or slide count where the format has a notion of
	// pages; zero otherwise.
	Pages int
}

// Config holds extractor limits.
type Config struct {
	// MaxFileSize is the maximum accepted upload size in bytes.
	// Inputs over this limit are rejected before any parsing happens.
	MaxFileSize int64
}

// DefaultConfig returns the default extractor configuration (10 MB cap).
func DefaultConfig() Config {
	return Config{MaxFileSize: 10 << 20}
}

// Extractor dispatches uploads to the format-specific parsers.
type Extractor struct {
	cfg Config
}

// New creates an Extractor with the given configuration.
func New(cfg Config) *Extractor {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultConfig().MaxFileSize
	}
	return &Extractor{cfg: cfg}
}

// Extract converts the document bytes into plain text.
// The size gate runs before any format parsing so oversized payloads fail
// fast with entity.ErrPayloadTooLarge and never reach a parser.
func (e *Extractor) Extract(ctx context.Context, data []byte, format Format) (*Result, error) {
	if int64(len(data)) > e.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", entity.ErrPayloadTooLarge, len(data), e.cfg.MaxFileSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		return extractPDF(data)
	case FormatDOCX:
		return extractDOCX(data)
	case FormatPPTX:
		return extractPPTX(data)
	case FormatHTML:
		return extractHTML(data)
	case FormatTXT:
		return &Result{Text: string(data)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}
