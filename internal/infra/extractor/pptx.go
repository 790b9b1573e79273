package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// slideName matches slide entries inside a PPTX archive and captures the
// slide number used for ordering.
var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX walks every slide in order and, for every shape on the slide
// that carries text, concatenates the shape text one shape per line. Shapes
// without text are skipped. A PPTX file is a zip archive with one XML file
// per slide under ppt/slides/; shapes are <p:sp> elements whose text runs
// are <a:t>.
func extractPPTX(data []byte) (*Result, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pptx archive: %w", err)
	}

	type slide struct {
		number int
		name   string
	}
	var slides []slide
	for _, file := range archive.File {
		if m := slideName.FindStringSubmatch(file.Name); m != nil {
			number, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{number: number, name: file.Name})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })

	var sections []string
	for _, s := range slides {
		entry, err := openArchiveFile(archive, s.name)
		if err != nil {
			return nil, fmt.Errorf("pptx: %w", err)
		}
		shapes, err := collectXMLText(entry, "sp")
		_ = entry.Close()
		if err != nil {
			return nil, fmt.Errorf("parse slide %d: %w", s.number, err)
		}
		sections = append(sections, shapes...)
	}

	return &Result{
		Text:  strings.Join(sections, "\n"),
		Pages: len(slides),
	}, nil
}
