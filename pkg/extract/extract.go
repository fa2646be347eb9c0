// Package extract acquires raw document bytes and turns them into cleaned
// text ready for segmentation.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionError marks an acquisition-layer failure. These are fatal to the
// whole request, unlike per-reference provider failures.
type ExtractionError struct {
	Stage string
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed during %s: %v", e.Stage, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

var (
	multiNewlineRe = regexp.MustCompile(`\n\s*\n+`)
	spacesRe       = regexp.MustCompile(`[ \t]+`)
	pageBarRe      = regexp.MustCompile(`(?i)\b\d+\s*\|\s*P a g e\b`)
	pageOfRe       = regexp.MustCompile(`(?i)\bpage\s*\d+\s*of\s*\d+\b`)
	watermarkRe    = regexp.MustCompile(`(?i)\b(?:confidential|draft|internal use only)\b`)
)

// PDFExtractor pulls plain text out of PDF bytes, page by page.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractCleanText extracts all page text and runs the cleanup pass. Fails
// with an ExtractionError on unreadable documents.
func (e *PDFExtractor) ExtractCleanText(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", &ExtractionError{Stage: "parse", Err: err}
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Stage: "parse", Err: fmt.Errorf("page %d: %w", i, err)}
		}

		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return CleanText(builder.String()), nil
}

// ExtractPlainText is the passthrough extractor for already-textual input.
func ExtractPlainText(raw []byte) string {
	return CleanText(string(raw))
}

// CleanText normalizes extracted text: strips page-number artifacts and
// header/footer watermarks, collapses runs of spaces and blank lines, trims.
// Newlines between lines are preserved because the segmenter scans line by
// line.
func CleanText(text string) string {
	text = pageBarRe.ReplaceAllString(text, "")
	text = pageOfRe.ReplaceAllString(text, "")
	text = watermarkRe.ReplaceAllString(text, "")
	text = spacesRe.ReplaceAllString(text, " ")
	text = multiNewlineRe.ReplaceAllString(text, "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
