package segment

import (
	"regexp"
	"strings"

	"github.com/plagiax/plagiax/internal/models"
)

// headingPatterns recognizes section headings at the start of a line,
// optionally prefixed by a numeral and a period ("3. Results"). Title is not
// listed here: a title is a leading line that matches none of these, detected
// after all keyword hits are collected.
var headingPatterns = []struct {
	section string
	re      *regexp.Regexp
}{
	{models.SectionAbstract, regexp.MustCompile(`(?i)^(?:\d+\.\s*)?abstract`)},
	{models.SectionIntroduction, regexp.MustCompile(`(?i)^(?:\d+\.\s*)?introduction`)},
	{models.SectionMethodology, regexp.MustCompile(`(?i)^(?:\d+\.\s*)?(?:methodology|methods|materials and methods|experimental setup)`)},
	{models.SectionResults, regexp.MustCompile(`(?i)^(?:\d+\.\s*)?results`)},
	{models.SectionDiscussion, regexp.MustCompile(`(?i)^(?:\d+\.\s*)?discussion`)},
	{models.SectionConclusion, regexp.MustCompile(`(?i)^(?:\d+\.\s*)?(?:conclusion|conclusions)`)},
	{models.SectionAcknowledgements, regexp.MustCompile(`(?i)^(?:\d+\.\s*)?(?:acknowledgements|acknowledgments|acknowledgement)`)},
	{models.SectionReferences, regexp.MustCompile(`(?i)^(?:\d+\.\s*)?(?:references|bibliography|works cited|literature cited)`)},
}

type headingHit struct {
	section string
	line    int
}

// Segment splits cleaned document text into named contiguous spans. Headings
// are matched line by line; each heading opens a span that runs to the next
// heading or end of text. A span's Text is its body without the heading line,
// except for the title span, whose own line is the content. When no heading is
// recognized the whole text becomes a single "unknown" span. Never fails, even
// on empty input.
func Segment(text string) []models.Span {
	if text == "" {
		return []models.Span{{Section: models.SectionUnknown}}
	}

	lines := strings.Split(text, "\n")

	// Character offset of each line, accumulated over line lengths including
	// the stripped newline.
	starts := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		starts[i] = pos
		pos += len(line) + 1
	}

	var hits []headingHit
	firstContent := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if firstContent < 0 {
			firstContent = i
		}
		for _, p := range headingPatterns {
			if p.re.MatchString(trimmed) {
				hits = append(hits, headingHit{section: p.section, line: i})
				break
			}
		}
	}

	if len(hits) == 0 {
		return []models.Span{{
			Section: models.SectionUnknown,
			Start:   0,
			End:     len(text),
			Text:    text,
		}}
	}

	// A leading line that matched no keyword pattern is the title candidate.
	if firstContent >= 0 && firstContent < hits[0].line {
		hits = append([]headingHit{{section: models.SectionTitle, line: firstContent}}, hits...)
	}

	spans := make([]models.Span, 0, len(hits))
	for i, hit := range hits {
		start := starts[hit.line]
		end := len(text)
		if i+1 < len(hits) {
			end = starts[hits[i+1].line]
		}

		bodyStart := start
		if hit.section != models.SectionTitle {
			bodyStart = start + len(lines[hit.line]) + 1
			if bodyStart > end {
				bodyStart = end
			}
		}

		spans = append(spans, models.Span{
			Section: hit.section,
			Start:   start,
			End:     end,
			Text:    strings.TrimSpace(text[bodyStart:end]),
		})
	}

	return spans
}

// SpanMap collapses spans into a section-to-content map. A repeated heading
// tag overwrites the earlier span, keeping the last occurrence.
func SpanMap(spans []models.Span) map[string]string {
	sections := make(map[string]string, len(spans))
	for _, s := range spans {
		sections[s.Section] = s.Text
	}
	return sections
}
