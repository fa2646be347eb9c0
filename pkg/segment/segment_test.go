package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plagiax/plagiax/internal/models"
	"github.com/plagiax/plagiax/pkg/segment"
)

func TestSegmentBasicSections(t *testing.T) {
	spans := segment.Segment("Abstract\nfoo bar\nIntroduction\nbaz qux")

	require.Len(t, spans, 2)
	assert.Equal(t, models.SectionAbstract, spans[0].Section)
	assert.Equal(t, "foo bar", spans[0].Text)
	assert.Equal(t, models.SectionIntroduction, spans[1].Section)
	assert.Equal(t, "baz qux", spans[1].Text)

	// Spans must not overlap and offsets stay in document order.
	assert.LessOrEqual(t, spans[0].End, spans[1].Start)
}

func TestSegmentNoHeadings(t *testing.T) {
	text := "just some plain text\nwith no recognizable headings at all"
	spans := segment.Segment(text)

	require.Len(t, spans, 1)
	assert.Equal(t, models.SectionUnknown, spans[0].Section)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len(text), spans[0].End)
	assert.Equal(t, text, spans[0].Text)
}

func TestSegmentEmptyInput(t *testing.T) {
	spans := segment.Segment("")

	require.Len(t, spans, 1)
	assert.Equal(t, models.SectionUnknown, spans[0].Section)
	assert.Empty(t, spans[0].Text)
}

func TestSegmentTitleDetection(t *testing.T) {
	text := "A Study of Segmentation\nAbstract\nwe segment things\n1. Introduction\nsegmenting is useful"
	spans := segment.Segment(text)

	require.Len(t, spans, 3)
	assert.Equal(t, models.SectionTitle, spans[0].Section)
	assert.Equal(t, "A Study of Segmentation", spans[0].Text)
	assert.Equal(t, models.SectionAbstract, spans[1].Section)
	assert.Equal(t, "we segment things", spans[1].Text)
	assert.Equal(t, models.SectionIntroduction, spans[2].Section)
	assert.Equal(t, "segmenting is useful", spans[2].Text)
}

func TestSegmentNumberedHeadings(t *testing.T) {
	text := "3. Results\nthe numbers went up\n4. Discussion\nwe discuss the numbers\n5. Conclusions\ndone"
	spans := segment.Segment(text)

	require.Len(t, spans, 3)
	assert.Equal(t, models.SectionResults, spans[0].Section)
	assert.Equal(t, models.SectionDiscussion, spans[1].Section)
	assert.Equal(t, models.SectionConclusion, spans[2].Section)
	assert.Equal(t, "we discuss the numbers", spans[1].Text)
}

func TestSegmentHeadingCaseInsensitive(t *testing.T) {
	spans := segment.Segment("ABSTRACT\nshouting papers\nREFERENCES\n[1] someone")

	require.Len(t, spans, 2)
	assert.Equal(t, models.SectionAbstract, spans[0].Section)
	assert.Equal(t, models.SectionReferences, spans[1].Section)
}

func TestSegmentMethodologyVariants(t *testing.T) {
	tests := []struct {
		heading string
	}{
		{"Methodology"},
		{"Methods"},
		{"Materials and Methods"},
		{"2. Experimental Setup"},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			spans := segment.Segment("Abstract\nx\n" + tt.heading + "\nwe did things")
			require.Len(t, spans, 2)
			assert.Equal(t, models.SectionMethodology, spans[1].Section)
			assert.Equal(t, "we did things", spans[1].Text)
		})
	}
}

func TestSegmentDuplicateHeadingsPreserved(t *testing.T) {
	spans := segment.Segment("Results\nfirst batch\nDiscussion\ntalk\nResults\nsecond batch")

	require.Len(t, spans, 3)
	assert.Equal(t, models.SectionResults, spans[0].Section)
	assert.Equal(t, models.SectionResults, spans[2].Section)

	// The map keeps the last occurrence.
	m := segment.SpanMap(spans)
	assert.Equal(t, "second batch", m[models.SectionResults])
	assert.Equal(t, "talk", m[models.SectionDiscussion])
}

func TestSegmentKeywordLineNotTitle(t *testing.T) {
	// A body line between headings must not open a new span.
	spans := segment.Segment("Introduction\nthis paper studies plagiarism\nand its detection\nConclusion\nit works")

	require.Len(t, spans, 2)
	assert.Equal(t, models.SectionIntroduction, spans[0].Section)
	assert.Equal(t, "this paper studies plagiarism\nand its detection", spans[0].Text)
}
