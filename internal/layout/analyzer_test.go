package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/course-engine/internal/domain"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want domain.SegmentKind
	}{
		{"all caps heading", "INTRODUCTION", domain.SegmentHeading},
		{"numbered heading", "1. SYSTEM OVERVIEW", domain.SegmentHeading},
		{"heading with punctuation", "CONSENSUS & SECURITY", domain.SegmentHeading},
		{"bare number is not a heading", "2008", domain.SegmentParagraph},
		{"long caps line is a paragraph", "THIS LINE OF SHOUTING RUNS WELL PAST THE FIFTY CHARACTER LIMIT FOR HEADINGS", domain.SegmentParagraph},
		{"mixed case paragraph", "The network timestamps transactions.", domain.SegmentParagraph},
		{"four space indent is code", "    return hash(block)", domain.SegmentCode},
		{"tab indent is code", "\tfmt.Println(x)", domain.SegmentCode},
		{"inline dollar math", "the cost is $C = n \\log n$", domain.SegmentMath},
		{"latex fraction", "probability \\frac{p}{q} of success", domain.SegmentMath},
		{"display math bracket", "\\[ e = mc^2", domain.SegmentMath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLine(tt.line))
		})
	}
}

func TestAnalyzeGroupsConsecutiveLines(t *testing.T) {
	text := "ABSTRACT\n" +
		"A purely peer-to-peer version of electronic cash.\n" +
		"Digital signatures provide part of the solution.\n" +
		"\n" +
		"    if valid {\n" +
		"    \taccept(block)\n" +
		"The longest chain serves as proof.\n"

	segments := Analyze(text)
	require.Len(t, segments, 4)

	assert.Equal(t, domain.SegmentHeading, segments[0].Kind)
	assert.Equal(t, []string{"ABSTRACT"}, segments[0].Lines)

	assert.Equal(t, domain.SegmentParagraph, segments[1].Kind)
	assert.Len(t, segments[1].Lines, 2)

	assert.Equal(t, domain.SegmentCode, segments[2].Kind)
	assert.Len(t, segments[2].Lines, 2)

	assert.Equal(t, domain.SegmentParagraph, segments[3].Kind)
}

func TestAnalyzeHeadingIsAlwaysItsOwnSegment(t *testing.T) {
	segments := Analyze("OVERVIEW\nDETAILS\nbody text here")

	require.Len(t, segments, 3)
	assert.Equal(t, domain.SegmentHeading, segments[0].Kind)
	assert.Equal(t, domain.SegmentHeading, segments[1].Kind)
	assert.Equal(t, domain.SegmentParagraph, segments[2].Kind)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	assert.Empty(t, Analyze(""))
	assert.Empty(t, Analyze("\n\n   \n"))
}

func TestAnalyzeParagraphResumesAfterCode(t *testing.T) {
	segments := Analyze("first paragraph\n    code line\nsecond paragraph")

	require.Len(t, segments, 3)
	assert.Equal(t, domain.SegmentParagraph, segments[0].Kind)
	assert.Equal(t, domain.SegmentCode, segments[1].Kind)
	assert.Equal(t, domain.SegmentParagraph, segments[2].Kind)
}
