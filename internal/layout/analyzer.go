// Package layout turns raw extracted document text into typed segments and
// a normalized, chunked representation suitable for planning and enrichment.
package layout

import (
	"regexp"
	"strings"

	"github.com/courseforge/course-engine/internal/domain"
)

const headingMaxLen = 50

// headingRe matches short all-caps lines with digits and light punctuation,
// the way section titles survive PDF text extraction.
var headingRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 .,:;()&/'-]*$`)

var mathMarkers = []string{"$", `\[`, `\begin{`, `\frac`, `\sum`}

// Analyze iterates lines and groups them into classified segments. A segment
// boundary is inserted whenever the classification changes; every heading is
// its own segment. Empty input yields an empty sequence.
func Analyze(text string) []domain.Segment {
	var segments []domain.Segment
	open := -1 // index of the segment currently accumulating lines

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		kind := ClassifyLine(raw)
		if kind == domain.SegmentHeading {
			segments = append(segments, domain.Segment{Kind: kind, Lines: []string{line}})
			open = -1
			continue
		}

		if open >= 0 && segments[open].Kind == kind {
			segments[open].Lines = append(segments[open].Lines, line)
			continue
		}

		segments = append(segments, domain.Segment{Kind: kind, Lines: []string{line}})
		open = len(segments) - 1
	}

	return segments
}

// ClassifyLine classifies one raw (untrimmed) line. Indentation is part of
// the signal, so the line must not be trimmed before calling.
func ClassifyLine(raw string) domain.SegmentKind {
	line := strings.TrimSpace(raw)

	if isHeading(line) {
		return domain.SegmentHeading
	}

	if strings.HasPrefix(raw, "    ") || strings.HasPrefix(raw, "\t") {
		return domain.SegmentCode
	}

	for _, marker := range mathMarkers {
		if strings.Contains(line, marker) {
			return domain.SegmentMath
		}
	}

	return domain.SegmentParagraph
}

func isHeading(line string) bool {
	if line == "" || len(line) >= headingMaxLen {
		return false
	}
	if !headingRe.MatchString(line) {
		return false
	}
	// Require at least one letter so bare numbers and dates don't qualify.
	return strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
}
