// Package enrich generates per-module study content: a relevant excerpt of
// the source document, flashcards, and quiz questions.
package enrich

import (
	"strings"

	"github.com/courseforge/course-engine/internal/domain"
)

const (
	// Structured segments carry higher-precision text, so they get the
	// stricter threshold.
	segmentThreshold = 0.3
	chunkThreshold   = 0.2

	minTokenLen = 3
)

// Score measures lexical overlap between a text unit and a query as the
// fraction of query token types that also occur in the text. Result is in
// [0,1].
func Score(text, query string) float64 {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return 0
	}

	textTokens := tokenSet(text)
	matched := 0
	for tok := range queryTokens {
		if _, ok := textTokens[tok]; ok {
			matched++
		}
	}

	denom := len(queryTokens)
	if denom < 1 {
		denom = 1
	}
	return float64(matched) / float64(denom)
}

// SelectContent concatenates, in original order, the paragraph segments
// relevant to the topic. When no paragraph qualifies it falls back to the
// coarser chunk list with a lower threshold.
func SelectContent(processed domain.ProcessedText, topic string) string {
	var parts []string

	for _, seg := range processed.Segments {
		if seg.Kind != domain.SegmentParagraph {
			continue
		}
		text := seg.Text()
		if Score(text, topic) > segmentThreshold {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		for _, chunk := range processed.Chunks {
			if Score(chunk, topic) > chunkThreshold {
				parts = append(parts, chunk)
			}
		}
	}

	return strings.Join(parts, "\n\n")
}

func tokenSet(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".,:;!?()[]{}\"'")
		if len(word) >= minTokenLen {
			tokens[word] = struct{}{}
		}
	}
	return tokens
}
