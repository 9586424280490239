package layout

import (
	"strings"

	"github.com/courseforge/course-engine/internal/domain"
)

// chunkWordLimit bounds the accumulated word count of one chunk before a
// size-triggered boundary is inserted.
const chunkWordLimit = 300

// Preprocess flattens segments into normalized full text and semantically
// bounded chunks. Chunk order matches segment order; downstream relevance
// scoring depends on that.
func Preprocess(segments []domain.Segment) domain.ProcessedText {
	var full strings.Builder
	var chunks []string
	var chunk strings.Builder
	chunkWords := 0

	flush := func() {
		if chunk.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(chunk.String()))
			chunk.Reset()
			chunkWords = 0
		}
	}

	for _, seg := range segments {
		text := seg.Text()

		if full.Len() > 0 {
			full.WriteString(" ")
		}
		full.WriteString(text)

		if seg.Kind == domain.SegmentHeading || chunkWords > chunkWordLimit {
			flush()
		}

		if chunk.Len() > 0 {
			chunk.WriteString(" ")
		}
		chunk.WriteString(text)
		chunkWords += len(strings.Fields(text))
	}
	flush()

	normalized := Normalize(full.String())

	return domain.ProcessedText{
		FullText:  normalized,
		Chunks:    chunks,
		WordCount: len(strings.Fields(normalized)),
		Segments:  segments,
	}
}

// Normalize collapses runs of whitespace to single spaces and trims.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
