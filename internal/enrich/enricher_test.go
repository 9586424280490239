package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseforge/course-engine/internal/domain"
	"github.com/courseforge/course-engine/internal/observability"
)

// fakeCompleter routes flashcard and quiz prompts to canned responses.
type fakeCompleter struct {
	flashCardResponse string
	flashCardErr      error
	quizResponse      string
	quizErr           error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if strings.Contains(prompt, "flashcards") {
		return f.flashCardResponse, f.flashCardErr
	}
	return f.quizResponse, f.quizErr
}

const validCards = `[
	{"term": "Consensus", "definition": "Agreement among nodes.", "difficulty": "beginner"},
	{"term": "", "definition": "dropped because term is empty"},
	{"term": "Quorum", "definition": "Minimum voting majority."}
]`

const validQuiz = `[
	{"type": "multiple-choice", "question": "What elects the leader?", "options": ["votes", "time", "luck", "size"], "correctAnswer": "votes", "explanation": "Nodes vote."},
	{"question": "", "correctAnswer": "dropped"}
]`

func testPlan() domain.ModulePlan {
	return domain.ModulePlan{
		Title:         "Consensus Basics",
		Objectives:    []string{"Understand quorum"},
		Summary:       "How nodes agree.",
		EstimatedTime: 15,
		Difficulty:    "intermediate",
	}
}

func testProcessed() domain.ProcessedText {
	return domain.ProcessedText{
		FullText: "consensus basics explained",
		Chunks:   []string{"consensus basics explained"},
		Segments: []domain.Segment{
			{Kind: domain.SegmentParagraph, Lines: []string{"Consensus basics explained in depth."}},
		},
		WordCount: 5,
	}
}

func newTestEnricher(completer *fakeCompleter) *Enricher {
	e := NewEnricher(completer, observability.NopLogger())
	e.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestEnrichBuildsFullModule(t *testing.T) {
	e := newTestEnricher(&fakeCompleter{flashCardResponse: validCards, quizResponse: validQuiz})

	mod := e.Enrich(context.Background(), testPlan(), 0, testProcessed())

	assert.Equal(t, "Consensus Basics", mod.Title)
	assert.NotEmpty(t, mod.ID)
	assert.Empty(t, mod.Error)
	assert.Contains(t, mod.Content, "Consensus basics explained")

	require.Len(t, mod.FlashCards, 2)
	card := mod.FlashCards[0]
	assert.Equal(t, "Consensus", card.Term)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, 0, card.MasteryLevel)
	assert.Equal(t, card.CreatedAt.Add(24*time.Hour), card.NextReview)

	require.Len(t, mod.Quiz, 1)
	q := mod.Quiz[0]
	assert.Equal(t, "votes", q.CorrectAnswer)
	assert.NotEmpty(t, q.ID)
	assert.False(t, q.Answered)
	assert.Nil(t, q.Correct)
}

func TestEnrichFlashCardFailureKeepsQuiz(t *testing.T) {
	e := newTestEnricher(&fakeCompleter{
		flashCardErr: errors.New("model unavailable"),
		quizResponse: validQuiz,
	})

	mod := e.Enrich(context.Background(), testPlan(), 1, testProcessed())

	assert.Empty(t, mod.FlashCards)
	assert.NotNil(t, mod.FlashCards)
	assert.Len(t, mod.Quiz, 1)
	assert.Empty(t, mod.Error)
}

func TestEnrichQuizFailureKeepsFlashCards(t *testing.T) {
	e := newTestEnricher(&fakeCompleter{
		flashCardResponse: validCards,
		quizErr:           errors.New("model unavailable"),
	})

	mod := e.Enrich(context.Background(), testPlan(), 1, testProcessed())

	assert.Len(t, mod.FlashCards, 2)
	assert.Empty(t, mod.Quiz)
	assert.NotNil(t, mod.Quiz)
}

func TestEnrichMalformedResponseDegradesToEmptyList(t *testing.T) {
	e := newTestEnricher(&fakeCompleter{
		flashCardResponse: "I cannot produce that right now.",
		quizResponse:      validQuiz,
	})

	mod := e.Enrich(context.Background(), testPlan(), 0, testProcessed())

	assert.Empty(t, mod.FlashCards)
	assert.Len(t, mod.Quiz, 1)
}

func TestEnrichAppliesDefaults(t *testing.T) {
	cards := `[{"term": "X", "definition": "Y"}]`
	quiz := `[{"question": "Q?", "correctAnswer": "true"}]`
	e := newTestEnricher(&fakeCompleter{flashCardResponse: cards, quizResponse: quiz})

	mod := e.Enrich(context.Background(), testPlan(), 0, testProcessed())

	require.Len(t, mod.FlashCards, 1)
	assert.Equal(t, "intermediate", mod.FlashCards[0].Difficulty)

	require.Len(t, mod.Quiz, 1)
	assert.Equal(t, "multiple-choice", mod.Quiz[0].Type)
	assert.Equal(t, "understand", mod.Quiz[0].BloomLevel)
}

func TestEnrichTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("consensus basics repeated endlessly ", 200)
	processed := domain.ProcessedText{
		Segments: []domain.Segment{
			{Kind: domain.SegmentParagraph, Lines: []string{long}},
		},
	}
	e := newTestEnricher(&fakeCompleter{flashCardResponse: validCards, quizResponse: validQuiz})

	mod := e.Enrich(context.Background(), testPlan(), 0, processed)

	assert.LessOrEqual(t, len(mod.Content), 3000)
	assert.NotEmpty(t, mod.Content)
}
