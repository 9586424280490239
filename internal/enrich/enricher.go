package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/course-engine/internal/domain"
	"github.com/courseforge/course-engine/internal/llm"
	"github.com/courseforge/course-engine/internal/observability"
)

const (
	generationTemperature = 0.1
	flashCardTokenBudget  = 1500
	quizTokenBudget       = 2500

	flashCardCount = 8
	quizCount      = 5

	// First review is due a day after generation.
	initialReviewDelay = 24 * time.Hour

	maxExcerptChars = 3000
)

// Enricher turns one planned module into a full module with flashcards and
// quiz questions. Failures degrade: a failed sub-generation yields an empty
// list, and any unexpected failure yields an error-flagged module, so one
// bad module never sinks the course.
type Enricher struct {
	completer llm.Completer
	logger    *observability.Logger
	now       func() time.Time
}

// NewEnricher creates a module enricher.
func NewEnricher(completer llm.Completer, logger *observability.Logger) *Enricher {
	return &Enricher{
		completer: completer,
		logger:    logger.WithComponent("enrich"),
		now:       time.Now,
	}
}

// Enrich selects relevant content for the module and generates flashcards
// and quiz questions with two concurrent completion calls. Neither
// sub-generation observes the other's result.
func (e *Enricher) Enrich(ctx context.Context, plan domain.ModulePlan, index int, processed domain.ProcessedText) (mod domain.Module) {
	mod = domain.Module{
		ModulePlan: plan,
		ID:         uuid.NewString(),
		FlashCards: []domain.FlashCard{},
		Quiz:       []domain.QuizQuestion{},
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Int("module", index).Msgf("module enrichment panicked: %v", r)
			mod.Content = ""
			mod.FlashCards = []domain.FlashCard{}
			mod.Quiz = []domain.QuizQuestion{}
			mod.Error = fmt.Sprintf("module enrichment failed: %v", r)
		}
	}()

	content := SelectContent(processed, plan.Title)
	if len(content) > maxExcerptChars {
		content = content[:maxExcerptChars]
	}
	mod.Content = content

	var (
		wg       sync.WaitGroup
		cards    []domain.FlashCard
		cardsErr error
		quiz     []domain.QuizQuestion
		quizErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cards, cardsErr = e.generateFlashCards(ctx, plan, content)
	}()
	go func() {
		defer wg.Done()
		quiz, quizErr = e.generateQuiz(ctx, plan, content)
	}()
	wg.Wait()

	if cardsErr != nil {
		e.logger.Warn().Int("module", index).Str("title", plan.Title).Err(cardsErr).
			Msg("flashcard generation failed, emitting empty list")
	} else {
		mod.FlashCards = cards
	}

	if quizErr != nil {
		e.logger.Warn().Int("module", index).Str("title", plan.Title).Err(quizErr).
			Msg("quiz generation failed, emitting empty list")
	} else {
		mod.Quiz = quiz
	}

	return mod
}

type flashCardPayload struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Context    string `json:"context"`
	Example    string `json:"example"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

func (e *Enricher) generateFlashCards(ctx context.Context, plan domain.ModulePlan, content string) ([]domain.FlashCard, error) {
	raw, err := e.completer.Complete(ctx, buildFlashCardPrompt(plan, content), generationTemperature, flashCardTokenBudget)
	if err != nil {
		return nil, err
	}

	var payloads []flashCardPayload
	if err := llm.Decode(raw, &payloads); err != nil {
		return nil, err
	}

	now := e.now()
	cards := make([]domain.FlashCard, 0, len(payloads))
	for _, p := range payloads {
		if p.Term == "" || p.Definition == "" {
			continue
		}
		cards = append(cards, domain.FlashCard{
			ID:           uuid.NewString(),
			Term:         p.Term,
			Definition:   p.Definition,
			Context:      p.Context,
			Example:      p.Example,
			Difficulty:   defaultString(p.Difficulty, "intermediate"),
			Category:     p.Category,
			MasteryLevel: 0,
			NextReview:   now.Add(initialReviewDelay),
			CreatedAt:    now,
		})
	}

	return cards, nil
}

type quizPayload struct {
	Type                string   `json:"type"`
	Question            string   `json:"question"`
	Options             []string `json:"options"`
	CorrectAnswer       string   `json:"correctAnswer"`
	Explanation         string   `json:"explanation"`
	BloomLevel          string   `json:"bloomLevel"`
	Difficulty          string   `json:"difficulty"`
	WhitepaperReference string   `json:"whitepaperReference"`
}

func (e *Enricher) generateQuiz(ctx context.Context, plan domain.ModulePlan, content string) ([]domain.QuizQuestion, error) {
	raw, err := e.completer.Complete(ctx, buildQuizPrompt(plan, content), generationTemperature, quizTokenBudget)
	if err != nil {
		return nil, err
	}

	var payloads []quizPayload
	if err := llm.Decode(raw, &payloads); err != nil {
		return nil, err
	}

	questions := make([]domain.QuizQuestion, 0, len(payloads))
	for _, p := range payloads {
		if p.Question == "" {
			continue
		}
		questions = append(questions, domain.QuizQuestion{
			ID:                  uuid.NewString(),
			Type:                defaultString(p.Type, "multiple-choice"),
			Question:            p.Question,
			Options:             p.Options,
			CorrectAnswer:       p.CorrectAnswer,
			Explanation:         p.Explanation,
			BloomLevel:          defaultString(p.BloomLevel, "understand"),
			Difficulty:          defaultString(p.Difficulty, "intermediate"),
			WhitepaperReference: p.WhitepaperReference,
			Answered:            false,
		})
	}

	return questions, nil
}

func buildFlashCardPrompt(plan domain.ModulePlan, content string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create %d flashcards for a course module titled %q.\n\n", flashCardCount, plan.Title))
	sb.WriteString("Module summary: " + plan.Summary + "\n\n")
	if content != "" {
		sb.WriteString("Source material:\n" + content + "\n\n")
	}
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each flashcard defines one term or concept from the material\n")
	sb.WriteString("- Definitions must be self-contained and at most two sentences\n")
	sb.WriteString("- Include context and a concrete example where the material provides one\n")
	sb.WriteString("- difficulty is one of: beginner, intermediate, advanced\n\n")
	sb.WriteString("Respond with ONLY a JSON array, no prose, where each element is:\n")
	sb.WriteString(`{"term": "...", "definition": "...", "context": "...", "example": "...", "difficulty": "...", "category": "..."}`)

	return sb.String()
}

func buildQuizPrompt(plan domain.ModulePlan, content string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create %d quiz questions for a course module titled %q.\n\n", quizCount, plan.Title))
	sb.WriteString("Module summary: " + plan.Summary + "\n\n")
	if content != "" {
		sb.WriteString("Source material:\n" + content + "\n\n")
	}
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Mix multiple-choice and true-false questions\n")
	sb.WriteString("- Multiple-choice questions have exactly 4 options; incorrect options must be plausible\n")
	sb.WriteString("- correctAnswer is the exact text of the correct option (or \"true\"/\"false\")\n")
	sb.WriteString("- Provide a brief explanation for each answer\n")
	sb.WriteString("- bloomLevel is one of: remember, understand, apply, analyze\n")
	sb.WriteString("- whitepaperReference names the part of the source material the question tests\n\n")
	sb.WriteString("Respond with ONLY a JSON array, no prose, where each element is:\n")
	sb.WriteString(`{"type": "multiple-choice", "question": "...", "options": ["..."], "correctAnswer": "...", "explanation": "...", "bloomLevel": "...", "difficulty": "...", "whitepaperReference": "..."}`)

	return sb.String()
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
