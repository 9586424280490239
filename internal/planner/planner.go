// Package planner builds the top-level course plan from processed document
// text, with a deterministic rule-based fallback when the model path fails.
package planner

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/courseforge/course-engine/internal/domain"
	"github.com/courseforge/course-engine/internal/llm"
	"github.com/courseforge/course-engine/internal/observability"
)

const (
	planTemperature = 0.2
	planTokenBudget = 2000

	// Only the leading slice of the document goes into the prompt; the plan
	// needs shape, not every word.
	promptExcerptChars = 2000

	minModuleMinutes = 5
	maxModuleMinutes = 30

	minModules = 2
	// Reading speed used by the fallback time estimate, words per minute.
	readingWPM = 250
)

// Planner produces a validated CoursePlan. Plan never fails: model or format
// errors are absorbed by the fallback path.
type Planner struct {
	completer llm.Completer
	logger    *observability.Logger
}

// NewPlanner creates a course structure planner.
func NewPlanner(completer llm.Completer, logger *observability.Logger) *Planner {
	return &Planner{
		completer: completer,
		logger:    logger.WithComponent("planner"),
	}
}

// Plan builds the course plan for a processed document.
func (p *Planner) Plan(ctx context.Context, processed domain.ProcessedText) domain.CoursePlan {
	plan, err := p.planWithModel(ctx, processed)
	if err != nil {
		p.logger.Warn().Err(err).Msg("model planning failed, using fallback plan")
		return FallbackPlan(processed)
	}
	return plan
}

func (p *Planner) planWithModel(ctx context.Context, processed domain.ProcessedText) (domain.CoursePlan, error) {
	hint := DetectDomain(processed.FullText)
	prompt := buildPlanPrompt(hint, processed.FullText)

	raw, err := p.completer.Complete(ctx, prompt, planTemperature, planTokenBudget)
	if err != nil {
		return domain.CoursePlan{}, err
	}

	var plan domain.CoursePlan
	if err := llm.Decode(raw, &plan); err != nil {
		return domain.CoursePlan{}, err
	}

	if err := validatePlan(&plan); err != nil {
		return domain.CoursePlan{}, err
	}

	return plan, nil
}

// validatePlan clamps fixable fields and rejects structurally broken plans.
func validatePlan(plan *domain.CoursePlan) error {
	if strings.TrimSpace(plan.Title) == "" {
		return domain.FormatError("plan is missing a title", nil)
	}
	if len(plan.Modules) < minModules {
		return domain.FormatError(fmt.Sprintf("plan has %d modules, need at least %d", len(plan.Modules), minModules), nil)
	}

	for i := range plan.Modules {
		m := &plan.Modules[i]
		if strings.TrimSpace(m.Title) == "" {
			return domain.FormatError(fmt.Sprintf("module %d is missing a title", i+1), nil)
		}
		if len(m.Objectives) == 0 {
			return domain.FormatError(fmt.Sprintf("module %q has no objectives", m.Title), nil)
		}
		m.EstimatedTime = clampMinutes(m.EstimatedTime)
		if m.Difficulty == "" {
			m.Difficulty = "intermediate"
		}
	}

	if plan.TechnicalLevel == "" {
		plan.TechnicalLevel = "intermediate"
	}

	return nil
}

// FallbackPlan deterministically synthesizes a two-module plan so the
// pipeline always produces a usable course.
func FallbackPlan(processed domain.ProcessedText) domain.CoursePlan {
	summary := processed.FullText
	if len(summary) > 300 {
		summary = summary[:300]
	}

	// Reading time at 250 wpm, rounded up to 5-minute steps, bounded to a
	// plausible course length, minus the fixed intro module.
	readingMinutes := int(math.Ceil(float64(processed.WordCount)/readingWPM/5)) * 5
	if readingMinutes < 10 {
		readingMinutes = 10
	}
	if readingMinutes > 60 {
		readingMinutes = 60
	}
	coreMinutes := clampMinutes(readingMinutes - 10)

	return domain.CoursePlan{
		Title:          "Technical Document Course",
		Description:    "A structured course generated from the uploaded document.",
		TechnicalLevel: "intermediate",
		KeyConcepts:    []string{},
		Modules: []domain.ModulePlan{
			{
				Title:         "Introduction & Overview",
				Objectives:    []string{"Understand the purpose and scope of the document"},
				Summary:       summary,
				EstimatedTime: 10,
				Difficulty:    "beginner",
			},
			{
				Title:         "Core Concepts",
				Objectives:    []string{"Master the key concepts presented in the document"},
				Summary:       "Deep dive into the main ideas, definitions, and arguments of the document.",
				EstimatedTime: coreMinutes,
				Difficulty:    "intermediate",
			},
		},
	}
}

func clampMinutes(minutes int) int {
	if minutes < minModuleMinutes {
		return minModuleMinutes
	}
	if minutes > maxModuleMinutes {
		return maxModuleMinutes
	}
	return minutes
}

func buildPlanPrompt(domainHint, fullText string) string {
	excerpt := fullText
	if len(excerpt) > promptExcerptChars {
		excerpt = excerpt[:promptExcerptChars]
	}

	var sb strings.Builder

	sb.WriteString("You are designing a course from a technical document.\n")
	sb.WriteString("Document domain: " + domainHint + "\n\n")
	sb.WriteString("Document excerpt:\n" + excerpt + "\n\n")
	sb.WriteString("Design a course with 3 to 7 modules covering the document in reading order.\n")
	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each module needs a title, 1-3 learning objectives, a one-paragraph summary\n")
	sb.WriteString("- estimatedTime is minutes, between 5 and 30\n")
	sb.WriteString("- difficulty is one of: beginner, intermediate, advanced\n")
	sb.WriteString("- keyConcepts lists the 5-10 most important terms in the document\n\n")
	sb.WriteString("Respond with ONLY a JSON object, no prose, in exactly this shape:\n")
	sb.WriteString(`{"title": "...", "description": "...", "technicalLevel": "...", "keyConcepts": ["..."], ` +
		`"modules": [{"title": "...", "objectives": ["..."], "summary": "...", "estimatedTime": 15, "difficulty": "..."}]}`)

	return sb.String()
}
