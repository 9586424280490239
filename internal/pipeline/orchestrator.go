// Package pipeline drives one document through extraction, planning,
// enrichment, and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/course-engine/internal/cache"
	"github.com/courseforge/course-engine/internal/domain"
	"github.com/courseforge/course-engine/internal/layout"
	"github.com/courseforge/course-engine/internal/observability"
)

const defaultBatchSize = 3

// Document is the resolved inbound source. Release is invoked exactly once
// per request, on every exit path.
type Document interface {
	Text() string
	Filename() string
	Release() error
}

// Planner builds the course plan. Plan never fails; model failures are
// absorbed by its fallback path.
type Planner interface {
	Plan(ctx context.Context, processed domain.ProcessedText) domain.CoursePlan
}

// Enricher turns one planned module into a full module. Enrich never fails;
// it degrades to an empty or error-flagged module.
type Enricher interface {
	Enrich(ctx context.Context, plan domain.ModulePlan, index int, processed domain.ProcessedText) domain.Module
}

// Orchestrator is the top-level pipeline driver.
type Orchestrator struct {
	planner   Planner
	enricher  Enricher
	store     cache.CourseStore
	logger    *observability.Logger
	batchSize int
	now       func() time.Time
}

// NewOrchestrator creates a pipeline orchestrator. batchSize bounds how many
// modules are enriched concurrently; values below 1 fall back to the default.
func NewOrchestrator(planner Planner, enricher Enricher, store cache.CourseStore, logger *observability.Logger, batchSize int) *Orchestrator {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}
	return &Orchestrator{
		planner:   planner,
		enricher:  enricher,
		store:     store,
		logger:    logger.WithComponent("pipeline"),
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Process runs the full document-to-course pipeline. A cache hit on the
// document fingerprint returns the cached course without a single model
// call. The source artifact is released on every exit path.
func (o *Orchestrator) Process(ctx context.Context, doc Document, userID string) (course *domain.Course, err error) {
	defer func() {
		if r := recover(); r != nil {
			course = nil
			err = domain.PipelineError(fmt.Sprintf("pipeline panicked: %v", r), nil)
		}
		if relErr := doc.Release(); relErr != nil {
			o.logger.Warn().Err(relErr).Str("document", doc.Filename()).Msg("failed to release source artifact")
		}
	}()

	started := o.now()

	if strings.TrimSpace(doc.Text()) == "" {
		return nil, domain.ExtractionError("document contains no extractable text", nil)
	}

	segments := layout.Analyze(doc.Text())
	processed := layout.Preprocess(segments)
	hash := layout.Fingerprint(processed.FullText)

	log := o.logger.Info().
		Str("document", doc.Filename()).
		Str("hash", hash[:12]).
		Int("words", processed.WordCount)

	if cached, err := o.store.Get(ctx, hash); err == nil {
		log.Bool("cache_hit", true).Msg("returning cached course")
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		o.logger.Warn().Err(err).Msg("cache read failed, recomputing")
	}

	log.Bool("cache_hit", false).Msg("processing document")

	plan := o.planner.Plan(ctx, processed)
	modules := o.enrichAll(ctx, plan.Modules, processed)

	course = &domain.Course{
		ID:               uuid.NewString(),
		Title:            plan.Title,
		Description:      plan.Description,
		TechnicalLevel:   plan.TechnicalLevel,
		KeyConcepts:      plan.KeyConcepts,
		Modules:          modules,
		OriginalDocument: doc.Filename(),
		CreatedAt:        o.now(),
		DocumentHash:     hash,
		WordCount:        processed.WordCount,
	}

	if err := o.store.Put(ctx, cache.CourseRecord{
		ID:           course.ID,
		UserID:       userID,
		Filename:     course.OriginalDocument,
		DocumentHash: hash,
		Course:       course,
	}); err != nil {
		o.logger.Warn().Err(err).Msg("cache write failed, continuing")
	}

	o.logger.Info().
		Str("course", course.ID).
		Int("modules", len(course.Modules)).
		Dur("took", o.now().Sub(started)).
		Msg("course generated")

	return course, nil
}

// enrichAll enriches modules in fixed-size batches. Within a batch all
// modules run concurrently; batch N+1 does not begin until batch N has
// settled. Output order always matches plan order.
func (o *Orchestrator) enrichAll(ctx context.Context, plans []domain.ModulePlan, processed domain.ProcessedText) []domain.Module {
	modules := make([]domain.Module, len(plans))

	for start := 0; start < len(plans); start += o.batchSize {
		end := min(start+o.batchSize, len(plans))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				modules[i] = o.enricher.Enrich(ctx, plans[i], i, processed)
			}(i)
		}
		wg.Wait()
	}

	return modules
}
