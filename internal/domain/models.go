// Package domain defines the data model and error taxonomy shared across
// the course generation pipeline.
package domain

import (
	"strings"
	"time"
)

// SegmentKind classifies a contiguous run of document text.
type SegmentKind string

const (
	SegmentHeading   SegmentKind = "heading"
	SegmentParagraph SegmentKind = "paragraph"
	SegmentCode      SegmentKind = "code"
	SegmentMath      SegmentKind = "math"
)

// Segment is an ordered run of classified lines. Segments are immutable once
// produced by layout analysis and are discarded after preprocessing.
type Segment struct {
	Kind  SegmentKind
	Lines []string
}

// Text joins the segment's lines with single spaces.
func (s Segment) Text() string {
	return strings.Join(s.Lines, " ")
}

// ProcessedText is the normalized, chunked representation of one document.
// It is owned by the orchestration run that produced it and is never shared
// across requests.
type ProcessedText struct {
	FullText  string
	Chunks    []string
	WordCount int
	Segments  []Segment
}

// ModulePlan is one planned module before enrichment.
type ModulePlan struct {
	Title         string   `json:"title"`
	Objectives    []string `json:"objectives"`
	Summary       string   `json:"summary"`
	EstimatedTime int      `json:"estimatedTime"`
	Difficulty    string   `json:"difficulty"`
}

// CoursePlan is the top-level course skeleton produced by the planner.
// A valid plan has a non-empty title and at least two modules, each with at
// least one objective and an estimated time within [5,30] minutes.
type CoursePlan struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Modules        []ModulePlan `json:"modules"`
	TechnicalLevel string       `json:"technicalLevel"`
	KeyConcepts    []string     `json:"keyConcepts"`
}

// FlashCard is one generated study card. MasteryLevel and NextReview are
// generation-time defaults; the learner review subsystem mutates them later.
type FlashCard struct {
	ID           string    `json:"id"`
	Term         string    `json:"term"`
	Definition   string    `json:"definition"`
	Context      string    `json:"context,omitempty"`
	Example      string    `json:"example,omitempty"`
	Difficulty   string    `json:"difficulty"`
	Category     string    `json:"category,omitempty"`
	MasteryLevel int       `json:"masteryLevel"`
	NextReview   time.Time `json:"nextReview"`
	CreatedAt    time.Time `json:"createdAt"`
}

// QuizQuestion is one generated quiz item. The answer-tracking fields carry
// their initial state only; answering happens outside this pipeline.
type QuizQuestion struct {
	ID                  string     `json:"id"`
	Type                string     `json:"type"`
	Question            string     `json:"question"`
	Options             []string   `json:"options,omitempty"`
	CorrectAnswer       string     `json:"correctAnswer"`
	Explanation         string     `json:"explanation"`
	BloomLevel          string     `json:"bloomLevel"`
	Difficulty          string     `json:"difficulty"`
	WhitepaperReference string     `json:"whitepaperReference"`
	Answered            bool       `json:"answered"`
	Correct             *bool      `json:"correct"`
	UserAnswer          *string    `json:"userAnswer"`
	AnsweredAt          *time.Time `json:"answeredAt"`
}

// Module is an enriched module. Error is set when enrichment failed outside
// the two sub-generations; the module is still emitted so the rest of the
// course is unaffected.
type Module struct {
	ModulePlan
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	FlashCards []FlashCard    `json:"flashCards"`
	Quiz       []QuizQuestion `json:"quiz"`
	Completed  bool           `json:"completed"`
	Progress   int            `json:"progress"`
	Error      string         `json:"error,omitempty"`
}

// Course is the assembled, persisted output of one pipeline run.
type Course struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	TechnicalLevel   string    `json:"technicalLevel"`
	KeyConcepts      []string  `json:"keyConcepts"`
	Modules          []Module  `json:"modules"`
	OriginalDocument string    `json:"originalDocument"`
	CreatedAt        time.Time `json:"createdAt"`
	Progress         int       `json:"progress"`
	DocumentHash     string    `json:"documentHash"`
	WordCount        int       `json:"wordCount"`
}
