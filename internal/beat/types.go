// Package beat generates a chapter as a sequence of small validated
// prose units. Each beat is written with full context of what came
// before, validated mathematically, and retried with surgical feedback.
package beat

import (
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/heat"
	"github.com/vampirenirmal/bookforge/internal/validate"
)

// Momentum labels what a beat must do to the story's pressure.
type Momentum string

const (
	MomentumEscalate   Momentum = "escalate"
	MomentumComplicate Momentum = "complicate"
	MomentumResolve    Momentum = "resolve"
	MomentumReveal     Momentum = "reveal"
)

// Beat is one planned unit of a chapter.
type Beat struct {
	Number      int
	Total       int
	Summary     string
	TargetWords int
	Momentum    Momentum
	Required    []string
	Forbidden   []string
}

// ChapterInput is everything the engine needs to write one chapter.
type ChapterInput struct {
	BookID             string
	Chapter            int
	PlanText           string // the outline's summary for this chapter
	TargetWords        int
	Format             format.Config
	Genre              string
	Rating             format.ContentRating
	ContentType        heat.ContentType
	Anchor             string // chapter 1 summary, the book's fixed point
	Synopsis           string
	LastChapterSummary string
	CharacterNames     []string
}

// BeatResult is one accepted beat with its provenance. CorrectionLog
// accumulates every correction raised across all attempts, including
// attempts that were later superseded.
type BeatResult struct {
	Beat          Beat
	Text          string
	Attempts      int
	Report        validate.Report
	CorrectionLog []string
}

// ChapterMetrics aggregates how hard the chapter fought back.
type ChapterMetrics struct {
	PassedFirstTry int
	TotalRetries   int
	AvgVariance    float64
	AvgNameDensity float64
}

// ChapterResult is the assembled chapter.
type ChapterResult struct {
	Text    string
	Beats   []BeatResult
	Metrics ChapterMetrics
}
