package beat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/core"
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/heat"
	"github.com/vampirenirmal/bookforge/internal/provider"
	"github.com/vampirenirmal/bookforge/internal/state"
	"github.com/vampirenirmal/bookforge/internal/validate"
)

// Engine writes chapters beat by beat.
type Engine struct {
	client      provider.Client
	store       *state.Store
	maxAttempts int
	logger      *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithMaxAttempts overrides the per-beat attempt budget.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With("component", "beat_engine")
	}
}

// NewEngine builds a beat engine over a provider client and the book
// state store.
func NewEngine(client provider.Client, store *state.Store, opts ...Option) *Engine {
	e := &Engine{
		client:      client,
		store:       store,
		maxAttempts: 3,
		logger:      slog.Default().With("component", "beat_engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateChapter plans and writes every beat of one chapter, assembles
// the result and reports aggregate metrics. A beat that fails validation
// on all attempts is accepted at its best attempt; a provider error, or a
// beat whose every attempt is safety-blocked, fails the chapter.
func (e *Engine) GenerateChapter(ctx context.Context, in ChapterInput) (*ChapterResult, error) {
	beats := PlanBeats(in.PlanText, in.TargetWords, in.Format.BeatSize)

	e.logger.Info("chapter planned",
		"book", in.BookID,
		"chapter", in.Chapter,
		"beats", len(beats),
		"target_words", in.TargetWords)

	result := &ChapterResult{}
	var assembled strings.Builder
	var history []string
	safetyBlocked := false

	for _, b := range beats {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrCancelled, err)
		}

		lastBeat := ""
		if n := len(result.Beats); n > 0 {
			lastBeat = result.Beats[n-1].Text
		}
		br, blocked, err := e.writeBeat(ctx, in, b, assembled.String(), lastBeat, history, safetyBlocked)
		if err != nil {
			return nil, err
		}
		safetyBlocked = safetyBlocked || blocked

		if assembled.Len() > 0 {
			assembled.WriteString("\n\n")
		}
		assembled.WriteString(br.Text)

		history = append(history, summarizeBeat(br.Text))
		if len(history) > 2 {
			history = history[len(history)-2:]
		}

		if br.Attempts == 1 {
			result.Metrics.PassedFirstTry++
		} else {
			result.Metrics.TotalRetries += br.Attempts - 1
		}
		result.Metrics.AvgVariance += br.Report.Metrics.SentenceVariance
		result.Metrics.AvgNameDensity += br.Report.Metrics.NameDensity
		result.Beats = append(result.Beats, *br)
	}

	if n := len(result.Beats); n > 0 {
		result.Metrics.AvgVariance /= float64(n)
		result.Metrics.AvgNameDensity /= float64(n)
	}
	result.Text = assembled.String()
	return result, nil
}

// writeBeat runs the attempt loop for one beat. Returns whether a
// safety block occurred so later beats carry the heat reduction.
func (e *Engine) writeBeat(ctx context.Context, in ChapterInput, b Beat, previous, lastBeat string, history []string, heatActive bool) (*BeatResult, bool, error) {
	th := e.thresholds(in.Format)
	blocked := heatActive

	bctx := Context{
		Anchor:        in.Anchor,
		Synopsis:      in.Synopsis,
		RecentHistory: history,
		FactSheet:     factSheet(e.store.Facts(in.BookID)),
		PreviousBeats: previous,
	}
	if in.LastChapterSummary != "" && len(history) == 0 {
		bctx.RecentHistory = []string{in.LastChapterSummary}
	}

	bctx.LogicBridge = buildLogicBridge(previous, semanticRewind(lastBeat))

	if seed := pickSeed(e.store, in.BookID, in.Format.Format, in.Chapter, b.Number, seedIntensityFor(in.Rating)); seed != "" {
		bctx.ChaosPrompt = chaosPrompt(seed)
	}
	if b.Number%2 == 0 {
		if event := pickFriction(e.store, in.BookID, in.Chapter, b.Number); event != "" {
			bctx.FrictionPrompt = frictionPrompt(event)
		}
	}
	if blocked {
		bctx.HeatPrompt = heat.ReductionPrompt(in.ContentType)
	}

	var best *BeatResult
	var correctionLog []string
	attemptsUsed := 0

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		attemptsUsed = attempt
		text, err := e.client.Generate(ctx, provider.Request{
			Role:    provider.RolePro,
			Prompt:  e.prompt(in, b, bctx),
			Safety:  safetyFor(in.Rating),
			Purpose: "beat",
		})
		if err != nil {
			if core.IsSafetyBlocked(err) {
				e.logger.Warn("beat blocked by safety filters, reducing heat",
					"book", in.BookID, "chapter", in.Chapter, "beat", b.Number, "attempt", attempt)
				blocked = true
				bctx.HeatPrompt = heat.ReductionPrompt(in.ContentType)
				continue
			}
			return nil, blocked, fmt.Errorf("generating beat %d of chapter %d: %w", b.Number, in.Chapter, err)
		}

		text = strings.TrimSpace(text)
		report := e.validateBeat(in, text, previous, th)

		// A beat that ends where it began counts as a loop even when
		// the keyword overlap stays under threshold.
		if report.IsValid && semanticRewind(text) {
			report.IsValid = false
			report.Corrections = append(report.Corrections,
				"LOOP: the beat's last sentence rewinds to its first. End somewhere new.")
		}

		correctionLog = append(correctionLog, report.Corrections...)

		if best == nil || len(report.Corrections) < len(best.Report.Corrections) {
			best = &BeatResult{Beat: b, Text: text, Attempts: attempt, Report: report}
		}

		if report.IsValid {
			best = &BeatResult{Beat: b, Text: text, Attempts: attempt, Report: report}
			break
		}

		e.logger.Debug("beat failed validation",
			"book", in.BookID,
			"chapter", in.Chapter,
			"beat", b.Number,
			"attempt", attempt,
			"corrections", len(report.Corrections))

		bctx.SurgicalFeedback = strings.Join(report.Corrections, "\n")
		bctx.LogicBridge = buildLogicBridge(previous, report.Metrics.LoopSimilarity > th.MaxLoop)
	}

	if best == nil {
		return nil, blocked, fmt.Errorf("beat %d of chapter %d: %w", b.Number, in.Chapter, core.ErrSafetyBlocked)
	}

	best.Attempts = attemptsUsed
	best.CorrectionLog = correctionLog
	return best, blocked, nil
}

// validateBeat selects the format validator.
func (e *Engine) validateBeat(in ChapterInput, text, previous string, th validate.Thresholds) validate.Report {
	switch in.Format.Format {
	case format.Screenplay:
		return validate.Screenplay(text, in.CharacterNames, previous, th)
	default:
		report := validate.Book(text, in.CharacterNames, previous, th)
		genre := validate.Genre(text, in.Genre, in.BookID, e.store)
		report.Merge(genre)
		return report
	}
}

func (e *Engine) thresholds(cfg format.Config) validate.Thresholds {
	th := validate.DefaultThresholds()
	th.MinVariance = cfg.MinVariance
	th.MaxNameDensity = cfg.MaxNameDensity
	if cfg.Format == format.Screenplay || cfg.Visual {
		th.MaxStaccato = 0.9
	}
	return th
}

func safetyFor(rating format.ContentRating) provider.SafetyLevel {
	switch rating {
	case format.RatingMature:
		return provider.SafetyPermissive
	case format.RatingChildrens:
		return provider.SafetyRestrictive
	default:
		return provider.SafetyDefault
	}
}

func seedIntensityFor(rating format.ContentRating) int {
	if rating == format.RatingChildrens {
		return 2
	}
	return 3
}
