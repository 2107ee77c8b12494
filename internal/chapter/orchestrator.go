// Package chapter orchestrates one chapter end to end: beats, assembly,
// post-processing, headers, the summary call and the character-state
// update. Review-path calls never share a credential with generation.
package chapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/beat"
	"github.com/vampirenirmal/bookforge/internal/core"
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/heat"
	"github.com/vampirenirmal/bookforge/internal/llmjson"
	"github.com/vampirenirmal/bookforge/internal/outline"
	"github.com/vampirenirmal/bookforge/internal/postprocess"
	"github.com/vampirenirmal/bookforge/internal/provider"
	"github.com/vampirenirmal/bookforge/internal/state"
)

// Orchestrator drives single-chapter generation.
type Orchestrator struct {
	client provider.Client
	store  *state.Store
	beats  *beat.Engine
	logger *slog.Logger
}

// New builds an orchestrator; the beat engine is created over the same
// client and store.
func New(client provider.Client, store *state.Store, opts ...beat.Option) *Orchestrator {
	return &Orchestrator{
		client: client,
		store:  store,
		beats:  beat.NewEngine(client, store, opts...),
		logger: slog.Default().With("component", "chapter_orchestrator"),
	}
}

// WithLogger sets a custom logger.
func (o *Orchestrator) WithLogger(logger *slog.Logger) *Orchestrator {
	o.logger = logger.With("component", "chapter_orchestrator")
	return o
}

// Input is everything needed for one chapter.
type Input struct {
	BookID      string
	Plan        *outline.Plan
	Chapter     outline.Chapter
	Format      format.Config
	Rating      format.ContentRating
	Synopsis    string // story-so-far summary
	LastSummary string // previous chapter's summary
	IsLast      bool
}

// Output is one finished chapter.
type Output struct {
	Number    int
	Title     string
	Text      string
	Summary   string
	WordCount int
	Metrics   beat.ChapterMetrics
}

// Generate writes a full text chapter: beats, post-processing, cleanup,
// header, then the summary and fact-update calls on the review path.
func (o *Orchestrator) Generate(ctx context.Context, in Input) (*Output, error) {
	result, err := o.beats.GenerateChapter(ctx, beat.ChapterInput{
		BookID:             in.BookID,
		Chapter:            in.Chapter.Number,
		PlanText:           in.Chapter.Summary,
		TargetWords:        in.Chapter.TargetWords,
		Format:             in.Format,
		Genre:              in.Plan.Genre,
		Rating:             in.Rating,
		ContentType:        heat.DetectContentType(in.Chapter.Summary),
		Anchor:             in.Plan.Beginning,
		Synopsis:           in.Synopsis,
		LastChapterSummary: in.LastSummary,
		CharacterNames:     characterNames(in.Plan),
	})
	if err != nil {
		return nil, err
	}

	text := result.Text
	text, _ = o.postProcess(text, in)
	text = stripMarkers(text)
	text = stripDashes(text)

	if in.IsLast && in.Format.UseClosingMarker {
		text = strings.TrimRight(text, "\n ") + "\n\n" + in.Format.ClosingMarker
	}

	header := Header(in.Format.HeaderRule, in.Chapter)
	if header != "" {
		text = header + "\n\n" + text
	}

	summary, err := o.summarize(ctx, in, text)
	if err != nil {
		// A missing summary degrades the next chapter's context but
		// never loses an accepted chapter.
		o.logger.Warn("chapter summary failed", "book", in.BookID, "chapter", in.Chapter.Number, "error", err)
		summary = outline.TruncateWords(in.Chapter.Summary, 150)
	}

	if err := o.updateCharacterState(ctx, in, text); err != nil {
		o.logger.Warn("character state update failed", "book", in.BookID, "chapter", in.Chapter.Number, "error", err)
	}
	o.advanceNarrativeState(in, text)

	return &Output{
		Number:    in.Chapter.Number,
		Title:     in.Chapter.Title,
		Text:      text,
		Summary:   summary,
		WordCount: len(strings.Fields(text)),
		Metrics:   result.Metrics,
	}, nil
}

// GeneratePage resolves an illustrated page: the prose or dialogue is
// the outline's already-written content, passed through post-processing
// without the name-frequency stage.
func (o *Orchestrator) GeneratePage(in Input) *Output {
	text := in.Chapter.Text
	if text == "" && len(in.Chapter.Dialogue) > 0 {
		var lines []string
		for _, d := range in.Chapter.Dialogue {
			lines = append(lines, fmt.Sprintf("%s: %s", d.Character, d.Text))
		}
		text = strings.Join(lines, "\n")
	}

	cfg := postprocess.DefaultConfig()
	cfg.SkipNameFrequency = true
	cfg.BurstinessTarget = 0 // page prose is too short to measure
	text, _ = postprocess.NewPipeline(cfg).Process(text, nil)
	text = stripDashes(text)

	return &Output{
		Number:    in.Chapter.Number,
		Title:     in.Chapter.Title,
		Text:      text,
		Summary:   in.Chapter.Summary,
		WordCount: len(strings.Fields(text)),
	}
}

func (o *Orchestrator) postProcess(text string, in Input) (string, postprocess.Stats) {
	cfg := postprocess.DefaultConfig()
	if in.Format.Visual || in.Format.Format == format.Screenplay {
		cfg.SkipNameFrequency = true
	}

	var chars []postprocess.Character
	for _, c := range in.Plan.Characters {
		chars = append(chars, postprocess.Character{
			Name:    c.Name,
			Gender:  genderOf(o.store, in.BookID, c.Name),
			Epithet: epithetOf(c),
		})
	}

	return postprocess.NewPipeline(cfg).Process(text, chars)
}

// summarize asks the flash model for a ~150 word chapter summary on the
// review credential.
func (o *Orchestrator) summarize(ctx context.Context, in Input, text string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this chapter in at most 150 words. Name who did what, what changed, and what is now unresolved. Plain prose, no lists.

CHAPTER %d OF %q:
%s`, in.Chapter.Number, in.Plan.Title, text)

	summary, err := o.client.Review(ctx, provider.Request{
		Role:    provider.RoleFlash,
		Prompt:  prompt,
		Purpose: "summary",
	})
	if err != nil {
		return "", err
	}
	return outline.TruncateWords(strings.TrimSpace(summary), 150), nil
}

// factUpdatePayload is the shape the state-update call returns.
type factUpdatePayload struct {
	Characters []struct {
		Name        string   `json:"name"`
		Age         *int     `json:"age"`
		TimeJump    bool     `json:"timeJump"`
		Status      string   `json:"status"`
		Location    string   `json:"location"`
		TransitSeen bool     `json:"transitSeen"`
		Knows       []string `json:"knows"`
		Wounds      []string `json:"wounds"`
		Conditions  []string `json:"conditions"`
		LastAction  string   `json:"lastAction"`
	} `json:"characters"`
}

// updateCharacterState extracts post-chapter facts on the review path
// and applies them through the store's validated updater. Rejected
// updates are logged and dropped; the text stands.
func (o *Orchestrator) updateCharacterState(ctx context.Context, in Input, text string) error {
	if len(in.Plan.Characters) == 0 {
		return nil
	}

	prompt := fmt.Sprintf(`Extract the end-of-chapter state of each named character. Respond with a single JSON object:
{"characters": [{"name": "...", "age": null, "timeJump": false, "status": "...", "location": "...",
"transitSeen": true, "knows": ["newly learned facts"], "wounds": ["new injuries"], "conditions": [],
"lastAction": "..."}]}
Set transitSeen true only if the chapter shows the character traveling to the new location. Set age only if the story states it.

CHAPTER TEXT:
%s`, text)

	raw, err := o.client.Review(ctx, provider.Request{
		Role:    provider.RoleFlash,
		Prompt:  prompt,
		Purpose: "state-update",
	})
	if err != nil {
		return err
	}

	var payload factUpdatePayload
	if err := llmjson.ParseInto(raw, &payload); err != nil {
		return fmt.Errorf("parsing state update: %w", err)
	}

	for _, c := range payload.Characters {
		update := state.FactUpdate{
			Name:        c.Name,
			Age:         c.Age,
			TimeJump:    c.TimeJump,
			Status:      c.Status,
			Location:    c.Location,
			TransitSeen: c.TransitSeen,
			Knows:       c.Knows,
			Wounds:      c.Wounds,
			Conditions:  c.Conditions,
			LastAction:  c.LastAction,
		}
		if err := o.store.UpdateFacts(in.BookID, update); err != nil {
			var conflict *core.StateConflictError
			if errors.As(err, &conflict) {
				o.logger.Warn("state update rejected",
					"book", in.BookID, "chapter", in.Chapter.Number, "reason", conflict.Reason)
				continue
			}
			return err
		}
	}
	return nil
}

// advanceNarrativeState moves tension arcs and secret breadcrumbs
// forward based on what the chapter actually shows. Every change goes
// through the store's validated updaters; rejected updates are logged
// and the text stands.
func (o *Orchestrator) advanceNarrativeState(in Input, text string) {
	lower := strings.ToLower(text)

	for _, arc := range o.store.Arcs(in.BookID) {
		present := 0
		for _, p := range arc.Participants {
			if fields := strings.Fields(p); len(fields) > 0 &&
				strings.Contains(lower, strings.ToLower(fields[0])) {
				present++
			}
		}
		if present < 2 || arc.CurrentLevel >= arc.TargetLevel {
			continue
		}
		point := state.TensionPoint{
			Chapter: in.Chapter.Number,
			Level:   arc.CurrentLevel + 1,
			Reason:  fmt.Sprintf("both parties on the page in chapter %d", in.Chapter.Number),
		}
		if err := o.store.UpdateTension(in.BookID, arc.ID, point, in.Format.TensionCap); err != nil {
			o.logger.Warn("tension update rejected", "book", in.BookID, "arc", arc.ID, "error", err)
		}
	}

	for _, secret := range o.store.Secrets(in.BookID) {
		if secret.IsRevealed {
			continue
		}
		if overlap := truthOverlap(lower, secret.TruthSummary); overlap >= 2 {
			bc := state.Breadcrumb{
				Chapter:     in.Chapter.Number,
				Type:        "narrative",
				Obviousness: state.BreadcrumbModerate,
				ConnectedTo: secret.Type,
			}
			if err := o.store.AddBreadcrumb(in.BookID, secret.ID, bc); err != nil {
				o.logger.Warn("breadcrumb rejected", "book", in.BookID, "secret", secret.ID, "error", err)
			}
		}
		if in.IsLast {
			err := o.store.RevealSecret(in.BookID, secret.ID, in.Chapter.Number, "final chapter", in.Format.MinBreadcrumbs)
			if err != nil {
				o.logger.Warn("secret reveal rejected", "book", in.BookID, "secret", secret.ID, "error", err)
			}
		}
	}
}

// truthOverlap counts significant words of a secret's truth summary
// that appear in the chapter.
func truthOverlap(lowerText, truth string) int {
	hits := 0
	for _, w := range strings.Fields(strings.ToLower(truth)) {
		if len(w) >= 4 && strings.Contains(lowerText, w) {
			hits++
		}
	}
	return hits
}

// Header renders the chapter heading for a format rule.
func Header(rule format.HeaderRule, ch outline.Chapter) string {
	switch rule {
	case format.HeaderNumbers:
		return fmt.Sprintf("Chapter %d", ch.Number)
	case format.HeaderTitles:
		return ch.Title
	case format.HeaderPOV:
		if ch.POV != "" {
			return ch.POV
		}
		return fmt.Sprintf("Chapter %d", ch.Number)
	default:
		if ch.Title == "" {
			return fmt.Sprintf("Chapter %d", ch.Number)
		}
		return fmt.Sprintf("Chapter %d: %s", ch.Number, ch.Title)
	}
}

// stripMarkers deletes any model-emitted end-of-book markers; only the
// driver decides where the book ends.
func stripMarkers(text string) string {
	for _, marker := range []string{"THE END", "The End.", "The End", "*** END ***", "FIN."} {
		text = strings.ReplaceAll(text, marker, "")
	}
	return strings.TrimRight(text, "\n ")
}

var dashReplacer = strings.NewReplacer("—", ", ", "–", ", ")

// stripDashes applies the house style: no en or em dashes in prose.
func stripDashes(text string) string {
	text = dashReplacer.Replace(text)
	text = strings.ReplaceAll(text, " , ", ", ")
	return text
}

func characterNames(plan *outline.Plan) []string {
	names := make([]string, 0, len(plan.Characters))
	for _, c := range plan.Characters {
		names = append(names, c.Name)
	}
	return names
}

// genderOf reads the tracked gender, defaulting to unknown.
func genderOf(store *state.Store, bookID, name string) string {
	for _, f := range store.Facts(bookID) {
		if strings.EqualFold(f.Name, name) {
			return f.Gender
		}
	}
	return ""
}

// epithetOf derives a role phrase from the character description, e.g.
// "rumpled detective, grey overcoat" yields "the detective".
func epithetOf(c outline.PlanCharacter) string {
	fields := strings.FieldsFunc(strings.ToLower(c.Description), func(r rune) bool {
		return r == ',' || r == ';' || r == '.'
	})
	if len(fields) == 0 {
		return ""
	}
	words := strings.Fields(fields[0])
	if len(words) == 0 {
		return ""
	}
	return "the " + words[len(words)-1]
}
