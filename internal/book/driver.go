package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vampirenirmal/bookforge/internal/chapter"
	"github.com/vampirenirmal/bookforge/internal/core"
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/illustration"
	"github.com/vampirenirmal/bookforge/internal/llmjson"
	"github.com/vampirenirmal/bookforge/internal/outline"
	"github.com/vampirenirmal/bookforge/internal/provider"
	"github.com/vampirenirmal/bookforge/internal/state"
)

const (
	maxIdeaWords        = 1000
	synopsisCapWords    = 1200
	illustrationWorkers = 4
)

// Illustrator is the external illustration interface, consumed as a
// black box.
type Illustrator interface {
	Generate(ctx context.Context, req illustration.Request, chapterTitle string) (*illustration.Image, error)
}

// Driver runs the top-level state machine for one book at a time.
// Independent books may run on independent Driver calls concurrently;
// all shared state lives behind the state store and the storage seam.
type Driver struct {
	client      provider.Client
	states      *state.Store
	storage     Storage
	outliner    *outline.Builder
	chapters    *chapter.Orchestrator
	illustrator Illustrator
	logger      *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithIllustrator attaches the illustration service client.
func WithIllustrator(i Illustrator) Option {
	return func(d *Driver) {
		d.illustrator = i
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger.With("component", "book_driver")
	}
}

// NewDriver wires a driver over the provider client, state store and
// persistence seam.
func NewDriver(client provider.Client, states *state.Store, storage Storage, opts ...Option) *Driver {
	d := &Driver{
		client:   client,
		states:   states,
		storage:  storage,
		outliner: outline.NewBuilder(client),
		chapters: chapter.New(client, states),
		logger:   slog.Default().With("component", "book_driver"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateRequest describes a new book.
type CreateRequest struct {
	Idea          string
	BookType      format.BookType
	Format        format.Format
	DialogueStyle format.DialogueStyle
	Preset        string
	Rating        format.ContentRating
}

// Create persists a pending book and returns it. Generation starts
// separately via Run.
func (d *Driver) Create(req CreateRequest) (*Book, error) {
	if strings.TrimSpace(req.Idea) == "" {
		return nil, fmt.Errorf("a book needs an idea")
	}
	if !format.Valid(req.Format) {
		req.Format = format.Novel
	}
	if req.Rating == "" {
		req.Rating = format.RatingGeneral
	}

	b := &Book{
		ID:            uuid.NewString(),
		BookType:      req.BookType,
		Format:        req.Format,
		DialogueStyle: req.DialogueStyle,
		Preset:        req.Preset,
		Rating:        req.Rating,
		Status:        StatusPending,
		OriginalIdea:  outline.TruncateWords(req.Idea, maxIdeaWords),
	}
	if err := d.storage.SaveBook(b); err != nil {
		return nil, fmt.Errorf("persisting new book: %w", err)
	}
	return b, nil
}

// Run drives a pending book to completion or failure. It is the only
// writer of the book record while it runs; chapter i+1 never starts
// before chapter i is persisted and summarized.
func (d *Driver) Run(ctx context.Context, bookID string) error {
	b, err := d.storage.LoadBook(bookID)
	if err != nil {
		return err
	}
	if b.Status != StatusPending {
		return fmt.Errorf("book %s is %s, not pending", bookID, b.Status)
	}

	if err := d.outlinePhase(ctx, b); err != nil {
		return d.fail(b, err)
	}

	if err := d.generatePhase(ctx, b); err != nil {
		if errors.Is(err, core.ErrCancelled) {
			d.logger.Info("generation cancelled", "book", b.ID)
			return nil
		}
		return d.fail(b, err)
	}

	b.Status = StatusCompleted
	if err := d.storage.SaveBook(b); err != nil {
		return fmt.Errorf("persisting completed book: %w", err)
	}
	d.logger.Info("book completed", "book", b.ID, "chapters", b.CurrentChapter, "words", b.TotalWords)

	// The cover is a bonus; its absence never blocks completion.
	d.generateCover(ctx, b)
	return nil
}

// outlinePhase covers pending -> outlining -> ready to generate.
func (d *Driver) outlinePhase(ctx context.Context, b *Book) error {
	b.Status = StatusOutlining
	if err := d.storage.SaveBook(b); err != nil {
		return err
	}

	plan, err := d.outliner.BuildPlan(ctx, outline.PlanRequest{
		Idea:     b.OriginalIdea,
		BookType: b.BookType,
		Format:   b.Format,
		Rating:   b.Rating,
	})
	if err != nil {
		return fmt.Errorf("expanding idea: %w", err)
	}

	b.Plan = plan
	b.Title = plan.Title
	b.Genre = plan.Genre
	b.TargetWords = plan.TargetWords
	b.TargetChapters = plan.TargetChapters

	var o *outline.Outline
	if b.IsVisual() {
		o, err = d.outliner.BuildVisualOutline(ctx, plan, b.Format, b.DialogueStyle)
	} else {
		o, err = d.outliner.BuildOutline(ctx, plan, b.Format)
	}
	if err != nil {
		return fmt.Errorf("building outline: %w", err)
	}
	b.Outline = o
	b.TargetChapters = len(o.Chapters)

	d.seedCharacterState(b)

	if b.IsVisual() {
		d.buildVisualGuides(ctx, b)
	}

	return d.storage.SaveBook(b)
}

// seedCharacterState installs the plan's characters into the runtime
// state store with a voice profile each, opens the book's primary
// tension arc and, for secretive genres, registers the central secret
// the ending resolves.
func (d *Driver) seedCharacterState(b *Book) {
	d.states.GetOrCreate(b.ID)

	facts := make([]state.CharacterFact, 0, len(b.Plan.Characters))
	for _, c := range b.Plan.Characters {
		facts = append(facts, state.CharacterFact{
			Name:   c.Name,
			Traits: strings.Split(c.Description, ", "),
		})
		d.states.SetVoice(b.ID, voiceProfileFor(b, c))
	}
	d.states.SeedFacts(b.ID, facts)

	if len(b.Plan.Characters) >= 2 {
		participants := []string{b.Plan.Characters[0].Name, b.Plan.Characters[1].Name}
		d.states.RegisterArc(b.ID, arcTypeFor(b.Genre), participants, 8)
	}

	switch genreClass(b.Genre) {
	case "mystery", "thriller", "crime", "horror":
		d.states.RegisterSecret(b.ID, state.Secret{
			Type:         "central",
			Description:  "what the ending reveals",
			TruthSummary: b.Plan.Ending,
			Stakes:       b.Plan.Premise,
			SetupChapter: 1,
		})
	}
}

// voiceProfileFor fixes a character's dialogue rules for the whole
// book: bubble formats cap speeches at bubble length, children's
// formats force the simple vocabulary tier, and internal monologue is
// reserved for prose formats.
func voiceProfileFor(b *Book, c outline.PlanCharacter) state.VoiceProfile {
	profile := state.VoiceProfile{
		Name:             c.Name,
		Fingerprint:      c.Description,
		MaxDialogueWords: 40,
		VocabTier:        "standard",
		AllowMonologue:   true,
	}

	switch b.Format {
	case format.Children, format.PictureBook:
		profile.MaxDialogueWords = 15
		profile.VocabTier = "simple"
		profile.AllowMonologue = false
	case format.Comic, format.AdultComic:
		profile.MaxDialogueWords = 25
		profile.AllowMonologue = false
	case format.Screenplay:
		profile.MaxDialogueWords = 30
	}

	if b.DialogueStyle == format.Bubbles && profile.MaxDialogueWords > 25 {
		profile.MaxDialogueWords = 25
	}
	if b.Rating == format.RatingChildrens {
		profile.VocabTier = "simple"
	}
	return profile
}

func arcTypeFor(genre string) state.ArcType {
	switch genreClass(genre) {
	case "romance":
		return state.ArcRomantic
	case "mystery", "crime", "thriller":
		return state.ArcMystery
	case "horror":
		return state.ArcHorror
	default:
		return state.ArcDramatic
	}
}

func genreClass(genre string) string {
	g := strings.ToLower(genre)
	for _, class := range []string{"romance", "mystery", "thriller", "crime", "horror"} {
		if strings.Contains(g, class) {
			return class
		}
	}
	return "general"
}

// buildVisualGuides runs the two flash JSON calls that fix character
// appearance and overall visual style before any page is illustrated.
// Guide failures degrade consistency but never fail the book.
func (d *Driver) buildVisualGuides(ctx context.Context, b *Book) {
	charPrompt := fmt.Sprintf(`Create a character visual reference for illustrating %q. For each character, fix their exact appearance so every illustration matches. Respond with a single JSON object mapping character name to a one-line appearance description.

CHARACTERS: %s`, b.Title, describeCharacters(b.Plan))

	if guide, err := d.guideCall(ctx, charPrompt, "character-guide"); err == nil {
		b.CharacterVisualGuide = guide
	} else {
		d.logger.Warn("character visual guide failed", "book", b.ID, "error", err)
	}

	stylePrompt := fmt.Sprintf(`Define the visual style for illustrating %q, a %s. Respond with a single JSON object with keys "palette", "lineWork", "lighting", "influences" and "avoid".`,
		b.Title, b.Format)

	if guide, err := d.guideCall(ctx, stylePrompt, "style-guide"); err == nil {
		b.VisualStyleGuide = guide
	} else {
		d.logger.Warn("visual style guide failed", "book", b.ID, "error", err)
	}
}

func (d *Driver) guideCall(ctx context.Context, prompt, purpose string) (string, error) {
	raw, err := d.client.Generate(ctx, provider.Request{
		Role:    provider.RoleFlash,
		Prompt:  prompt,
		Purpose: purpose,
	})
	if err != nil {
		return "", err
	}
	cleaned := llmjson.Clean(raw)
	if cleaned == "" {
		return strings.TrimSpace(raw), nil
	}
	return cleaned, nil
}

// generatePhase iterates chapters strictly in order, persisting each
// before advancing, and polling for external cancellation between
// chapters.
func (d *Driver) generatePhase(ctx context.Context, b *Book) error {
	b.Status = StatusGenerating
	if err := d.storage.SaveBook(b); err != nil {
		return err
	}

	var summaries []string

	for i, ch := range b.Outline.Chapters {
		if err := d.checkpoint(ctx, b.ID); err != nil {
			return err
		}

		in := chapter.Input{
			BookID:      b.ID,
			Plan:        b.Plan,
			Chapter:     ch,
			Format:      format.ConfigFor(b.Format),
			Rating:      b.Rating,
			Synopsis:    capWords(strings.Join(summaries, " "), synopsisCapWords),
			IsLast:      i == len(b.Outline.Chapters)-1,
		}
		if len(summaries) > 0 {
			in.LastSummary = summaries[len(summaries)-1]
		}

		var out *chapter.Output
		if b.IsVisual() {
			out = d.chapters.GeneratePage(in)
		} else {
			var err error
			out, err = d.chapters.Generate(ctx, in)
			if err != nil {
				return fmt.Errorf("chapter %d: %w", ch.Number, err)
			}
		}

		if err := d.storage.SaveChapter(b.ID, out.Number, out.Text); err != nil {
			return fmt.Errorf("persisting chapter %d: %w", out.Number, err)
		}

		b.CurrentChapter = out.Number
		b.TotalWords += out.WordCount
		if err := d.storage.SaveBook(b); err != nil {
			return fmt.Errorf("persisting progress: %w", err)
		}

		summaries = append(summaries, out.Summary)

		d.logger.Info("chapter persisted",
			"book", b.ID,
			"chapter", out.Number,
			"words", out.WordCount,
			"retries", out.Metrics.TotalRetries)
	}

	if b.IsVisual() && d.illustrator != nil {
		d.illustratePages(ctx, b)
	}

	return nil
}

// checkpoint implements cooperative cancellation: if the stored record
// was failed or deleted externally, the driver stops at the next
// boundary.
func (d *Driver) checkpoint(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrCancelled, err)
	}
	current, err := d.storage.LoadBook(bookID)
	if errors.Is(err, core.ErrBookNotFound) {
		return fmt.Errorf("%w: book deleted", core.ErrCancelled)
	} else if err != nil {
		return err
	}
	if current.Status == StatusFailed {
		return fmt.Errorf("%w: book marked failed externally", core.ErrCancelled)
	}
	return nil
}

// illustratePages fans out illustration requests with bounded
// parallelism. Pages whose illustration fails keep their text.
func (d *Driver) illustratePages(ctx context.Context, b *Book) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(illustrationWorkers)

	for _, ch := range b.Outline.Chapters {
		page := ch
		if page.Scene == nil {
			continue
		}
		g.Go(func() error {
			prompt := chapter.BuildIllustrationPrompt(page.Scene, artStyleFor(b.Format),
				b.CharacterVisualGuide, b.VisualStyleGuide, page.PanelLayout)
			img, err := d.illustrator.Generate(gctx, illustration.Request{
				Scene:                page.Scene,
				Prompt:               prompt,
				PanelLayout:          string(page.PanelLayout),
				ArtStyle:             artStyleFor(b.Format),
				Characters:           page.Scene.Characters,
				Setting:              page.Scene.Location,
				BookTitle:            b.Title,
				CharacterVisualGuide: b.CharacterVisualGuide,
				VisualStyleGuide:     b.VisualStyleGuide,
				BookFormat:           string(b.Format),
			}, page.Title)
			if err != nil {
				d.logger.Warn("page illustration failed", "book", b.ID, "page", page.Number, "error", err)
				return nil
			}
			if err := d.storage.SaveImage(b.ID, fmt.Sprintf("page-%03d", page.Number), img.Base64); err != nil {
				d.logger.Warn("page image persist failed", "book", b.ID, "page", page.Number, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// generateCover runs the cover-prompt and cover-image calls after
// completion. Both are best-effort.
func (d *Driver) generateCover(ctx context.Context, b *Book) {
	promptReq := fmt.Sprintf(`Write one vivid sentence describing the front cover of %q, a %s %s. Describe only what is pictured.`,
		b.Title, b.Genre, b.Format)

	coverPrompt, err := d.client.Generate(ctx, provider.Request{
		Role:    provider.RoleFlashLite,
		Prompt:  promptReq,
		Purpose: "cover-prompt",
	})
	if err != nil {
		d.logger.Warn("cover prompt failed", "book", b.ID, "error", err)
		return
	}

	image, err := d.client.Generate(ctx, provider.Request{
		Role:    provider.RoleImage,
		Prompt:  fmt.Sprintf("Book cover illustration, no text or lettering: %s", strings.TrimSpace(coverPrompt)),
		Purpose: "cover-image",
	})
	if err != nil {
		d.logger.Warn("cover image failed", "book", b.ID, "error", err)
		return
	}

	b.CoverImage = image
	if err := d.storage.SaveImage(b.ID, "cover", image); err != nil {
		d.logger.Warn("cover persist failed", "book", b.ID, "error", err)
	}
	if err := d.storage.SaveBook(b); err != nil {
		d.logger.Warn("cover record persist failed", "book", b.ID, "error", err)
	}
}

// fail marks the book failed with the single user-visible reason.
func (d *Driver) fail(b *Book, cause error) error {
	b.Status = StatusFailed
	b.FailureReason = core.UserFacingMessage(cause)
	if err := d.storage.SaveBook(b); err != nil {
		d.logger.Error("failed to persist failure", "book", b.ID, "error", err)
	}
	d.logger.Error("book failed", "book", b.ID, "reason", b.FailureReason, "error", cause)
	return cause
}

// artStyleFor names the base rendering style per format; the visual
// style guide refines it.
func artStyleFor(f format.Format) string {
	switch f {
	case format.Comic, format.AdultComic:
		return "inked comic panels, flat color"
	case format.Children, format.PictureBook:
		return "soft watercolor picture book"
	default:
		return "painterly illustration"
	}
}

func describeCharacters(plan *outline.Plan) string {
	parts := make([]string, 0, len(plan.Characters))
	for _, c := range plan.Characters {
		parts = append(parts, fmt.Sprintf("%s: %s", c.Name, c.Description))
	}
	if len(parts) == 0 {
		return "none named"
	}
	return strings.Join(parts, "; ")
}

func capWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) <= n {
		return s
	}
	// Keep the most recent context; the anchor preserves the opening.
	return strings.Join(fields[len(fields)-n:], " ")
}
