package outline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vampirenirmal/bookforge/internal/core"
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/heat"
	"github.com/vampirenirmal/bookforge/internal/llmjson"
	"github.com/vampirenirmal/bookforge/internal/provider"
)

const (
	maxIdeaWords     = 1000
	planAttempts     = 4
	truncatedRetries = 2
)

// Builder turns ideas into plans and plans into outlines.
type Builder struct {
	client   provider.Client
	validate *validator.Validate
	logger   *slog.Logger
}

// NewBuilder creates an outline builder over a provider client.
func NewBuilder(client provider.Client) *Builder {
	return &Builder{
		client:   client,
		validate: validator.New(),
		logger:   slog.Default().With("component", "outline_builder"),
	}
}

// WithLogger sets a custom logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger.With("component", "outline_builder")
	return b
}

// PlanRequest parameterizes idea expansion.
type PlanRequest struct {
	Idea     string
	BookType format.BookType
	Format   format.Format
	Rating   format.ContentRating
}

// BuildPlan expands a one-sentence idea into a full plan. A safety
// block walks the four-step sanitization ladder; the unsanitized idea,
// truncated to a thousand words, is preserved on the returned plan.
func (b *Builder) BuildPlan(ctx context.Context, req PlanRequest) (*Plan, error) {
	original := TruncateWords(req.Idea, maxIdeaWords)

	var lastErr error
	for attempt := 0; attempt < planAttempts; attempt++ {
		idea := sanitizeIdea(original, attempt)
		prompt := b.planPrompt(idea, req)

		raw, err := b.generateJSON(ctx, prompt, "plan")
		if err != nil {
			lastErr = err
			if core.IsSafetyBlocked(err) {
				b.logger.Warn("plan generation blocked, climbing sanitization ladder",
					"attempt", attempt+1)
				continue
			}
			return nil, fmt.Errorf("expanding idea: %w", err)
		}

		var plan Plan
		if err := llmjson.ParseInto(raw, &plan); err != nil {
			lastErr = err
			continue
		}

		normalizePlan(&plan, req)
		plan.OriginalIdea = original
		substitutePlanNames(&plan)

		if err := b.validate.Struct(&plan); err != nil {
			lastErr = fmt.Errorf("plan shape: %w", err)
			continue
		}
		return &plan, nil
	}

	return nil, fmt.Errorf("idea expansion failed after %d attempts: %w", planAttempts, lastErr)
}

// generateJSON calls flash and retries up to truncatedRetries times with a
// compressed request when the response came back truncated.
func (b *Builder) generateJSON(ctx context.Context, prompt, purpose string) (string, error) {
	raw, err := b.client.Generate(ctx, provider.Request{
		Role:    provider.RoleFlash,
		Prompt:  prompt,
		Purpose: purpose,
	})
	if err != nil {
		return "", err
	}

	for retry := 0; retry < truncatedRetries; retry++ {
		if _, perr := llmjson.Parse(raw); !core.IsTruncated(perr) {
			return raw, nil
		}
		b.logger.Warn("truncated JSON response, retrying compressed", "purpose", purpose, "retry", retry+1)
		raw, err = b.client.Generate(ctx, provider.Request{
			Role:    provider.RoleFlash,
			Prompt:  prompt + "\n\nKeep every string value short. The previous response was cut off before the JSON closed.",
			Purpose: purpose,
		})
		if err != nil {
			return "", err
		}
	}
	if _, perr := llmjson.Parse(raw); core.IsTruncated(perr) {
		return "", fmt.Errorf("%s response: %w", purpose, core.ErrTruncated)
	}
	return raw, nil
}

func (b *Builder) planPrompt(idea string, req PlanRequest) string {
	var p strings.Builder

	p.WriteString(heat.GuidelinePreamble(req.Rating))
	p.WriteString("\n\n")

	if req.BookType == format.NonFiction {
		p.WriteString(`Expand this book idea into a non-fiction plan. Respond with a single JSON object:
{"title": "...", "genre": "...", "bookType": "non-fiction", "premise": "what the book teaches, under 300 words",
"characters": [], "beginning": "the hook: why the reader should care",
"middle": "a comma-separated list of the main topics, in teaching order",
"ending": "the takeaways the reader leaves with", "writingStyle": "...",
"targetWords": 30000, "targetChapters": 12}`)
	} else {
		p.WriteString(`Expand this book idea into a story plan. Respond with a single JSON object:
{"title": "...", "genre": "...", "bookType": "fiction", "premise": "under 300 words, keep the idea's own nouns and setting",
"characters": [{"name": "...", "description": "personality plus visual details: hair, build, clothing"}],
"beginning": "...", "middle": "...", "ending": "...", "writingStyle": "...",
"targetWords": 60000, "targetChapters": 20}
Invent two or three characters at most.`)
	}

	fmt.Fprintf(&p, "\n\nTHE IDEA: %s", idea)
	return p.String()
}

func normalizePlan(plan *Plan, req PlanRequest) {
	if plan.BookType == "" {
		plan.BookType = req.BookType
	}
	if req.BookType == format.NonFiction {
		plan.BookType = format.NonFiction
		plan.Characters = nil
	}
	if plan.TargetWords <= 0 {
		plan.TargetWords = defaultTargetWords(req.Format)
	}
	if plan.TargetChapters <= 0 {
		plan.TargetChapters = defaultTargetChapters(req.Format)
	}
}

func defaultTargetWords(f format.Format) int {
	switch f {
	case format.PictureBook, format.Children:
		return 1200
	case format.Comic, format.AdultComic:
		return 2400
	case format.Screenplay:
		return 20000
	default:
		return 60000
	}
}

func defaultTargetChapters(f format.Format) int {
	switch f {
	case format.PictureBook, format.Children:
		return 12
	case format.Comic, format.AdultComic:
		return 16
	default:
		return 20
	}
}

// =============================================================================
// Sanitization ladder
// =============================================================================

var tokenRe = regexp.MustCompile(`[A-Za-z]{4,}`)

// sanitizeIdea applies the ladder step for the given attempt:
// 0 original, 1 lexical sanitization, 2 neutral reframe of the core,
// 3 token extraction with a family-friendly request.
func sanitizeIdea(idea string, attempt int) string {
	switch attempt {
	case 0:
		return idea
	case 1:
		return heat.Sanitize(idea)
	case 2:
		core := idea
		if len(core) > 150 {
			core = core[:150]
		}
		return "A story exploring the following premise, handled with restraint: " + heat.Sanitize(core)
	default:
		tokens := tokenRe.FindAllString(heat.Sanitize(idea), -1)
		if len(tokens) > 12 {
			tokens = tokens[:12]
		}
		return "Write a family-friendly story inspired by these elements: " + strings.Join(tokens, ", ")
	}
}

// TruncateWords caps a string at n whitespace-separated words.
func TruncateWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) <= n {
		return strings.TrimSpace(s)
	}
	return strings.Join(fields[:n], " ")
}
