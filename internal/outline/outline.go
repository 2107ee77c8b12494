package outline

import (
	"context"
	"fmt"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/core"
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/llmjson"
	"github.com/vampirenirmal/bookforge/internal/validate"
)

const outlineAttempts = 3

// BuildOutline produces the chapter list for a text book. Visual
// formats take the two-step path in BuildVisualOutline.
func (b *Builder) BuildOutline(ctx context.Context, plan *Plan, f format.Format) (*Outline, error) {
	if plan.BookType == format.NonFiction {
		return b.buildNonFictionOutline(ctx, plan)
	}
	return b.buildFictionOutline(ctx, plan)
}

func (b *Builder) buildFictionOutline(ctx context.Context, plan *Plan) (*Outline, error) {
	prompt := b.fictionOutlinePrompt(plan)

	var lastErr error
	for attempt := 0; attempt < outlineAttempts; attempt++ {
		if attempt > 0 {
			prompt = b.fictionOutlinePrompt(sanitizedPlanCopy(plan, attempt))
		}

		raw, err := b.generateJSON(ctx, prompt, "outline")
		if err != nil {
			lastErr = err
			if core.IsSafetyBlocked(err) {
				continue
			}
			return nil, fmt.Errorf("generating outline: %w", err)
		}

		var outline Outline
		if err := llmjson.ParseInto(raw, &outline); err != nil {
			lastErr = err
			continue
		}
		if len(outline.Chapters) == 0 {
			lastErr = fmt.Errorf("outline has no chapters")
			continue
		}

		cropOrPadChapters(&outline, plan.TargetChapters)
		distributeWords(&outline, plan.TargetWords)
		numberChapters(&outline)
		substituteOutlineNames(&outline)
		return &outline, nil
	}

	return nil, fmt.Errorf("outline generation failed after %d attempts: %w", outlineAttempts, lastErr)
}

func (b *Builder) fictionOutlinePrompt(plan *Plan) string {
	var p strings.Builder
	fmt.Fprintf(&p, `Create a chapter outline for %q, a %s novel.

PREMISE: %s
BEGINNING: %s
MIDDLE: %s
ENDING: %s
CHARACTERS: %s

Respond with a single JSON object:
{"chapters": [{"number": 1, "title": "...", "summary": "3-5 sentences of what happens", "pov": "character name"}]}

Produce exactly %d chapters. The summaries must form one continuous story that spends the beginning by chapter %d and starts the ending around chapter %d.`,
		plan.Title, plan.Genre, plan.Premise, plan.Beginning, plan.Middle, plan.Ending,
		characterList(plan), plan.TargetChapters,
		plan.TargetChapters/4+1, plan.TargetChapters*3/4+1)
	return p.String()
}

func (b *Builder) buildNonFictionOutline(ctx context.Context, plan *Plan) (*Outline, error) {
	topics := topicsOf(plan.Middle)
	if len(topics) == 0 {
		topics = []string{plan.Premise}
	}

	prompt := b.nonFictionOutlinePrompt(plan, topics)

	var lastErr error
	for attempt := 0; attempt < outlineAttempts; attempt++ {
		raw, err := b.generateJSON(ctx, prompt, "outline")
		if err != nil {
			lastErr = err
			if core.IsSafetyBlocked(err) {
				continue
			}
			return nil, fmt.Errorf("generating outline: %w", err)
		}

		var outline Outline
		if err := llmjson.ParseInto(raw, &outline); err != nil {
			lastErr = err
			continue
		}

		wantChapters := len(topics) + 2 // introduction + topics + conclusion
		cropOrPadChapters(&outline, wantChapters)
		normalizeNonFiction(&outline, plan, topics)
		distributeWords(&outline, plan.TargetWords)
		numberChapters(&outline)
		return &outline, nil
	}

	return nil, fmt.Errorf("outline generation failed after %d attempts: %w", outlineAttempts, lastErr)
}

func (b *Builder) nonFictionOutlinePrompt(plan *Plan, topics []string) string {
	var p strings.Builder
	fmt.Fprintf(&p, `Create a chapter outline for %q, a non-fiction book.

WHAT IT TEACHES: %s
HOOK: %s
TOPICS IN ORDER: %s
TAKEAWAYS: %s

Respond with a single JSON object:
{"chapters": [{"number": 1, "title": "...", "summary": "...", "keyPoints": ["...", "...", "..."]}]}

Chapter 1 is an introduction built on the hook. Then one chapter per topic, in the order given. The final chapter is a conclusion built on the takeaways. Give every chapter three to five keyPoints. That is exactly %d chapters.`,
		plan.Title, plan.Premise, plan.Beginning, strings.Join(topics, ", "), plan.Ending, len(topics)+2)
	return p.String()
}

// normalizeNonFiction imposes the intro/topics/conclusion structure and
// keeps keyPoints inside three to five entries, deriving them from the
// summary when the model returned too few.
func normalizeNonFiction(o *Outline, plan *Plan, topics []string) {
	for i := range o.Chapters {
		ch := &o.Chapters[i]
		switch {
		case i == 0:
			if !strings.Contains(strings.ToLower(ch.Title), "introduction") {
				ch.Title = "Introduction: " + ch.Title
			}
		case i == len(o.Chapters)-1:
			if !strings.Contains(strings.ToLower(ch.Title), "conclusion") {
				ch.Title = "Conclusion: " + ch.Title
			}
		default:
			if ch.Title == "" && i-1 < len(topics) {
				ch.Title = topics[i-1]
			}
		}

		if len(ch.KeyPoints) > 5 {
			ch.KeyPoints = ch.KeyPoints[:5]
		}
		for len(ch.KeyPoints) < 3 {
			sentences := validate.SplitSentences(ch.Summary)
			idx := len(ch.KeyPoints)
			if idx < len(sentences) {
				ch.KeyPoints = append(ch.KeyPoints, sentences[idx])
			} else {
				ch.KeyPoints = append(ch.KeyPoints, "Key idea: "+ch.Title)
			}
		}
	}
}

// =============================================================================
// Shared shaping helpers
// =============================================================================

// cropOrPadChapters never trusts the model to count: extras are cut,
// missing chapters are recovered by splitting the longest summary.
func cropOrPadChapters(o *Outline, want int) {
	if want <= 0 || len(o.Chapters) == 0 {
		return
	}
	if len(o.Chapters) > want {
		o.Chapters = o.Chapters[:want]
		return
	}
	for len(o.Chapters) < want {
		longest := 0
		for i := range o.Chapters {
			if len(o.Chapters[i].Summary) > len(o.Chapters[longest].Summary) {
				longest = i
			}
		}
		src := o.Chapters[longest]
		half := splitSummary(src.Summary)

		first := src
		first.Summary = half[0]
		second := src
		second.Title = src.Title + " (continued)"
		second.Summary = half[1]
		second.Text = ""
		second.Dialogue = nil

		o.Chapters = append(o.Chapters[:longest],
			append([]Chapter{first, second}, o.Chapters[longest+1:]...)...)
	}
}

func splitSummary(summary string) [2]string {
	sentences := validate.SplitSentences(summary)
	if len(sentences) < 2 {
		return [2]string{summary, summary}
	}
	mid := len(sentences) / 2
	return [2]string{
		strings.Join(sentences[:mid], ". ") + ".",
		strings.Join(sentences[mid:], ". ") + ".",
	}
}

// distributeWords spreads the plan's word target evenly; the last
// chapter absorbs the remainder.
func distributeWords(o *Outline, targetWords int) {
	n := len(o.Chapters)
	if n == 0 || targetWords <= 0 {
		return
	}
	per := targetWords / n
	for i := range o.Chapters {
		o.Chapters[i].TargetWords = per
	}
	o.Chapters[n-1].TargetWords = targetWords - per*(n-1)
}

func numberChapters(o *Outline) {
	for i := range o.Chapters {
		o.Chapters[i].Number = i + 1
	}
}

func characterList(plan *Plan) string {
	if len(plan.Characters) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(plan.Characters))
	for _, c := range plan.Characters {
		parts = append(parts, fmt.Sprintf("%s (%s)", c.Name, c.Description))
	}
	return strings.Join(parts, "; ")
}

// sanitizedPlanCopy lowers the heat of the outline prompt inputs on a
// safety-blocked retry.
func sanitizedPlanCopy(plan *Plan, attempt int) *Plan {
	cp := *plan
	cp.Premise = sanitizeIdea(plan.Premise, attempt)
	cp.Beginning = sanitizeIdea(plan.Beginning, attempt)
	cp.Middle = sanitizeIdea(plan.Middle, attempt)
	cp.Ending = sanitizeIdea(plan.Ending, attempt)
	return &cp
}
