package outline

import (
	"context"
	"fmt"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/core"
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/llmjson"
	"github.com/vampirenirmal/bookforge/internal/provider"
	"github.com/vampirenirmal/bookforge/internal/validate"
)

const visualAttempts = 3

// BuildVisualOutline runs the two-step illustrated pipeline: first a
// complete narrative story, then a strict break into exactly
// plan.TargetChapters page records with scenes.
func (b *Builder) BuildVisualOutline(ctx context.Context, plan *Plan, f format.Format, style format.DialogueStyle) (*Outline, error) {
	story, err := b.generateStory(ctx, plan, f)
	if err != nil {
		return nil, err
	}

	outline, err := b.breakIntoPages(ctx, plan, f, style, story)
	if err != nil {
		return nil, err
	}

	substituteOutlineNames(outline)
	return outline, nil
}

// generateStory writes the full narrative the pages will be cut from.
func (b *Builder) generateStory(ctx context.Context, plan *Plan, f format.Format) (string, error) {
	wordsPerPage := format.ConfigFor(f).BeatSize
	target := plan.TargetChapters * wordsPerPage

	prompt := fmt.Sprintf(`Write a complete story of about %d words for %q.

PREMISE: %s
BEGINNING: %s
MIDDLE: %s
ENDING: %s
CHARACTERS: %s

Requirements: distinct scenes in distinct locations, real spoken dialogue
in quotes, and a visible emotional arc. Prose only, no headings.`,
		target, plan.Title, plan.Premise, plan.Beginning, plan.Middle, plan.Ending,
		characterList(plan))

	var lastErr error
	for attempt := 0; attempt < visualAttempts; attempt++ {
		story, err := b.client.Generate(ctx, provider.Request{
			Role:    provider.RolePro,
			Prompt:  prompt,
			Purpose: "visual-story",
		})
		if err == nil {
			return story, nil
		}
		lastErr = err
		if !core.IsSafetyBlocked(err) {
			return "", fmt.Errorf("generating story: %w", err)
		}
		prompt = sanitizeIdea(prompt, attempt+1)
	}
	return "", fmt.Errorf("story generation failed: %w", lastErr)
}

// breakIntoPages turns the story into exactly the requested number of
// pages. The ladder sanitizes on safety blocks, switches to an
// aggressive shortening instruction when responses keep truncating,
// and for comics feeds panel-validation corrections into the retry.
// A comic outline that still fails validation on the last attempt is
// accepted with the violations logged; validation failure is never
// fatal.
func (b *Builder) breakIntoPages(ctx context.Context, plan *Plan, f format.Format, style format.DialogueStyle, story string) (*Outline, error) {
	comic := f == format.Comic || f == format.AdultComic

	var lastErr error
	feedback := ""
	var best *Outline

	for attempt := 0; attempt < visualAttempts; attempt++ {
		prompt := b.pageBreakPrompt(plan, style, comic, story, attempt > 0, feedback)

		raw, err := b.client.Generate(ctx, provider.Request{
			Role:    provider.RoleFlash,
			Prompt:  prompt,
			Purpose: "visual-pages",
		})
		if err != nil {
			lastErr = err
			if core.IsSafetyBlocked(err) {
				story = sanitizeIdea(story, attempt+1)
				continue
			}
			return nil, fmt.Errorf("breaking story into pages: %w", err)
		}

		var outline Outline
		if err := llmjson.ParseInto(raw, &outline); err != nil {
			lastErr = err
			continue
		}
		if len(outline.Chapters) == 0 {
			lastErr = fmt.Errorf("no pages in response")
			continue
		}

		enforceExactPageCount(&outline, plan.TargetChapters, style)
		fillPageDefaults(&outline, plan, comic)
		numberChapters(&outline)

		if !comic {
			return &outline, nil
		}

		corrections := validateComicPages(&outline)
		best = &outline
		if len(corrections) == 0 {
			return &outline, nil
		}

		lastErr = fmt.Errorf("comic pages failed validation: %s", corrections[0])
		feedback = strings.Join(corrections, "\n")
		b.logger.Warn("comic pages failed validation, retrying with feedback",
			"attempt", attempt+1, "corrections", len(corrections))
	}

	if best != nil {
		b.logger.Warn("accepting best comic outline after retries", "error", lastErr)
		return best, nil
	}
	return nil, fmt.Errorf("page breakdown failed after %d attempts: %w", visualAttempts, lastErr)
}

// validateComicPages runs the comic validator over every page with one
// shared visual-tic budget for the whole book, and returns the pooled
// corrections.
func validateComicPages(o *Outline) []string {
	bookTics := make(map[string]int)
	var corrections []string
	for _, ch := range o.Chapters {
		report := validate.Comic(ch.ComicPage(), bookTics)
		for _, c := range report.Corrections {
			corrections = append(corrections, fmt.Sprintf("page %d: %s", ch.Number, c))
		}
	}
	return corrections
}

func (b *Builder) pageBreakPrompt(plan *Plan, style format.DialogueStyle, comic bool, story string, shorten bool, feedback string) string {
	var p strings.Builder

	fmt.Fprintf(&p, "Break this story into exactly %d pages for an illustrated book.\n\n", plan.TargetChapters)

	content := `"text": "the page's prose, 2-4 sentences"`
	if style == format.Bubbles {
		content = `"dialogue": [{"character": "...", "text": "a short bubble, under 25 words"}]`
	}

	layout := ""
	if comic {
		content = `"panels": [{"description": "what this panel shows", "dialogue": [{"character": "...", "text": "a short bubble, under 25 words"}]}]`
		layout = `, "panelLayout": "splash|two-panel|three-panel|four-panel"`
	}

	fmt.Fprintf(&p, `Respond with a single JSON object:
{"chapters": [{"number": 1, "title": "...", "summary": "...", %s%s,
"scene": {"location": "...", "description": "what the illustration shows",
"characters": ["names present"], "characterActions": {"name": "what they are physically doing"},
"background": "...", "mood": "...", "cameraAngle": "wide|medium|close-up|bird's-eye|low-angle"}}]}

Vary the camera angles across pages. Every page needs a fully populated scene.`, content, layout)

	if comic {
		p.WriteString("\nGive every page three to seven panels, at most two bubbles per panel, and keep each bubble under 25 words. Show feelings in the art, never as spoken statements.")
	}

	if shorten {
		p.WriteString("\nBe aggressively brief: every string under 20 words, no exceptions. The previous response was too long to complete.")
	}

	if feedback != "" {
		p.WriteString("\nThe previous breakdown failed these checks. Fix exactly these problems:\n")
		p.WriteString(feedback)
	}

	fmt.Fprintf(&p, "\n\nTHE STORY:\n%s", story)
	return p.String()
}

// enforceExactPageCount crops overruns and recovers shortfalls by
// splitting the fullest page in two.
func enforceExactPageCount(o *Outline, want int, style format.DialogueStyle) {
	if want <= 0 {
		return
	}
	if len(o.Chapters) > want {
		o.Chapters = o.Chapters[:want]
	}
	for len(o.Chapters) < want && len(o.Chapters) > 0 {
		fullest := 0
		for i := range o.Chapters {
			if pageWeight(o.Chapters[i]) > pageWeight(o.Chapters[fullest]) {
				fullest = i
			}
		}
		first, second := splitPage(o.Chapters[fullest], style)
		o.Chapters = append(o.Chapters[:fullest],
			append([]Chapter{first, second}, o.Chapters[fullest+1:]...)...)
	}
}

func pageWeight(ch Chapter) int {
	weight := len(strings.Fields(ch.Text))
	for _, d := range ch.Dialogue {
		weight += len(strings.Fields(d.Text))
	}
	for _, panel := range ch.Panels {
		weight += len(strings.Fields(panel.Description))
		for _, d := range panel.Dialogue {
			weight += len(strings.Fields(d.Text))
		}
	}
	return weight
}

func splitPage(ch Chapter, style format.DialogueStyle) (Chapter, Chapter) {
	first, second := ch, ch
	second.Title = ch.Title + " (continued)"

	if len(ch.Panels) > 1 {
		mid := len(ch.Panels) / 2
		first.Panels = ch.Panels[:mid]
		second.Panels = ch.Panels[mid:]
		first.Dialogue = nil
		second.Dialogue = nil
		return first, second
	}

	if style == format.Bubbles && len(ch.Dialogue) > 1 {
		mid := len(ch.Dialogue) / 2
		first.Dialogue = ch.Dialogue[:mid]
		second.Dialogue = ch.Dialogue[mid:]
		return first, second
	}

	half := splitSummary(ch.Text)
	if strings.TrimSpace(ch.Text) == "" {
		half = splitSummary(ch.Summary)
	}
	first.Text = half[0]
	second.Text = half[1]
	return first, second
}

// fillPageDefaults guarantees every page carries a usable scene and,
// for comics, a panel layout.
func fillPageDefaults(o *Outline, plan *Plan, comic bool) {
	layouts := []format.PanelLayout{
		format.LayoutThreePanel, format.LayoutTwoPanel,
		format.LayoutFourPanel, format.LayoutSplash,
	}
	angles := []string{"wide", "medium", "close-up", "bird's-eye", "low-angle"}

	for i := range o.Chapters {
		ch := &o.Chapters[i]

		if comic {
			ensurePanels(ch)
		}

		if ch.Scene == nil {
			ch.Scene = &Scene{}
		}
		if ch.Scene.Location == "" {
			ch.Scene.Location = "the story's current setting"
		}
		if ch.Scene.Description == "" {
			ch.Scene.Description = firstSentenceOf(ch.Text, ch.Summary)
		}
		if len(ch.Scene.Characters) == 0 && len(plan.Characters) > 0 {
			ch.Scene.Characters = []string{plan.Characters[0].Name}
		}
		if ch.Scene.CameraAngle == "" {
			ch.Scene.CameraAngle = angles[i%len(angles)]
		}
		if comic && ch.PanelLayout == "" {
			ch.PanelLayout = layouts[i%len(layouts)]
		}
	}
}

// ensurePanels recovers a panel breakdown for comic pages the model
// returned flat: bubbles are dealt across three panels whose
// descriptions come from the scene. It also flattens panel dialogue
// back onto the page for the prose-rendering path.
func ensurePanels(ch *Chapter) {
	if len(ch.Panels) == 0 {
		desc := ch.Summary
		if ch.Scene != nil && ch.Scene.Description != "" {
			desc = ch.Scene.Description
		}
		panels := []Panel{
			{Description: "Establishing: " + desc},
			{Description: desc},
			{Description: "Reaction to: " + desc},
		}
		for i, d := range ch.Dialogue {
			p := &panels[i%len(panels)]
			if len(p.Dialogue) < 2 {
				p.Dialogue = append(p.Dialogue, d)
			}
		}
		ch.Panels = panels
	}

	if len(ch.Dialogue) == 0 {
		for _, panel := range ch.Panels {
			ch.Dialogue = append(ch.Dialogue, panel.Dialogue...)
		}
	}
}

// ComicPage translates an outline page into the shape the comic
// validator measures.
func (c Chapter) ComicPage() validate.ComicPage {
	page := validate.ComicPage{}
	for _, panel := range c.Panels {
		vp := validate.Panel{Description: panel.Description}
		for _, d := range panel.Dialogue {
			vp.Bubbles = append(vp.Bubbles, validate.Bubble{Character: d.Character, Text: d.Text})
		}
		page.Panels = append(page.Panels, vp)
	}
	return page
}

func firstSentenceOf(texts ...string) string {
	for _, t := range texts {
		if ss := validate.SplitSentences(t); len(ss) > 0 {
			return ss[0]
		}
	}
	return "an illustrated story moment"
}
