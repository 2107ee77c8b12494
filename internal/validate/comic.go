package validate

import (
	"strings"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

const (
	minPanels       = 3
	maxPanels       = 7
	maxBubbleWords  = 25
	maxBubblesPanel = 2
)

// Bubble is one speech bubble on a comic panel.
type Bubble struct {
	Character string
	Text      string
}

// Panel is one drawn panel: a visual description plus its bubbles.
type Panel struct {
	Description string
	Bubbles     []Bubble
}

// ComicPage is the unit the comic validator sees.
type ComicPage struct {
	Panels []Panel
}

// Comic validates one page. bookTics carries visual-tic usage counts
// across the whole book and is updated for panels that pass.
func Comic(page ComicPage, bookTics map[string]int) Report {
	report := Report{IsValid: true}
	report.Metrics.PanelCount = len(page.Panels)

	if len(page.Panels) < minPanels || len(page.Panels) > maxPanels {
		report.addCorrection(
			"PANELS: page has %d panels (need %d to %d). Merge or split story moments to fit.",
			len(page.Panels), minPanels, maxPanels)
	}

	pageTics := make(map[string]int)
	directEmotion := 0

	for i, panel := range page.Panels {
		if len(panel.Bubbles) > maxBubblesPanel {
			report.addCorrection(
				"BUBBLES: panel %d carries %d bubbles (cap %d). Move dialogue to the next panel.",
				i+1, len(panel.Bubbles), maxBubblesPanel)
		}

		for _, bubble := range panel.Bubbles {
			words := WordCount(bubble.Text)
			if words > report.Metrics.MaxBubbleWords {
				report.Metrics.MaxBubbleWords = words
			}
			if words > maxBubbleWords {
				report.addCorrection(
					"BUBBLES: a bubble in panel %d runs %d words (cap %d). Comic dialogue is terse.",
					i+1, words, maxBubbleWords)
			}

			lower := strings.ToLower(bubble.Text)
			for _, phrase := range lexicon.DirectEmotionPhrases {
				if strings.Contains(lower, phrase) {
					directEmotion++
					break
				}
			}
		}

		lowerDesc := strings.ToLower(panel.Description)
		for _, pattern := range lexicon.InternalMonologuePatterns {
			if strings.Contains(lowerDesc, pattern) {
				report.addCorrection(
					"MONOLOGUE: panel %d narrates thought (%q). Show it in the art or a bubble.",
					i+1, pattern)
				break
			}
		}

		for _, tic := range lexicon.VisualTics {
			if strings.Contains(lowerDesc, tic) {
				pageTics[tic]++
			}
		}
	}

	if directEmotion >= 2 {
		report.addCorrection(
			"EMOTION: %d bubbles state feelings outright. Let expression and action carry them.",
			directEmotion)
	}

	for tic, n := range pageTics {
		if n > lexicon.VisualTicPageCap {
			report.addCorrection(
				"TICS: %q appears %d times on one page (cap %d).", tic, n, lexicon.VisualTicPageCap)
		}
		if bookTics != nil && bookTics[tic]+n > lexicon.VisualTicBookCap {
			report.addCorrection(
				"TICS: %q has now been used %d times in this book (cap %d). Retire the gesture.",
				tic, bookTics[tic]+n, lexicon.VisualTicBookCap)
		}
	}

	if report.IsValid && bookTics != nil {
		for tic, n := range pageTics {
			bookTics[tic] += n
		}
	}

	return report
}
