package validate

import (
	"regexp"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

var quotedRe = regexp.MustCompile(`"[^"]+"|\x{201C}[^\x{201D}]+\x{201D}`)

const (
	minDialogueRatio = 0.1
	maxDialogueRatio = 0.7
	maxFancyTagRatio = 0.25
	longParaWords    = 150
	maxLongParaRatio = 0.5
)

// Book validates novel/prose chapters: the shared narrative metrics plus
// dialogue balance, attribution-verb restraint and paragraph shape.
func Book(text string, names []string, previous string, th Thresholds) Report {
	report := Narrative(text, names, previous, th)

	m := &report.Metrics
	m.DialogueRatio = DialogueRatio(text)
	m.FancyTagRatio = FancyTagRatio(text)
	m.LongParaRatio = longParagraphRatio(text)

	// Dialogue balance only applies when characters actually interact.
	if charactersPresent(text, names) >= 2 {
		if m.DialogueRatio < minDialogueRatio {
			report.addCorrection(
				"DIALOGUE: only %.0f%% of the text is spoken while two characters share the scene. Let them talk; aim for at least %.0f%%.",
				m.DialogueRatio*100, minDialogueRatio*100)
		} else if m.DialogueRatio > maxDialogueRatio {
			report.addCorrection(
				"DIALOGUE: %.0f%% of the text is spoken (cap %.0f%%). Ground the exchange with action and setting between lines.",
				m.DialogueRatio*100, maxDialogueRatio*100)
		}
	}

	if m.FancyTagRatio > maxFancyTagRatio {
		report.addCorrection(
			"TAGS: %.0f%% of dialogue tags are ornate verbs (cap %.0f%%). Use 'said' or an action beat.",
			m.FancyTagRatio*100, maxFancyTagRatio*100)
	}

	if m.LongParaRatio > maxLongParaRatio {
		report.addCorrection(
			"PARAGRAPHS: %.0f%% of paragraphs exceed %d words (cap %.0f%%). Break dense blocks at shifts of focus.",
			m.LongParaRatio*100, longParaWords, maxLongParaRatio*100)
	}

	if run := maxParagraphStarterRun(text); run > 2 {
		report.addCorrection(
			"PARAGRAPH STARTERS: %d consecutive paragraphs open on the same word. Vary paragraph openings.",
			run)
	}

	return report
}

// DialogueRatio is the fraction of words that sit inside quotes.
func DialogueRatio(text string) float64 {
	total := WordCount(text)
	if total == 0 {
		return 0
	}
	quoted := 0
	for _, q := range quotedRe.FindAllString(text, -1) {
		quoted += WordCount(q)
	}
	return float64(quoted) / float64(total)
}

// FancyTagRatio is ornate attribution verbs over all attribution verbs.
func FancyTagRatio(text string) float64 {
	lower := strings.ToLower(nonLetterToSpace(text))
	fields := strings.Fields(lower)
	counts := make(map[string]int, len(fields))
	for _, w := range fields {
		counts[w]++
	}

	fancy, plain := 0, 0
	for _, v := range lexicon.FancyAttributionVerbs {
		fancy += counts[v]
	}
	for _, v := range lexicon.PlainAttributionVerbs {
		plain += counts[v]
	}

	total := fancy + plain
	if total == 0 {
		return 0
	}
	return float64(fancy) / float64(total)
}

func longParagraphRatio(text string) float64 {
	paras := paragraphs(text)
	if len(paras) == 0 {
		return 0
	}
	long := 0
	for _, p := range paras {
		if WordCount(p) > longParaWords {
			long++
		}
	}
	return float64(long) / float64(len(paras))
}

func maxParagraphStarterRun(text string) int {
	paras := paragraphs(text)
	maxRun, run := 0, 0
	prev := ""
	for _, p := range paras {
		w := firstWord(p)
		if w != "" && w == prev {
			run++
		} else {
			run = 1
		}
		if run > maxRun {
			maxRun = run
		}
		prev = w
	}
	return maxRun
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func charactersPresent(text string, names []string) int {
	present := 0
	for _, name := range names {
		if name == "" {
			continue
		}
		first := strings.Fields(name)[0]
		if containsWholeWord(text, first) {
			present++
		}
	}
	return present
}
