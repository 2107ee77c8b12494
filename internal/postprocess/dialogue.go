package postprocess

import (
	"regexp"
	"strings"
	"sync"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

var (
	dialogueOnce  sync.Once
	tagAfterRe    *regexp.Regexp // "..." Mara exclaimed
	tagBeforeRe   *regexp.Regexp // exclaimed Mara
	tagAdverbRe   *regexp.Regexp // said softly
	adverbFirstRe *regexp.Regexp // softly said
)

func compileDialogueTables() {
	dialogueOnce.Do(func() {
		fancy := strings.Join(lexicon.FancyAttributionVerbs, "|")
		plain := strings.Join(lexicon.PlainAttributionVerbs, "|")

		tagAfterRe = regexp.MustCompile(`(["”]\s+)((?:[A-Z][a-zA-Z]+|he|she|they|He|She|They)\s+)(` + fancy + `)\b`)
		tagBeforeRe = regexp.MustCompile(`(["”]\s+)(` + fancy + `)(\s+[A-Z][a-zA-Z]+)`)
		tagAdverbRe = regexp.MustCompile(`\b(` + plain + `|` + fancy + `)\s+([a-z]+ly)\b`)
		adverbFirstRe = regexp.MustCompile(`\b([a-z]+ly)\s+(` + plain + `)\b`)
	})
}

// polishDialogue tames attribution: ornate verbs beyond the per-page
// budget become "said", and -ly adverbs fall out of tags.
func polishDialogue(text string, cfg Config, stats *Stats) string {
	compileDialogueTables()

	budget := cfg.TagsPerPage
	if budget < 0 {
		budget = 0
	}

	// One ornate verb per ~200-word page may stay; the rest flatten.
	pageOf := func(byteOffset int) int {
		return wordCount(text[:byteOffset]) / 200
	}
	kept := make(map[int]int)

	replace := func(re *regexp.Regexp, verbGroup int) {
		var edits []struct {
			start, end int
		}
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			vs, ve := m[2*verbGroup], m[2*verbGroup+1]
			page := pageOf(vs)
			if kept[page] < budget {
				kept[page]++
				continue
			}
			edits = append(edits, struct{ start, end int }{vs, ve})
		}
		for i := len(edits) - 1; i >= 0; i-- {
			text = text[:edits[i].start] + "said" + text[edits[i].end:]
			stats.TagsSimplified++
		}
	}

	replace(tagAfterRe, 3)
	replace(tagBeforeRe, 2)

	text = tagAdverbRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := strings.SplitN(m, " ", 2)
		if len(parts) != 2 || !isAttributionAdverb(parts[1]) {
			return m
		}
		stats.AdverbsDropped++
		return parts[0]
	})

	text = adverbFirstRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := strings.SplitN(m, " ", 2)
		if len(parts) != 2 || !isAttributionAdverb(parts[0]) {
			return m
		}
		stats.AdverbsDropped++
		return parts[1]
	})

	return text
}

// isAttributionAdverb filters false -ly positives that are not adverbs.
func isAttributionAdverb(w string) bool {
	switch w {
	case "only", "early", "family", "likely", "ugly", "holy", "belly",
		"reply", "supply", "apply", "fly", "ally", "bully", "jelly", "rally":
		return false
	}
	return strings.HasSuffix(w, "ly") && len(w) > 4
}
