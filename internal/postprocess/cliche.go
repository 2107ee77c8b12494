package postprocess

import (
	"regexp"
	"strings"
	"sync"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

var (
	clicheOnce     sync.Once
	openerRegexes  []*regexp.Regexp
	fillerRegexes  []*regexp.Regexp
	transitRegexes []*regexp.Regexp
)

func compileClicheTables() {
	clicheOnce.Do(func() {
		for _, o := range lexicon.ClicheOpeners {
			// Opener at sentence start, its trailing comma and space
			// removed along with it.
			openerRegexes = append(openerRegexes,
				regexp.MustCompile(`(?m)(^|[.!?]"?\s+)`+regexp.QuoteMeta(o)+`\s*`))
		}
		for _, f := range lexicon.FillerPhrases {
			fillerRegexes = append(fillerRegexes,
				regexp.MustCompile(`(?i)`+regexp.QuoteMeta(f)))
		}
		for _, tr := range lexicon.ClicheTransitions {
			transitRegexes = append(transitRegexes,
				regexp.MustCompile(`(?m)^`+regexp.QuoteMeta(tr)+`\s*`))
		}
	})
}

// removeCliches deletes fixed openers, transitions and filler phrases
// in place, re-capitalizing the clause that remains.
func removeCliches(text string, stats *Stats) string {
	compileClicheTables()

	for _, re := range openerRegexes {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			stats.ClichesRemoved++
			// Keep the sentence boundary that preceded the opener.
			if idx := strings.IndexAny(m, ".!?"); idx >= 0 {
				return m[:idx+1] + " "
			}
			return ""
		})
	}

	for _, re := range transitRegexes {
		text = re.ReplaceAllStringFunc(text, func(string) string {
			stats.ClichesRemoved++
			return ""
		})
	}

	for _, re := range fillerRegexes {
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			stats.ClichesRemoved++
			if m == "in order to" {
				return "to"
			}
			return ""
		})
	}

	// Deleted openers leave a lowercase clause at sentence start.
	text = recapitalizeSentences(text)

	return text
}

var sentenceStartRe = regexp.MustCompile(`(^|[.!?]"?\s+)([a-z])`)

func recapitalizeSentences(text string) string {
	return sentenceStartRe.ReplaceAllStringFunc(text, func(m string) string {
		return m[:len(m)-1] + strings.ToUpper(m[len(m)-1:])
	})
}
