// Package heat transforms prompts and retries according to content
// rating and prior safety blocks. Explicit description is traded for
// psychological tension on retry; post-processing restores directness.
package heat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

// ContentType selects which focus/avoid lists a heat-reduction prompt
// carries.
type ContentType string

const (
	ContentViolence ContentType = "violence"
	ContentRomance  ContentType = "romance"
	ContentHorror   ContentType = "horror"
	ContentTrauma   ContentType = "trauma"
	ContentGeneral  ContentType = "general"
)

// GuidelinePreamble returns the content-guideline block injected into
// every prose prompt.
func GuidelinePreamble(rating format.ContentRating) string {
	switch rating {
	case format.RatingChildrens:
		return `CONTENT GUIDELINES: This is a children's book. Keep all content
gentle and reassuring. Conflict is resolved through kindness and cleverness.
No violence, no romance beyond friendship, no frightening imagery that
lingers. Peril is mild and brief.`
	case format.RatingMature:
		return `CONTENT GUIDELINES: This is a book for adult readers. Violence,
desire and moral compromise may appear on the page when the story earns
them. Render consequence honestly. Never linger gratuitously; every hard
moment must advance character or plot.`
	default:
		return `CONTENT GUIDELINES: This is a book for a general audience.
Violence may be depicted but not dwelt upon in anatomical detail. Romance
stays at the level of tension and implication. Keep language within what a
mainstream publisher would print.`
	}
}

type reduction struct {
	focus []string
	avoid []string
}

var reductions = map[ContentType]reduction{
	ContentViolence: {
		focus: []string{
			"the sounds and aftermath rather than the act",
			"what the viewpoint character fears will happen next",
			"physical cost shown later: bandages, limps, avoided mirrors",
		},
		avoid: []string{
			"wound anatomy and blood quantity",
			"step-by-step choreography of harm",
		},
	},
	ContentRomance: {
		focus: []string{
			"charged restraint: what is almost said, almost done",
			"sensory atmosphere around the pair, not their bodies",
			"the morning after as implication",
		},
		avoid: []string{
			"explicit physical description",
			"anatomical language of any kind",
		},
	},
	ContentHorror: {
		focus: []string{
			"dread before the reveal, wrongness in ordinary detail",
			"what the character refuses to look at",
			"sound, temperature and smell doing the frightening",
		},
		avoid: []string{
			"gore and body detail",
			"naming the thing outright too early",
		},
	},
	ContentTrauma: {
		focus: []string{
			"dissociated, fragmentary perception",
			"the gap between what happened and what can be said",
			"long-term echoes: habits, triggers, silences",
		},
		avoid: []string{
			"re-enacting the traumatic event in real time",
			"clinical or graphic retelling",
		},
	},
	ContentGeneral: {
		focus: []string{
			"psychological tension and consequence",
			"sensory atmosphere standing in for the explicit",
		},
		avoid: []string{
			"graphic description of any kind",
		},
	},
}

// ReductionPrompt is injected into a retry after a safety block. It
// asks for the same scene with the heat carried by implication.
func ReductionPrompt(ct ContentType) string {
	r, ok := reductions[ct]
	if !ok {
		r = reductions[ContentGeneral]
	}

	var b strings.Builder
	b.WriteString("The previous attempt was declined by content filters. Rewrite the same story moment with the intensity carried by implication instead of depiction.\n")
	b.WriteString("FOCUS ON:\n")
	for _, f := range r.focus {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("AVOID:\n")
	for _, a := range r.avoid {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	b.WriteString("Do not reduce the stakes; reduce only the explicitness.")
	return b.String()
}

// DetectContentType guesses the dominant content type of a chapter plan
// so the right reduction lists are used on retry.
func DetectContentType(text string) ContentType {
	lower := strings.ToLower(text)
	scores := map[ContentType]int{}

	for ct, words := range map[ContentType][]string{
		ContentViolence: {"fight", "kill", "blood", "weapon", "attack", "war", "battle", "wound"},
		ContentRomance:  {"love", "kiss", "desire", "romance", "attraction", "passion"},
		ContentHorror:   {"horror", "terror", "haunt", "monster", "scream", "dread", "ghost"},
		ContentTrauma:   {"abuse", "grief", "loss", "trauma", "assault", "survivor"},
	} {
		for _, w := range words {
			scores[ct] += strings.Count(lower, w)
		}
	}

	best, bestScore := ContentGeneral, 0
	for ct, s := range scores {
		if s > bestScore {
			best, bestScore = ct, s
		}
	}
	if bestScore < 2 {
		return ContentGeneral
	}
	return best
}

// Sanitize converts explicit terms to euphemisms for a blocked retry.
func Sanitize(text string) string {
	return replaceWholeWords(text, lexicon.SanitizeMap)
}

// RestoreGrit reverses corporate euphemism in final prose so the reader
// gets direct language back.
func RestoreGrit(text string) string {
	return replaceWholeWords(text, lexicon.RestoreMap)
}

func replaceWholeWords(text string, table map[string]string) string {
	for from, to := range table {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(from) + `\b`)
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			if isCapitalized(m) {
				return capitalize(to)
			}
			return to
		})
	}
	return text
}

func isCapitalized(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
