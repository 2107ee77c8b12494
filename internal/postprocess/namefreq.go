package postprocess

import (
	"regexp"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

var sceneBreakRe = regexp.MustCompile(`(?m)^\s*(\*\s*\*\s*\*|---+|#+)\s*$`)

// enforceNameFrequency thins repeated character names inside each scene
// segment. The first mention of a character in a segment always keeps
// the name; later mentions closer than the configured word gap become a
// pronoun, or the character's epithet when another same-gender character
// was named in between. Names inside dialogue and in attribution
// position are never touched.
func enforceNameFrequency(text string, characters []Character, cfg Config, stats *Stats) string {
	if len(characters) == 0 || cfg.NameGapWords <= 0 {
		return text
	}

	segments := sceneBreakRe.Split(text, -1)
	breaks := sceneBreakRe.FindAllString(text, -1)

	for si, segment := range segments {
		segments[si] = thinSegment(segment, characters, cfg, stats)
	}

	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(seg)
		if i < len(breaks) {
			b.WriteString(breaks[i])
		}
	}
	return b.String()
}

type mention struct {
	char  *Character
	start int
	end   int
}

func thinSegment(segment string, characters []Character, cfg Config, stats *Stats) string {
	mentions := findMentions(segment, characters)
	if len(mentions) < 2 {
		return segment
	}

	inQuote := quoteMask(segment)

	lastKept := make(map[string]int) // character name -> word offset of last kept name
	seen := make(map[string]bool)    // characters already introduced in this segment
	var edits []struct {
		start, end int
		repl       string
	}

	for _, m := range mentions {
		offset := wordCount(segment[:m.start])
		name := m.char.Name

		keep := func() {
			lastKept[name] = offset
			seen[name] = true
		}

		if !seen[name] {
			keep()
			continue
		}
		if inQuote[m.start] || isAttributionPosition(segment, m.start, m.end) {
			keep()
			continue
		}
		// Possessives keep the name; "her" vs "she" is not worth the
		// grammar risk.
		if m.end < len(segment) && segment[m.end] == '\'' {
			keep()
			continue
		}
		if offset-lastKept[name] >= cfg.NameGapWords {
			keep()
			continue
		}

		repl := pronounFor(m.char.Gender)
		if otherSameGenderSeen(characters, seen, m.char) {
			// A pronoun would be ambiguous; fall back to the epithet,
			// or keep the name when none exists.
			if m.char.Epithet == "" {
				keep()
				continue
			}
			repl = m.char.Epithet
		}

		if atSentenceStart(segment, m.start) {
			repl = upperFirst(repl)
		}
		edits = append(edits, struct {
			start, end int
			repl       string
		}{m.start, m.end, repl})
		stats.NamesReplaced++
	}

	for i := len(edits) - 1; i >= 0; i-- {
		segment = segment[:edits[i].start] + edits[i].repl + segment[edits[i].end:]
	}
	return segment
}

// findMentions locates whole-word first-name matches for every
// character, in document order.
func findMentions(segment string, characters []Character) []mention {
	var all []mention
	for ci := range characters {
		c := &characters[ci]
		first := strings.Fields(c.Name)
		if len(first) == 0 {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(first[0]) + `\b`)
		for _, loc := range re.FindAllStringIndex(segment, -1) {
			all = append(all, mention{char: c, start: loc[0], end: loc[1]})
		}
	}
	// Insertion sort by position; mention lists are short.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].start < all[j-1].start; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	return all
}

// quoteMask marks, per byte, whether the position sits inside double
// quotes.
func quoteMask(s string) []bool {
	mask := make([]bool, len(s))
	in := false
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			in = !in
			mask[i] = true
			continue
		}
		mask[i] = in
	}
	return mask
}

// isAttributionPosition reports whether the name sits next to a speech
// verb, as in `"..." Mara said` or `asked Mara`.
func isAttributionPosition(s string, start, end int) bool {
	after := strings.Fields(s[end:min(len(s), end+24)])
	if len(after) > 0 && isSpeechVerb(after[0]) {
		return true
	}
	beforeText := s[max(0, start-24):start]
	before := strings.Fields(beforeText)
	if len(before) > 0 && isSpeechVerb(before[len(before)-1]) {
		return true
	}
	// Directly after closing dialogue: `"Go," Mara ...`
	trimmed := strings.TrimRight(beforeText, " ")
	return strings.HasSuffix(trimmed, `"`)
}

func isSpeechVerb(w string) bool {
	w = strings.ToLower(strings.Trim(w, `.,;:!?"'`))
	for _, v := range lexicon.PlainAttributionVerbs {
		if w == v {
			return true
		}
	}
	for _, v := range lexicon.FancyAttributionVerbs {
		if w == v {
			return true
		}
	}
	return false
}

func otherSameGenderSeen(characters []Character, seen map[string]bool, who *Character) bool {
	for _, c := range characters {
		if c.Name != who.Name && seen[c.Name] && strings.EqualFold(c.Gender, who.Gender) {
			return true
		}
	}
	return false
}

func pronounFor(gender string) string {
	switch strings.ToLower(gender) {
	case "female", "f", "woman", "girl":
		return "she"
	case "male", "m", "man", "boy":
		return "he"
	default:
		return "they"
	}
}

func atSentenceStart(s string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		switch s[i] {
		case ' ', '\t', '\n', '"':
			continue
		case '.', '!', '?':
			return true
		default:
			return false
		}
	}
	return true
}
