package validate

import (
	"regexp"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

var (
	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
	wordRe        = regexp.MustCompile(`[A-Za-z']+`)
)

// SplitSentences breaks prose on terminal punctuation, dropping empty
// fragments. Abbreviation handling is deliberately naive; the metrics
// tolerate a little noise.
func SplitSentences(text string) []string {
	parts := sentenceEndRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// Words extracts lowercase word tokens.
func Words(text string) []string {
	raw := wordRe.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		out = append(out, strings.ToLower(strings.Trim(w, "'")))
	}
	return out
}

// WordCount counts whitespace-separated tokens, matching how targets
// are expressed everywhere else.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// KeywordSet returns the significant keywords of a text: four or more
// characters, stop words removed.
func KeywordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range Words(text) {
		if len(w) >= 4 && !lexicon.StopWords[w] {
			set[w] = true
		}
	}
	return set
}

// Jaccard computes set similarity.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	unionSize := len(a) + len(b) - inter
	if unionSize == 0 {
		return 0
	}
	return float64(inter) / float64(unionSize)
}

// firstWord returns the lowercase first word of a sentence.
func firstWord(sentence string) string {
	ws := Words(sentence)
	if len(ws) == 0 {
		return ""
	}
	return ws[0]
}

// containsWholeWord reports a case-insensitive whole-word match.
func containsWholeWord(text, word string) bool {
	lower := " " + strings.ToLower(nonLetterToSpace(text)) + " "
	return strings.Contains(lower, " "+strings.ToLower(word)+" ")
}

func nonLetterToSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '\'' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}
