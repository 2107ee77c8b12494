package validate

import (
	"regexp"
	"strings"
	"sync"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
	"github.com/vampirenirmal/bookforge/internal/state"
)

var (
	genreRegexOnce sync.Once
	genreRegexes   []compiledGenreRule
)

type compiledGenreRule struct {
	genre   string
	re      *regexp.Regexp
	message string
}

func compiledRules() []compiledGenreRule {
	genreRegexOnce.Do(func() {
		for _, rule := range lexicon.GenreRules {
			genreRegexes = append(genreRegexes, compiledGenreRule{
				genre:   rule.Genre,
				re:      regexp.MustCompile(`(?i)` + rule.Pattern),
				message: rule.Message,
			})
		}
	})
	return genreRegexes
}

// Genre runs genre-specific plausibility rules and cross-checks the text
// against the book's runtime state: tension-gated vocabulary, premature
// secret mentions and voice-profile dialogue caps. Rule hits invalidate;
// state mismatches are structured warnings.
func Genre(text, genre, bookID string, store *state.Store) Report {
	report := Report{IsValid: true}
	lowerGenre := strings.ToLower(genre)

	for _, rule := range compiledRules() {
		if !strings.Contains(lowerGenre, rule.genre) {
			continue
		}
		if loc := rule.re.FindString(text); loc != "" {
			report.addCorrection("GENRE: %q: %s.", strings.TrimSpace(loc), rule.message)
		}
	}

	if store == nil {
		return report
	}

	lower := strings.ToLower(text)

	for _, arc := range store.Arcs(bookID) {
		switch arc.Type {
		case state.ArcRomantic:
			if arc.CurrentLevel < lexicon.IntimacyMinLevel {
				for _, w := range lexicon.IntimacyVocabulary {
					if strings.Contains(lower, w) {
						report.addWarning(
							"intimacy vocabulary %q at romance tension %d (needs %d)",
							w, arc.CurrentLevel, lexicon.IntimacyMinLevel)
						break
					}
				}
			}
		case state.ArcConflict:
			if arc.CurrentLevel < lexicon.ConflictMinLevel {
				for _, w := range lexicon.ConflictVocabulary {
					if strings.Contains(lower, w) {
						report.addWarning(
							"open violence %q at conflict tension %d (needs %d)",
							w, arc.CurrentLevel, lexicon.ConflictMinLevel)
						break
					}
				}
			}
		}
	}

	for _, secret := range store.Secrets(bookID) {
		if secret.IsRevealed || secret.TruthSummary == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(secret.TruthSummary)) {
			report.addWarning("unrevealed secret %q stated outright", secret.Type)
		}
	}

	for _, fact := range store.Facts(bookID) {
		voice, ok := store.Voice(bookID, fact.Name)
		if !ok || voice.MaxDialogueWords <= 0 {
			continue
		}
		for _, speech := range attributedSpeech(text, fact.Name) {
			if n := WordCount(speech); n > voice.MaxDialogueWords {
				report.addWarning(
					"%s speaks %d words in one line (voice cap %d)",
					fact.Name, n, voice.MaxDialogueWords)
			}
		}
	}

	return report
}

// attributedSpeech finds quoted spans adjacent to a character's name.
func attributedSpeech(text, name string) []string {
	first := strings.Fields(name)
	if len(first) == 0 {
		return nil
	}
	re := regexp.MustCompile(`"([^"]+)"[^"]{0,40}\b` + regexp.QuoteMeta(first[0]) + `\b|\b` + regexp.QuoteMeta(first[0]) + `\b[^"]{0,40}"([^"]+)"`)
	var out []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			out = append(out, m[1])
		}
		if m[2] != "" {
			out = append(out, m[2])
		}
	}
	return out
}
