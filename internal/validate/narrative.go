package validate

import (
	"math"
	"regexp"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

// Thresholds parameterize the narrative metrics per format.
type Thresholds struct {
	MinVariance    float64
	MaxNameDensity float64
	MaxStaccato    float64
	MaxLoop        float64
	MaxBannedHits  int
	MaxStarterRun  int
	SensoryWindow  int // words of prose per required non-visual sensory hit
}

// DefaultThresholds are the novel defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinVariance:    4.2,
		MaxNameDensity: 2.5,
		MaxStaccato:    0.6,
		MaxLoop:        0.4,
		MaxBannedHits:  2,
		MaxStarterRun:  2,
		SensoryWindow:  300,
	}
}

// SentenceVariance is the standard deviation of sentence word counts,
// the Gary Provost rhythm measure.
func SentenceVariance(text string) float64 {
	sentences := SplitSentences(text)
	if len(sentences) < 2 {
		return 0
	}

	lengths := make([]float64, len(sentences))
	var sum float64
	for i, s := range sentences {
		lengths[i] = float64(WordCount(s))
		sum += lengths[i]
	}
	mean := sum / float64(len(lengths))

	var sq float64
	for _, l := range lengths {
		sq += (l - mean) * (l - mean)
	}
	return math.Sqrt(sq / float64(len(lengths)))
}

// NameDensity counts whole-word, case-insensitive matches of any
// character name per 100 words of text.
func NameDensity(text string, names []string) float64 {
	words := WordCount(text)
	if words == 0 {
		return 0
	}

	matches := 0
	for _, name := range names {
		if name == "" {
			continue
		}
		// First name alone is what prose repeats.
		first := strings.Fields(name)[0]
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(first) + `\b`)
		matches += len(re.FindAllString(text, -1))
	}
	return float64(matches) / float64(words) * 100
}

// StaccatoRatio is the fraction of sentences running 5 to 12 words.
func StaccatoRatio(text string) float64 {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return 0
	}
	short := 0
	for _, s := range sentences {
		if n := WordCount(s); n >= 5 && n <= 12 {
			short++
		}
	}
	return float64(short) / float64(len(sentences))
}

// LoopSimilarity compares the current text's keyword set against the
// concatenated previous beats.
func LoopSimilarity(text, previous string) float64 {
	if strings.TrimSpace(previous) == "" {
		return 0
	}
	return Jaccard(KeywordSet(text), KeywordSet(previous))
}

// BannedPhraseHits counts case-insensitive substring hits from the
// telltale list.
func BannedPhraseHits(text string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, phrase := range lexicon.BannedPhrases {
		hits += strings.Count(lower, phrase)
	}
	return hits
}

// MaxSameStarterRun is the longest run of consecutive sentences opening
// on the same word.
func MaxSameStarterRun(text string) int {
	sentences := SplitSentences(text)
	maxRun, run := 0, 0
	prev := ""
	for _, s := range sentences {
		w := firstWord(s)
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

// SensoryHits counts distinct non-visual sensory words present.
func SensoryHits(text string) int {
	hits := 0
	for _, set := range lexicon.SensorySets {
		for _, w := range set {
			if containsWholeWord(text, w) {
				hits++
			}
		}
	}
	return hits
}

// Narrative runs the shared math checks and produces surgical feedback.
// previous is the concatenation of earlier beats for loop detection.
func Narrative(text string, names []string, previous string, th Thresholds) Report {
	report := Report{IsValid: true}

	m := &report.Metrics
	m.WordCount = WordCount(text)
	m.SentenceVariance = SentenceVariance(text)
	m.NameDensity = NameDensity(text, names)
	m.StaccatoRatio = StaccatoRatio(text)
	m.LoopSimilarity = LoopSimilarity(text, previous)
	m.BannedHits = BannedPhraseHits(text)
	m.MaxStarterRun = MaxSameStarterRun(text)
	m.SensoryHits = SensoryHits(text)

	if m.SentenceVariance < th.MinVariance {
		report.addCorrection(
			"RHYTHM: sentence variance %.1f is below %.1f. Combine some short sentences and break one long sentence so lengths swing between roughly 4 and 25 words.",
			m.SentenceVariance, th.MinVariance)
	}

	if m.NameDensity > th.MaxNameDensity {
		report.addCorrection(
			"NAME OVERUSE: name density %.1f per 100 words exceeds %.1f. Replace repeated names with pronouns or role words; keep the name only where a pronoun would be ambiguous.",
			m.NameDensity, th.MaxNameDensity)
	}

	if m.StaccatoRatio > th.MaxStaccato {
		report.addCorrection(
			"STACCATO: %.0f%% of sentences run 5 to 12 words (cap %.0f%%). Let several sentences breathe past 18 words.",
			m.StaccatoRatio*100, th.MaxStaccato*100)
	}

	if m.LoopSimilarity > th.MaxLoop {
		report.addCorrection(
			"LOOP: keyword overlap with earlier beats is %.2f (cap %.2f). This beat re-treads prior ground; advance to a new action, location or revelation.",
			m.LoopSimilarity, th.MaxLoop)
	}

	if m.BannedHits > th.MaxBannedHits {
		report.addCorrection(
			"CLICHE: %d stock phrases detected (cap %d). Cut constructions like 'a testament to' or 'palpable tension' and describe the concrete detail instead.",
			m.BannedHits, th.MaxBannedHits)
	}

	if m.MaxStarterRun > th.MaxStarterRun {
		report.addCorrection(
			"STARTERS: %d consecutive sentences open on the same word (cap %d). Vary openings with time, place or action.",
			m.MaxStarterRun, th.MaxStarterRun)
	}

	required := requiredSensoryHits(m.WordCount, th.SensoryWindow)
	if m.SensoryHits < required {
		report.addCorrection(
			"SENSES: only %d non-visual sensory details for %d words (need %d). Add smell, touch, temperature or sound.",
			m.SensoryHits, m.WordCount, required)
	}

	return report
}

func requiredSensoryHits(words, window int) int {
	if window <= 0 || words == 0 {
		return 0
	}
	required := words / window
	if required < 1 {
		required = 1
	}
	return required
}

// QuickCheck returns the first failing metric only, for hot paths that
// need a cheap yes/no with one actionable correction.
func QuickCheck(text string, names []string, previous string, th Thresholds) (bool, string) {
	if v := SentenceVariance(text); v < th.MinVariance {
		return false, "sentence rhythm too uniform"
	}
	if d := NameDensity(text, names); d > th.MaxNameDensity {
		return false, "character names repeated too often"
	}
	if s := LoopSimilarity(text, previous); s > th.MaxLoop {
		return false, "beat repeats earlier content"
	}
	if h := BannedPhraseHits(text); h > th.MaxBannedHits {
		return false, "too many stock phrases"
	}
	return true, ""
}
