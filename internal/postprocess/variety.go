package postprocess

import (
	"strings"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

var startPronouns = map[string]bool{
	"he": true, "she": true, "they": true, "it": true, "i": true, "we": true,
}

// fixSentenceVariety breaks same-starter runs and thins pronoun-heavy
// openings. Short same-subject neighbors are combined; remaining
// offenders get a neutral discourse marker, never a clichéd opener.
func fixSentenceVariety(text string, cfg Config, stats *Stats) string {
	openerIdx := 0
	paras := paragraphsOf(text)

	for pi, para := range paras {
		if strings.TrimSpace(para) == "" {
			continue
		}
		ss := splitSentences(para)
		if len(ss) < 2 {
			continue
		}

		ss = combineShortRuns(ss, cfg.MaxStarterRun, stats)
		ss = breakStarterRuns(ss, cfg.MaxStarterRun, &openerIdx, stats)
		ss = thinPronounStarts(ss, cfg.MaxPronounStart, &openerIdx, stats)

		paras[pi] = joinSentences(ss)
	}

	return joinParagraphs(paras)
}

// combineShortRuns merges the first short pair inside any same-starter
// run that exceeds the tolerance, eliding the repeated subject: "She
// waited. She watched. She wondered." becomes "She waited and watched.
// She wondered." Runs at or under the tolerance are left alone so a
// second pass finds nothing to do.
func combineShortRuns(ss []sentence, maxRun int, stats *Stats) []sentence {
	runLenAt := starterRunLengths(ss)

	out := make([]sentence, 0, len(ss))
	i := 0
	for i < len(ss) {
		cur := ss[i]
		if i+1 < len(ss) && runLenAt[i] > maxRun && !isDialogue(cur.text) && !isDialogue(ss[i+1].text) {
			next := ss[i+1]
			w1, w2 := firstWordOf(cur.text), firstWordOf(next.text)
			if w1 != "" && w1 == w2 && wordCount(cur.text) <= 8 && wordCount(next.text) <= 8 {
				merged := strings.TrimSpace(cur.text) + " and " + elideSubject(next.text)
				out = append(out, sentence{text: merged, end: next.end, sep: next.sep})
				stats.SentencesCombined++
				i += 2
				continue
			}
		}
		out = append(out, cur)
		i++
	}
	return out
}

// starterRunLengths maps each sentence index to the total length of the
// same-starter run it opens or belongs to.
func starterRunLengths(ss []sentence) []int {
	lens := make([]int, len(ss))
	i := 0
	for i < len(ss) {
		w := firstWordOf(ss[i].text)
		j := i + 1
		for w != "" && j < len(ss) && firstWordOf(ss[j].text) == w {
			j++
		}
		for k := i; k < j; k++ {
			lens[k] = j - i
		}
		i = j
	}
	return lens
}

// elideSubject drops the leading subject word of a clause.
func elideSubject(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 2 {
		return lowerFirst(strings.TrimSpace(s))
	}
	return lowerFirst(strings.Join(fields[1:], " "))
}

// breakStarterRuns prepends rotating neutral openers once a run exceeds
// the tolerance.
func breakStarterRuns(ss []sentence, maxRun int, openerIdx *int, stats *Stats) []sentence {
	run := 0
	prev := ""
	for i := range ss {
		if isDialogue(ss[i].text) {
			run, prev = 0, ""
			continue
		}
		w := firstWordOf(ss[i].text)
		if w != "" && w == prev {
			run++
		} else {
			run = 1
		}
		if run > maxRun {
			ss[i].text = prependOpener(ss[i].text, openerIdx)
			stats.StartersVaried++
			run = 1
		}
		prev = firstWordOf(ss[i].text)
	}
	return ss
}

// thinPronounStarts reduces the fraction of pronoun-opening sentences
// below the configured ceiling.
func thinPronounStarts(ss []sentence, maxRatio float64, openerIdx *int, stats *Stats) []sentence {
	if maxRatio <= 0 {
		return ss
	}

	count := func() (int, int) {
		total, pronoun := 0, 0
		for _, s := range ss {
			if isDialogue(s.text) {
				continue
			}
			total++
			if startPronouns[firstWordOf(s.text)] {
				pronoun++
			}
		}
		return total, pronoun
	}

	total, pronoun := count()
	if total == 0 {
		return ss
	}

	// Rewrite later offenders first; the paragraph's opening sentence
	// keeps its shape.
	for i := len(ss) - 1; i >= 1 && float64(pronoun)/float64(total) > maxRatio; i-- {
		if isDialogue(ss[i].text) || !startPronouns[firstWordOf(ss[i].text)] {
			continue
		}
		ss[i].text = prependOpener(ss[i].text, openerIdx)
		stats.StartersVaried++
		pronoun--
	}
	return ss
}

func prependOpener(s string, openerIdx *int) string {
	opener := lexicon.NeutralOpeners[*openerIdx%len(lexicon.NeutralOpeners)]
	*openerIdx++
	trimmed := strings.TrimLeft(s, " ")
	lead := s[:len(s)-len(trimmed)]
	return lead + opener + ", " + maybeLowerFirst(trimmed)
}

// commonStarters may be safely downcased after a prepended opener;
// anything else is likely a proper noun and keeps its capital.
var commonStarters = map[string]bool{
	"the": true, "a": true, "an": true, "he": true, "she": true,
	"they": true, "it": true, "i": true, "we": true, "there": true,
	"that": true, "this": true, "his": true, "her": true, "their": true,
	"its": true, "one": true, "no": true, "some": true, "every": true,
}

func maybeLowerFirst(s string) string {
	w := firstWordOf(s)
	if w == "i" || !commonStarters[w] {
		return s
	}
	return lowerFirst(s)
}
