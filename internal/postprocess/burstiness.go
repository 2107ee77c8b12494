package postprocess

import (
	"math"
	"strings"
)

// burstiness is stdDev/mean of sentence word counts across the text.
func burstiness(text string) float64 {
	var lengths []float64
	for _, para := range paragraphsOf(text) {
		for _, s := range splitSentences(para) {
			if n := wordCount(s.text); n > 0 {
				lengths = append(lengths, float64(n))
			}
		}
	}
	if len(lengths) < 2 {
		return 0
	}

	var sum float64
	for _, l := range lengths {
		sum += l
	}
	mean := sum / float64(len(lengths))
	if mean == 0 {
		return 0
	}

	var sq float64
	for _, l := range lengths {
		sq += (l - mean) * (l - mean)
	}
	return math.Sqrt(sq/float64(len(lengths))) / mean
}

// improveBurstiness widens the spread of sentence lengths when prose
// reads metronomic: long sentences split at a middle comma, dramatic
// sentences shed a trailing punch, and matched mediums are combined
// into one flowing sentence. All edits reuse the author's own words.
func improveBurstiness(text string, cfg Config, stats *Stats) string {
	if cfg.BurstinessTarget <= 0 || burstiness(text) >= cfg.BurstinessTarget {
		return text
	}

	paras := paragraphsOf(text)
	for pi, para := range paras {
		if strings.TrimSpace(para) == "" {
			continue
		}
		ss := splitSentences(para)

		ss = punchDramaticCues(ss, stats)
		ss = splitLongAtComma(ss, stats)
		ss = combineMediumPairs(ss, stats)

		paras[pi] = joinSentences(ss)
	}

	return joinParagraphs(paras)
}

// punchDramaticCues breaks the tail off an exclamatory sentence so the
// punch stands alone.
func punchDramaticCues(ss []sentence, stats *Stats) []sentence {
	var out []sentence
	for _, s := range ss {
		if strings.HasPrefix(s.end, "!") && !isDialogue(s.text) && wordCount(s.text) >= 12 {
			if idx := strings.LastIndex(s.text, ", "); idx > 0 {
				tail := strings.TrimSpace(s.text[idx+2:])
				if n := wordCount(tail); n >= 1 && n <= 6 {
					out = append(out,
						sentence{text: s.text[:idx], end: ".", sep: " "},
						sentence{text: upperFirst(tail), end: s.end, sep: s.sep})
					stats.PunchesInjected++
					continue
				}
			}
		}
		out = append(out, s)
	}
	return out
}

// splitLongAtComma halves sentences of eighteen or more words at the
// comma nearest the middle.
func splitLongAtComma(ss []sentence, stats *Stats) []sentence {
	var out []sentence
	for _, s := range ss {
		if isDialogue(s.text) || wordCount(s.text) < 18 {
			out = append(out, s)
			continue
		}

		mid := len(s.text) / 2
		best := -1
		for idx := strings.Index(s.text, ", "); idx >= 0; {
			if best == -1 || abs(idx-mid) < abs(best-mid) {
				best = idx
			}
			next := strings.Index(s.text[idx+1:], ", ")
			if next < 0 {
				break
			}
			idx = idx + 1 + next
		}

		if best <= 0 {
			out = append(out, s)
			continue
		}

		head := s.text[:best]
		tail := strings.TrimSpace(s.text[best+2:])
		if wordCount(head) < 4 || wordCount(tail) < 4 {
			out = append(out, s)
			continue
		}

		out = append(out,
			sentence{text: head, end: ".", sep: " "},
			sentence{text: upperFirst(tail), end: s.end, sep: s.sep})
		stats.SentencesSplit++
	}
	return out
}

// combineMediumPairs joins consecutive same-subject medium sentences
// with a connector, eliding the repeated subject.
func combineMediumPairs(ss []sentence, stats *Stats) []sentence {
	connectors := []string{"and", "while", "before", "as"}
	var out []sentence
	i := 0
	ci := 0
	for i < len(ss) {
		cur := ss[i]
		if i+1 < len(ss) && !isDialogue(cur.text) && !isDialogue(ss[i+1].text) {
			next := ss[i+1]
			n1, n2 := wordCount(cur.text), wordCount(next.text)
			sameSubject := firstWordOf(cur.text) == firstWordOf(next.text) && firstWordOf(cur.text) != ""
			if sameSubject && n1 >= 8 && n1 <= 14 && n2 >= 8 && n2 <= 14 && cur.end == "." {
				conn := connectors[ci%len(connectors)]
				ci++
				merged := strings.TrimSpace(cur.text) + " " + conn + " " + elideSubject(next.text)
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

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
