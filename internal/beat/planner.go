package beat

import (
	"strings"

	"github.com/vampirenirmal/bookforge/internal/validate"
)

const minBeats = 3

// PlanBeats splits a chapter plan into contiguous sentence groups and
// assigns each a word target and a momentum label. The last beat
// absorbs the word remainder.
func PlanBeats(planText string, targetWords, beatSize int) []Beat {
	if beatSize <= 0 {
		beatSize = 400
	}

	count := (targetWords + beatSize - 1) / beatSize
	if count < minBeats {
		count = minBeats
	}

	sentences := validate.SplitSentences(planText)
	groups := splitIntoGroups(sentences, count)

	perBeat := targetWords / count
	beats := make([]Beat, count)
	for i := range beats {
		words := perBeat
		if i == count-1 {
			words = targetWords - perBeat*(count-1)
		}
		beats[i] = Beat{
			Number:      i + 1,
			Total:       count,
			Summary:     strings.Join(groups[i], ". "),
			TargetWords: words,
			Momentum:    momentumFor(i, count),
		}
	}
	return beats
}

// splitIntoGroups distributes sentences over count contiguous groups as
// evenly as possible; early groups take the extras.
func splitIntoGroups(sentences []string, count int) [][]string {
	groups := make([][]string, count)
	if len(sentences) == 0 {
		return groups
	}

	base := len(sentences) / count
	extra := len(sentences) % count
	idx := 0
	for g := 0; g < count; g++ {
		n := base
		if g < extra {
			n++
		}
		end := idx + n
		if end > len(sentences) {
			end = len(sentences)
		}
		groups[g] = sentences[idx:end]
		idx = end
	}
	// Fewer sentences than beats: reuse the plan's tail so no beat is
	// left without direction.
	for g := range groups {
		if len(groups[g]) == 0 {
			groups[g] = sentences[len(sentences)-1:]
		}
	}
	return groups
}

// momentumFor maps beat position to its job: open by escalating, close
// by resolving, and alternate complication with revelation between.
func momentumFor(i, count int) Momentum {
	switch {
	case i == 0:
		return MomentumEscalate
	case i == count-1:
		return MomentumResolve
	case (i % 2) == 1:
		return MomentumComplicate
	default:
		return MomentumReveal
	}
}
