package beat

import (
	"fmt"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/heat"
	"github.com/vampirenirmal/bookforge/internal/state"
	"github.com/vampirenirmal/bookforge/internal/validate"
)

// Context is the assembled material for one beat attempt.
type Context struct {
	Anchor           string
	Synopsis         string
	RecentHistory    []string // summaries of the last two beats
	FactSheet        string
	LogicBridge      string
	HeatPrompt       string // set after a prior safety block
	ChaosPrompt      string
	FrictionPrompt   string
	SurgicalFeedback string // validator corrections from the failed attempt
	PreviousBeats    string // full text, for loop detection
}

const bridgeWindow = 1000

// buildLogicBridge derives a Therefore/But connector from the tail of
// the previous beat. A detected loop or semantic rewind flips the
// connector to But: the story must turn, not continue.
func buildLogicBridge(previousBeats string, loopDetected bool) string {
	tail := previousBeats
	if len(tail) > bridgeWindow {
		tail = tail[len(tail)-bridgeWindow:]
	}
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return ""
	}

	sentences := validate.SplitSentences(tail)
	last := ""
	if len(sentences) > 0 {
		last = sentences[len(sentences)-1]
	}

	if loopDetected {
		return fmt.Sprintf(
			"LOGIC BRIDGE: the story just circled back on itself. The previous beat ended on: %q. Open with BUT: something interrupts, contradicts or reverses that state. Do not restate it.",
			last)
	}
	return fmt.Sprintf(
		"LOGIC BRIDGE: the previous beat ended on: %q. Open with the consequence of that moment, a THEREFORE, not a fresh start and not a repetition.",
		last)
}

// semanticRewind reports whether a beat ends where it began: its first
// and last sentences sharing enough significant keywords to suggest the
// action reset itself.
func semanticRewind(text string) bool {
	sentences := validate.SplitSentences(text)
	if len(sentences) < 3 {
		return false
	}
	first := validate.KeywordSet(sentences[0])
	last := validate.KeywordSet(sentences[len(sentences)-1])

	shared := 0
	for w := range first {
		if last[w] {
			shared++
		}
	}
	return shared >= 2
}

// factSheet renders the character records the writer must respect.
func factSheet(facts []state.CharacterFact) string {
	if len(facts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("CHARACTER FACTS (do not contradict):\n")
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s", f.Name)
		if f.Gender != "" {
			fmt.Fprintf(&b, " (%s)", f.Gender)
		}
		if f.Age != nil {
			fmt.Fprintf(&b, ", age %d", *f.Age)
		}
		if f.Location != "" {
			fmt.Fprintf(&b, ", at %s", f.Location)
		}
		if f.LastAction != "" {
			fmt.Fprintf(&b, ", last seen %s", f.LastAction)
		}
		if len(f.Knows) > 0 {
			fmt.Fprintf(&b, "; knows: %s", strings.Join(f.Knows, "; "))
		}
		if len(f.Wounds) > 0 {
			fmt.Fprintf(&b, "; carrying: %s", strings.Join(f.Wounds, "; "))
		}
		if f.SpeechPattern != "" {
			fmt.Fprintf(&b, "; speaks %s", f.SpeechPattern)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// summarizeBeat produces the short local history entry for a beat: its
// first and last sentences, which is enough continuity for the next
// beat without re-feeding full text.
func summarizeBeat(text string) string {
	sentences := validate.SplitSentences(text)
	switch len(sentences) {
	case 0:
		return ""
	case 1:
		return sentences[0]
	default:
		return sentences[0] + " … " + sentences[len(sentences)-1]
	}
}

// prompt renders the full writer prompt for one beat attempt.
func (e *Engine) prompt(in ChapterInput, b Beat, ctx Context) string {
	var p strings.Builder

	fmt.Fprintf(&p, "You are writing beat %d of %d of chapter %d of a %s", b.Number, b.Total, in.Chapter, in.Format.Format)
	if in.Genre != "" {
		fmt.Fprintf(&p, " (%s)", in.Genre)
	}
	p.WriteString(".\n\n")

	p.WriteString(heat.GuidelinePreamble(in.Rating))
	p.WriteString("\n\n")

	if ctx.Anchor != "" {
		fmt.Fprintf(&p, "WHERE THE BOOK BEGAN: %s\n\n", ctx.Anchor)
	}
	if ctx.Synopsis != "" {
		fmt.Fprintf(&p, "STORY SO FAR: %s\n\n", ctx.Synopsis)
	}
	if len(ctx.RecentHistory) > 0 {
		p.WriteString("MOMENTS JUST BEFORE THIS ONE:\n")
		for _, h := range ctx.RecentHistory {
			fmt.Fprintf(&p, "- %s\n", h)
		}
		p.WriteString("\n")
	}
	if ctx.FactSheet != "" {
		p.WriteString(ctx.FactSheet)
		p.WriteString("\n")
	}
	if ctx.LogicBridge != "" {
		p.WriteString(ctx.LogicBridge)
		p.WriteString("\n\n")
	}

	fmt.Fprintf(&p, "THIS BEAT: %s\n", b.Summary)
	fmt.Fprintf(&p, "MOMENTUM: %s the situation. Target length: about %d words.\n", b.Momentum, b.TargetWords)
	if len(b.Required) > 0 {
		fmt.Fprintf(&p, "MUST INCLUDE: %s\n", strings.Join(b.Required, "; "))
	}
	if len(b.Forbidden) > 0 {
		fmt.Fprintf(&p, "MUST NOT INCLUDE: %s\n", strings.Join(b.Forbidden, "; "))
	}
	p.WriteString("\n")

	for _, extra := range []string{ctx.ChaosPrompt, ctx.FrictionPrompt, ctx.HeatPrompt} {
		if extra != "" {
			p.WriteString(extra)
			p.WriteString("\n\n")
		}
	}

	if ctx.SurgicalFeedback != "" {
		p.WriteString("THE PREVIOUS ATTEMPT FAILED THESE CHECKS. Fix exactly these problems and change nothing else about the content:\n")
		p.WriteString(ctx.SurgicalFeedback)
		p.WriteString("\n\n")
	}

	p.WriteString("Write the prose of this beat only. No headings, no beat numbers, no commentary.")
	return p.String()
}
