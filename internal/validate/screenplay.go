package validate

import (
	"regexp"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

var (
	sluglineRe      = regexp.MustCompile(`^(INT\./EXT\.|I/E\.|INT\.|EXT\.)\s+.+\s-\s+[A-Z ]+$`)
	characterCueRe  = regexp.MustCompile(`^[A-Z][A-Z .'-]{1,30}(\s\(.+\))?$`)
	parentheticalRe = regexp.MustCompile(`^\(.+\)$`)
)

const (
	maxActionSentences    = 3
	maxSpeechLines        = 4
	speechCharsPerLine    = 35
	maxParentheticalsPage = 2
	wordsPerScriptPage    = 190
)

// Screenplay validates script pages: slugline grammar, no camera
// direction, tight action blocks, short speeches, restrained
// parentheticals and no on-the-nose dialogue.
func Screenplay(text string, names []string, previous string, th Thresholds) Report {
	lines := strings.Split(text, "\n")
	blocks := scriptBlocks(lines)

	// Narrative metrics run on action and speech only; cues and
	// sluglines would swamp the name-density measure.
	var prose strings.Builder
	for _, b := range blocks {
		if b.kind == blockAction || b.kind == blockSpeech {
			prose.WriteString(b.text)
			prose.WriteString(" ")
		}
	}
	report := Narrative(prose.String(), names, previous, th)

	sluglines := 0
	parentheticals := 0

	for _, b := range blocks {
		switch b.kind {
		case blockSlugline:
			sluglines++
			if !sluglineRe.MatchString(b.text) {
				report.addCorrection(
					"SLUGLINE: %q is malformed. Use 'INT. LOCATION - DAY' or 'EXT. LOCATION - NIGHT'.",
					b.text)
			}
		case blockAction:
			if n := len(SplitSentences(b.text)); n > maxActionSentences {
				report.addCorrection(
					"ACTION: an action block runs %d sentences (cap %d). Cut to what the audience sees and hears.",
					n, maxActionSentences)
			}
		case blockSpeech:
			if lines := estimatedSpeechLines(b.text); lines > maxSpeechLines {
				report.addCorrection(
					"SPEECH: a speech runs roughly %d lines (cap %d). Break it with action or cut it down.",
					lines, maxSpeechLines)
			}
		case blockParenthetical:
			parentheticals++
		}
	}

	if sluglines == 0 {
		report.addCorrection("SLUGLINE: no scene heading found. Open each scene with INT. or EXT.")
	}

	lower := strings.ToLower(text)
	for _, dir := range lexicon.CameraDirections {
		if strings.Contains(lower, dir) {
			report.addCorrection(
				"CAMERA: %q directs the camera. Describe the scene; the director chooses the shot.", dir)
			break
		}
	}

	for _, pattern := range lexicon.OnTheNosePatterns {
		if strings.Contains(lower, pattern) {
			report.addCorrection(
				"ON THE NOSE: dialogue contains %q. Let subtext carry the information.", pattern)
			break
		}
	}

	pages := float64(WordCount(text)) / wordsPerScriptPage
	if pages < 1 {
		pages = 1
	}
	if float64(parentheticals)/pages > maxParentheticalsPage {
		report.addCorrection(
			"PARENTHETICALS: %d wrylies over ~%.0f page(s) (cap %d per page). Trust the actor.",
			parentheticals, pages, maxParentheticalsPage)
	}

	return report
}

type blockKind int

const (
	blockAction blockKind = iota
	blockSlugline
	blockSpeech
	blockParenthetical
	blockCue
)

type scriptBlock struct {
	kind blockKind
	text string
}

// scriptBlocks walks the line structure of a plain-text script: a
// character cue opens a speech, a slugline opens a scene, everything
// else is action.
func scriptBlocks(lines []string) []scriptBlock {
	var blocks []scriptBlock
	inSpeech := false
	var current strings.Builder
	currentKind := blockAction

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			blocks = append(blocks, scriptBlock{kind: currentKind, text: t})
		}
		current.Reset()
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
			inSpeech = false
			currentKind = blockAction
		case strings.HasPrefix(line, "INT.") || strings.HasPrefix(line, "EXT.") || strings.HasPrefix(line, "I/E."):
			flush()
			blocks = append(blocks, scriptBlock{kind: blockSlugline, text: line})
			inSpeech = false
			currentKind = blockAction
		case parentheticalRe.MatchString(line):
			flush()
			blocks = append(blocks, scriptBlock{kind: blockParenthetical, text: line})
		case !inSpeech && characterCueRe.MatchString(line) && line == strings.ToUpper(line):
			flush()
			blocks = append(blocks, scriptBlock{kind: blockCue, text: line})
			inSpeech = true
			currentKind = blockSpeech
		default:
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(line)
		}
	}
	flush()
	return blocks
}

func estimatedSpeechLines(speech string) int {
	chars := len(speech)
	lines := chars / speechCharsPerLine
	if chars%speechCharsPerLine != 0 {
		lines++
	}
	return lines
}
