package outline

import (
	"regexp"
	"strings"
	"sync"

	"github.com/vampirenirmal/bookforge/internal/lexicon"
)

var (
	famousOnce sync.Once
	famousRes  []famousRule
)

type famousRule struct {
	re   *regexp.Regexp
	repl string
}

func compileFamous() []famousRule {
	famousOnce.Do(func() {
		for from, to := range lexicon.FamousNames {
			famousRes = append(famousRes, famousRule{
				re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(from) + `\b`),
				repl: to,
			})
		}
	})
	return famousRes
}

// SubstituteFamousNames renames trademarked character names in a text.
func SubstituteFamousNames(text string) string {
	for _, rule := range compileFamous() {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return text
}

// substitutePlanNames applies the rename to every plan field a name
// could reach.
func substitutePlanNames(plan *Plan) {
	plan.Title = SubstituteFamousNames(plan.Title)
	plan.Premise = SubstituteFamousNames(plan.Premise)
	plan.Beginning = SubstituteFamousNames(plan.Beginning)
	plan.Middle = SubstituteFamousNames(plan.Middle)
	plan.Ending = SubstituteFamousNames(plan.Ending)
	for i := range plan.Characters {
		plan.Characters[i].Name = SubstituteFamousNames(plan.Characters[i].Name)
		plan.Characters[i].Description = SubstituteFamousNames(plan.Characters[i].Description)
	}
}

// substituteOutlineNames applies the rename across outline chapters.
func substituteOutlineNames(o *Outline) {
	for i := range o.Chapters {
		ch := &o.Chapters[i]
		ch.Title = SubstituteFamousNames(ch.Title)
		ch.Summary = SubstituteFamousNames(ch.Summary)
		ch.Text = SubstituteFamousNames(ch.Text)
		for j := range ch.Dialogue {
			ch.Dialogue[j].Character = SubstituteFamousNames(ch.Dialogue[j].Character)
			ch.Dialogue[j].Text = SubstituteFamousNames(ch.Dialogue[j].Text)
		}
		for j := range ch.Panels {
			ch.Panels[j].Description = SubstituteFamousNames(ch.Panels[j].Description)
			for k := range ch.Panels[j].Dialogue {
				ch.Panels[j].Dialogue[k].Character = SubstituteFamousNames(ch.Panels[j].Dialogue[k].Character)
				ch.Panels[j].Dialogue[k].Text = SubstituteFamousNames(ch.Panels[j].Dialogue[k].Text)
			}
		}
		if ch.Scene != nil {
			ch.Scene.Description = SubstituteFamousNames(ch.Scene.Description)
			for k := range ch.Scene.Characters {
				ch.Scene.Characters[k] = SubstituteFamousNames(ch.Scene.Characters[k])
			}
			if len(ch.Scene.CharacterActions) > 0 {
				actions := make(map[string]string, len(ch.Scene.CharacterActions))
				for name, action := range ch.Scene.CharacterActions {
					actions[SubstituteFamousNames(name)] = SubstituteFamousNames(action)
				}
				ch.Scene.CharacterActions = actions
			}
		}
	}
}

// topicsOf parses the comma-separated topic list a non-fiction plan
// carries in its middle section.
func topicsOf(middle string) []string {
	var topics []string
	for _, t := range strings.Split(middle, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}
