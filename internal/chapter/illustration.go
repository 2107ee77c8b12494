package chapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/outline"
)

// BuildIllustrationPrompt renders the deterministic prompt string for
// one page's illustration, folding in the book's style guides, the
// panel layout and each present character's action phrase. Identical
// inputs always produce the identical string, so regenerated pages stay
// visually consistent.
func BuildIllustrationPrompt(scene *outline.Scene, artStyle, characterVisualGuide, visualStyleGuide string, layout format.PanelLayout) string {
	var p strings.Builder

	if artStyle != "" {
		fmt.Fprintf(&p, "Art style: %s.\n", artStyle)
	}
	if visualStyleGuide != "" {
		fmt.Fprintf(&p, "Follow this visual style guide exactly: %s\n", visualStyleGuide)
	}
	if characterVisualGuide != "" {
		fmt.Fprintf(&p, "Character appearance reference (never deviate): %s\n", characterVisualGuide)
	}
	if layout != "" {
		fmt.Fprintf(&p, "Page layout: %s.\n", layoutInstruction(layout))
	}

	if scene == nil {
		p.WriteString("Scene: a quiet establishing illustration matching the book's tone.")
		return p.String()
	}

	if scene.Location != "" {
		fmt.Fprintf(&p, "Location: %s.\n", scene.Location)
	}
	if scene.Description != "" {
		fmt.Fprintf(&p, "Scene: %s.\n", scene.Description)
	}

	if len(scene.Characters) > 0 {
		fmt.Fprintf(&p, "Characters present: %s.\n", strings.Join(scene.Characters, ", "))
	}
	if len(scene.CharacterActions) > 0 {
		names := make([]string, 0, len(scene.CharacterActions))
		for name := range scene.CharacterActions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&p, "%s is %s.\n", name, scene.CharacterActions[name])
		}
	}

	if scene.Background != "" {
		fmt.Fprintf(&p, "Background: %s.\n", scene.Background)
	}
	if scene.Mood != "" {
		fmt.Fprintf(&p, "Mood: %s.\n", scene.Mood)
	}
	if scene.CameraAngle != "" {
		fmt.Fprintf(&p, "Camera: %s shot.\n", scene.CameraAngle)
	}

	return strings.TrimRight(p.String(), "\n")
}

func layoutInstruction(layout format.PanelLayout) string {
	switch layout {
	case format.LayoutSplash:
		return "a single full-page splash panel"
	case format.LayoutTwoPanel:
		return "two stacked panels of equal height"
	case format.LayoutThreePanel:
		return "three panels, one wide on top and two below"
	case format.LayoutFourPanel:
		return "a two-by-two grid of four panels"
	default:
		return string(layout)
	}
}
