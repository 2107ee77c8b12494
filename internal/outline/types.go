// Package outline expands a one-sentence idea into a plan and a
// chapter-by-chapter (or page-by-page) outline.
package outline

import (
	"github.com/vampirenirmal/bookforge/internal/format"
)

// PlanCharacter is a planned character with enough visual detail for
// the illustration path.
type PlanCharacter struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Plan is the expanded story plan. Immutable after creation.
type Plan struct {
	Title          string          `json:"title" validate:"required"`
	Genre          string          `json:"genre" validate:"required"`
	BookType       format.BookType `json:"bookType" validate:"required"`
	Premise        string          `json:"premise" validate:"required"`
	Characters     []PlanCharacter `json:"characters"`
	Beginning      string          `json:"beginning" validate:"required"`
	Middle         string          `json:"middle" validate:"required"`
	Ending         string          `json:"ending" validate:"required"`
	WritingStyle   string          `json:"writingStyle"`
	TargetWords    int             `json:"targetWords" validate:"min=1"`
	TargetChapters int             `json:"targetChapters" validate:"min=1"`
	OriginalIdea   string          `json:"originalIdea"`
}

// Scene is the visual record behind an illustrated page.
type Scene struct {
	Location         string            `json:"location"`
	Description      string            `json:"description"`
	Characters       []string          `json:"characters"`
	CharacterActions map[string]string `json:"characterActions"`
	Background       string            `json:"background"`
	Mood             string            `json:"mood"`
	CameraAngle      string            `json:"cameraAngle"`
}

// DialogueLine is one speech bubble on a comic page.
type DialogueLine struct {
	Character string `json:"character"`
	Text      string `json:"text"`
}

// Panel is one drawn panel of a comic page: what the panel shows plus
// the bubbles laid over it.
type Panel struct {
	Description string         `json:"description"`
	Dialogue    []DialogueLine `json:"dialogue,omitempty"`
}

// Chapter is one outline entry: a text chapter, a non-fiction topic
// chapter, or an illustrated page depending on which fields are set.
type Chapter struct {
	Number      int                `json:"number"`
	Title       string             `json:"title"`
	Summary     string             `json:"summary"`
	POV         string             `json:"pov,omitempty"`
	TargetWords int                `json:"targetWords"`
	KeyPoints   []string           `json:"keyPoints,omitempty"`
	Text        string             `json:"text,omitempty"`
	Dialogue    []DialogueLine     `json:"dialogue,omitempty"`
	Panels      []Panel            `json:"panels,omitempty"`
	PanelLayout format.PanelLayout `json:"panelLayout,omitempty"`
	Scene       *Scene             `json:"scene,omitempty"`
}

// Outline is the full chapter or page list for one book.
type Outline struct {
	Chapters []Chapter `json:"chapters"`
}
