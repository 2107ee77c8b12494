package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/vampirenirmal/bookforge/internal/core"
	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/provider"
)

func pictureBookPlan() *Plan {
	return &Plan{
		Title:          "The Lighthouse Cat",
		Genre:          "children",
		BookType:       format.Fiction,
		Premise:        "A lighthouse cat must relight the lamp before the ferry arrives.",
		Characters:     []PlanCharacter{{Name: "Pip", Description: "small grey cat, red scarf"}, {Name: "Marta", Description: "the keeper, yellow raincoat"}},
		Beginning:      "The lamp goes out in a storm.",
		Middle:         "Pip climbs the tower, solving one problem per landing.",
		Ending:         "The lamp lights as the ferry horn sounds.",
		TargetWords:    1440,
		TargetChapters: 12,
	}
}

func visualPagesJSON(pages int) string {
	angles := []string{"wide", "close-up", "medium", "low-angle", "bird's-eye"}
	type page struct {
		Number  int    `json:"number"`
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Text    string `json:"text"`
		Scene   Scene  `json:"scene"`
	}
	var out []page
	for i := 1; i <= pages; i++ {
		out = append(out, page{
			Number:  i,
			Title:   fmt.Sprintf("Page %d", i),
			Summary: fmt.Sprintf("Pip reaches landing %d.", i),
			Text:    fmt.Sprintf("Pip padded up to landing %d. The wind rattled the window there. Something small needed fixing before the next stair.", i),
			Scene: Scene{
				Location:         fmt.Sprintf("tower landing %d", i),
				Description:      "Pip examines the landing in lantern light",
				Characters:       []string{"Pip"},
				CharacterActions: map[string]string{"Pip": "crouching over a loose bolt"},
				Background:       "storm beyond the window",
				Mood:             "determined",
				CameraAngle:      angles[i%len(angles)],
			},
		})
	}
	payload, _ := json.Marshal(map[string]any{"chapters": out})
	return string(payload)
}

func TestBuildVisualOutlineExactCount(t *testing.T) {
	mock := provider.NewMockClient().
		Respond("visual-story", "Pip the lighthouse cat climbed through the storm. \"Hold on,\" Marta called from below. Landing by landing, Pip fixed what the wind had broken, until the great lamp flared and the ferry horn answered it.").
		Respond("visual-pages", visualPagesJSON(12))
	builder := NewBuilder(mock)

	outline, err := builder.BuildVisualOutline(context.Background(), pictureBookPlan(), format.PictureBook, format.Prose)
	if err != nil {
		t.Fatalf("BuildVisualOutline() error = %v", err)
	}

	if len(outline.Chapters) != 12 {
		t.Fatalf("pages = %d, want exactly 12", len(outline.Chapters))
	}

	angles := map[string]bool{}
	for _, ch := range outline.Chapters {
		if ch.Scene == nil {
			t.Fatalf("page %d has no scene", ch.Number)
		}
		if ch.Scene.Location == "" || ch.Scene.Description == "" {
			t.Errorf("page %d scene incomplete: %+v", ch.Number, ch.Scene)
		}
		if len(ch.Scene.Characters) == 0 {
			t.Errorf("page %d scene lists no characters", ch.Number)
		}
		angles[ch.Scene.CameraAngle] = true
	}
	if len(angles) < 2 {
		t.Errorf("camera angles all identical: %v", angles)
	}
}

func TestBuildVisualOutlinePadsShortfall(t *testing.T) {
	mock := provider.NewMockClient().
		Respond("visual-story", "A long storm story with many scenes and spoken lines throughout the tower climb.").
		Respond("visual-pages", visualPagesJSON(10))
	builder := NewBuilder(mock)

	outline, err := builder.BuildVisualOutline(context.Background(), pictureBookPlan(), format.PictureBook, format.Prose)
	if err != nil {
		t.Fatalf("BuildVisualOutline() error = %v", err)
	}
	if len(outline.Chapters) != 12 {
		t.Fatalf("pages = %d, want exactly 12 (padded by splitting)", len(outline.Chapters))
	}
	for _, ch := range outline.Chapters {
		if ch.Number == 0 {
			t.Error("pages must be renumbered after padding")
		}
	}
}

func TestBuildVisualOutlineCropsOverrun(t *testing.T) {
	mock := provider.NewMockClient().
		Respond("visual-story", "story").
		Respond("visual-pages", visualPagesJSON(16))
	builder := NewBuilder(mock)

	outline, err := builder.BuildVisualOutline(context.Background(), pictureBookPlan(), format.PictureBook, format.Prose)
	if err != nil {
		t.Fatalf("BuildVisualOutline() error = %v", err)
	}
	if len(outline.Chapters) != 12 {
		t.Fatalf("pages = %d, want exactly 12 (overrun cropped)", len(outline.Chapters))
	}
}

func comicPagesJSON(bubble string) string {
	var pages []string
	for i := 1; i <= 3; i++ {
		pages = append(pages, fmt.Sprintf(`{"number":%d,"title":"Page %d","summary":"Beat %d.",
		 "panels":[
			{"description":"Rix leans over the airship rail","dialogue":[{"character":"Rix","text":%q}]},
			{"description":"the engine room, pipes rattling","dialogue":[{"character":"Rix","text":"Hold her steady."}]},
			{"description":"the island rising from sea mist"}
		 ],
		 "scene":{"location":"airship, leg %d","description":"Rix at the rail","characters":["Rix"],"cameraAngle":"wide"}}`,
			i, i, i, bubble, i))
	}
	return `{"chapters":[` + strings.Join(pages, ",") + `]}`
}

func TestBuildVisualOutlineComicGetsLayoutsAndPanels(t *testing.T) {
	plan := pictureBookPlan()
	plan.TargetChapters = 3

	mock := provider.NewMockClient().
		Respond("visual-story", "story").
		Respond("visual-pages", comicPagesJSON("There it is!"))
	builder := NewBuilder(mock)

	outline, err := builder.BuildVisualOutline(context.Background(), plan, format.Comic, format.Bubbles)
	if err != nil {
		t.Fatalf("BuildVisualOutline() error = %v", err)
	}
	for _, ch := range outline.Chapters {
		if ch.PanelLayout == "" {
			t.Errorf("page %d missing panel layout", ch.Number)
		}
		if len(ch.Panels) < 3 {
			t.Errorf("page %d has %d panels", ch.Number, len(ch.Panels))
		}
		if len(ch.Dialogue) == 0 {
			t.Errorf("page %d lost its flattened dialogue", ch.Number)
		}
	}
}

func TestBuildVisualOutlineComicValidationRetry(t *testing.T) {
	plan := pictureBookPlan()
	plan.TargetChapters = 3

	longBubble := strings.Repeat("word ", 30)
	mock := provider.NewMockClient().
		Respond("visual-story", "story").
		Respond("visual-pages", comicPagesJSON(longBubble), comicPagesJSON("There it is!"))
	builder := NewBuilder(mock)

	outline, err := builder.BuildVisualOutline(context.Background(), plan, format.Comic, format.Bubbles)
	if err != nil {
		t.Fatalf("BuildVisualOutline() error = %v", err)
	}

	if mock.CallCount("visual-pages") != 2 {
		t.Fatalf("visual-pages calls = %d, want 2 (retry after failed comic validation)", mock.CallCount("visual-pages"))
	}

	// The retry prompt must carry the validator's corrections.
	var second string
	for _, call := range mock.Calls {
		if call.Purpose == "visual-pages" {
			second = call.Prompt
		}
	}
	if !strings.Contains(second, "BUBBLES") {
		t.Error("retry prompt missing bubble-length correction")
	}

	for _, ch := range outline.Chapters {
		for _, panel := range ch.Panels {
			for _, d := range panel.Dialogue {
				if n := len(strings.Fields(d.Text)); n > 25 {
					t.Fatalf("accepted bubble runs %d words", n)
				}
			}
		}
	}
}

func TestBuildVisualOutlineComicAcceptsBestAfterRetries(t *testing.T) {
	plan := pictureBookPlan()
	plan.TargetChapters = 3

	longBubble := strings.Repeat("word ", 30)
	mock := provider.NewMockClient().
		Respond("visual-story", "story").
		Respond("visual-pages", comicPagesJSON(longBubble))
	builder := NewBuilder(mock)

	outline, err := builder.BuildVisualOutline(context.Background(), plan, format.Comic, format.Bubbles)
	if err != nil {
		t.Fatalf("persistent validation failure must not be fatal: %v", err)
	}
	if len(outline.Chapters) != 3 {
		t.Fatalf("pages = %d, want 3 (best outline accepted)", len(outline.Chapters))
	}
	if mock.CallCount("visual-pages") != 3 {
		t.Fatalf("visual-pages calls = %d, want 3 (all attempts spent)", mock.CallCount("visual-pages"))
	}
}

func TestBuildVisualOutlineSafetyRetry(t *testing.T) {
	mock := provider.NewMockClient().
		Respond("visual-story", "story").
		FailTimes("visual-pages", 1, fmt.Errorf("%w: response blocked", core.ErrSafetyBlocked)).
		Respond("visual-pages", visualPagesJSON(12))
	builder := NewBuilder(mock)

	outline, err := builder.BuildVisualOutline(context.Background(), pictureBookPlan(), format.PictureBook, format.Prose)
	if err != nil {
		t.Fatalf("BuildVisualOutline() error = %v (should recover after sanitized retry)", err)
	}
	if len(outline.Chapters) != 12 {
		t.Fatalf("pages = %d, want 12", len(outline.Chapters))
	}
	if mock.CallCount("visual-pages") != 2 {
		t.Errorf("visual-pages calls = %d, want 2", mock.CallCount("visual-pages"))
	}
}
