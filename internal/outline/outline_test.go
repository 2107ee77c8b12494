package outline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/provider"
)

func fictionPlan() *Plan {
	return &Plan{
		Title:          "The Last Set at the Emerald Room",
		Genre:          "mystery",
		BookType:       format.Fiction,
		Premise:        "A detective works a vanishing in the jazz district.",
		Characters:     []PlanCharacter{{Name: "Ray", Description: "detective"}, {Name: "Vivian", Description: "singer"}},
		Beginning:      "Ray takes the case.",
		Middle:         "The trail winds through the district.",
		Ending:         "Vivian is found by choice, not force.",
		TargetWords:    12000,
		TargetChapters: 12,
	}
}

func outlineJSON(chapters int) string {
	var b strings.Builder
	b.WriteString(`{"chapters":[`)
	for i := 1; i <= chapters; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b,
			`{"number":%d,"title":"Chapter %d","summary":"Ray follows lead %d across town. The lead goes somewhere unexpected. A new question opens.","pov":"Ray"}`,
			i, i, i)
	}
	b.WriteString("]}")
	return b.String()
}

func TestBuildFictionOutline(t *testing.T) {
	mock := provider.NewMockClient().Respond("outline", outlineJSON(12))
	builder := NewBuilder(mock)

	outline, err := builder.BuildOutline(context.Background(), fictionPlan(), format.Novel)
	if err != nil {
		t.Fatalf("BuildOutline() error = %v", err)
	}

	if len(outline.Chapters) != 12 {
		t.Fatalf("chapters = %d, want 12", len(outline.Chapters))
	}

	total := 0
	for i, ch := range outline.Chapters {
		if ch.Number != i+1 {
			t.Errorf("chapter %d numbered %d", i+1, ch.Number)
		}
		if ch.POV == "" {
			t.Errorf("chapter %d missing POV", ch.Number)
		}
		total += ch.TargetWords
	}
	if total != 12000 {
		t.Fatalf("word targets sum = %d, want 12000", total)
	}
}

func TestBuildFictionOutlineCropsExtraChapters(t *testing.T) {
	mock := provider.NewMockClient().Respond("outline", outlineJSON(15))
	builder := NewBuilder(mock)

	outline, err := builder.BuildOutline(context.Background(), fictionPlan(), format.Novel)
	if err != nil {
		t.Fatalf("BuildOutline() error = %v", err)
	}
	if len(outline.Chapters) != 12 {
		t.Fatalf("chapters = %d, want 12 (extras cropped)", len(outline.Chapters))
	}
}

func TestBuildFictionOutlinePadsMissingChapters(t *testing.T) {
	mock := provider.NewMockClient().Respond("outline", outlineJSON(10))
	builder := NewBuilder(mock)

	outline, err := builder.BuildOutline(context.Background(), fictionPlan(), format.Novel)
	if err != nil {
		t.Fatalf("BuildOutline() error = %v", err)
	}
	if len(outline.Chapters) != 12 {
		t.Fatalf("chapters = %d, want 12 (shortfall recovered by splitting)", len(outline.Chapters))
	}
	for _, ch := range outline.Chapters {
		if strings.TrimSpace(ch.Summary) == "" {
			t.Fatalf("chapter %d has an empty summary after padding", ch.Number)
		}
	}
}

func TestBuildNonFictionOutline(t *testing.T) {
	plan := &Plan{
		Title:          "The Patient Gardener",
		Genre:          "gardening",
		BookType:       format.NonFiction,
		Premise:        "A practical guide to building a home garden for beginners.",
		Beginning:      "Anyone can grow food.",
		Middle:         "choosing a site, preparing soil, picking first crops, watering and feeding, keeping pests off, harvesting",
		Ending:         "Start small and keep notes.",
		TargetWords:    24000,
		TargetChapters: 8,
	}

	topics := topicsOf(plan.Middle)
	want := len(topics) + 2

	type rawChapter struct {
		Number    int      `json:"number"`
		Title     string   `json:"title"`
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"keyPoints"`
	}
	var chapters []rawChapter
	chapters = append(chapters, rawChapter{1, "Introduction", "Why gardening rewards patience. What the book covers. How to use it.", []string{"anyone can start", "small beats perfect", "tools you already own"}})
	for i, topic := range topics {
		chapters = append(chapters, rawChapter{i + 2, topic, "How to handle " + topic + ". Common mistakes. A weekend checklist.", []string{"first step", "what to avoid", "how to check progress"}})
	}
	chapters = append(chapters, rawChapter{want, "Conclusion", "Review the season. Plan the next one. Keep notes.", []string{"review", "plan", "record"}})
	payload, _ := json.Marshal(map[string]any{"chapters": chapters})

	mock := provider.NewMockClient().Respond("outline", string(payload))
	builder := NewBuilder(mock)

	outline, err := builder.BuildOutline(context.Background(), plan, format.Novel)
	if err != nil {
		t.Fatalf("BuildOutline() error = %v", err)
	}

	if len(outline.Chapters) != want {
		t.Fatalf("chapters = %d, want %d", len(outline.Chapters), want)
	}
	if !strings.Contains(strings.ToLower(outline.Chapters[0].Title), "introduction") {
		t.Errorf("first chapter not introduction-styled: %q", outline.Chapters[0].Title)
	}
	last := outline.Chapters[len(outline.Chapters)-1]
	if !strings.Contains(strings.ToLower(last.Title), "conclusion") {
		t.Errorf("last chapter not conclusion-styled: %q", last.Title)
	}
	for _, ch := range outline.Chapters {
		if n := len(ch.KeyPoints); n < 3 || n > 5 {
			t.Errorf("chapter %d keyPoints = %d, want 3 to 5", ch.Number, n)
		}
	}
}

func TestBuildNonFictionOutlineRepairsKeyPoints(t *testing.T) {
	plan := &Plan{
		Title:          "Knots",
		Genre:          "reference",
		BookType:       format.NonFiction,
		Premise:        "Practical knots.",
		Beginning:      "Rope solves problems.",
		Middle:         "loops, hitches, bends",
		Ending:         "Practice.",
		TargetWords:    9000,
		TargetChapters: 5,
	}

	// Too many key points in one chapter, too few in another.
	response := `{"chapters":[
		{"number":1,"title":"Introduction","summary":"Why knots matter. Where they fail. How to practice.","keyPoints":["a","b","c","d","e","f","g"]},
		{"number":2,"title":"loops","summary":"Fixed loops hold a shape. Use them for anchors. Check them twice.","keyPoints":["one"]},
		{"number":3,"title":"hitches","summary":"Hitches grip a post. They release under control. Learn two well.","keyPoints":["one","two","three"]},
		{"number":4,"title":"bends","summary":"Bends join two ropes. Match the diameters. Dress the knot.","keyPoints":["one","two","three"]},
		{"number":5,"title":"Conclusion","summary":"Practice with cord. Keep a length handy. Teach someone.","keyPoints":["one","two","three"]}
	]}`
	mock := provider.NewMockClient().Respond("outline", response)
	builder := NewBuilder(mock)

	outline, err := builder.BuildOutline(context.Background(), plan, format.Novel)
	if err != nil {
		t.Fatalf("BuildOutline() error = %v", err)
	}
	for _, ch := range outline.Chapters {
		if n := len(ch.KeyPoints); n < 3 || n > 5 {
			t.Errorf("chapter %d keyPoints = %d after repair, want 3 to 5", ch.Number, n)
		}
	}
}
