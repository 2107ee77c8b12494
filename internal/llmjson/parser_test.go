package llmjson

import (
	"errors"
	"strings"
	"testing"

	"github.com/vampirenirmal/bookforge/internal/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"title":"The Hollow Key"}`,
		},
		{
			name: "fenced markdown",
			raw:  "Here is the plan:\n```json\n{\"title\":\"Ash\"}\n```\nDone.",
		},
		{
			name: "trailing comma",
			raw:  `{"chapters":[1,2,3,],}`,
		},
		{
			name: "surrounding prose",
			raw:  `Sure! {"premise":"A storm"} Hope that helps.`,
		},
		{
			name: "array payload",
			raw:  `[{"number":1},{"number":2}]`,
		},
		{
			name:    "no json at all",
			raw:     "I cannot produce that.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTruncated(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"cut mid object", `{"title":"Ash","chapters":[{"number":1},{"num`},
		{"cut mid string", `{"title":"Ash`},
		{"unclosed array", `{"chapters":[1,2,3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if !errors.Is(err, core.ErrTruncated) {
				t.Fatalf("Parse() error = %v, want ErrTruncated", err)
			}
		})
	}
}

func TestParseBracketsInsideStrings(t *testing.T) {
	raw := `{"summary":"She whispered {quietly} and left [for good]."}`
	value, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	obj, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("Parse() returned %T, want map", value)
	}
	if obj["summary"] == "" {
		t.Fatal("summary missing")
	}
}

func TestParseStripsDashes(t *testing.T) {
	raw := `{"premise":"A detective — weary and alone — walks the pier","beats":["dawn–dusk"]}`
	value, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	obj := value.(map[string]any)
	premise := obj["premise"].(string)
	for _, dash := range []string{"—", "–"} {
		if strings.Contains(premise, dash) {
			t.Errorf("premise still contains %q: %q", dash, premise)
		}
	}
	beats := obj["beats"].([]any)
	if strings.Contains(beats[0].(string), "–") {
		t.Errorf("nested string still contains dash: %q", beats[0])
	}
}

func TestParseInto(t *testing.T) {
	type plan struct {
		Title    string `json:"title"`
		Chapters int    `json:"chapters"`
	}
	var p plan
	if err := ParseInto("```json\n{\"title\":\"Ash\",\"chapters\":12,}\n```", &p); err != nil {
		t.Fatalf("ParseInto() error = %v", err)
	}
	if p.Title != "Ash" || p.Chapters != 12 {
		t.Fatalf("ParseInto() = %+v", p)
	}
}
