package validate

import (
	"strings"
	"testing"
)

func panelWithBubbles(desc string, bubbles ...string) Panel {
	p := Panel{Description: desc}
	for _, b := range bubbles {
		p.Bubbles = append(p.Bubbles, Bubble{Character: "Rix", Text: b})
	}
	return p
}

func TestComicAcceptsWellFormedPage(t *testing.T) {
	page := ComicPage{Panels: []Panel{
		panelWithBubbles("Rix leans over the railing of the airship, wind tearing at his scarf.", "There! Below the clouds!"),
		panelWithBubbles("The engine room, pipes rattling, steam everywhere.", "Hold her steady!"),
		panelWithBubbles("A long shot of the island rising out of the sea mist.", ""),
	}}
	page.Panels[2].Bubbles = nil

	report := Comic(page, map[string]int{})
	if !report.IsValid {
		t.Fatalf("good page rejected: %v", report.Corrections)
	}
	if report.Metrics.PanelCount != 3 {
		t.Fatalf("PanelCount = %d", report.Metrics.PanelCount)
	}
}

func TestComicRejections(t *testing.T) {
	longBubble := strings.Repeat("word ", 30)

	tests := []struct {
		name string
		page ComicPage
		want string
	}{
		{
			name: "too few panels",
			page: ComicPage{Panels: []Panel{
				panelWithBubbles("One lonely panel.", "Hi."),
				panelWithBubbles("Another.", "Bye."),
			}},
			want: "PANELS",
		},
		{
			name: "overlong bubble",
			page: ComicPage{Panels: []Panel{
				panelWithBubbles("A", longBubble),
				panelWithBubbles("B", "Short."),
				panelWithBubbles("C", "Short."),
			}},
			want: "BUBBLES",
		},
		{
			name: "too many bubbles per panel",
			page: ComicPage{Panels: []Panel{
				panelWithBubbles("A", "One.", "Two.", "Three."),
				panelWithBubbles("B", "Short."),
				panelWithBubbles("C", "Short."),
			}},
			want: "BUBBLES",
		},
		{
			name: "internal monologue",
			page: ComicPage{Panels: []Panel{
				panelWithBubbles("Rix stares at the map. She thought to herself about the route.", "Hm."),
				panelWithBubbles("B", "Short."),
				panelWithBubbles("C", "Short."),
			}},
			want: "MONOLOGUE",
		},
		{
			name: "direct emotion dialogue",
			page: ComicPage{Panels: []Panel{
				panelWithBubbles("A", "I am so angry right now!"),
				panelWithBubbles("B", "I'm so scared of this place."),
				panelWithBubbles("C", "Short."),
			}},
			want: "EMOTION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Comic(tt.page, map[string]int{})
			joined := strings.Join(report.Corrections, "\n")
			if !strings.Contains(joined, tt.want) {
				t.Fatalf("corrections missing %s:\n%s", tt.want, joined)
			}
		})
	}
}

func TestComicVisualTicBookCap(t *testing.T) {
	page := func() ComicPage {
		return ComicPage{Panels: []Panel{
			panelWithBubbles("Rix stands with crossed arms by the hatch.", "Well?"),
			panelWithBubbles("The hatch light blinks red.", ""),
			panelWithBubbles("Rain on the porthole.", ""),
		}}
	}

	bookTics := map[string]int{}
	for i := 0; i < 3; i++ {
		report := Comic(page(), bookTics)
		if !report.IsValid {
			t.Fatalf("page %d rejected early: %v", i+1, report.Corrections)
		}
	}

	report := Comic(page(), bookTics)
	joined := strings.Join(report.Corrections, "\n")
	if !strings.Contains(joined, "TICS") {
		t.Fatalf("fourth use of tic should exceed book cap:\n%s", joined)
	}
}
