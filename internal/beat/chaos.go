package beat

import (
	"fmt"

	"github.com/vampirenirmal/bookforge/internal/format"
	"github.com/vampirenirmal/bookforge/internal/state"
)

// chaosSeed is a sensory distraction injected into a beat so the prose
// notices the world the way a person does.
type chaosSeed struct {
	text      string
	intensity int // 1 background, 2 noticeable, 3 intrusive
}

var proseSeeds = []chaosSeed{
	{"a radiator ticking as it cools", 1},
	{"the smell of someone else's cigarette drifting in", 1},
	{"a fly worrying the same window pane", 1},
	{"rain starting, stopping, starting again", 1},
	{"a neighbor's television muttering through the wall", 1},
	{"the taste of coffee gone cold and bitter", 1},
	{"a streetlight flickering at uneven intervals", 2},
	{"a dog barking two yards over, then choking off mid-bark", 2},
	{"a draft that finds the gap between collar and neck", 2},
	{"a siren rising and falling somewhere across town", 2},
	{"the elevator arriving at the wrong floor, doors opening on no one", 2},
	{"a phone vibrating face-down on wood", 3},
	{"the power browning out for two long seconds", 3},
	{"glass breaking in another room", 3},
}

var childrenSeeds = []chaosSeed{
	{"a butterfly landing on the handlebars", 1},
	{"the smell of bread from the bakery window", 1},
	{"a puddle with a whole sky inside it", 1},
	{"a cat watching from a fence post", 1},
	{"wind chimes talking to themselves", 2},
	{"a balloon escaping into the clouds", 2},
	{"thunder grumbling far away like an empty stomach", 2},
}

var screenplaySeeds = []chaosSeed{
	{"a fluorescent tube buzzing overhead", 1},
	{"a copier jamming in the background", 1},
	{"traffic noise swelling each time the door opens", 2},
	{"a ceiling fan clicking once per rotation", 2},
	{"ice settling in a glass nobody is drinking from", 2},
}

// frictions are small physical failures that keep characters human.
var frictions = []string{
	"a zipper that snags halfway",
	"keys fished from the wrong pocket",
	"a chair leg catching on the rug",
	"a jar lid that will not give on the first try",
	"a shoelace come undone at a bad moment",
	"a pen that has to be scribbled back to life",
	"a door that sticks and needs a shoulder",
	"a dropped phone caught against the hip",
	"a paper cut from an envelope",
	"stairs miscounted in the dark, one jarring extra step",
	"a sleeve caught on a door handle",
	"a match that breaks instead of lighting",
}

func seedPool(f format.Format) []chaosSeed {
	switch f {
	case format.Children, format.PictureBook:
		return childrenSeeds
	case format.Screenplay:
		return screenplaySeeds
	default:
		return proseSeeds
	}
}

// pickSeed selects the next unused seed for this book, scanning from a
// position derived from chapter and beat so consecutive beats draw
// different texture. Returns empty when the chapter's budget is spent.
func pickSeed(store *state.Store, bookID string, f format.Format, chapter, beatNum, maxIntensity int) string {
	pool := seedPool(f)
	start := (chapter*3 + beatNum) % len(pool)
	for n := 0; n < len(pool); n++ {
		seed := pool[(start+n)%len(pool)]
		if seed.intensity > maxIntensity {
			continue
		}
		if store.ClaimSeed(bookID, chapter, seed.text) {
			return seed.text
		}
	}
	return ""
}

// pickFriction selects the next unused friction event for the book.
func pickFriction(store *state.Store, bookID string, chapter, beatNum int) string {
	start := (chapter*5 + beatNum) % len(frictions)
	for n := 0; n < len(frictions); n++ {
		event := frictions[(start+n)%len(frictions)]
		if store.ClaimFriction(bookID, event) {
			return event
		}
	}
	return ""
}

// chaosPrompt wraps a seed for the writer.
func chaosPrompt(seed string) string {
	if seed == "" {
		return ""
	}
	return fmt.Sprintf("SENSORY TEXTURE: somewhere in this beat, let the viewpoint character notice %s. One sentence at most; do not explain it or make it matter.", seed)
}

// frictionPrompt wraps a friction event for the writer.
func frictionPrompt(event string) string {
	if event == "" {
		return ""
	}
	return fmt.Sprintf("PHYSICAL FRICTION: at some natural moment, the character deals with %s. Keep it brief and wordless where possible.", event)
}
