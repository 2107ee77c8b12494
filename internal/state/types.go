// Package state holds the evolving per-book runtime record: character
// facts, tension arcs, secrets, voice profiles and the chaos/friction
// usage history. All invariants the prompt layer only advises on are
// enforced here, at the state transition.
package state

// CharacterFact is the canonical record for one character in one book.
type CharacterFact struct {
	Name          string            `json:"name"`
	Aliases       []string          `json:"aliases,omitempty"`
	Gender        string            `json:"gender,omitempty"`
	Age           *int              `json:"age,omitempty"`
	Status        string            `json:"status,omitempty"`
	Location      string            `json:"location,omitempty"`
	Knows         []string          `json:"knows,omitempty"`
	DoesNotKnow   []string          `json:"doesNotKnow,omitempty"`
	Wounds        []string          `json:"wounds,omitempty"`
	Conditions    []string          `json:"conditions,omitempty"`
	Relationships map[string]string `json:"relationships,omitempty"`
	LastAction    string            `json:"lastAction,omitempty"`
	Traits        []string          `json:"traits,omitempty"`
	SpeechPattern string            `json:"speechPattern,omitempty"`
}

// FactUpdate is a partial update applied to a CharacterFact after a
// chapter. TimeJump authorizes an age increase larger than the passage
// of narrated time would imply; age never decreases.
type FactUpdate struct {
	Name        string
	Age         *int
	TimeJump    bool
	Status      string
	Location    string
	TransitSeen bool // a narrated transit beat moved the character
	Knows       []string
	Wounds      []string
	Conditions  []string
	LastAction  string
}

// ArcType enumerates tension arc flavors.
type ArcType string

const (
	ArcRomantic ArcType = "romantic"
	ArcDramatic ArcType = "dramatic"
	ArcConflict ArcType = "conflict"
	ArcMystery  ArcType = "mystery"
	ArcHorror   ArcType = "horror"
)

// TensionPoint is one history entry on an arc.
type TensionPoint struct {
	Chapter int      `json:"chapter"`
	Level   int      `json:"level"`
	Reason  string   `json:"reason"`
	Anchors []string `json:"anchors,omitempty"`
}

// TensionArc tracks one inter-character pressure trajectory. Level moves
// at most the format cap per chapter/page/scene.
type TensionArc struct {
	ID                string         `json:"id"`
	Type              ArcType        `json:"type"`
	Participants      []string       `json:"participants"`
	CurrentLevel      int            `json:"currentLevel"`
	TargetLevel       int            `json:"targetLevel"`
	History           []TensionPoint `json:"history"`
	PeakChapter       int            `json:"peakChapter,omitempty"`
	ResolutionChapter int            `json:"resolutionChapter,omitempty"`
}

// BreadcrumbObviousness grades how loudly a clue announces itself.
type BreadcrumbObviousness string

const (
	BreadcrumbSubtle   BreadcrumbObviousness = "subtle"
	BreadcrumbModerate BreadcrumbObviousness = "moderate"
	BreadcrumbObvious  BreadcrumbObviousness = "obvious"
)

// Breadcrumb is one planted clue for a secret.
type Breadcrumb struct {
	Chapter     int                   `json:"chapter"`
	Type        string                `json:"type"`
	Obviousness BreadcrumbObviousness `json:"obviousness"`
	ConnectedTo string                `json:"connectedTo,omitempty"`
}

// Secret may only be revealed once enough breadcrumbs of sufficient
// diversity exist, one of them recent.
type Secret struct {
	ID            string       `json:"id"`
	Type          string       `json:"type"`
	Description   string       `json:"description"`
	TruthSummary  string       `json:"truthSummary"`
	HeldBy        []string     `json:"heldBy"`
	HiddenFrom    []string     `json:"hiddenFrom"`
	Stakes        string       `json:"stakes"`
	SetupChapter  int          `json:"setupChapter"`
	Breadcrumbs   []Breadcrumb `json:"breadcrumbs"`
	RevealChapter int          `json:"revealChapter,omitempty"`
	RevealMethod  string       `json:"revealMethod,omitempty"`
	IsRevealed    bool         `json:"isRevealed"`
}

// VoiceProfile fixes a character's dialogue rules for the whole book.
type VoiceProfile struct {
	Name             string `json:"name"`
	Fingerprint      string `json:"fingerprint"`
	MaxDialogueWords int    `json:"maxDialogueWords"`
	VocabTier        string `json:"vocabTier"`
	AllowMonologue   bool   `json:"allowMonologue"`
}

// BookState is everything the engine remembers about one book between
// chapters. Owned exclusively by the Store.
type BookState struct {
	BookID        string
	Facts         map[string]*CharacterFact
	Arcs          map[string]*TensionArc
	Secrets       map[string]*Secret
	Voices        map[string]*VoiceProfile
	UsedSeeds     map[string]bool
	UsedFrictions map[string]bool
	SeedChapters  map[int]int // chapter -> seeds spent
}
