package format

// Format is the canonical book format tag. The source data model kept
// children and picture_book as distinct tags that share the visual
// capability set.
type Format string

const (
	Novel       Format = "novel"
	Children    Format = "children"
	PictureBook Format = "picture_book"
	Comic       Format = "comic"
	AdultComic  Format = "adult_comic"
	Screenplay  Format = "screenplay"
)

// BookType separates narrative from informational books.
type BookType string

const (
	Fiction    BookType = "fiction"
	NonFiction BookType = "non-fiction"
)

// DialogueStyle is orthogonal to Format: a picture book may carry prose,
// a comic always carries bubbles.
type DialogueStyle string

const (
	Prose   DialogueStyle = "prose"
	Bubbles DialogueStyle = "bubbles"
)

// ContentRating gates prompt preambles and safety-retry behavior.
type ContentRating string

const (
	RatingChildrens ContentRating = "childrens"
	RatingGeneral   ContentRating = "general"
	RatingMature    ContentRating = "mature"
)

// HeaderRule selects how chapter headers are imposed on assembled text.
type HeaderRule string

const (
	HeaderNumbers HeaderRule = "numbers"
	HeaderTitles  HeaderRule = "titles"
	HeaderBoth    HeaderRule = "both"
	HeaderPOV     HeaderRule = "pov"
)

// PanelLayout enumerates comic page layouts.
type PanelLayout string

const (
	LayoutSplash     PanelLayout = "splash"
	LayoutTwoPanel   PanelLayout = "two-panel"
	LayoutThreePanel PanelLayout = "three-panel"
	LayoutFourPanel  PanelLayout = "four-panel"
)

// Config is the capability record selected by format tag. It replaces a
// class hierarchy: everything format-polymorphic reads from here.
type Config struct {
	Format           Format
	BeatSize         int     // target words per beat
	TensionCap       int     // max tension-level change per chapter/page/scene
	MinBreadcrumbs   int     // breadcrumbs required before a secret reveal
	MinVariance      float64 // sentence-length stddev floor
	MaxNameDensity   float64 // name matches per 100 words
	HeaderRule       HeaderRule
	Visual           bool // pages with scene records instead of prose chapters
	ClosingMarker    string
	UseClosingMarker bool
}

var configs = map[Format]Config{
	Novel: {
		Format:           Novel,
		BeatSize:         400,
		TensionCap:       1,
		MinBreadcrumbs:   3,
		MinVariance:      4.2,
		MaxNameDensity:   2.5,
		HeaderRule:       HeaderBoth,
		Visual:           false,
		ClosingMarker:    "THE END",
		UseClosingMarker: true,
	},
	Children: {
		Format:           Children,
		BeatSize:         150,
		TensionCap:       2,
		MinBreadcrumbs:   2,
		MinVariance:      3.0,
		MaxNameDensity:   4.0,
		HeaderRule:       HeaderNumbers,
		Visual:           true,
		ClosingMarker:    "The End.",
		UseClosingMarker: true,
	},
	PictureBook: {
		Format:           PictureBook,
		BeatSize:         120,
		TensionCap:       2,
		MinBreadcrumbs:   2,
		MinVariance:      3.0,
		MaxNameDensity:   4.0,
		HeaderRule:       HeaderNumbers,
		Visual:           true,
		ClosingMarker:    "The End.",
		UseClosingMarker: true,
	},
	Comic: {
		Format:         Comic,
		BeatSize:       180,
		TensionCap:     2,
		MinBreadcrumbs: 2,
		MinVariance:    3.2,
		MaxNameDensity: 3.5,
		HeaderRule:     HeaderNumbers,
		Visual:         true,
	},
	AdultComic: {
		Format:         AdultComic,
		BeatSize:       180,
		TensionCap:     2,
		MinBreadcrumbs: 2,
		MinVariance:    3.2,
		MaxNameDensity: 3.5,
		HeaderRule:     HeaderNumbers,
		Visual:         true,
	},
	Screenplay: {
		Format:         Screenplay,
		BeatSize:       300,
		TensionCap:     2,
		MinBreadcrumbs: 2,
		MinVariance:    3.8,
		MaxNameDensity: 3.0,
		HeaderRule:     HeaderNumbers,
		Visual:         false,
	},
}

// ConfigFor returns the capability record for a format, defaulting to
// the novel configuration for unknown tags.
func ConfigFor(f Format) Config {
	if cfg, ok := configs[f]; ok {
		return cfg
	}
	return configs[Novel]
}

// IsVisual reports whether a book is driven by page/scene records. The
// status contract also treats bubble dialogue and the visual presets as
// visual regardless of format tag.
func IsVisual(f Format, style DialogueStyle, preset string) bool {
	if ConfigFor(f).Visual {
		return true
	}
	if style == Bubbles {
		return true
	}
	return preset == "comic_story" || preset == "childrens_picture"
}

// Valid reports whether f is one of the canonical format tags.
func Valid(f Format) bool {
	_, ok := configs[f]
	return ok
}
