package lexicon

// VisualTics are stock comic gestures that read as filler when overused.
// Per-page and per-book caps apply.
var VisualTics = []string{
	"crossed arms", "crosses her arms", "crosses his arms", "arms crossed",
	"sweat drop", "sweatdrop", "bead of sweat", "clenched fist",
	"clenches her fist", "clenches his fist", "fist clenched",
	"raised eyebrow", "raises an eyebrow", "eyebrow raised",
	"facepalm", "face palm", "hands on hips", "shrugs", "shrugging",
	"wide eyes", "eyes wide", "jaw drops", "jaw dropped", "gritted teeth",
	"grits her teeth", "grits his teeth", "rolls her eyes", "rolls his eyes",
	"eye roll", "points dramatically", "dramatic point",
}

// VisualTicPageCap and VisualTicBookCap bound repetition of any single tic.
const (
	VisualTicPageCap = 1
	VisualTicBookCap = 3
)

// InternalMonologuePatterns flag narration leaking into a bubbles-only
// format.
var InternalMonologuePatterns = []string{
	"she thought to herself", "he thought to herself", "he thought to himself",
	"she wondered silently", "he wondered silently", "thought to themselves",
	"her inner voice", "his inner voice", "in her head,", "in his head,",
	"she mused inwardly", "he mused inwardly", "internally,",
}
