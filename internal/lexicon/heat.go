package lexicon

// SanitizeMap converts explicit terms to euphemisms for retries of
// safety-blocked generations. RestoreMap is its reciprocal: applied in
// post-processing so the final text is direct again.
var SanitizeMap = map[string]string{
	"kill":       "neutralize",
	"killed":     "neutralized",
	"killing":    "neutralizing",
	"murder":     "eliminate",
	"murdered":   "eliminated",
	"stab":       "strike with a blade",
	"stabbed":    "struck with a blade",
	"blood":      "crimson",
	"bleeding":   "losing crimson",
	"corpse":     "still form",
	"dead body":  "still form",
	"strangle":   "restrain by the throat",
	"strangled":  "restrained by the throat",
	"gun":        "sidearm",
	"shoot":      "fire upon",
	"shot":       "fired upon",
	"torture":    "coercion",
	"tortured":   "coerced",
	"naked":      "unclothed",
	"seduce":     "charm",
	"seduced":    "charmed",
	"drug":       "substance",
	"drugs":      "substances",
	"overdose":   "severe reaction",
	"suicide":    "final despair",
	"slaughter":  "devastation",
	"mutilated":  "gravely wounded",
	"decapitate": "fell with one blow",
}

// RestoreMap reverses the corporate euphemisms so final prose does not
// read like an incident report. Keys are matched case-insensitively
// whole-word.
var RestoreMap = map[string]string{
	"neutralize":        "kill",
	"neutralized":       "killed",
	"neutralizing":      "killing",
	"eliminate":         "murder",
	"eliminated":        "murdered",
	"passed away":       "died",
	"pass away":         "die",
	"lost his life":     "died",
	"lost her life":     "died",
	"took his own life": "killed himself",
	"took her own life": "killed herself",
	"unalive":           "dead",
	"unclothed":         "naked",
	"sidearm":           "gun",
	"fired upon":        "shot",
	"coercion":          "torture",
	"coerced":           "tortured",
	"still form":        "corpse",
	"severe reaction":   "overdose",
	"final despair":     "suicide",
}
