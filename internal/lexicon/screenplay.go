package lexicon

// CameraDirections do not belong in a spec script; the writer directs,
// the director shoots.
var CameraDirections = []string{
	"we see", "we hear", "we watch", "we follow", "camera pans",
	"camera zooms", "camera pushes", "camera pulls", "the camera",
	"close on", "close up on", "angle on", "pan to", "zoom in",
	"zoom out", "tracking shot", "dolly in", "dolly out", "crane shot",
	"aerial shot", "pov shot", "smash cut", "quick cut", "freeze frame",
	"slow motion", "in slow-mo",
}

// OnTheNosePatterns are dialogue lines that state subtext outright.
var OnTheNosePatterns = []string{
	"as you know,", "as you already know", "as you'll recall",
	"as you remember", "you know as well as i do", "like i told you before",
	"let me explain what happened", "in case you forgot",
	"i am telling you this because", "what i'm trying to say is",
	"the reason i did that is", "you see, the truth is",
	"to be perfectly clear,", "what this means is",
}

// SluglinePrefixes and SluglineTimes define the accepted scene heading
// grammar: INT./EXT. LOCATION - TIME.
var SluglinePrefixes = []string{"INT.", "EXT.", "INT./EXT.", "I/E."}

var SluglineTimes = []string{
	"DAY", "NIGHT", "MORNING", "EVENING", "AFTERNOON", "DAWN", "DUSK",
	"LATER", "CONTINUOUS", "SAME", "MOMENTS LATER",
}
