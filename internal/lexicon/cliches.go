package lexicon

// ClicheOpeners are sentence-initial constructions the cliché remover
// deletes or rewrites. They are detection data only; the variety fixer
// must never introduce them.
var ClicheOpeners = []string{
	"With a sigh,",
	"With a heavy sigh,",
	"With a deep breath,",
	"Taking a deep breath,",
	"With practiced ease,",
	"Without a word,",
	"With newfound determination,",
	"With renewed vigor,",
	"Heart racing,",
	"Heart pounding,",
	"Against all odds,",
	"As if on cue,",
	"Suddenly,",
	"All of a sudden,",
	"In an instant,",
	"Before she knew it,",
	"Before he knew it,",
}

// ClicheTransitions are paragraph-level filler transitions.
var ClicheTransitions = []string{
	"Meanwhile, back at",
	"Little did they know",
	"As fate would have it",
	"It was then that",
	"And so it was that",
	"In the end,",
	"At the end of the day,",
	"When all was said and done,",
}

// FillerPhrases add words without adding meaning; deleted in place.
var FillerPhrases = []string{
	"it is important to note that ",
	"it is worth noting that ",
	"needless to say, ",
	"for all intents and purposes, ",
	"at this point in time",
	"in order to",
	"the fact that ",
	"really quite ",
	"very truly ",
}

// NeutralOpeners are the only discourse markers the sentence-variety
// fixer may prepend to reduce pronoun-start runs.
var NeutralOpeners = []string{
	"Then", "There", "Now", "Later", "Soon", "Outside", "Inside",
	"Beyond", "Nearby", "Afterward", "Meanwhile", "Overhead", "Below",
	"By the door", "Across the room", "At the window",
}
