package lexicon

// StopWords are excluded from keyword sets before loop-similarity
// comparison. Only words of four or more characters are considered, so
// short function words are omitted.
var StopWords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "they": true,
	"them": true, "their": true, "there": true, "then": true, "than": true,
	"have": true, "been": true, "were": true, "will": true, "would": true,
	"could": true, "should": true, "about": true, "into": true, "over": true,
	"under": true, "after": true, "before": true, "because": true,
	"while": true, "where": true, "when": true, "what": true, "which": true,
	"through": true, "against": true, "between": true, "down": true,
	"back": true, "just": true, "like": true, "only": true, "still": true,
	"even": true, "also": true, "very": true, "some": true, "more": true,
	"most": true, "other": true, "such": true, "being": true, "again": true,
	"around": true, "toward": true, "towards": true, "himself": true,
	"herself": true, "itself": true, "themselves": true, "said": true,
	"says": true, "asked": true, "told": true, "went": true, "came": true,
	"made": true, "take": true, "took": true, "looked": true, "look": true,
	"eyes": true, "face": true, "hand": true, "hands": true, "head": true,
	"know": true, "knew": true, "think": true, "thought": true,
	"something": true, "nothing": true, "anything": true, "everything": true,
	"away": true, "here": true, "much": true, "many": true, "every": true,
	"first": true, "last": true, "long": true, "little": true, "good": true,
	"right": true, "left": true, "never": true, "always": true, "though": true,
}
