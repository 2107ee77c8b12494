package lexicon

// FancyAttributionVerbs are dialogue tags that call attention to
// themselves. The book validator caps their ratio; the dialogue polisher
// rewrites them to "said" or an action beat.
var FancyAttributionVerbs = []string{
	"exclaimed", "proclaimed", "declared", "announced", "interjected",
	"opined", "queried", "questioned", "pondered", "mused", "murmured",
	"muttered", "whimpered", "whined", "growled", "snarled", "barked",
	"bellowed", "boomed", "thundered", "shrieked", "screeched", "hissed",
	"breathed", "sighed", "chuckled", "laughed", "giggled", "snickered",
	"scoffed", "sneered", "retorted", "countered", "rejoined", "quipped",
	"chirped", "trilled", "intoned", "drawled", "stammered", "stuttered",
	"spluttered", "gasped", "panted", "wheezed", "groaned", "moaned",
	"lamented", "implored", "beseeched", "pleaded", "demanded", "insisted",
	"asserted", "affirmed", "conceded", "admitted", "confessed",
	"acknowledged", "observed", "remarked", "commented", "noted",
	"articulated", "enunciated", "expounded", "elaborated",
}

// PlainAttributionVerbs never count against the fancy-tag ratio.
var PlainAttributionVerbs = []string{
	"said", "asked", "replied", "answered", "told", "called", "added",
	"continued", "began", "finished", "repeated", "agreed", "whispered",
	"shouted", "yelled",
}

// DirectEmotionPhrases are on-the-nose emotion statements in dialogue.
// Comics reject a page at two or more instances.
var DirectEmotionPhrases = []string{
	"i am so angry", "i'm so angry", "i am angry", "i'm angry",
	"i am so sad", "i'm so sad", "i am sad", "i'm sad",
	"i am so happy", "i'm so happy", "i am happy", "i'm happy",
	"i am scared", "i'm scared", "i am so scared", "i'm so scared",
	"i am afraid", "i'm afraid that i", "i feel angry", "i feel sad",
	"i feel happy", "i feel scared", "this makes me angry",
	"this makes me sad", "that makes me so", "i am furious",
	"i'm furious", "i am terrified", "i'm terrified", "i am nervous",
	"i'm nervous", "i am excited", "i'm so excited",
}
