// Package lexicon holds the immutable heuristic word tables the
// validators, post-processors and heat scale share. Everything here is
// data; behavior lives with the consumers.
package lexicon

// BannedPhrases are AI-telltale constructions. Case-insensitive
// substring match; more than two hits fails a beat.
var BannedPhrases = []string{
	"a testament to",
	"i couldn't help but",
	"couldn't help but notice",
	"little did she know",
	"little did he know",
	"little did they know",
	"a shiver ran down",
	"shivers down her spine",
	"shivers down his spine",
	"sent shivers down",
	"palpable tension",
	"the air was thick with",
	"air crackled with",
	"heart pounding in her chest",
	"heart pounding in his chest",
	"heart hammered in",
	"breath she didn't know she was holding",
	"breath he didn't know he was holding",
	"released a breath",
	"a mix of emotions",
	"a whirlwind of emotions",
	"emotions she couldn't name",
	"felt a pang of",
	"a wave of relief washed over",
	"relief washed over",
	"washed over her",
	"washed over him",
	"eyes widened in",
	"eyes sparkled with",
	"orbs of",
	"steeled herself",
	"steeled himself",
	"squared her shoulders",
	"squared his shoulders",
	"for what felt like an eternity",
	"what seemed like hours",
	"time seemed to slow",
	"time stood still",
	"the weight of the world",
	"weight of his words",
	"weight of her words",
	"hung in the air",
	"words hung between them",
	"unspoken words",
	"in that moment",
	"at that moment, she realized",
	"at that moment, he realized",
	"she realized with a start",
	"he realized with a start",
	"despite herself",
	"despite himself",
	"if she was being honest",
	"if he was being honest",
	"truth be told",
	"needless to say",
	"it goes without saying",
	"one thing was certain",
	"one thing was clear",
	"and just like that",
	"in the blink of an eye",
	"quick as a flash",
	"a chill ran through",
	"blood ran cold",
	"stomach dropped",
	"stomach churned",
	"knot in her stomach",
	"knot in his stomach",
	"pit of her stomach",
	"pit of his stomach",
	"a beat of silence",
	"deafening silence",
	"the silence stretched",
	"silence fell over",
	"an unspoken understanding",
	"a silent agreement",
	"spoke volumes",
	"said nothing, but",
	"danced in her eyes",
	"danced in his eyes",
	"played across her face",
	"played across his face",
	"ghost of a smile",
	"a small smile played",
	"smile that didn't reach",
	"didn't reach her eyes",
	"didn't reach his eyes",
	"tapestry of",
	"symphony of",
	"kaleidoscope of",
	"myriad of",
	"plethora of",
	"beacon of hope",
	"glimmer of hope",
	"flicker of hope",
	"newfound determination",
	"newfound resolve",
	"renewed determination",
	"steely resolve",
	"steely determination",
	"determination in her eyes",
	"determination in his eyes",
	"fire in her eyes",
	"fire in his eyes",
}
