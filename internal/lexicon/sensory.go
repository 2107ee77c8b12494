package lexicon

// Non-visual sensory word sets for the 4+1 grounding rule: every ~300
// words of prose needs at least one hit from these sets. Matching is
// case-insensitive whole-word.

// SmellWords ground a scene in odor.
var SmellWords = []string{
	"smell", "smelled", "smelt", "scent", "scented", "odor", "odour",
	"stench", "reek", "reeked", "reeking", "aroma", "whiff", "musty",
	"acrid", "sour", "pungent", "perfume", "smoke", "smoky", "damp",
	"mildew", "brine", "briny", "sweat", "tobacco", "gasoline", "pine",
	"cedar", "coffee", "bread", "rot", "rotting", "copper", "metallic",
}

// TouchWords ground a scene in texture and contact.
var TouchWords = []string{
	"rough", "smooth", "coarse", "slick", "sticky", "gritty", "grainy",
	"soft", "silky", "velvet", "scratchy", "prickly", "clammy", "greasy",
	"wet", "dry", "damp", "slippery", "jagged", "sharp", "blunt",
	"texture", "grazed", "scraped", "brushed", "pressed", "squeezed",
	"gripped", "calloused", "splintered", "threadbare", "worn",
}

// TemperatureWords ground a scene in heat and cold.
var TemperatureWords = []string{
	"cold", "colder", "warm", "warmer", "warmth", "hot", "heat", "cool",
	"chill", "chilled", "chilly", "freezing", "frozen", "frost", "icy",
	"scalding", "searing", "burning", "sweltering", "humid", "muggy",
	"tepid", "lukewarm", "numb", "shivering", "sweating", "feverish",
}

// SoundWords ground a scene in hearing.
var SoundWords = []string{
	"heard", "hear", "sound", "sounded", "noise", "hum", "hummed",
	"buzz", "buzzed", "drone", "droned", "creak", "creaked", "groan",
	"groaned", "rattle", "rattled", "clatter", "clattered", "thud",
	"thump", "click", "clicked", "hiss", "hissed", "rustle", "rustled",
	"whisper", "whispered", "murmur", "murmured", "echo", "echoed",
	"rumble", "rumbled", "crackle", "crackled", "squeak", "squeaked",
	"slam", "slammed", "ring", "rang", "chime", "chimed", "drip",
	"dripped", "footsteps", "silence", "silent", "quiet", "muffled",
}

// SensorySets groups the non-visual sets for iteration.
var SensorySets = map[string][]string{
	"smell":       SmellWords,
	"touch":       TouchWords,
	"temperature": TemperatureWords,
	"sound":       SoundWords,
}
