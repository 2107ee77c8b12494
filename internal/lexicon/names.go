package lexicon

// FamousNames maps trademarked or strongly associated character names to
// safe replacements. Outline characters matching a key are renamed
// before persistence.
var FamousNames = map[string]string{
	"Harry Potter":      "Henry Porter",
	"Hermione":          "Helena",
	"Gandalf":           "Garland",
	"Frodo":             "Farren",
	"Luke Skywalker":    "Lucas Skyler",
	"Darth Vader":       "Dark Vance",
	"Batman":            "the Night Warden",
	"Superman":          "the Skybound Man",
	"Spider-Man":        "the Web Runner",
	"Spiderman":         "the Web Runner",
	"Wonder Woman":      "the Amazon Sentinel",
	"Mickey Mouse":      "Mikey the Mouse",
	"Elsa":              "Elsie",
	"Moana":             "Mona",
	"Pikachu":           "Sparkit",
	"Sherlock Holmes":   "Sheridan Combes",
	"James Bond":        "Jack Brand",
	"Katniss":           "Kestrel",
	"Indiana Jones":     "Idaho Johns",
	"Captain America":   "the Shield Captain",
	"Iron Man":          "the Alloy Knight",
	"Hulk":              "the Colossus",
	"Thor":              "Torren",
	"Voldemort":         "Veldomar",
	"Dumbledore":        "Dunmore",
	"Aslan":             "Arlan",
	"Winnie the Pooh":   "Benny the Bear",
	"Buzz Lightyear":    "Flash Starfield",
	"Woody":             "Woodrow",
	"Shrek":             "Grubb",
	"SpongeBob":         "Scrubby",
	"Mario":             "Marlo",
	"Luigi":             "Lucio",
	"Sonic":             "Swift",
	"Godzilla":          "the Great Leviathan",
	"King Kong":         "the Mountain Ape",
}
