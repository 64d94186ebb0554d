package mnemonic

// Wordlist is the fixed vocabulary seed phrases are drawn from. Phrases take
// words without replacement, so the list size bounds the longest phrase.
var Wordlist = []string{
	"abandon", "ability", "absorb",
	"baby", "balance", "basket",
	"cable", "camera", "cannon",
	"damage", "dancer", "december",
	"eager", "early", "echo",
	"fabric", "face", "fancy",
	"galaxy", "garage", "gather",
	"habit", "hammer", "harmony",
	"ice", "idea", "impact",
	"jacket", "january", "jazz",
	"kangaroo", "keen", "kidney",
	"label", "ladder", "language",
	"machine", "magic", "mango",
	"naive", "name", "nation",
	"oak", "object", "ocean",
	"package", "paddle", "palace",
	"quality", "quantum", "quarter",
	"rabbit", "raccoon", "random",
	"saddle", "salad", "sample",
	"table", "tackle", "talent",
	"umbrella", "unable", "uniform",
	"vacuum", "valley", "value",
	"wagon", "wait", "wander",
	"xenon", "xerox", "xray",
	"yard", "year", "yellow",
	"zebra", "zero", "zone",
}
