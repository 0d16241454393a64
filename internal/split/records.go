package split

import (
	"math/rand/v2"
	"strings"

	"EnJaCorpus/internal/bitext"
)

var recordCleaner = strings.NewReplacer("\t", "", "\n", "", "\r", "")

// Records joins each pair into one "en\tja" record after removing tab and
// newline characters from both sides.
func Records(c bitext.Corpus) []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = recordCleaner.Replace(c.EN[i]) + "\t" + recordCleaner.Replace(c.JA[i])
	}
	return out
}

// SplitRecord reverses Records.
func SplitRecord(rec string) (en, ja string) {
	en, ja, _ = strings.Cut(rec, "\t")
	return en, ja
}

// Shuffle permutes records in place with a uniform Fisher-Yates shuffle.
// A zero seed draws a fresh one. The seed used is returned so that the
// permutation can be reproduced.
func Shuffle(records []string, seed uint64) uint64 {
	for seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
	return seed
}
