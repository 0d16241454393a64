package filter

import "EnJaCorpus/internal/bitext"

// Overlap removes repeated pairs while keeping one-to-many alignments.
//
// Each side carries a first-seen counter. A pair is kept when at least one of
// its sentences has not appeared in an earlier kept pair, and dropped when
// both have. The first occurrence wins, so the result depends on input order.
func Overlap(c bitext.Corpus) bitext.Corpus {
	seenEN := make(map[string]int, c.Len())
	seenJA := make(map[string]int, c.Len())

	out := bitext.WithCapacity(c.Len())
	for i := 0; i < c.Len(); i++ {
		en, ja := c.Pair(i)
		if seenEN[en] > 0 && seenJA[ja] > 0 {
			continue
		}
		seenEN[en]++
		seenJA[ja]++
		out.Append(en, ja)
	}
	return out
}
