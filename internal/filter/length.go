// Package filter holds the corpus filters that run after tokenization.
//
// Every filter takes a bitext.Corpus whose sentences are whitespace-joined
// token sequences and returns a new corpus. Pairs are always kept or dropped
// as a unit, so the result is aligned whenever the input is.
package filter

import (
	"strings"

	"EnJaCorpus/internal/bitext"
)

// Length keeps the pairs whose token counts both lie in [min, max].
//
// A pair with a side longer than max is kept, truncated to its first max
// tokens on both sides, when truncate is set and neither side is shorter than
// min. A side shorter than min always drops the pair.
func Length(c bitext.Corpus, min, max int, truncate bool) bitext.Corpus {
	out := bitext.WithCapacity(c.Len())
	for i := 0; i < c.Len(); i++ {
		en, ja := c.Pair(i)
		ne, nj := bitext.TokenCount(en), bitext.TokenCount(ja)

		switch {
		case ne < min || nj < min:
			continue
		case ne <= max && nj <= max:
			out.Append(en, ja)
		case truncate:
			out.Append(truncateTokens(en, max), truncateTokens(ja, max))
		}
	}
	return out
}

func truncateTokens(s string, n int) string {
	tokens := bitext.Tokens(s)
	if len(tokens) <= n {
		return strings.Join(tokens, " ")
	}
	return strings.Join(tokens[:n], " ")
}
