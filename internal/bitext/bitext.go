package bitext

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrMisaligned is returned when the English and Japanese sides of a corpus
// no longer have the same length.
var ErrMisaligned = errors.New("bitext: english/japanese sides misaligned")

// Corpus is an index-aligned pair of sentence sequences: EN[i] translates JA[i].
type Corpus struct {
	EN []string
	JA []string
}

// New builds a Corpus, rejecting sides of unequal length.
func New(en, ja []string) (Corpus, error) {
	c := Corpus{EN: en, JA: ja}
	if err := c.Validate(); err != nil {
		return Corpus{}, err
	}
	return c, nil
}

// WithCapacity returns an empty corpus with room for n pairs.
func WithCapacity(n int) Corpus {
	return Corpus{
		EN: make([]string, 0, n),
		JA: make([]string, 0, n),
	}
}

// Len returns the number of pairs.
func (c Corpus) Len() int {
	return len(c.EN)
}

// Validate checks the alignment invariant.
func (c Corpus) Validate() error {
	if len(c.EN) != len(c.JA) {
		return fmt.Errorf("%w: %d english vs %d japanese", ErrMisaligned, len(c.EN), len(c.JA))
	}
	return nil
}

// Append adds one pair to both sides.
func (c *Corpus) Append(en, ja string) {
	c.EN = append(c.EN, en)
	c.JA = append(c.JA, ja)
}

// Pair returns the i-th pair.
func (c Corpus) Pair(i int) (string, string) {
	return c.EN[i], c.JA[i]
}

// Slice returns pairs [lo, hi). The result shares memory with c.
func (c Corpus) Slice(lo, hi int) Corpus {
	return Corpus{EN: c.EN[lo:hi], JA: c.JA[lo:hi]}
}

// Tokens splits a tokenized sentence on whitespace. Every length and
// frequency computation downstream of the tokenizer goes through here.
func Tokens(s string) []string {
	return strings.Fields(s)
}

// TokenCount returns len(Tokens(s)) without allocating the slice.
func TokenCount(s string) int {
	n := 0
	inField := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inField = false
			continue
		}
		if !inField {
			n++
			inField = true
		}
	}
	return n
}
