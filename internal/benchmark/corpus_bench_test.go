package benchmark

import (
	"fmt"

	"EnJaCorpus/internal/bitext"
)

var enWords = []string{"the", "cat", "sat", "on", "a", "mat", "and", "looked", "at", "bird", "outside", "window"}
var jaWords = []string{"猫", "は", "窓", "の", "外", "に", "いる", "鳥", "を", "見", "た", "。"}

// buildCorpus returns n tokenized pairs with varied lengths and a long tail
// of rare tokens.
func buildCorpus(n int) bitext.Corpus {
	c := bitext.WithCapacity(n)
	for i := 0; i < n; i++ {
		ne := 4 + i%9
		nj := 3 + (i*7)%11
		c.Append(sentence(enWords, ne, i), sentence(jaWords, nj, i))
	}
	return c
}

func sentence(words []string, n, seed int) string {
	b := make([]byte, 0, n*8)
	for j := 0; j < n; j++ {
		if j > 0 {
			b = append(b, ' ')
		}
		if j == n-1 && seed%5 == 0 {
			b = append(b, fmt.Sprintf("rare%d", seed)...)
			continue
		}
		b = append(b, words[(seed+j*3)%len(words)]...)
	}
	return string(b)
}

// rawCorpus returns n untokenized pairs carrying the noise the cleaner strips.
func rawCorpus(n int) bitext.Corpus {
	c := bitext.WithCapacity(n)
	for i := 0; i < n; i++ {
		c.Append(
			fmt.Sprintf("The cat (see https://example.com/%d) sat on the mat, didn't it?", i),
			fmt.Sprintf("猫は（https://example.com/%d）マットの上に座った。", i),
		)
	}
	return c
}
