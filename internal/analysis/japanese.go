package analysis

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
	"golang.org/x/text/unicode/norm"
)

// JapaneseAnalyzer segments Japanese text into morphemes (wakati-gaki) with
// kagome and the IPA dictionary. Whitespace morphemes are dropped.
//
// Byte offsets refer to the NFKC-normalized text.
type JapaneseAnalyzer struct {
	t *tokenizer.Tokenizer
}

// NewJapaneseAnalyzer loads the IPA dictionary and builds the analyzer.
// Loading the dictionary is expensive; build one analyzer and share it.
func NewJapaneseAnalyzer() (*JapaneseAnalyzer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("kagome tokenizer: %w", err)
	}
	return &JapaneseAnalyzer{t: t}, nil
}

// Analyze segments the input.
func (a *JapaneseAnalyzer) Analyze(text string) []Token {
	text = norm.NFKC.String(text)
	morphs := a.t.Tokenize(text)

	tokens := make([]Token, 0, len(morphs))
	cursor := 0
	for _, m := range morphs {
		surface := m.Surface
		if strings.TrimSpace(surface) == "" {
			continue
		}
		start, end := cursor, cursor
		if idx := strings.Index(text[cursor:], surface); idx >= 0 {
			start = cursor + idx
			end = start + len(surface)
		}
		tokens = append(tokens, Token{
			Term:      surface,
			Position:  len(tokens),
			StartByte: start,
			EndByte:   end,
		})
		cursor = end
	}
	return tokens
}
