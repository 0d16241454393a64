package analysis

import (
	"unicode"
	"unicode/utf8"
)

// WhitespaceAnalyzer splits text on whitespace without any normalization.
// It is the identity tokenizer for input that is already segmented.
type WhitespaceAnalyzer struct{}

// NewWhitespaceAnalyzer creates a new WhitespaceAnalyzer.
func NewWhitespaceAnalyzer() *WhitespaceAnalyzer {
	return &WhitespaceAnalyzer{}
}

// Analyze splits the input on whitespace, preserving case.
func (a *WhitespaceAnalyzer) Analyze(text string) []Token {
	var tokens []Token
	start := -1
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = appendToken(tokens, text, start, i)
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i += size
	}
	if start >= 0 {
		tokens = appendToken(tokens, text, start, len(text))
	}
	return tokens
}

func appendToken(tokens []Token, text string, start, end int) []Token {
	return append(tokens, Token{
		Term:      text[start:end],
		Position:  len(tokens),
		StartByte: start,
		EndByte:   end,
	})
}
