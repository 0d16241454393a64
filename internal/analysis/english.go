package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// EnglishAnalyzer is a Moses-style word tokenizer for English.
//
// Text is NFKC-normalized and lowercased. Punctuation becomes its own token,
// contractions split before the apostrophe ("don't" -> "don 't"), an
// intra-word hyphen becomes a standalone "-", and a '.' or ',' between two
// digits stays inside the number ("3.14", "1,000").
//
// Byte offsets refer to the normalized text.
type EnglishAnalyzer struct{}

// NewEnglishAnalyzer creates a new EnglishAnalyzer.
func NewEnglishAnalyzer() *EnglishAnalyzer {
	return &EnglishAnalyzer{}
}

// Analyze tokenizes the input.
func (a *EnglishAnalyzer) Analyze(text string) []Token {
	text = norm.NFKC.String(text)

	var tokens []Token
	start := -1 // start of the pending word, -1 if none
	flush := func(end int) {
		if start >= 0 {
			tokens = appendLower(tokens, text, start, end)
			start = -1
		}
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		next, _ := utf8.DecodeRuneInString(text[i+size:])
		prev, _ := utf8.DecodeLastRuneInString(text[:i])

		switch {
		case unicode.IsSpace(r):
			flush(i)
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case (r == '.' || r == ',') && start >= 0 && unicode.IsDigit(prev) && unicode.IsDigit(next):
			// decimal point or thousands separator
		case r == '\'' && start >= 0 && unicode.IsLetter(next):
			flush(i)
			start = i
		default:
			flush(i)
			tokens = appendLower(tokens, text, i, i+size)
		}
		i += size
	}
	flush(len(text))
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}

func appendLower(tokens []Token, text string, start, end int) []Token {
	return append(tokens, Token{
		Term:      strings.ToLower(text[start:end]),
		Position:  len(tokens),
		StartByte: start,
		EndByte:   end,
	})
}
