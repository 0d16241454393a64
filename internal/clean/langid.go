package clean

import "regexp"

const asciiSymbols = `\x{0020}-\x{002F}\x{003A}-\x{0040}\x{005B}-\x{0060}\x{007B}-\x{007E}`

var (
	// Latin letters, digits, Roman numerals, ASCII symbols, whitespace.
	englishPattern = regexp.MustCompile(`^[a-zA-Z0-9\x{2160}-\x{2188}` + asciiSymbols + `\s]+$`)

	// Hiragana, katakana (full and half width), digits, numeric characters,
	// Han, ASCII letters and symbols, full-width symbols, CJK punctuation
	// (U+3000 block, including the ideographic space).
	//
	// ASCII letters are accepted on purpose: Japanese text routinely embeds
	// Latin words, so an all-ASCII sentence also passes. The bilingual gate
	// relies on the English validator to reject Japanese, not the reverse.
	japanesePattern = regexp.MustCompile(`^[` +
		`\x{3041}-\x{309F}` +
		`\x{30A1}-\x{30FF}\x{FF66}-\x{FF9F}` +
		`0-9０-９\x{2160}-\x{2188}\p{Nl}\p{No}` +
		`\p{Han}` +
		`a-zA-Z` + asciiSymbols + `\s` +
		`\x{FF01}-\x{FF0F}\x{FF1A}-\x{FF20}\x{FF3B}-\x{FF40}\x{FF5B}-\x{FF65}\x{3000}-\x{303F}` +
		`]+$`)
)

// IsEnglish reports whether s consists entirely of English characters.
// The empty string is not English.
func IsEnglish(s string) bool {
	return englishPattern.MatchString(s)
}

// IsJapanese reports whether s consists entirely of Japanese characters.
// The empty string is not Japanese.
func IsJapanese(s string) bool {
	return japanesePattern.MatchString(s)
}

// ValidateEnglish returns IsEnglish for every sentence.
func ValidateEnglish(sents []string) []bool {
	return validate(sents, IsEnglish)
}

// ValidateJapanese returns IsJapanese for every sentence.
func ValidateJapanese(sents []string) []bool {
	return validate(sents, IsJapanese)
}

func validate(sents []string, fn func(string) bool) []bool {
	out := make([]bool, len(sents))
	for i, s := range sents {
		out[i] = fn(s)
	}
	return out
}
