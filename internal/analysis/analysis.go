// Package analysis is the tokenization boundary of the corpus pipeline.
//
// Downstream stages only ever see the whitespace-joined terms produced by
// Tokenize, so any Analyzer must emit terms that contain no whitespace.
package analysis

import "strings"

// Token represents a single token produced by an analyzer.
type Token struct {
	Term      string
	Position  int
	StartByte int
	EndByte   int
}

// Analyzer splits one sentence into tokens.
// Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(text string) []Token
}

// Terms returns the token terms in order.
func Terms(tokens []Token) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

// Tokenize analyzes text and joins the terms with single spaces.
func Tokenize(a Analyzer, text string) string {
	tokens := a.Analyze(text)
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return tokens[0].Term
	}
	n := len(tokens) - 1
	for _, t := range tokens {
		n += len(t.Term)
	}
	var sb strings.Builder
	sb.Grow(n)
	for i, t := range tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Term)
	}
	return sb.String()
}
