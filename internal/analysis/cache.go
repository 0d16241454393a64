package analysis

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of distinct sentences a Cached analyzer keeps.
const DefaultCacheSize = 1 << 16

// Cached memoizes an analyzer by input text. It is safe for concurrent use
// when the wrapped analyzer is.
type Cached struct {
	inner Analyzer
	cache *lru.Cache
}

// NewCached wraps inner with an LRU memo of the given size.
func NewCached(inner Analyzer, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("analysis cache: %w", err)
	}
	return &Cached{inner: inner, cache: c}, nil
}

// Analyze returns the memoized tokens for text. The returned slice is a copy.
func (c *Cached) Analyze(text string) []Token {
	if v, ok := c.cache.Get(text); ok {
		return cloneTokens(v.([]Token))
	}
	tokens := c.inner.Analyze(text)
	c.cache.Add(text, cloneTokens(tokens))
	return tokens
}

// Len returns the number of cached sentences.
func (c *Cached) Len() int {
	return c.cache.Len()
}

func cloneTokens(tokens []Token) []Token {
	if tokens == nil {
		return nil
	}
	out := make([]Token, len(tokens))
	copy(out, tokens)
	return out
}
