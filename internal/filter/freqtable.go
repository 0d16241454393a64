package filter

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"EnJaCorpus/internal/bitext"
)

// FreqTable maps a token to its number of occurrences in one language.
// Missing tokens count as zero.
type FreqTable map[string]int

// FreqEntry is one row of a sorted FreqTable.
type FreqEntry struct {
	Token string
	Count int
}

// Get returns the count for token, or 0.
func (t FreqTable) Get(token string) int {
	return t[token]
}

// Add increments token by n.
func (t FreqTable) Add(token string, n int) {
	t[token] += n
}

// AddSentence counts every whitespace-delimited token of s.
func (t FreqTable) AddSentence(s string) {
	for _, tok := range bitext.Tokens(s) {
		t[tok]++
	}
}

// Merge adds every count of other into t.
func (t FreqTable) Merge(other FreqTable) {
	for tok, n := range other {
		t[tok] += n
	}
}

// Total returns the sum of all counts.
func (t FreqTable) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Sorted returns the entries by descending count, ties broken by token.
func (t FreqTable) Sorted() []FreqEntry {
	entries := make([]FreqEntry, 0, len(t))
	for tok, n := range t {
		entries = append(entries, FreqEntry{Token: tok, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Token < entries[j].Token
	})
	return entries
}

// WriteTSV writes one "token\tcount" line per entry in Sorted order.
func (t FreqTable) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range t.Sorted() {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", e.Token, e.Count); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTSV parses the output of WriteTSV.
func ReadTSV(r io.Reader) (FreqTable, error) {
	t := make(FreqTable)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		tok, count, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("freq table line %d: missing tab", line)
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			return nil, fmt.Errorf("freq table line %d: %w", line, err)
		}
		t.Add(tok, n)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}
