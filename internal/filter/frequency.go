package filter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"EnJaCorpus/internal/bitext"
	"EnJaCorpus/internal/fanout"
)

// Unknown replaces tokens that occur fewer than Threshold times.
const Unknown = "<unk>"

// MaxWorkers is the upper bound on frequency-counting workers.
const MaxWorkers = 8

// Tables holds the merged per-language frequency tables of a corpus.
type Tables struct {
	EN FreqTable
	JA FreqTable
}

// FrequencyOptions configures Frequency.
type FrequencyOptions struct {
	Threshold int
	Workers   int
	Logger    *slog.Logger
}

// Count tallies both languages of c in parallel and merges the per-chunk
// tables by summing.
func Count(ctx context.Context, c bitext.Corpus, workers int) (Tables, error) {
	parts, err := fanout.Map(ctx, c, workers, func(ctx context.Context, chunk bitext.Corpus) (Tables, error) {
		t := Tables{EN: make(FreqTable), JA: make(FreqTable)}
		for i := 0; i < chunk.Len(); i++ {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return Tables{}, err
				}
			}
			t.EN.AddSentence(chunk.EN[i])
			t.JA.AddSentence(chunk.JA[i])
		}
		return t, nil
	})
	if err != nil {
		return Tables{}, err
	}

	merged := Tables{EN: make(FreqTable), JA: make(FreqTable)}
	for _, p := range parts {
		merged.EN.Merge(p.EN)
		merged.JA.Merge(p.JA)
	}
	return merged, nil
}

// Frequency replaces every token whose corpus frequency is below
// opts.Threshold with Unknown. It returns the rewritten corpus and the merged
// frequency tables it was judged against.
func Frequency(ctx context.Context, c bitext.Corpus, opts FrequencyOptions) (bitext.Corpus, Tables, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	workers, adjusted := bitext.ClampWorkers(opts.Workers, MaxWorkers, c.Len())
	if adjusted {
		logger.Warn("frequency worker count adjusted",
			"requested", opts.Workers,
			"using", workers,
			"pairs", c.Len(),
		)
	}

	tables, err := Count(ctx, c, workers)
	if err != nil {
		return bitext.Corpus{}, Tables{}, fmt.Errorf("frequency count: %w", err)
	}

	out := bitext.WithCapacity(c.Len())
	replaced := 0
	for i := 0; i < c.Len(); i++ {
		en, n := replaceRare(c.EN[i], tables.EN, opts.Threshold)
		replaced += n
		ja, n := replaceRare(c.JA[i], tables.JA, opts.Threshold)
		replaced += n
		out.Append(en, ja)
	}

	logger.Info("frequency filter finished",
		"pairs", out.Len(),
		"threshold", opts.Threshold,
		"vocab_en", len(tables.EN),
		"vocab_ja", len(tables.JA),
		"replaced", replaced,
		"took_ms", time.Since(start).Milliseconds(),
	)
	return out, tables, nil
}

func replaceRare(s string, t FreqTable, threshold int) (string, int) {
	tokens := bitext.Tokens(s)
	n := 0
	for i, tok := range tokens {
		if t.Get(tok) < threshold {
			tokens[i] = Unknown
			n++
		}
	}
	return strings.Join(tokens, " "), n
}
