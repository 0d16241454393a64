package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"EnJaCorpus/internal/bitext"
	"EnJaCorpus/internal/fanout"
)

// MaxWorkers is the upper bound on tokenization workers.
const MaxWorkers = 12

// CorpusTokenizer tokenizes both sides of a corpus in parallel.
type CorpusTokenizer struct {
	English  Analyzer
	Japanese Analyzer
	Workers  int
	Logger   *slog.Logger
}

// Run returns a corpus whose sentences are whitespace-joined token
// sequences. Pair order and alignment are preserved.
func (ct *CorpusTokenizer) Run(ctx context.Context, c bitext.Corpus) (bitext.Corpus, error) {
	logger := ct.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if ct.English == nil || ct.Japanese == nil {
		return bitext.Corpus{}, fmt.Errorf("tokenize: missing analyzer")
	}
	start := time.Now()

	workers, adjusted := bitext.ClampWorkers(ct.Workers, MaxWorkers, c.Len())
	if adjusted {
		logger.Warn("tokenization worker count adjusted",
			"requested", ct.Workers,
			"using", workers,
			"pairs", c.Len(),
		)
	}

	parts, err := fanout.Map(ctx, c, workers, func(ctx context.Context, chunk bitext.Corpus) (bitext.Corpus, error) {
		out := bitext.WithCapacity(chunk.Len())
		for i := 0; i < chunk.Len(); i++ {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return bitext.Corpus{}, err
				}
			}
			en, ja := chunk.Pair(i)
			out.Append(stripTabs(Tokenize(ct.English, en)), stripTabs(Tokenize(ct.Japanese, ja)))
		}
		return out, nil
	})
	if err != nil {
		return bitext.Corpus{}, fmt.Errorf("tokenize: %w", err)
	}
	out, err := fanout.Concat(parts)
	if err != nil {
		return bitext.Corpus{}, fmt.Errorf("tokenize merge: %w", err)
	}

	logger.Info("tokenization finished",
		"pairs", out.Len(),
		"workers", workers,
		"took_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func stripTabs(s string) string {
	if strings.IndexByte(s, '\t') < 0 {
		return s
	}
	return strings.ReplaceAll(s, "\t", "")
}
