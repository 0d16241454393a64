package clean

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"EnJaCorpus/internal/bitext"
	"EnJaCorpus/internal/fanout"
)

// MaxWorkers is the upper bound on cleaning workers.
const MaxWorkers = 8

// Stats summarises one cleaning run.
type Stats struct {
	Input    int           `json:"input"`
	Workers  int           `json:"workers"`
	Rejected int           `json:"rejected"`
	Output   int           `json:"output"`
	Took     time.Duration `json:"took"`
}

// Coordinator partitions a corpus across workers, runs the Remover on every
// pair, merges the chunks in order and applies the bilingual language gate.
type Coordinator struct {
	remover *Remover
	workers int
	logger  *slog.Logger
}

// NewCoordinator creates a Coordinator. A nil remover selects the default
// rule chain; a nil logger selects slog.Default().
func NewCoordinator(remover *Remover, workers int, logger *slog.Logger) *Coordinator {
	if remover == nil {
		remover = NewRemover(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{remover: remover, workers: workers, logger: logger}
}

// Run cleans c and keeps only the pairs whose English side passes IsEnglish
// and whose Japanese side passes IsJapanese. Any worker failure fails the run.
func (co *Coordinator) Run(ctx context.Context, c bitext.Corpus) (bitext.Corpus, Stats, error) {
	start := time.Now()
	stats := Stats{Input: c.Len()}

	workers, adjusted := bitext.ClampWorkers(co.workers, MaxWorkers, c.Len())
	if adjusted {
		co.logger.Warn("cleaning worker count adjusted",
			"requested", co.workers,
			"using", workers,
			"pairs", c.Len(),
		)
	}
	stats.Workers = workers

	parts, err := fanout.Map(ctx, c, workers, co.cleanChunk)
	if err != nil {
		return bitext.Corpus{}, stats, fmt.Errorf("clean: %w", err)
	}
	cleaned, err := fanout.Concat(parts)
	if err != nil {
		return bitext.Corpus{}, stats, fmt.Errorf("clean merge: %w", err)
	}

	out := Gate(cleaned)
	stats.Output = out.Len()
	stats.Rejected = stats.Input - stats.Output
	stats.Took = time.Since(start)

	co.logger.Info("cleaning finished",
		"input", stats.Input,
		"output", stats.Output,
		"rejected", stats.Rejected,
		"workers", workers,
		"took_ms", stats.Took.Milliseconds(),
	)
	return out, stats, nil
}

func (co *Coordinator) cleanChunk(ctx context.Context, chunk bitext.Corpus) (bitext.Corpus, error) {
	out := bitext.WithCapacity(chunk.Len())
	for i := 0; i < chunk.Len(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return bitext.Corpus{}, err
			}
		}
		en, ja := co.remover.Clean(chunk.Pair(i))
		out.Append(en, ja)
	}
	return out, nil
}

// Gate keeps the pairs where both sides validate for their language.
func Gate(c bitext.Corpus) bitext.Corpus {
	enOK := ValidateEnglish(c.EN)
	jaOK := ValidateJapanese(c.JA)
	out := bitext.WithCapacity(c.Len())
	for i := range enOK {
		if enOK[i] && jaOK[i] {
			out.Append(c.EN[i], c.JA[i])
		}
	}
	return out
}
