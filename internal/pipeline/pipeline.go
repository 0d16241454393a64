// Package pipeline runs the corpus stages in order over one in-memory corpus:
// clean, tokenize, length, overlap, ratio, frequency and split.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"EnJaCorpus/internal/analysis"
	"EnJaCorpus/internal/bitext"
	"EnJaCorpus/internal/clean"
	"EnJaCorpus/internal/config"
	"EnJaCorpus/internal/filter"
	"EnJaCorpus/internal/split"
	"EnJaCorpus/internal/storage"
)

// Stage names as they appear in a Report.
const (
	StageClean     = "clean"
	StageTokenize  = "tokenize"
	StageLength    = "length"
	StageOverlap   = "overlap"
	StageRatio     = "ratio"
	StageFrequency = "frequency"
	StageSplit     = "split"
)

// Frequency table files written into the output directory when export is on.
const (
	FreqFileEN = "en.freq.tsv"
	FreqFileJA = "ja.freq.tsv"
)

// StageReport records the pair counts around one stage.
type StageReport struct {
	Name    string        `json:"name"`
	In      int           `json:"in"`
	Out     int           `json:"out"`
	Took    time.Duration `json:"took"`
	Skipped bool          `json:"skipped,omitempty"`
}

// Report summarises a pipeline run.
type Report struct {
	Stages    []StageReport      `json:"stages"`
	Clean     clean.Stats        `json:"clean"`
	Ratio     *filter.RatioStats `json:"ratio,omitempty"`
	VocabEN   int                `json:"vocab_en"`
	VocabJA   int                `json:"vocab_ja"`
	FreqFiles []string           `json:"freq_files,omitempty"`
	Manifest  *split.Manifest    `json:"manifest"`
	Took      time.Duration      `json:"took"`
}

// Stage returns the report of the named stage.
func (r *Report) Stage(name string) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageReport{}, false
}

// Pipeline holds everything a run needs beyond the corpus itself.
type Pipeline struct {
	cfg      config.Config
	registry *analysis.Registry
	logger   *slog.Logger
}

// New creates a Pipeline. cfg must already have passed Validate. A nil
// registry selects the built-in analyzers; a nil logger selects
// slog.Default().
func New(cfg config.Config, registry *analysis.Registry, logger *slog.Logger) *Pipeline {
	if registry == nil {
		registry = analysis.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, registry: registry, logger: logger}
}

// Run executes the pipeline with the built-in analyzers.
func Run(ctx context.Context, cfg config.Config, c bitext.Corpus, logger *slog.Logger) (*Report, error) {
	return New(cfg, nil, logger).Run(ctx, c)
}

// Run executes every enabled stage over c and writes the split. The corpus
// alignment is checked after each stage; a mismatch aborts the run with
// bitext.ErrMisaligned. The split and the optional frequency tables are
// staged together and replace the output directory only when the run
// succeeds.
func (p *Pipeline) Run(ctx context.Context, c bitext.Corpus) (*Report, error) {
	start := time.Now()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	ratio, err := p.cfg.SplitRatio()
	if err != nil {
		return nil, err
	}
	splitter, err := split.NewSplitter(split.Options{
		Dir:       p.cfg.OutputDir,
		Ratio:     ratio,
		ShardSize: p.cfg.Split.ShardSize,
		Divide:    p.cfg.Split.Divide,
		Seed:      p.cfg.Split.Seed,
		Logger:    p.logger,
	})
	if err != nil {
		return nil, err
	}
	tokenizer, err := p.tokenizer()
	if err != nil {
		return nil, err
	}

	rep := &Report{}
	st := p.cfg.Stages
	var tables *filter.Tables

	c, err = p.stage(rep, StageClean, st.Clean, c, func(in bitext.Corpus) (bitext.Corpus, error) {
		out, stats, err := clean.NewCoordinator(nil, p.cfg.Workers.Clean, p.logger).Run(ctx, in)
		rep.Clean = stats
		return out, err
	})
	if err != nil {
		return nil, err
	}

	c, err = p.stage(rep, StageTokenize, true, c, func(in bitext.Corpus) (bitext.Corpus, error) {
		return tokenizer.Run(ctx, in)
	})
	if err != nil {
		return nil, err
	}

	c, err = p.stage(rep, StageLength, st.Length, c, func(in bitext.Corpus) (bitext.Corpus, error) {
		return filter.Length(in, p.cfg.Length.Min, p.cfg.Length.Max, p.cfg.Length.Truncate), nil
	})
	if err != nil {
		return nil, err
	}

	c, err = p.stage(rep, StageOverlap, st.Overlap, c, func(in bitext.Corpus) (bitext.Corpus, error) {
		return filter.Overlap(in), nil
	})
	if err != nil {
		return nil, err
	}

	c, err = p.stage(rep, StageRatio, st.Ratio, c, func(in bitext.Corpus) (bitext.Corpus, error) {
		out, stats := filter.Ratio(in, p.cfg.Ratio.Alpha)
		rep.Ratio = &stats
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	c, err = p.stage(rep, StageFrequency, st.Frequency, c, func(in bitext.Corpus) (bitext.Corpus, error) {
		out, t, err := filter.Frequency(ctx, in, filter.FrequencyOptions{
			Threshold: p.cfg.Frequency.Threshold,
			Workers:   p.cfg.Workers.Freq,
			Logger:    p.logger,
		})
		if err != nil {
			return bitext.Corpus{}, err
		}
		rep.VocabEN, rep.VocabJA = len(t.EN), len(t.JA)
		if p.cfg.Frequency.Export {
			tables = &t
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	splitStart := time.Now()
	m, files, err := p.write(ctx, splitter, c, tables)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageSplit, err)
	}
	rep.Manifest = m
	rep.FreqFiles = files
	rep.Stages = append(rep.Stages, StageReport{
		Name: StageSplit,
		In:   c.Len(),
		Out:  m.TotalPairs,
		Took: time.Since(splitStart),
	})
	rep.Took = time.Since(start)

	p.logger.Info("pipeline finished",
		"pairs", m.TotalPairs,
		"seed", m.Seed,
		"output_dir", p.cfg.OutputDir,
		"took_ms", rep.Took.Milliseconds(),
	)
	return rep, nil
}

// stage runs fn when enabled and records the result. The output must stay
// aligned.
func (p *Pipeline) stage(rep *Report, name string, enabled bool, in bitext.Corpus, fn func(bitext.Corpus) (bitext.Corpus, error)) (bitext.Corpus, error) {
	if !enabled {
		rep.Stages = append(rep.Stages, StageReport{Name: name, In: in.Len(), Out: in.Len(), Skipped: true})
		p.logger.Debug("stage skipped", "stage", name)
		return in, nil
	}

	start := time.Now()
	out, err := fn(in)
	if err != nil {
		return bitext.Corpus{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := out.Validate(); err != nil {
		return bitext.Corpus{}, fmt.Errorf("%s: %w", name, err)
	}

	sr := StageReport{Name: name, In: in.Len(), Out: out.Len(), Took: time.Since(start)}
	rep.Stages = append(rep.Stages, sr)
	p.logger.Info("stage finished",
		"stage", name,
		"in", sr.In,
		"out", sr.Out,
		"took_ms", sr.Took.Milliseconds(),
	)
	return out, nil
}

func (p *Pipeline) tokenizer() (*analysis.CorpusTokenizer, error) {
	en, err := p.analyzer(p.cfg.Analyzers.English)
	if err != nil {
		return nil, err
	}
	ja, err := p.analyzer(p.cfg.Analyzers.Japanese)
	if err != nil {
		return nil, err
	}
	return &analysis.CorpusTokenizer{
		English:  en,
		Japanese: ja,
		Workers:  p.cfg.Workers.Tokenize,
		Logger:   p.logger,
	}, nil
}

func (p *Pipeline) analyzer(name string) (analysis.Analyzer, error) {
	a, err := p.registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageTokenize, err)
	}
	cached, err := analysis.NewCached(a, p.cfg.Analyzers.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// write stages the frequency tables and the split, then installs them as the
// output directory.
func (p *Pipeline) write(ctx context.Context, splitter *split.Splitter, c bitext.Corpus, tables *filter.Tables) (*split.Manifest, []string, error) {
	tx, err := storage.BeginDir(p.cfg.OutputDir, p.logger)
	if err != nil {
		return nil, nil, err
	}
	var files []string
	if tables != nil {
		if files, err = p.exportTables(tx, *tables); err != nil {
			tx.Abort()
			return nil, nil, err
		}
	}
	m, err := splitter.WriteDir(ctx, tx.Path(), c)
	if err != nil {
		tx.Abort()
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return m, files, nil
}

// exportTables writes the tables into the staging directory of tx and
// returns their installed paths.
func (p *Pipeline) exportTables(tx *storage.DirTx, t filter.Tables) ([]string, error) {
	var files []string
	for _, out := range []struct {
		name  string
		table filter.FreqTable
	}{
		{FreqFileEN, t.EN},
		{FreqFileJA, t.JA},
	} {
		f, err := storage.CreateAtomic(filepath.Join(tx.Path(), out.name))
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", out.name, err)
		}
		if err := out.table.WriteTSV(f); err != nil {
			f.Abort()
			return nil, fmt.Errorf("export %s: %w", out.name, err)
		}
		if _, err := f.Commit(); err != nil {
			return nil, fmt.Errorf("export %s: %w", out.name, err)
		}
		files = append(files, filepath.Join(tx.Final(), out.name))
	}
	p.logger.Info("frequency tables exported", "files", files)
	return files, nil
}
