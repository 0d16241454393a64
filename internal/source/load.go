package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/yargevad/filepathx"

	"EnJaCorpus/internal/bitext"
)

// ErrNoSources is returned when no source is configured.
var ErrNoSources = errors.New("source: no sources configured")

// Format names an on-disk corpus layout.
type Format string

const (
	// Tatoeba is the JSON-lines export of the tatoeba en-ja dataset.
	Tatoeba Format = "tatoeba"
	// WikiMatrix is the "score\ten\tja" TSV, optionally gzip-compressed.
	WikiMatrix Format = "wikimatrix"
	// Parallel is a pair of line-aligned files <path>.en and <path>.ja.
	Parallel Format = "parallel"
)

// Spec describes one input corpus.
type Spec struct {
	Format Format `yaml:"format"`
	// Path is a file or a glob ("**" matches any depth). For Parallel it is
	// the common prefix of the .en and .ja files.
	Path string `yaml:"path"`
	// MinScore drops WikiMatrix pairs with a lower margin score.
	MinScore float64 `yaml:"min_score"`
	// Limit caps the pairs read from each file; 0 reads everything.
	Limit int `yaml:"limit"`
}

// Validate checks that s names a known format and a path.
func (s Spec) Validate() error {
	switch s.Format {
	case Tatoeba, WikiMatrix, Parallel:
	default:
		return fmt.Errorf("source: unknown format %q", s.Format)
	}
	if s.Path == "" {
		return fmt.Errorf("source %s: path is required", s.Format)
	}
	if s.Limit < 0 {
		return fmt.Errorf("source %s: negative limit %d", s.Format, s.Limit)
	}
	return nil
}

// Load reads every file matched by spec, in lexical path order.
func Load(ctx context.Context, spec Spec) (bitext.Corpus, error) {
	if err := spec.Validate(); err != nil {
		return bitext.Corpus{}, err
	}
	if spec.Format == Parallel {
		return loadParallel(spec)
	}

	paths, err := filepathx.Glob(spec.Path)
	if err != nil {
		return bitext.Corpus{}, fmt.Errorf("source %s: glob %s: %w", spec.Format, spec.Path, err)
	}
	if len(paths) == 0 {
		return bitext.Corpus{}, fmt.Errorf("source %s: no files match %s", spec.Format, spec.Path)
	}
	sort.Strings(paths)

	var out bitext.Corpus
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return bitext.Corpus{}, err
		}
		c, err := loadFile(spec, p)
		if err != nil {
			return bitext.Corpus{}, err
		}
		out.EN = append(out.EN, c.EN...)
		out.JA = append(out.JA, c.JA...)
	}
	return out, nil
}

func loadFile(spec Spec, path string) (bitext.Corpus, error) {
	r, err := Open(path)
	if err != nil {
		return bitext.Corpus{}, err
	}
	defer r.Close()

	switch spec.Format {
	case Tatoeba:
		return ReadTatoeba(r, path, spec.Limit)
	case WikiMatrix:
		return ReadWikiMatrix(r, path, spec.MinScore, spec.Limit)
	}
	return bitext.Corpus{}, fmt.Errorf("source: unknown format %q", spec.Format)
}

func loadParallel(spec Spec) (bitext.Corpus, error) {
	en, err := Open(spec.Path + ".en")
	if err != nil {
		return bitext.Corpus{}, err
	}
	defer en.Close()
	ja, err := Open(spec.Path + ".ja")
	if err != nil {
		return bitext.Corpus{}, err
	}
	defer ja.Close()
	return ReadParallel(en, ja, spec.Path, spec.Limit)
}

// LoadAll loads every source in order and concatenates them.
func LoadAll(ctx context.Context, specs []Spec, logger *slog.Logger) (bitext.Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(specs) == 0 {
		return bitext.Corpus{}, ErrNoSources
	}
	var out bitext.Corpus
	for _, spec := range specs {
		c, err := Load(ctx, spec)
		if err != nil {
			return bitext.Corpus{}, err
		}
		logger.Info("source loaded",
			"format", string(spec.Format),
			"path", spec.Path,
			"pairs", c.Len(),
		)
		out.EN = append(out.EN, c.EN...)
		out.JA = append(out.JA, c.JA...)
	}
	if err := out.Validate(); err != nil {
		return bitext.Corpus{}, err
	}
	return out, nil
}
