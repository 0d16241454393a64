package split

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"EnJaCorpus/internal/bitext"
	"EnJaCorpus/internal/storage"
)

// ErrInvalidShardSize is returned when a split is divided into shards of
// fewer than one record.
var ErrInvalidShardSize = errors.New("split: shard size must be positive")

// Divide selects which splits are cut into shards of Options.ShardSize.
type Divide struct {
	Train bool `yaml:"train"`
	Valid bool `yaml:"valid"`
	Test  bool `yaml:"test"`
}

func (d Divide) of(name string) bool {
	switch name {
	case Train:
		return d.Train
	case Valid:
		return d.Valid
	case Test:
		return d.Test
	}
	return false
}

func (d Divide) any() bool { return d.Train || d.Valid || d.Test }

// Options configures a Splitter.
type Options struct {
	Dir       string
	Ratio     Ratio
	ShardSize int
	Divide    Divide
	// Seed fixes the shuffle. Zero draws a random seed, which is recorded in
	// the manifest.
	Seed   uint64
	Logger *slog.Logger
}

// Splitter writes a corpus as train/valid/test shard files.
type Splitter struct {
	opts   Options
	logger *slog.Logger
}

// NewSplitter validates opts. An invalid ratio is rejected, never corrected.
func NewSplitter(opts Options) (*Splitter, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("split: output directory is required")
	}
	if err := opts.Ratio.Check(); err != nil {
		return nil, err
	}
	if opts.Divide.any() && opts.ShardSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShardSize, opts.ShardSize)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{opts: opts, logger: logger}, nil
}

// Write shuffles c, partitions it and replaces opts.Dir with the shards and
// the manifest.
//
// Split s is written as s1.en/s1.ja, s2.en/s2.ja, ... with matching line
// order. Undivided or empty splits produce exactly one shard. Everything is
// staged next to opts.Dir and swapped in only once the manifest verifies; a
// failed or cancelled Write leaves the previous directory as it was.
func (s *Splitter) Write(ctx context.Context, c bitext.Corpus) (*Manifest, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	tx, err := storage.BeginDir(s.opts.Dir, s.logger)
	if err != nil {
		return nil, err
	}
	m, err := s.WriteDir(ctx, tx.Path(), c)
	if err != nil {
		tx.Abort()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteDir writes the shards and the manifest of c into dir, which must
// exist, and checks every shard against the manifest. Callers that stage
// other files alongside the split use it inside their own storage.DirTx.
func (s *Splitter) WriteDir(ctx context.Context, dir string, c bitext.Corpus) (*Manifest, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	records := Records(c)
	seed := Shuffle(records, s.opts.Seed)

	nTrain, nValid, _ := Sizes(len(records), s.opts.Ratio)
	parts := map[string][]string{
		Train: records[:nTrain],
		Valid: records[nTrain : nTrain+nValid],
		Test:  records[nTrain+nValid:],
	}

	m := &Manifest{
		Version:    ManifestVersion,
		CreatedAt:  time.Now().UTC(),
		Seed:       seed,
		Ratio:      s.opts.Ratio,
		ShardSize:  s.opts.ShardSize,
		TotalPairs: len(records),
	}
	for _, name := range Names {
		meta, err := s.writeSplit(ctx, dir, name, parts[name])
		if err != nil {
			return nil, err
		}
		m.Splits = append(m.Splits, meta)
	}

	data, err := MarshalManifest(m)
	if err != nil {
		return nil, err
	}
	if err := storage.AtomicWriteFile(filepath.Join(dir, ManifestFileName), data); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := VerifyShards(dir, m); err != nil {
		return nil, fmt.Errorf("verify split: %w", err)
	}

	s.logger.Info("dataset split written",
		"dir", s.opts.Dir,
		"pairs", len(records),
		"train", nTrain,
		"valid", nValid,
		"test", len(parts[Test]),
		"seed", seed,
		"took_ms", time.Since(start).Milliseconds(),
	)
	return m, nil
}

func (s *Splitter) writeSplit(ctx context.Context, dir, name string, records []string) (SplitMeta, error) {
	divided := s.opts.Divide.of(name)
	meta := SplitMeta{Name: name, Pairs: len(records), Divided: divided}
	for i, r := range ShardRanges(len(records), s.opts.ShardSize, divided) {
		if err := ctx.Err(); err != nil {
			return SplitMeta{}, err
		}
		shard, err := writeShard(dir, name, i+1, records[r.Lo:r.Hi])
		if err != nil {
			return SplitMeta{}, fmt.Errorf("split %s: %w", name, err)
		}
		meta.Shards = append(meta.Shards, shard)
		s.logger.Debug("shard written",
			"split", name,
			"shard", i+1,
			"pairs", shard.Pairs,
		)
	}
	return meta, nil
}

func writeShard(dir, name string, index int, records []string) (ShardMeta, error) {
	base := fmt.Sprintf("%s%d", name, index)
	en, err := storage.CreateAtomic(filepath.Join(dir, base+".en"))
	if err != nil {
		return ShardMeta{}, err
	}
	ja, err := storage.CreateAtomic(filepath.Join(dir, base+".ja"))
	if err != nil {
		en.Abort()
		return ShardMeta{}, err
	}

	for _, rec := range records {
		e, j := SplitRecord(rec)
		if err := en.WriteLine(e); err != nil {
			en.Abort()
			ja.Abort()
			return ShardMeta{}, err
		}
		if err := ja.WriteLine(j); err != nil {
			en.Abort()
			ja.Abort()
			return ShardMeta{}, err
		}
	}

	enInfo, err := en.Commit()
	if err != nil {
		ja.Abort()
		return ShardMeta{}, err
	}
	jaInfo, err := ja.Commit()
	if err != nil {
		return ShardMeta{}, err
	}
	return ShardMeta{
		Index: index,
		Pairs: len(records),
		EN:    FileMeta{Name: base + ".en", Size: enInfo.Size, Checksum: enInfo.Checksum},
		JA:    FileMeta{Name: base + ".ja", Size: jaInfo.Size, Checksum: jaInfo.Checksum},
	}, nil
}

// ShardRanges cuts total records into ranges of size records; the last range
// holds the remainder. An undivided split, or one no larger than size, is a
// single range.
func ShardRanges(total, size int, divided bool) []bitext.Range {
	if !divided || size < 1 || total <= size {
		return []bitext.Range{{Lo: 0, Hi: total}}
	}
	n := (total + size - 1) / size
	out := make([]bitext.Range, n)
	for i := range out {
		hi := (i + 1) * size
		if hi > total {
			hi = total
		}
		out[i] = bitext.Range{Lo: i * size, Hi: hi}
	}
	return out
}
