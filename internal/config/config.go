// Package config holds the run configuration of the corpus builder.
//
// A Config is assembled once (defaults, then the YAML file, then CLI and
// environment overrides), checked by Validate and treated as read-only by
// every stage afterwards.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"EnJaCorpus/internal/analysis"
	"EnJaCorpus/internal/clean"
	"EnJaCorpus/internal/filter"
	"EnJaCorpus/internal/source"
	"EnJaCorpus/internal/split"
)

// ErrInvalid marks a configuration that cannot be corrected automatically.
var ErrInvalid = errors.New("config: invalid")

// Length bounds and the values substituted when a bound is out of range.
const (
	MinLenLow     = 1
	MinLenHigh    = 16
	MinLenDefault = 5
	MaxLenLow     = 16
	MaxLenHigh    = 256
	MaxLenDefault = 32
)

// Config is the full run configuration.
type Config struct {
	Sources   []source.Spec   `yaml:"sources"`
	OutputDir string          `yaml:"output_dir"`
	Analyzers AnalyzersConfig `yaml:"analyzers"`
	Workers   WorkersConfig   `yaml:"workers"`
	Stages    StagesConfig    `yaml:"stages"`
	Length    LengthConfig    `yaml:"length"`
	Ratio     RatioConfig     `yaml:"ratio"`
	Frequency FrequencyConfig `yaml:"frequency"`
	Split     SplitConfig     `yaml:"split"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AnalyzersConfig names the registry analyzer used for each language.
type AnalyzersConfig struct {
	English   string `yaml:"english"`
	Japanese  string `yaml:"japanese"`
	CacheSize int    `yaml:"cache_size"`
}

// WorkersConfig holds the requested parallelism of each parallel stage.
type WorkersConfig struct {
	Clean    int `yaml:"clean"`
	Tokenize int `yaml:"tokenize"`
	Freq     int `yaml:"freq"`
}

// StagesConfig toggles the optional stages. Tokenization and splitting
// always run.
type StagesConfig struct {
	Clean     bool `yaml:"clean"`
	Length    bool `yaml:"length"`
	Overlap   bool `yaml:"overlap"`
	Ratio     bool `yaml:"ratio"`
	Frequency bool `yaml:"frequency"`
}

// LengthConfig configures the length filter.
type LengthConfig struct {
	Min      int  `yaml:"min"`
	Max      int  `yaml:"max"`
	Truncate bool `yaml:"truncate"`
}

// RatioConfig configures the ratio filter.
type RatioConfig struct {
	Alpha float64 `yaml:"alpha"`
}

// FrequencyConfig configures the frequency filter.
type FrequencyConfig struct {
	Threshold int `yaml:"threshold"`
	// Export writes en.freq.tsv and ja.freq.tsv next to the shards.
	Export bool `yaml:"export"`
}

// SplitConfig configures the dataset splitter.
type SplitConfig struct {
	Ratio     map[string]float64 `yaml:"ratio"`
	ShardSize int                `yaml:"shard_size"`
	Divide    split.Divide       `yaml:"divide"`
	Seed      uint64             `yaml:"seed"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		OutputDir: "corpus/data",
		Analyzers: AnalyzersConfig{
			English:   "english",
			Japanese:  "japanese",
			CacheSize: analysis.DefaultCacheSize,
		},
		Workers: WorkersConfig{Clean: 1, Tokenize: 1, Freq: 1},
		Stages: StagesConfig{
			Clean:     true,
			Length:    true,
			Overlap:   true,
			Ratio:     true,
			Frequency: true,
		},
		Length:    LengthConfig{Min: 4, Max: 256, Truncate: true},
		Ratio:     RatioConfig{Alpha: filter.DefaultAlpha},
		Frequency: FrequencyConfig{Threshold: 3},
		Split: SplitConfig{
			Ratio:     split.DefaultRatio().Map(),
			ShardSize: 250000,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error. A
// ratio given in the file replaces the default ratio entirely.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses YAML from r over the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	cfg.Split.Ratio = nil

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cfg.Split.Ratio == nil {
		cfg.Split.Ratio = split.DefaultRatio().Map()
	}
	return cfg, nil
}

// Validate corrects what can be corrected, logging a warning for each change,
// and rejects the rest with ErrInvalid.
//
// Worker counts are clamped to each stage's range. Length bounds outside
// [1,16] and [16,256] are replaced by 5 and 32. An invalid split ratio is
// never corrected.
func (c *Config) Validate(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	c.Workers.Clean = clampWorkers(logger, "clean", c.Workers.Clean, clean.MaxWorkers)
	c.Workers.Tokenize = clampWorkers(logger, "tokenize", c.Workers.Tokenize, analysis.MaxWorkers)
	c.Workers.Freq = clampWorkers(logger, "freq", c.Workers.Freq, filter.MaxWorkers)

	if c.Length.Min < MinLenLow || c.Length.Min > MinLenHigh {
		logger.Warn("min length out of range, replaced",
			"min_len", c.Length.Min,
			"valid_range", fmt.Sprintf("[%d,%d]", MinLenLow, MinLenHigh),
			"using", MinLenDefault,
		)
		c.Length.Min = MinLenDefault
	}
	if c.Length.Max < MaxLenLow || c.Length.Max > MaxLenHigh {
		logger.Warn("max length out of range, replaced",
			"max_len", c.Length.Max,
			"valid_range", fmt.Sprintf("[%d,%d]", MaxLenLow, MaxLenHigh),
			"using", MaxLenDefault,
		)
		c.Length.Max = MaxLenDefault
	}

	if _, err := c.SplitRatio(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	div := c.Split.Divide
	if (div.Train || div.Valid || div.Test) && c.Split.ShardSize < 1 {
		return fmt.Errorf("%w: shard_size %d must be positive when a split is divided", ErrInvalid, c.Split.ShardSize)
	}
	if !(c.Ratio.Alpha > 0) {
		return fmt.Errorf("%w: ratio alpha %v must be positive", ErrInvalid, c.Ratio.Alpha)
	}
	if c.Frequency.Threshold < 0 {
		return fmt.Errorf("%w: frequency threshold %d is negative", ErrInvalid, c.Frequency.Threshold)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalid)
	}
	if c.Analyzers.English == "" || c.Analyzers.Japanese == "" {
		return fmt.Errorf("%w: analyzers.english and analyzers.japanese are required", ErrInvalid)
	}
	for i, s := range c.Sources {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: sources[%d]: %w", ErrInvalid, i, err)
		}
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// SplitRatio checks and converts the configured split ratio.
func (c *Config) SplitRatio() (split.Ratio, error) {
	return split.ParseRatio(c.Split.Ratio)
}

func clampWorkers(logger *slog.Logger, stage string, requested, max int) int {
	if requested >= 1 && requested <= max {
		return requested
	}
	using := 1
	if requested > max {
		using = max
	}
	logger.Warn("worker count out of range, replaced",
		"stage", stage,
		"requested", requested,
		"valid_range", fmt.Sprintf("[1,%d]", max),
		"using", using,
	)
	return using
}

// ParseLogLevel maps a level name to a slog.Level. The empty string is info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}
