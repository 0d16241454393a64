package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"EnJaCorpus/internal/source"
	"EnJaCorpus/internal/split"
)

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	var logs bytes.Buffer
	if err := cfg.Validate(bufferLogger(&logs)); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("default config produced warnings: %s", logs.String())
	}
	r, err := cfg.SplitRatio()
	if err != nil {
		t.Fatal(err)
	}
	if r != split.DefaultRatio() {
		t.Errorf("ratio = %+v", r)
	}
}

func TestDecode(t *testing.T) {
	input := `
sources:
  - format: tatoeba
    path: data/en-ja.json
  - format: wikimatrix
    path: data/WikiMatrix.en-ja.tsv.gz
    min_score: 1.06
output_dir: out
workers:
  clean: 4
  tokenize: 6
stages:
  ratio: false
length:
  min: 2
  max: 64
split:
  ratio: {train: 0.8, valid: 0.1, test: 0.1}
  shard_size: 1000
  divide: {train: true}
  seed: 12345
`
	cfg, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[1].Format != source.WikiMatrix || cfg.Sources[1].MinScore != 1.06 {
		t.Errorf("sources = %+v", cfg.Sources)
	}
	if cfg.OutputDir != "out" || cfg.Workers.Clean != 4 || cfg.Workers.Tokenize != 6 {
		t.Errorf("cfg = %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.Workers.Freq != 1 || !cfg.Stages.Clean || cfg.Stages.Ratio || !cfg.Length.Truncate {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Frequency.Threshold != 3 {
		t.Errorf("threshold = %d, want default 3", cfg.Frequency.Threshold)
	}
	if !cfg.Split.Divide.Train || cfg.Split.Divide.Valid || cfg.Split.Seed != 12345 {
		t.Errorf("split = %+v", cfg.Split)
	}
	if err := cfg.Validate(nil); err != nil {
		t.Fatal(err)
	}
}

func TestDecode_RatioReplacesDefault(t *testing.T) {
	cfg, err := Decode(strings.NewReader("split:\n  ratio: {train: 0.9, valid: 0.05}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Split.Ratio) != 2 {
		t.Fatalf("ratio = %v, want the two entries from the file", cfg.Split.Ratio)
	}
	err = cfg.Validate(nil)
	if !errors.Is(err, ErrInvalid) || !errors.Is(err, split.ErrInvalidRatio) {
		t.Errorf("Validate = %v, want ErrInvalid wrapping ErrInvalidRatio", err)
	}
}

func TestDecode_Empty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != Default().OutputDir || len(cfg.Split.Ratio) != 3 {
		t.Errorf("empty input should yield defaults, got %+v", cfg)
	}
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("workers:\n  cleaning: 3\n"))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.yaml")
	if err := os.WriteFile(path, []byte("output_dir: shards\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "shards" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate_Corrections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		check  func(*Config) bool
	}{
		{"clean workers high", func(c *Config) { c.Workers.Clean = 99 }, func(c *Config) bool { return c.Workers.Clean == 8 }},
		{"clean workers zero", func(c *Config) { c.Workers.Clean = 0 }, func(c *Config) bool { return c.Workers.Clean == 1 }},
		{"tokenize workers high", func(c *Config) { c.Workers.Tokenize = 13 }, func(c *Config) bool { return c.Workers.Tokenize == 12 }},
		{"freq workers negative", func(c *Config) { c.Workers.Freq = -3 }, func(c *Config) bool { return c.Workers.Freq == 1 }},
		{"min length zero", func(c *Config) { c.Length.Min = 0 }, func(c *Config) bool { return c.Length.Min == 5 }},
		{"min length high", func(c *Config) { c.Length.Min = 17 }, func(c *Config) bool { return c.Length.Min == 5 }},
		{"max length low", func(c *Config) { c.Length.Max = 15 }, func(c *Config) bool { return c.Length.Max == 32 }},
		{"max length high", func(c *Config) { c.Length.Max = 257 }, func(c *Config) bool { return c.Length.Max == 32 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			var logs bytes.Buffer
			if err := cfg.Validate(bufferLogger(&logs)); err != nil {
				t.Fatal(err)
			}
			if !tt.check(&cfg) {
				t.Errorf("not corrected: %+v", cfg)
			}
			if !strings.Contains(logs.String(), `"level":"WARN"`) {
				t.Errorf("no warning logged: %s", logs.String())
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ratio sum", func(c *Config) { c.Split.Ratio = map[string]float64{"train": 0.5, "valid": 0.1, "test": 0.1} }},
		{"ratio missing", func(c *Config) { c.Split.Ratio = nil }},
		{"shard size", func(c *Config) { c.Split.Divide.Valid = true; c.Split.ShardSize = 0 }},
		{"alpha", func(c *Config) { c.Ratio.Alpha = 0 }},
		{"threshold", func(c *Config) { c.Frequency.Threshold = -1 }},
		{"output dir", func(c *Config) { c.OutputDir = "" }},
		{"analyzer", func(c *Config) { c.Analyzers.Japanese = "" }},
		{"source", func(c *Config) { c.Sources = []source.Spec{{Format: "xml", Path: "a"}} }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(nil); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel("trace"); err == nil {
		t.Error("expected error for unknown level")
	}
}
