package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexflint/go-arg"

	"EnJaCorpus/internal/config"
	"EnJaCorpus/internal/pipeline"
	"EnJaCorpus/internal/source"
	"EnJaCorpus/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

type args struct {
	Config   string  `arg:"--config,env:ENJACORPUS_CONFIG" help:"path to YAML config file"`
	Out      string  `arg:"--out,env:ENJACORPUS_OUT" help:"output directory for shards and manifest"`
	Seed     *uint64 `arg:"--seed,env:ENJACORPUS_SEED" help:"shuffle seed, 0 draws a random one"`
	LogLevel string  `arg:"--log-level,env:ENJACORPUS_LOG_LEVEL" help:"debug, info, warn or error"`
	Report   string  `arg:"--report,env:ENJACORPUS_REPORT" help:"write the run report as JSON to this path"`

	WorkersClean    *int `arg:"--workers-clean,env:ENJACORPUS_WORKERS_CLEAN" help:"cleaning workers [1,8]"`
	WorkersTokenize *int `arg:"--workers-tokenize,env:ENJACORPUS_WORKERS_TOKENIZE" help:"tokenization workers [1,12]"`
	WorkersFreq     *int `arg:"--workers-freq,env:ENJACORPUS_WORKERS_FREQ" help:"frequency counting workers [1,8]"`

	Clean     *bool `arg:"--clean,env:ENJACORPUS_CLEAN" help:"run noise removal and the language gate"`
	Length    *bool `arg:"--length,env:ENJACORPUS_LENGTH" help:"run the length filter"`
	Overlap   *bool `arg:"--overlap,env:ENJACORPUS_OVERLAP" help:"run the overlap filter"`
	Ratio     *bool `arg:"--ratio,env:ENJACORPUS_RATIO" help:"run the length-ratio filter"`
	Frequency *bool `arg:"--frequency,env:ENJACORPUS_FREQUENCY" help:"run the frequency filter"`

	Sources []string `arg:"positional" help:"extra sources as format:path, e.g. tatoeba:data/en-ja.jsonl"`
}

func (args) Version() string {
	return "enjacorpus " + Version
}

func (args) Description() string {
	return "Builds a cleaned, filtered and sharded English/Japanese parallel corpus."
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	var a args
	p, err := arg.NewParser(arg.Config{Program: "enjacorpus"}, &a)
	if err != nil {
		fmt.Fprintf(stderr, "argument setup: %v\n", err)
		return exitConfig
	}
	switch err := p.Parse(argv); {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(stdout)
		return exitOK
	case errors.Is(err, arg.ErrVersion):
		fmt.Fprintln(stdout, a.Version())
		return exitOK
	case err != nil:
		p.WriteUsage(stderr)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitConfig
	}

	cfg, err := loadConfig(a)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitConfig
	}
	level, err := config.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitConfig
	}
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := cfg.Validate(logger); err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitConfig
	}
	if len(cfg.Sources) == 0 {
		logger.Error("invalid configuration", "error", source.ErrNoSources)
		return exitConfig
	}

	logger.Info("starting enjacorpus",
		"version", Version,
		"config", a.Config,
		"output_dir", cfg.OutputDir,
		"sources", len(cfg.Sources),
	)

	corpus, err := source.LoadAll(ctx, cfg.Sources, logger)
	if err != nil {
		logger.Error("loading sources failed", "error", err)
		return exitFailed
	}
	rep, err := pipeline.Run(ctx, cfg, corpus, logger)
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		return exitFailed
	}

	if a.Report != "" {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			logger.Error("encoding report failed", "error", err)
			return exitFailed
		}
		if err := storage.AtomicWriteFile(a.Report, append(data, '\n')); err != nil {
			logger.Error("writing report failed", "error", err)
			return exitFailed
		}
	}
	return exitOK
}

// loadConfig layers the file, then flags and environment, over the defaults.
func loadConfig(a args) (config.Config, error) {
	cfg := config.Default()
	if a.Config != "" {
		var err error
		if cfg, err = config.Load(a.Config); err != nil {
			return config.Config{}, err
		}
	}

	if a.Out != "" {
		cfg.OutputDir = a.Out
	}
	if a.Seed != nil {
		cfg.Split.Seed = *a.Seed
	}
	if a.LogLevel != "" {
		cfg.Logging.Level = a.LogLevel
	}
	setInt(&cfg.Workers.Clean, a.WorkersClean)
	setInt(&cfg.Workers.Tokenize, a.WorkersTokenize)
	setInt(&cfg.Workers.Freq, a.WorkersFreq)
	setBool(&cfg.Stages.Clean, a.Clean)
	setBool(&cfg.Stages.Length, a.Length)
	setBool(&cfg.Stages.Overlap, a.Overlap)
	setBool(&cfg.Stages.Ratio, a.Ratio)
	setBool(&cfg.Stages.Frequency, a.Frequency)

	for _, s := range a.Sources {
		spec, err := parseSource(s)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Sources = append(cfg.Sources, spec)
	}
	return cfg, nil
}

// parseSource reads "format:path". A bare path is a Tatoeba file.
func parseSource(s string) (source.Spec, error) {
	spec := source.Spec{Format: source.Tatoeba, Path: s}
	if format, path, ok := strings.Cut(s, ":"); ok && !strings.ContainsAny(format, `/\.`) {
		spec = source.Spec{Format: source.Format(format), Path: path}
	}
	if err := spec.Validate(); err != nil {
		return source.Spec{}, fmt.Errorf("%w: source %q: %w", config.ErrInvalid, s, err)
	}
	return spec, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
