package integration

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"EnJaCorpus/internal/config"
	"EnJaCorpus/internal/source"
	"EnJaCorpus/internal/split"
	"EnJaCorpus/internal/testutil"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// writeSources lays out one file of every supported format under dir and
// returns the matching source specs.
func writeSources(t *testing.T, dir string) []source.Spec {
	t.Helper()

	var tatoeba bytes.Buffer
	enc := json.NewEncoder(&tatoeba)
	for i := 1; i <= 40; i++ {
		rec := map[string]any{
			"id": fmt.Sprint(i),
			"translation": map[string]string{
				"en": fmt.Sprintf("I have %d pens.", i),
				"ja": fmt.Sprintf("私はペンを%d本持っています。", i),
			},
		}
		if err := enc.Encode(rec); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(dir, "tatoeba", "en-ja.jsonl"), tatoeba.Bytes())

	var tsv strings.Builder
	for i := 1; i <= 20; i++ {
		score := "1.10"
		if i%4 == 0 {
			score = "1.01"
		}
		fmt.Fprintf(&tsv, "%s\tThe cat sat on mat number %d.\t猫は%d番のマットに座った。\n", score, i, i)
	}
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	if _, err := zw.Write([]byte(tsv.String())); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "wikimatrix", "WikiMatrix.en-ja.tsv.gz"), gz.Bytes())

	var en, ja []string
	for i := 1; i <= 20; i++ {
		en = append(en, fmt.Sprintf("We visited temple %d in Kyoto.", i))
		ja = append(ja, fmt.Sprintf("私たちは京都で%d番目の寺を訪れた。", i))
	}
	testutil.WriteLines(t, filepath.Join(dir, "kftt.en"), en)
	testutil.WriteLines(t, filepath.Join(dir, "kftt.ja"), ja)

	return []source.Spec{
		{Format: source.Tatoeba, Path: filepath.Join(dir, "tatoeba", "*.jsonl")},
		{Format: source.WikiMatrix, Path: filepath.Join(dir, "wikimatrix", "**", "*.tsv.gz"), MinScore: 1.04},
		{Format: source.Parallel, Path: filepath.Join(dir, "kftt")},
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func baseConfig(t *testing.T, out string, sources []source.Spec) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Sources = sources
	cfg.OutputDir = out
	cfg.Workers = config.WorkersConfig{Clean: 3, Tokenize: 4, Freq: 2}
	cfg.Split.Ratio = map[string]float64{"train": 0.8, "valid": 0.1, "test": 0.1}
	cfg.Split.ShardSize = 25
	cfg.Split.Divide = split.Divide{Train: true}
	cfg.Split.Seed = 2024
	if err := cfg.Validate(quiet); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// shardChecksums maps every shard file in the manifest to its checksum.
func shardChecksums(m *split.Manifest) map[string]string {
	out := make(map[string]string)
	for _, s := range m.Splits {
		for _, sh := range s.Shards {
			out[sh.EN.Name] = string(sh.EN.Checksum)
			out[sh.JA.Name] = string(sh.JA.Checksum)
		}
	}
	return out
}

// hiddenFiles lists the dot-files left in dir, which would be unfinished
// atomic writes.
func hiddenFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	return out
}
