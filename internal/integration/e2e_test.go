package integration

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"EnJaCorpus/internal/bitext"
	"EnJaCorpus/internal/pipeline"
	"EnJaCorpus/internal/source"
	"EnJaCorpus/internal/split"
	"EnJaCorpus/internal/storage"
	"EnJaCorpus/internal/testutil"
)

func TestE2E_SourcesToShards(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the IPA dictionary")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	cfg := baseConfig(t, out, writeSources(t, dir))
	cfg.Frequency.Export = true

	corpus, err := source.LoadAll(context.Background(), cfg.Sources, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if corpus.Len() != 75 {
		t.Fatalf("loaded %d pairs, want 40 + 15 + 20", corpus.Len())
	}

	rep, err := pipeline.Run(context.Background(), cfg, corpus, quiet)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	prev := corpus.Len()
	for _, s := range rep.Stages {
		names = append(names, s.Name)
		if s.In != prev {
			t.Errorf("stage %s input %d, previous output %d", s.Name, s.In, prev)
		}
		if s.Out > s.In {
			t.Errorf("stage %s grew the corpus: %d -> %d", s.Name, s.In, s.Out)
		}
		prev = s.Out
	}
	wantNames := []string{
		pipeline.StageClean, pipeline.StageTokenize, pipeline.StageLength,
		pipeline.StageOverlap, pipeline.StageRatio, pipeline.StageFrequency, pipeline.StageSplit,
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("stages = %v", names)
	}
	if rep.Manifest.TotalPairs == 0 {
		t.Fatal("every pair was filtered out")
	}
	testutil.AssertDirExists(t, out)

	m, err := split.ReadManifest(out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(shardChecksums(m), shardChecksums(rep.Manifest)) {
		t.Error("manifest on disk differs from the returned one")
	}
	if err := split.VerifyShards(out, m); err != nil {
		t.Fatal(err)
	}

	total := 0
	for _, s := range m.Splits {
		for _, sh := range s.Shards {
			en := testutil.ReadLines(t, filepath.Join(out, sh.EN.Name))
			ja := testutil.ReadLines(t, filepath.Join(out, sh.JA.Name))
			if len(en) != sh.Pairs || len(ja) != sh.Pairs {
				t.Errorf("%s: %d/%d lines, manifest says %d", sh.EN.Name, len(en), len(ja), sh.Pairs)
			}
			for i := range en {
				if strings.ContainsAny(en[i]+ja[i], "\t\r") {
					t.Errorf("%s line %d holds a control character", sh.EN.Name, i)
				}
				if n := bitext.TokenCount(en[i]); n < cfg.Length.Min || n > cfg.Length.Max {
					t.Errorf("%s line %d has %d tokens", sh.EN.Name, i, n)
				}
			}
			total += len(en)
		}
	}
	if total != m.TotalPairs {
		t.Errorf("shards hold %d pairs, manifest says %d", total, m.TotalPairs)
	}

	for _, f := range rep.FreqFiles {
		testutil.AssertFileExists(t, f)
	}
	if got := hiddenFiles(t, out); len(got) != 0 {
		t.Errorf("temporary files left behind: %v", got)
	}
}

func TestE2E_Reproducible(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the IPA dictionary")
	}
	dir := t.TempDir()
	sources := writeSources(t, dir)
	corpus, err := source.LoadAll(context.Background(), sources, quiet)
	if err != nil {
		t.Fatal(err)
	}

	var runs []map[string]string
	for _, name := range []string{"a", "b"} {
		cfg := baseConfig(t, filepath.Join(dir, name), sources)
		rep, err := pipeline.Run(context.Background(), cfg, corpus, quiet)
		if err != nil {
			t.Fatal(err)
		}
		runs = append(runs, shardChecksums(rep.Manifest))
	}
	if !reflect.DeepEqual(runs[0], runs[1]) {
		t.Errorf("same seed produced different shards:\n%v\n%v", runs[0], runs[1])
	}
}

func TestE2E_RerunReplacesShards(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	corpus := testutil.NumberedCorpus(60)

	cfg := baseConfig(t, out, nil)
	cfg.Analyzers.English = "whitespace"
	cfg.Analyzers.Japanese = "whitespace"
	cfg.Stages.Clean = false
	cfg.Stages.Length = false
	cfg.Stages.Frequency = false
	cfg.Split.ShardSize = 10

	if _, err := pipeline.Run(context.Background(), cfg, corpus, quiet); err != nil {
		t.Fatal(err)
	}
	testutil.AssertFileExists(t, filepath.Join(out, "train5.en"))

	cfg.Split.ShardSize = 30
	rep, err := pipeline.Run(context.Background(), cfg, corpus, quiet)
	if err != nil {
		t.Fatal(err)
	}
	train, _ := rep.Manifest.Split(split.Train)
	if len(train.Shards) != 2 {
		t.Fatalf("train shards = %d, want 2", len(train.Shards))
	}

	files, err := storage.ListFiles(out)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		split.ManifestFileName,
		"test1.en", "test1.ja",
		"train1.en", "train1.ja", "train2.en", "train2.ja",
		"valid1.en", "valid1.ja",
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}
