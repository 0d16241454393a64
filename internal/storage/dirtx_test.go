package storage

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeIn(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), FilePerm); err != nil {
		t.Fatal(err)
	}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestDirTx_CommitFresh(t *testing.T) {
	parent := t.TempDir()
	out := filepath.Join(parent, "out")

	tx, err := BeginDir(out, quiet)
	if err != nil {
		t.Fatal(err)
	}
	writeIn(t, tx.Path(), "train1.en", "hello\n")
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("target visible before Commit: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	files, err := ListFiles(out)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(files, []string{"train1.en"}) {
		t.Errorf("files = %v", files)
	}
	if got := dirEntries(t, parent); !reflect.DeepEqual(got, []string{"out"}) {
		t.Errorf("parent holds %v, want only out", got)
	}
	if err := tx.Commit(); err == nil {
		t.Error("second Commit should fail")
	}
}

func TestDirTx_CommitReplaces(t *testing.T) {
	parent := t.TempDir()
	out := filepath.Join(parent, "out")
	if err := EnsureDir(filepath.Join(out, "test2.en")); err != nil {
		t.Fatal(err)
	}
	writeIn(t, out, "train9.en", "stale\n")
	writeIn(t, out, "train1.en", "old\n")

	tx, err := BeginDir(out, quiet)
	if err != nil {
		t.Fatal(err)
	}
	writeIn(t, tx.Path(), "train1.en", "new\n")
	writeIn(t, tx.Path(), "test2.en", "new\n")
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	if got := dirEntries(t, out); !reflect.DeepEqual(got, []string{"test2.en", "train1.en"}) {
		t.Errorf("out holds %v", got)
	}
	data, err := os.ReadFile(filepath.Join(out, "train1.en"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new\n" {
		t.Errorf("train1.en = %q, want new", data)
	}
	if got := dirEntries(t, parent); !reflect.DeepEqual(got, []string{"out"}) {
		t.Errorf("parent holds %v, want only out", got)
	}
}

func TestDirTx_AbortLeavesTarget(t *testing.T) {
	parent := t.TempDir()
	out := filepath.Join(parent, "out")
	if err := EnsureDir(out); err != nil {
		t.Fatal(err)
	}
	writeIn(t, out, "train1.en", "old\n")

	tx, err := BeginDir(out, quiet)
	if err != nil {
		t.Fatal(err)
	}
	writeIn(t, tx.Path(), "train1.en", "partial\n")
	tx.Abort()
	tx.Abort()

	data, err := os.ReadFile(filepath.Join(out, "train1.en"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old\n" {
		t.Errorf("train1.en = %q, want old", data)
	}
	if got := dirEntries(t, parent); !reflect.DeepEqual(got, []string{"out"}) {
		t.Errorf("parent holds %v, want only out", got)
	}
	if err := tx.Commit(); err == nil {
		t.Error("Commit after Abort should fail")
	}
}

func TestDirTx_SiblingTargets(t *testing.T) {
	parent := t.TempDir()
	a, err := BeginDir(filepath.Join(parent, "run0"), quiet)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BeginDir(filepath.Join(parent, "run1"), quiet)
	if err != nil {
		t.Fatal(err)
	}
	if a.Path() == b.Path() {
		t.Fatalf("staging dirs collide: %s", a.Path())
	}
	if err := b.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := a.Commit(); err != nil {
		t.Fatal(err)
	}
	if got := dirEntries(t, parent); !reflect.DeepEqual(got, []string{"run0", "run1"}) {
		t.Errorf("parent holds %v", got)
	}
}
