package testutil

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"testing"

	"EnJaCorpus/internal/bitext"
)

// WithTempDir creates a temporary directory, calls fn with its path,
// and cleans up afterwards.
func WithTempDir(t *testing.T, fn func(dir string)) {
	t.Helper()
	dir := t.TempDir()
	fn(dir)
}

// MustCorpus builds an aligned corpus or fails the test.
func MustCorpus(t testing.TB, en, ja []string) bitext.Corpus {
	t.Helper()
	c, err := bitext.New(en, ja)
	if err != nil {
		t.Fatalf("bitext.New: %v", err)
	}
	return c
}

// NumberedCorpus returns n pairs "en-i" / "ja-i", i starting at 0, so that
// alignment can be checked after shuffling.
func NumberedCorpus(n int) bitext.Corpus {
	c := bitext.WithCapacity(n)
	for i := 0; i < n; i++ {
		c.Append(fmt.Sprintf("en-%d", i), fmt.Sprintf("ja-%d", i))
	}
	return c
}

// SamplePairs returns raw, noisy sentence pairs as they come out of the
// public corpora. Pairs 0-3 survive cleaning; the rest are rejected by the
// language gate.
func SamplePairs() bitext.Corpus {
	return bitext.Corpus{
		EN: []string{
			"The college provided courses in science, engineering and art.",
			"He won the Fossati Prize (see https://example.com/prize).",
			"I have a pen.",
			"Please e-mail me at someone@example.com  today.",
			"Über alles.",
			"This one is fine.",
		},
		JA: []string{
			"当時の学校は科学、工学、芸術のコースを開講した。",
			"ピタリ賞を獲得した。",
			"私はペンを持っています。",
			"今日 someone@example.com にメールしてください。",
			"何よりも。",
			"Это плохо.",
		},
	}
}

// ReadLines reads a file written one sentence per line.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return lines
}

// WriteLines writes lines to path, each followed by a newline.
func WriteLines(t testing.TB, path string, lines []string) {
	t.Helper()
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// AssertFileExists checks that a file exists at the given path.
func AssertFileExists(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks that nothing exists at the given path.
func AssertFileNotExists(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s not to exist", path)
	}
}

// AssertDirExists checks that a directory exists at the given path.
func AssertDirExists(t testing.TB, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("expected directory to exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}
}
