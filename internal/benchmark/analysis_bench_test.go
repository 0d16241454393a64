package benchmark

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"EnJaCorpus/internal/analysis"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func BenchmarkAnalysis_English_Short(b *testing.B) {
	a := analysis.NewEnglishAnalyzer()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Analyze("I have a pen.")
	}
}

func BenchmarkAnalysis_English_Long(b *testing.B) {
	a := analysis.NewEnglishAnalyzer()
	text := "The college provided courses in science, engineering and art, and it didn't " +
		"take long before the first students, some of them from abroad, arrived in the city."
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Analyze(text)
	}
}

func BenchmarkAnalysis_Whitespace(b *testing.B) {
	a := analysis.NewWhitespaceAnalyzer()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Analyze("the cat sat on the mat and looked at the bird outside")
	}
}

func BenchmarkAnalysis_Japanese(b *testing.B) {
	a, err := analysis.NewJapaneseAnalyzer()
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Analyze("当時の学校は科学、工学、芸術のコースを開講した。")
	}
}

func BenchmarkAnalysis_Cached(b *testing.B) {
	a, err := analysis.NewCached(analysis.NewEnglishAnalyzer(), 0)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Analyze("I have a pen.")
	}
}

func BenchmarkCorpusTokenizer(b *testing.B) {
	c := rawCorpus(5000)
	ct := &analysis.CorpusTokenizer{
		English:  analysis.NewEnglishAnalyzer(),
		Japanese: analysis.NewWhitespaceAnalyzer(),
		Workers:  4,
		Logger:   discard,
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ct.Run(context.Background(), c); err != nil {
			b.Fatal(err)
		}
	}
}
