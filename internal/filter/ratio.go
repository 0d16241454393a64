package filter

import (
	"math"

	"EnJaCorpus/internal/bitext"
)

// DefaultAlpha keeps roughly the central 95% of a normal ratio distribution.
const DefaultAlpha = 1.96

// RatioStats describes the English/Japanese token-count ratio distribution.
type RatioStats struct {
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Sampled int     `json:"sampled"`
	Kept    int     `json:"kept"`
}

// Ratio drops pairs whose len(EN)/len(JA) token ratio lies outside
// [mean - alpha*std, mean + alpha*std]. Mean and population standard
// deviation are taken over every pair with non-empty sides before any pair is
// classified. Pairs with an empty side are always dropped. When every sampled
// pair has the same ratio the spread is zero and all of them are kept.
func Ratio(c bitext.Corpus, alpha float64) (bitext.Corpus, RatioStats) {
	ratios := make([]float64, c.Len())
	var stats RatioStats
	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < c.Len(); i++ {
		ne, nj := bitext.TokenCount(c.EN[i]), bitext.TokenCount(c.JA[i])
		if ne == 0 || nj == 0 {
			ratios[i] = math.NaN()
			continue
		}
		r := float64(ne) / float64(nj)
		ratios[i] = r
		sum += r
		lo, hi = math.Min(lo, r), math.Max(hi, r)
		stats.Sampled++
	}
	if stats.Sampled == 0 {
		return bitext.WithCapacity(0), stats
	}

	stats.Mean = sum / float64(stats.Sampled)
	if lo == hi {
		// The summed mean of equal ratios can be off by rounding; pin it so
		// the spread is exactly zero.
		stats.Mean = lo
	}
	var sq float64
	for _, r := range ratios {
		if !math.IsNaN(r) {
			d := r - stats.Mean
			sq += d * d
		}
	}
	stats.Std = math.Sqrt(sq / float64(stats.Sampled))
	stats.Lower = stats.Mean - alpha*stats.Std
	stats.Upper = stats.Mean + alpha*stats.Std

	out := bitext.WithCapacity(stats.Sampled)
	for i, r := range ratios {
		if math.IsNaN(r) {
			continue
		}
		if r < stats.Lower || r > stats.Upper {
			continue
		}
		out.Append(c.EN[i], c.JA[i])
	}
	stats.Kept = out.Len()
	return out, stats
}
