// Package split shuffles a finished corpus, partitions it into
// train/valid/test and writes each split as line-aligned shard files.
package split

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRatio is returned for a split ratio that cannot partition a corpus.
var ErrInvalidRatio = errors.New("split: invalid ratio")

// Split names, in partition order.
const (
	Train = "train"
	Valid = "valid"
	Test  = "test"
)

// Names lists the splits in the order records are sliced.
var Names = []string{Train, Valid, Test}

const ratioTolerance = 0.01

// Ratio is the fraction of the corpus assigned to each split.
type Ratio struct {
	Train float64 `json:"train" yaml:"train"`
	Valid float64 `json:"valid" yaml:"valid"`
	Test  float64 `json:"test" yaml:"test"`
}

// DefaultRatio is 98/1/1.
func DefaultRatio() Ratio {
	return Ratio{Train: 0.98, Valid: 0.01, Test: 0.01}
}

// Map returns the ratio keyed by split name.
func (r Ratio) Map() map[string]float64 {
	return map[string]float64{Train: r.Train, Valid: r.Valid, Test: r.Test}
}

// Check validates r with CheckRatio.
func (r Ratio) Check() error {
	return CheckRatio(r.Map())
}

// CheckRatio requires exactly the three entries train, valid and test, each
// positive, summing to 1 within 0.01.
func CheckRatio(m map[string]float64) error {
	if len(m) != len(Names) {
		return fmt.Errorf("%w: want %d entries, got %d", ErrInvalidRatio, len(Names), len(m))
	}
	sum := 0.0
	for _, name := range Names {
		v, ok := m[name]
		if !ok {
			return fmt.Errorf("%w: missing %q", ErrInvalidRatio, name)
		}
		if !(v > 0) {
			return fmt.Errorf("%w: %s = %v must be positive", ErrInvalidRatio, name, v)
		}
		sum += v
	}
	if !(sum > 1-ratioTolerance && sum < 1+ratioTolerance) {
		return fmt.Errorf("%w: fractions sum to %v", ErrInvalidRatio, sum)
	}
	return nil
}

// ParseRatio checks m and converts it to a Ratio.
func ParseRatio(m map[string]float64) (Ratio, error) {
	if err := CheckRatio(m); err != nil {
		return Ratio{}, err
	}
	return Ratio{Train: m[Train], Valid: m[Valid], Test: m[Test]}, nil
}

// Sizes partitions total records: train and valid get the floor of their
// fraction and test takes the remainder, so the three always sum to total.
// When train and valid together round past total (possible with a sum just
// above 1), valid is reduced first.
func Sizes(total int, r Ratio) (train, valid, test int) {
	if total <= 0 {
		return 0, 0, 0
	}
	train = clamp(int(math.Floor(r.Train*float64(total))), 0, total)
	valid = clamp(int(math.Floor(r.Valid*float64(total))), 0, total-train)
	test = total - train - valid
	return train, valid, test
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
