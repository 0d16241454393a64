package bitext

// Range is a half-open interval [Lo, Hi) of pair indices.
type Range struct {
	Lo int
	Hi int
}

// Len returns Hi - Lo.
func (r Range) Len() int { return r.Hi - r.Lo }

// ClampWorkers bounds a requested worker count to [1, max] and to the number
// of pairs n. The second result reports whether the request was adjusted.
// An empty corpus always gets a single worker.
func ClampWorkers(requested, max, n int) (int, bool) {
	w := requested
	if w < 1 {
		w = 1
	}
	if max > 0 && w > max {
		w = max
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w, w != requested
}

// Chunks partitions n pairs into `workers` contiguous ranges of n/workers
// pairs each; the last range absorbs the remainder. workers must already be
// clamped (1 <= workers <= max(n, 1)).
func Chunks(n, workers int) []Range {
	if workers < 1 {
		workers = 1
	}
	size := n / workers
	out := make([]Range, workers)
	for i := 0; i < workers; i++ {
		lo := i * size
		hi := (i + 1) * size
		if i == workers-1 {
			hi = n
		}
		out[i] = Range{Lo: lo, Hi: hi}
	}
	return out
}
