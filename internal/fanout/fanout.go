// Package fanout runs one task per contiguous corpus chunk and joins the
// results in chunk order.
//
// Workers share no mutable state: each receives its own sub-corpus and
// returns exactly one value. The merge happens on the calling goroutine after
// every worker has finished.
package fanout

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"EnJaCorpus/internal/bitext"
)

// ErrWorkerFailed wraps a panic raised inside a worker.
var ErrWorkerFailed = errors.New("fanout: worker failed")

// Func processes one chunk. The chunk shares backing arrays with the input
// corpus and must be treated as read-only.
type Func[T any] func(ctx context.Context, chunk bitext.Corpus) (T, error)

// Map partitions c into `workers` chunks (see bitext.Chunks), runs fn on each
// chunk concurrently, and returns the per-chunk results indexed by chunk.
//
// workers must already be clamped by the caller. The first error cancels the
// context handed to the remaining workers and is returned once all of them
// have exited; no partial result is returned.
func Map[T any](ctx context.Context, c bitext.Corpus, workers int, fn Func[T]) ([]T, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	chunks := bitext.Chunks(c.Len(), workers)
	results := make([]T, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range chunks {
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: chunk %d [%d,%d): %v", ErrWorkerFailed, i, r.Lo, r.Hi, p)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := fn(gctx, c.Slice(r.Lo, r.Hi))
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			// Each goroutine owns exactly one slot.
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Concat joins chunk corpora in order. English and Japanese of the same
// chunk are appended together, so the alignment of each chunk carries over.
func Concat(parts []bitext.Corpus) (bitext.Corpus, error) {
	total := 0
	for i, p := range parts {
		if err := p.Validate(); err != nil {
			return bitext.Corpus{}, fmt.Errorf("part %d: %w", i, err)
		}
		total += p.Len()
	}
	out := bitext.WithCapacity(total)
	for _, p := range parts {
		out.EN = append(out.EN, p.EN...)
		out.JA = append(out.JA, p.JA...)
	}
	return out, nil
}
