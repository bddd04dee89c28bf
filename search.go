package tinyvec

import (
	"context"
	"math"
	"time"

	"github.com/hupe1980/tinyvec/distance"
	"golang.org/x/sync/errgroup"
)

// checkEvery is the number of candidates scanned between context checks.
const checkEvery = 1024

// Match is the result of a Search.
type Match struct {
	// Index is the position of the vector in the store.
	Index int
	// Score is the dot product of the query and the vector.
	Score float32
	// Vector is the matched vector, still owned by the store.
	Vector *Vector
}

// Nearest returns the vector with the minimum dot product against query.
//
// The scan runs in insertion order and keeps the first minimum on ties.
// Note that a lower dot product wins; this is not cosine similarity.
func (s *Store) Nearest(ctx context.Context, query *Vector, optFns ...SearchOption) (*Vector, error) {
	m, err := s.Search(ctx, query, optFns...)
	if err != nil {
		return nil, err
	}
	return m.Vector, nil
}

// Search is like Nearest but also reports the index and score of the match.
//
// It fails with ErrNilQuery without a query, ErrEmptyStore when there are no
// candidates, and *ErrDimensionMismatch when a candidate's length differs
// from the query's.
func (s *Store) Search(ctx context.Context, query *Vector, optFns ...SearchOption) (Match, error) {
	start := time.Now()

	var so searchOptions
	for _, fn := range optFns {
		fn(&so)
	}

	c, m, err := s.search(ctx, query, so)

	s.opts.metricsCollector.RecordSearch(c.len(), time.Since(start), err)
	s.opts.logger.LogSearch(ctx, c.len(), m, err)
	return m, err
}

func (s *Store) search(ctx context.Context, query *Vector, so searchOptions) (candidates, Match, error) {
	var c candidates
	switch {
	case s.released:
		return c, Match{}, ErrReleased
	case query == nil:
		return c, Match{}, ErrNilQuery
	case query.released:
		return c, Match{}, ErrReleased
	}

	c = s.candidates(so)
	if c.len() == 0 {
		return c, Match{}, ErrEmptyStore
	}

	parts := min(so.parallelism, c.len())
	if parts < 2 {
		p := s.scan(ctx, query, c, 0, c.len(), true)
		if p.err != nil {
			return c, Match{}, p.err
		}
		return c, s.match(p), nil
	}

	results := make([]partial, parts)
	var g errgroup.Group
	for i := range parts {
		lo := i * c.len() / parts
		hi := (i + 1) * c.len() / parts
		g.Go(func() error {
			results[i] = s.scan(ctx, query, c, lo, hi, i == 0)
			return nil
		})
	}
	_ = g.Wait()

	// Partitions are contiguous and ordered, so the first failing partition
	// holds the error the sequential scan would have hit.
	best := results[0]
	for _, p := range results {
		if p.err != nil {
			return c, Match{}, p.err
		}
	}
	for _, p := range results[1:] {
		if p.found && p.score < best.score {
			best = p
		}
	}
	return c, s.match(best), nil
}

func (s *Store) match(p partial) Match {
	return Match{Index: p.index, Score: p.score, Vector: s.slots.At(p.index)}
}

// candidates lists the store indexes to scan, either all of them or the
// members of a filter bitmap.
type candidates struct {
	n   int
	idx []int // nil means 0..n-1
}

func (c candidates) len() int {
	if c.idx != nil {
		return len(c.idx)
	}
	return c.n
}

func (c candidates) at(k int) int {
	if c.idx != nil {
		return c.idx[k]
	}
	return k
}

func (s *Store) candidates(so searchOptions) candidates {
	n := s.slots.Len()
	if so.filter == nil {
		return candidates{n: n}
	}

	idx := make([]int, 0, min(int(so.filter.GetCardinality()), n))
	it := so.filter.Iterator()
	for it.HasNext() {
		i := it.Next()
		if uint64(i) >= uint64(n) {
			break
		}
		idx = append(idx, int(i))
	}
	return candidates{n: n, idx: idx}
}

type partial struct {
	index int
	score float32
	found bool
	err   error
}

// scan finds the minimum score among candidates [lo, hi). The leading
// partition accepts its first candidate unconditionally, exactly like a
// sequential strict-less-than scan. Later partitions skip NaN scores, which a
// sequential scan could never select past its first candidate.
func (s *Store) scan(ctx context.Context, query *Vector, c candidates, lo, hi int, leading bool) partial {
	var best partial
	q := query.buf.Slice()

	for k := lo; k < hi; k++ {
		if (k-lo)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return partial{err: err}
			}
		}

		i := c.at(k)
		v := s.slots.At(i)
		if v.buf.Len() != len(q) {
			return partial{err: &ErrDimensionMismatch{Expected: len(q), Actual: v.buf.Len()}}
		}

		score := distance.Dot(q, v.buf.Slice())
		if !best.found {
			if !leading && math.IsNaN(float64(score)) {
				continue
			}
			best = partial{index: i, score: score, found: true}
			continue
		}
		if score < best.score {
			best = partial{index: i, score: score, found: true}
		}
	}
	return best
}
