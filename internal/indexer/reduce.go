package indexer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer/index"
)

// Reduce indexes docs with up to workers goroutines and returns the same
// index as index.Fold(docs...), postings order included.
//
// docs are cut into contiguous chunks in input order. Each chunk is folded
// on its own goroutine, then adjacent partial indices are merged pairwise,
// level by level, always with the earlier chunk on the left.
func Reduce(ctx context.Context, docs []index.Document, workers int) (index.InvertedIndex, error) {
	if len(docs) == 0 {
		return index.New(), nil
	}
	if workers < 1 {
		workers = 1
	}
	chunks := min(workers, len(docs))
	size := (len(docs) + chunks - 1) / chunks

	partials := make([]index.InvertedIndex, chunks)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range chunks {
		lo := min(i*size, len(docs))
		hi := min(lo+size, len(docs))
		part := docs[lo:hi]
		g.Go(func() error {
			acc := index.New()
			for _, doc := range part {
				if err := gctx.Err(); err != nil {
					return err
				}
				acc = index.Merge(acc, index.Index(doc))
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeTree(ctx, partials, workers)
}

// mergeTree merges parts pairwise until one index remains. The pairing is
// fixed by position, so the result depends only on the order of parts.
func mergeTree(ctx context.Context, parts []index.InvertedIndex, workers int) (index.InvertedIndex, error) {
	for len(parts) > 1 {
		next := make([]index.InvertedIndex, (len(parts)+1)/2)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for j := range next {
			left := parts[2*j]
			if 2*j+1 == len(parts) {
				next[j] = left
				continue
			}
			right := parts[2*j+1]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				next[j] = index.Merge(left, right)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		parts = next
	}
	return parts[0], nil
}
