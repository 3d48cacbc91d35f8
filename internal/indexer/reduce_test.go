package indexer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer/index"
)

func corpus(n int) []index.Document {
	words := []string{"alpha", "beta", "gamma", "delta", "", "Hello,", "world!"}
	docs := make([]index.Document, n)
	for i := range docs {
		text := words[i%len(words)] + " " + words[(i*3)%len(words)] + " " + words[(i*5+1)%len(words)]
		docs[i] = index.NewDocument(fmt.Sprintf("doc%d", i), text)
	}
	return docs
}

func TestReduceMatchesFold(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 5, 17, 64} {
		for _, workers := range []int{0, 1, 2, 3, 4, 8, 100} {
			t.Run(fmt.Sprintf("docs_%d_workers_%d", n, workers), func(t *testing.T) {
				docs := corpus(n)
				want := index.Fold(docs...)
				got, err := Reduce(context.Background(), docs, workers)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestReduceThreeDocuments(t *testing.T) {
	docs := []index.Document{
		index.NewDocument("doc1", "Hello,"),
		index.NewDocument("doc2", "world!"),
		index.NewDocument("doc3", "Hello, world!"),
	}
	got, err := Reduce(context.Background(), docs, 3)
	require.NoError(t, err)
	assert.Equal(t, index.InvertedIndex{
		"Hello,": {"doc1", "doc3"},
		"world!": {"doc2", "doc3"},
	}, got)
}

func TestReduceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Reduce(ctx, corpus(10), 2)
	require.ErrorIs(t, err, context.Canceled)
}
