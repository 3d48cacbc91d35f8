package index

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexSimpleDocument(t *testing.T) {
	got := Index(NewDocument("doc1", "Hello, world!"))
	want := InvertedIndex{
		"Hello,": {"doc1"},
		"world!": {"doc1"},
	}
	assert.Equal(t, want, got)
}

func TestIndexWithoutSpaceYieldsOneTerm(t *testing.T) {
	for _, text := range []string{"Hello,", "world!", "a\tb\nc", "", "ünïcødé"} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			got := Index(NewDocument("d", text))
			assert.Equal(t, InvertedIndex{text: {"d"}}, got)
		})
	}
}

func TestIndexEmptyTextYieldsEmptyTerm(t *testing.T) {
	got := Index(NewDocument("doc1", ""))
	assert.Equal(t, InvertedIndex{"": {"doc1"}}, got)
}

func TestIndexConsecutiveSpaces(t *testing.T) {
	got := Index(NewDocument("doc1", "a  b"))
	assert.Equal(t, InvertedIndex{
		"a": {"doc1"},
		"":  {"doc1"},
		"b": {"doc1"},
	}, got)
}

// A term repeated within one document is recorded once for that document.
func TestIndexRepeatedTermOverwrites(t *testing.T) {
	got := Index(NewDocument("doc1", "cat cat"))
	require.Contains(t, got, "cat")
	assert.Equal(t, Postings{"doc1"}, got["cat"])
	assert.Len(t, got, 1)

	got = Index(NewDocument("doc2", "cat dog cat  dog"))
	assert.Equal(t, InvertedIndex{
		"cat": {"doc2"},
		"dog": {"doc2"},
		"":    {"doc2"},
	}, got)
}

func TestMergeDisjoint(t *testing.T) {
	merged := Merge(
		Index(NewDocument("doc1", "Hello,")),
		Index(NewDocument("doc2", "world!")),
	)
	assert.Equal(t, InvertedIndex{
		"Hello,": {"doc1"},
		"world!": {"doc2"},
	}, merged)
}

func TestMergeThreeDocuments(t *testing.T) {
	merged := Merge(
		Index(NewDocument("doc1", "Hello,")),
		Index(NewDocument("doc2", "world!")),
	)
	merged = Merge(merged, Index(NewDocument("doc3", "Hello, world!")))
	assert.Equal(t, InvertedIndex{
		"Hello,": {"doc1", "doc3"},
		"world!": {"doc2", "doc3"},
	}, merged)
}

func TestMergeKeepsDuplicates(t *testing.T) {
	doc := NewDocument("doc1", "cat")
	merged := Merge(Index(doc), Index(doc))
	assert.Equal(t, InvertedIndex{"cat": {"doc1", "doc1"}}, merged)
}

func TestMergeLeavesBaseOnlyTermsUntouched(t *testing.T) {
	base := InvertedIndex{"a": {"d1", "d2"}, "b": {"d1"}}
	incoming := InvertedIndex{"b": {"d3"}}
	merged := Merge(base, incoming)
	assert.Equal(t, Postings{"d1", "d2"}, merged["a"])
	assert.Equal(t, Postings{"d1", "d3"}, merged["b"])
}

func TestMergeEmptyIsIdentity(t *testing.T) {
	build := func() InvertedIndex {
		return Fold(
			NewDocument("doc1", "Hello, world!"),
			NewDocument("doc2", "world! again"),
		)
	}
	want := build()

	assert.Equal(t, want, Merge(build(), New()))
	assert.Equal(t, want, Merge(New(), build()))
	assert.Equal(t, want, Merge(build(), nil))
	assert.Equal(t, want, Merge(nil, build()))
	assert.Equal(t, New(), Merge(nil, nil))
	assert.Equal(t, New(), Merge(New(), New()))
}

func TestMergeEmptyPostings(t *testing.T) {
	merged := Merge(InvertedIndex{"a": {}}, InvertedIndex{"a": {}, "b": nil})
	assert.Empty(t, merged["a"])
	assert.Contains(t, merged, "b")
}

func TestMergeAssociative(t *testing.T) {
	docs := []Document{
		NewDocument("d1", "the quick brown fox"),
		NewDocument("d2", "the lazy dog"),
		NewDocument("d3", "quick quick dog"),
		NewDocument("d4", ""),
		NewDocument("d5", "fox  the"),
	}
	left := Fold(docs...)

	// (d1 d2) ((d3 d4) d5)
	right := Merge(
		Merge(Index(docs[0]), Index(docs[1])),
		Merge(Merge(Index(docs[2]), Index(docs[3])), Index(docs[4])),
	)
	assert.Equal(t, left, right)

	// d1 (d2 (d3 (d4 d5)))
	nested := Merge(Index(docs[0]),
		Merge(Index(docs[1]),
			Merge(Index(docs[2]),
				Merge(Index(docs[3]), Index(docs[4])))))
	assert.Equal(t, left, nested)

	assert.Equal(t, Postings{"d1", "d2", "d5"}, left["the"])
	assert.Equal(t, Postings{"d1", "d3"}, left["quick"])
	assert.Equal(t, Postings{"d4", "d5"}, left[""])
}

func TestFoldEmpty(t *testing.T) {
	assert.Equal(t, New(), Fold())
}

func TestCloneIsIndependent(t *testing.T) {
	idx := Fold(NewDocument("d1", "a b"))
	cp := idx.Clone()
	cp = Merge(cp, Index(NewDocument("d2", "a")))
	assert.Equal(t, Postings{"d1"}, idx["a"])
	assert.Equal(t, Postings{"d1", "d2"}, cp["a"])
}

func TestReadHelpers(t *testing.T) {
	idx := Fold(
		NewDocument("d1", "b a"),
		NewDocument("d2", "a"),
	)
	assert.Equal(t, []string{"a", "b"}, idx.Terms())

	postings, ok := idx.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, Postings{"d1", "d2"}, postings)
	_, ok = idx.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []TermEntry{
		{Term: "a", Postings: Postings{"d1", "d2"}},
		{Term: "b", Postings: Postings{"d1"}},
	}, idx.Entries())
	assert.Equal(t, Stats{Terms: 2, Postings: 3}, idx.Stats())
}
