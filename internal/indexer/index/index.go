// Package index implements the inverted index: building a single-document
// index from a Document and merging indices together.
package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer/tokenizer"
)

// Document is an identified unit of text to be indexed.
type Document struct {
	ID   string
	Text string
}

// NewDocument returns a Document with the given id and text.
func NewDocument(id, text string) Document {
	return Document{ID: id, Text: text}
}

// InvertedIndex maps a term to the ids of the documents containing it.
type InvertedIndex map[string]Postings

// New returns an empty index.
func New() InvertedIndex {
	return make(InvertedIndex)
}

// Index builds the single-document index for doc. Every term produced by the
// tokenizer maps to a one-element postings list holding doc.ID.
func Index(doc Document) InvertedIndex {
	return indexTokens(doc.ID, tokenizer.Split(doc.Text))
}

// indexTokens inserts each term by key, so a term repeated within the same
// document overwrites its earlier entry. A document therefore contributes its
// id at most once per term.
func indexTokens(docID string, terms []string) InvertedIndex {
	idx := make(InvertedIndex, len(terms))
	for _, term := range terms {
		idx[term] = Postings{docID}
	}
	return idx
}

// Merge folds incoming into base and returns the result. Postings of a term
// present in both are appended after base's existing postings; terms only in
// incoming are moved over as is. Both arguments are consumed: the result may
// share storage with either of them.
func Merge(base, incoming InvertedIndex) InvertedIndex {
	if base == nil {
		if incoming == nil {
			return New()
		}
		return incoming
	}
	for term, postings := range incoming {
		if existing, ok := base[term]; ok {
			base[term] = append(existing, postings...)
			continue
		}
		base[term] = postings
	}
	return base
}

// Fold indexes docs in order and left-folds the results into one index,
// starting from an empty one.
func Fold(docs ...Document) InvertedIndex {
	acc := New()
	for _, doc := range docs {
		acc = Merge(acc, Index(doc))
	}
	return acc
}

// Clone returns a deep copy of idx.
func (idx InvertedIndex) Clone() InvertedIndex {
	out := make(InvertedIndex, len(idx))
	for term, postings := range idx {
		cp := make(Postings, len(postings))
		copy(cp, postings)
		out[term] = cp
	}
	return out
}

// Lookup returns the postings recorded for term.
func (idx InvertedIndex) Lookup(term string) (Postings, bool) {
	postings, ok := idx[term]
	return postings, ok
}

// Terms returns every term in lexical order.
func (idx InvertedIndex) Terms() []string {
	terms := make([]string, 0, len(idx))
	for term := range idx {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Entries returns the index as TermEntries sorted by term. Postings keep
// their merge order.
func (idx InvertedIndex) Entries() []TermEntry {
	entries := make([]TermEntry, 0, len(idx))
	for _, term := range idx.Terms() {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: idx[term],
		})
	}
	return entries
}

// Stats counts the terms and postings held by idx.
func (idx InvertedIndex) Stats() Stats {
	s := Stats{Terms: len(idx)}
	for _, postings := range idx {
		s.Postings += len(postings)
	}
	return s
}
