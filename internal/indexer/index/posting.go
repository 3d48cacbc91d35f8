package index

// Postings is the ordered list of document ids recorded for a term. Order
// follows merge order and repeated ids are kept.
type Postings []string

// TermEntry pairs a term with its postings, used for ordered listings.
type TermEntry struct {
	Term     string   `json:"term"`
	Postings Postings `json:"postings"`
}

// Stats summarises the size of an index.
type Stats struct {
	Terms    int `json:"terms"`
	Postings int `json:"postings"`
}
