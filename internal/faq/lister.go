package faq

// Row is one line of a tag listing: a representative tag (the longest one
// the entry owns, for readability) and the entry's title.
type Row struct {
	Tag   string
	Title string
}

// Page is one page of the tag listing plus the navigation metadata callers
// render in footers.
type Page struct {
	Rows         []Row
	Number       int
	TotalPages   int
	TotalEntries int
}

// Lister paginates the store one-row-per-entry in title order.
type Lister struct {
	store *Store
}

// NewLister creates a Lister over the given store.
func NewLister(store *Store) *Lister {
	return &Lister{store: store}
}

// Page returns the 1-based page of the given size. An out-of-range page
// number (including zero and negatives) silently resets to page 1 rather
// than returning an empty page. Size below 1 defaults to 10.
func (l *Lister) Page(number, size int) Page {
	if size < 1 {
		size = 10
	}

	entries := l.store.Entries()
	total := len(entries)
	totalPages := max(1, (total+size-1)/size)

	if number < 1 || number > totalPages {
		number = 1
	}

	start := (number - 1) * size
	end := min(start+size, total)

	var rows []Row
	for _, e := range entries[start:end] {
		rows = append(rows, Row{Tag: e.DisplayTag(), Title: e.Title})
	}

	return Page{
		Rows:         rows,
		Number:       number,
		TotalPages:   totalPages,
		TotalEntries: total,
	}
}
