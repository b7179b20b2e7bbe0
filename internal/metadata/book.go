package metadata

import "strings"

// Book holds the metadata the host supplies when opening a book. Every field
// except Title is optional; the profiler degrades gracefully when fields are
// absent.
type Book struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author,omitempty"`
	Description   string `json:"description,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	CurrentPage   int    `json:"current_page,omitempty"`
	PublishedYear string `json:"published_year,omitempty"`
}

// StoredProgress returns the reading progress implied by CurrentPage and
// PageCount as a fraction in [0,1]. Returns 0 when page data is unavailable.
func (b Book) StoredProgress() float64 {
	if b.PageCount <= 0 || b.CurrentPage <= 0 {
		return 0
	}
	p := float64(b.CurrentPage) / float64(b.PageCount)
	if p > 1 {
		return 1
	}
	return p
}

// SearchText returns the lower-cased concatenation of title, author, and
// description used by keyword heuristics. HTML markup in the description is
// stripped first so store-sourced descriptions don't leak tag names into
// keyword scans.
func (b Book) SearchText() string {
	desc := b.Description
	if strings.ContainsRune(desc, '<') {
		desc = StripHTML(desc)
	}
	return strings.ToLower(b.Title + " " + b.Author + " " + desc)
}
