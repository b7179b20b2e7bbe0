package metadata

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FromPDF builds Book metadata from a local PDF file: title and author from
// the document info dictionary when present (falling back to the file name
// for the title), page count from the page tree. The file's text content is
// never extracted; the profiler only needs metadata.
func FromPDF(path string) (Book, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Book{}, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	b := Book{PageCount: r.NumPage()}

	info := r.Trailer().Key("Info")
	if info.Kind() == pdf.Dict {
		b.Title = strings.TrimSpace(info.Key("Title").Text())
		b.Author = strings.TrimSpace(info.Key("Author").Text())
	}

	if b.Title == "" {
		base := filepath.Base(path)
		b.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return b, nil
}
