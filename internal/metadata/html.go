package metadata

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML returns the text content of an HTML fragment, with tags removed
// and runs of whitespace collapsed. Book descriptions sourced from online
// stores frequently arrive as HTML; heuristic keyword matching needs plain
// text. Malformed markup is tolerated: the tokenizer consumes whatever it
// can, and the raw input is returned only if no text survives.
func StripHTML(fragment string) string {
	tok := html.NewTokenizer(strings.NewReader(fragment))

	var sb strings.Builder
	for {
		tt := tok.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			sb.Write(tok.Text())
			sb.WriteByte(' ')
		}
	}

	out := strings.Join(strings.Fields(sb.String()), " ")
	if out == "" {
		return strings.TrimSpace(fragment)
	}
	return out
}
