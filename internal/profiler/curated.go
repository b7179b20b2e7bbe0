package profiler

import "strings"

// findCurated returns the first curated entry whose title and author
// substrings both match the book (lower-cased). An empty match_author
// matches any author.
func (t Tables) findCurated(title, author string) *CuratedEntry {
	title = strings.ToLower(title)
	author = strings.ToLower(author)

	for i := range t.Curated {
		e := &t.Curated[i]
		if e.MatchTitle == "" || !strings.Contains(title, e.MatchTitle) {
			continue
		}
		if e.MatchAuthor != "" && !strings.Contains(author, e.MatchAuthor) {
			continue
		}
		return e
	}
	return nil
}

// curatedProfile builds a BookProfile from a curated entry. Fields the entry
// leaves empty fall back to the same defaults heuristic profiles get.
func curatedProfile(e *CuratedEntry, bookID, title, author string, pageCount int) BookProfile {
	p := BookProfile{
		BookID:       bookID,
		Title:        title,
		Author:       author,
		PageCount:    pageCount,
		Difficulty:   e.Difficulty,
		Challenges:   e.Challenges,
		Approach:     e.Approach,
		ContextNeeds: e.ContextNeeds,
		Curated:      true,
	}

	if p.Difficulty.Level == "" {
		p.Difficulty.Level = LevelAccessible
	}
	if p.Difficulty.Era == "" {
		p.Difficulty.Era = EraContemporary
	}
	if p.Difficulty.Language == "" {
		p.Difficulty.Language = LangStandard
	}
	if p.Difficulty.Structure == "" {
		p.Difficulty.Structure = StructConventional
	}

	if e.Boundaries != nil {
		p.Boundaries = *e.Boundaries
	} else {
		p.Boundaries = defaultBoundaries()
	}
	return p
}
