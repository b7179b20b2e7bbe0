// Package profiler turns book metadata into a static difficulty assessment:
// era, language and structure classification, likely challenges, a
// recommended reading approach, spoiler boundaries, and context needs.
// Profiling is pure and never fails; missing metadata degrades to permissive
// defaults. Well-known works are served from a curated table before the
// heuristics run.
package profiler

import (
	"sync"

	"github.com/holloway/lector/internal/metadata"
)

// Profiler memoizes profiles per book id for the lifetime of the process.
// Safe for concurrent use; profiling itself is side-effect-free.
type Profiler struct {
	tables Tables

	mu    sync.RWMutex
	cache map[string]BookProfile
}

// New creates a Profiler over the given tables.
func New(tables Tables) *Profiler {
	return &Profiler{
		tables: tables,
		cache:  make(map[string]BookProfile),
	}
}

// Tables returns the table set the profiler was built with.
func (pr *Profiler) Tables() Tables { return pr.tables }

// Profile returns the assessment for the book, computing it on first request
// and serving the memoized copy afterwards. Books without an ID are profiled
// fresh every time.
func (pr *Profiler) Profile(book metadata.Book) BookProfile {
	if book.ID != "" {
		pr.mu.RLock()
		p, ok := pr.cache[book.ID]
		pr.mu.RUnlock()
		if ok {
			return p
		}
	}

	p := pr.tables.Assess(book)

	if book.ID != "" {
		pr.mu.Lock()
		pr.cache[book.ID] = p
		pr.mu.Unlock()
	}
	return p
}

// Assess runs the full profiling pipeline: curated lookup first, then the
// heuristic chain (era, language, structure, known-work flag, difficulty
// scoring, challenges, approach, boundaries, context needs).
func (t Tables) Assess(book metadata.Book) BookProfile {
	if e := t.findCurated(book.Title, book.Author); e != nil {
		return curatedProfile(e, book.ID, book.Title, book.Author, book.PageCount)
	}

	search := book.SearchText()

	era := t.detectEra(book, search)
	lang := t.detectLanguage(search)
	structure := t.detectStructure(search)
	known := t.isKnownDifficult(search)

	difficulty := t.scoreDifficulty(book, era, lang, structure, known)
	challenges := t.identifyChallenges(book, difficulty, search)

	return BookProfile{
		BookID:       book.ID,
		Title:        book.Title,
		Author:       book.Author,
		PageCount:    book.PageCount,
		Difficulty:   difficulty,
		Challenges:   challenges,
		Approach:     t.recommendApproach(difficulty, challenges),
		Boundaries:   defaultBoundaries(),
		ContextNeeds: t.deriveContextNeeds(difficulty, search),
	}
}
