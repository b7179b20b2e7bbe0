package api

import (
	"sync"

	"github.com/holloway/lector/internal/companion"
	"github.com/holloway/lector/internal/metadata"
	"github.com/holloway/lector/internal/profiler"
	"github.com/holloway/lector/internal/storage"
)

// Sessions owns one orchestrator per open book id. Opening a book that is
// already open returns the existing orchestrator so concurrent hosts share a
// single companion state per book.
type Sessions struct {
	profiler *profiler.Profiler
	recorder companion.Recorder

	mu   sync.Mutex
	open map[string]*companion.Orchestrator
}

func NewSessions(pr *profiler.Profiler, recorder companion.Recorder) *Sessions {
	return &Sessions{
		profiler: pr,
		recorder: recorder,
		open:     make(map[string]*companion.Orchestrator),
	}
}

// Open returns the orchestrator for the book, creating one and running its
// open-book pass if the book has no active session. Reopening a live session
// with an explicit position forwards it as a progress event.
func (s *Sessions) Open(book metadata.Book) (*companion.Orchestrator, profiler.BookProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.open[book.ID]; ok {
		if p := book.StoredProgress(); p > 0 {
			o.UpdateProgress(p)
		}
		return o, o.Profile()
	}

	o := companion.New(s.profiler, s.recorder)
	p := o.OpenBook(book)
	s.open[book.ID] = o
	return o, p
}

// Get returns the active orchestrator for a book id, if any.
func (s *Sessions) Get(bookID string) (*companion.Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.open[bookID]
	return o, ok
}

// Close ends and removes a book's session. Unknown ids are a no-op.
func (s *Sessions) Close(bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o, ok := s.open[bookID]; ok {
		o.EndSession()
		delete(s.open, bookID)
	}
}

// storeRecorder adapts storage.Store to the orchestrator's Recorder.
type storeRecorder struct {
	store *storage.Store
}

// NewRecorder wraps a Store for interaction logging.
func NewRecorder(store *storage.Store) companion.Recorder {
	return storeRecorder{store: store}
}

func (r storeRecorder) RecordInteraction(i companion.Interaction) error {
	return r.store.SaveInteraction(storage.Interaction{
		ID:             i.ID,
		BookID:         i.BookID,
		SuggestionType: string(i.SuggestionType),
		Engaged:        i.Engaged,
		Progress:       i.Progress,
		CreatedAt:      i.CreatedAt,
	})
}
