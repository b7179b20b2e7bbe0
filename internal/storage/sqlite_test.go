package storage

import (
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetBook(t *testing.T) {
	s := newTestStore(t)

	want := BookRecord{
		ID:            "b1",
		Title:         "The Winter Estate",
		Author:        "A. Petrov",
		Description:   "A long family novel",
		PageCount:     900,
		CurrentPage:   12,
		PublishedYear: "1869",
	}
	if err := s.SaveBook(want); err != nil {
		t.Fatalf("saving: %v", err)
	}

	got, err := s.GetBook("b1")
	if err != nil {
		t.Fatalf("getting: %v", err)
	}
	if got.Title != want.Title || got.PageCount != 900 || got.CurrentPage != 12 || got.PublishedYear != "1869" {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should default to now")
	}
}

func TestGetBookNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetBook("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestSaveBookUpserts(t *testing.T) {
	s := newTestStore(t)

	first := BookRecord{ID: "b1", Title: "Draft Title", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := s.SaveBook(first); err != nil {
		t.Fatal(err)
	}
	second := first
	second.Title = "Final Title"
	second.CurrentPage = 40
	if err := s.SaveBook(second); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetBook("b1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Final Title" || got.CurrentPage != 40 {
		t.Errorf("got %+v", got)
	}
	// Upsert keeps the original created_at.
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed to %v", got.CreatedAt)
	}

	books, err := s.ListBooks()
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 {
		t.Fatalf("upsert should not duplicate, got %d books", len(books))
	}
}

func TestListBooksNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		err := s.SaveBook(BookRecord{ID: id, Title: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatal(err)
		}
	}

	books, err := s.ListBooks()
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 3 || books[0].ID != "new" || books[2].ID != "old" {
		t.Fatalf("got order %v", books)
	}
}

func TestUpdateBookProgress(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveBook(BookRecord{ID: "b1", Title: "t", PageCount: 200}); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateBookProgress("b1", 77); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetBook("b1")
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentPage != 77 {
		t.Errorf("got page %d, want 77", got.CurrentPage)
	}

	if err := s.UpdateBookProgress("missing", 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestInteractionsLogged(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveBook(BookRecord{ID: "b1", Title: "t"}); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	entries := []Interaction{
		{ID: "i1", BookID: "b1", SuggestionType: "preparation", Engaged: true, Progress: 0.0, CreatedAt: base},
		{ID: "i2", BookID: "b1", SuggestionType: "check_in", Engaged: false, Progress: 0.1, CreatedAt: base.Add(time.Minute)},
		{ID: "i3", BookID: "b1", SuggestionType: "insight", Engaged: true, Progress: 0.5, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "other", BookID: "b2", SuggestionType: "insight", Engaged: false, Progress: 0.2, CreatedAt: base},
	}
	for _, in := range entries {
		if err := s.SaveInteraction(in); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListInteractions("b1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0].ID != "i3" || got[2].ID != "i1" {
		t.Errorf("got order %v", got)
	}
	if !got[0].Engaged || got[0].Progress != 0.5 {
		t.Errorf("got %+v", got[0])
	}

	limited, err := s.ListInteractions("b1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != "i3" {
		t.Errorf("got %v", limited)
	}
}

func TestListInteractionsEmpty(t *testing.T) {
	s := newTestStore(t)
	got, err := s.ListInteractions("nothing", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d entries, want 0", len(got))
	}
}
