package companion

import "testing"

func sug(id string, prio Priority) Suggestion {
	return Suggestion{ID: id, Type: TypeInsight, Priority: prio}
}

func ids(queue []Suggestion) []string {
	out := make([]string, len(queue))
	for i, s := range queue {
		out[i] = s.ID
	}
	return out
}

func TestInsertFrontEvictsLowestPriority(t *testing.T) {
	queue := []Suggestion{sug("a", PriorityHigh), sug("b", PriorityLow), sug("c", PriorityMedium)}

	queue = insertFront(queue, sug("d", PriorityCritical))
	got := ids(queue)
	want := []string{"d", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInsertFrontEvictsNewestOnTie(t *testing.T) {
	queue := []Suggestion{sug("a", PriorityLow), sug("b", PriorityLow), sug("c", PriorityLow)}
	queue = insertFront(queue, sug("d", PriorityLow))

	// The scan prefers the later index on ties, so the oldest entry at the
	// tail goes first.
	got := ids(queue)
	want := []string{"d", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRankCandidatesOrdersAndTruncates(t *testing.T) {
	in := []Suggestion{
		sug("low1", PriorityLow),
		sug("high", PriorityHigh),
		sug("low2", PriorityLow),
		sug("med", PriorityMedium),
	}
	got := ids(rankCandidates(in, 0))
	want := []string{"high", "med", "low1"}
	if len(got) != maxPending {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRankCandidatesDropsExpired(t *testing.T) {
	fresh := sug("fresh", PriorityLow)
	stale := sug("stale", PriorityHigh)
	stale.ExpiresAfterProgress = 0.2

	got := rankCandidates([]Suggestion{fresh, stale}, 0.5)
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("got %v, want only fresh", ids(got))
	}
}

func TestPruneExpired(t *testing.T) {
	open := sug("open", PriorityLow) // zero expiry never closes
	windowed := sug("windowed", PriorityLow)
	windowed.ExpiresAfterProgress = 0.3

	queue := []Suggestion{open, windowed}
	queue = pruneExpired(queue, 0.3)
	if len(queue) != 2 {
		t.Fatalf("window boundary is inclusive, got %v", ids(queue))
	}
	queue = pruneExpired(queue, 0.31)
	if len(queue) != 1 || queue[0].ID != "open" {
		t.Fatalf("got %v, want only open", ids(queue))
	}
}

func TestRemoveByID(t *testing.T) {
	queue := []Suggestion{sug("a", PriorityLow), sug("b", PriorityHigh)}

	rest, removed := removeByID(queue, "a")
	if removed == nil || removed.ID != "a" || len(rest) != 1 {
		t.Fatalf("got rest=%v removed=%v", ids(rest), removed)
	}
	rest, removed = removeByID(rest, "missing")
	if removed != nil || len(rest) != 1 {
		t.Fatal("unknown id must not remove anything")
	}
}
