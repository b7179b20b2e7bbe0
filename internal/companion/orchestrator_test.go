package companion

import (
	"testing"
	"time"

	"github.com/holloway/lector/internal/metadata"
	"github.com/holloway/lector/internal/profiler"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type memRecorder struct {
	interactions []Interaction
}

func (r *memRecorder) RecordInteraction(i Interaction) error {
	r.interactions = append(r.interactions, i)
	return nil
}

// challengingBook profiles challenging with preparation: 900 pages from 1869
// scores past both the level and preparation thresholds.
func challengingBook() metadata.Book {
	return metadata.Book{
		ID:            "b1",
		Title:         "The Winter Estate",
		PageCount:     900,
		PublishedYear: "1869",
	}
}

func easyBook() metadata.Book {
	return metadata.Book{
		ID:            "b2",
		Title:         "Quiet Streets",
		PageCount:     180,
		PublishedYear: "2019",
	}
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *memRecorder, *fakeClock) {
	t.Helper()
	rec := &memRecorder{}
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewWithClock(profiler.New(profiler.DefaultTables()), rec, clock), rec, clock
}

func countType(queue []Suggestion, typ SuggestionType) int {
	n := 0
	for _, s := range queue {
		if s.Type == typ {
			n++
		}
	}
	return n
}

func findType(queue []Suggestion, typ SuggestionType) *Suggestion {
	for _, s := range queue {
		if s.Type == typ {
			out := s
			return &out
		}
	}
	return nil
}

func TestOpenBookSeedsQueue(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	p := o.OpenBook(challengingBook())

	if p.Difficulty.Level != profiler.LevelChallenging {
		t.Fatalf("fixture book should profile challenging, got %s", p.Difficulty.Level)
	}
	if got := o.SessionState(); got != StateReadyToHelp {
		t.Fatalf("got state %s, want ready_to_help", got)
	}

	pending := o.PendingSuggestions()
	if len(pending) == 0 || len(pending) > maxPending {
		t.Fatalf("got %d pending, want 1..%d", len(pending), maxPending)
	}
	if countType(pending, TypePreparation) != 1 {
		t.Error("expected a preparation suggestion for an intimidating new book")
	}
	if countType(pending, TypeApproach) != 1 {
		t.Error("expected an approach suggestion for a challenging new book")
	}
}

func TestEasyBookStartsObservingEmpty(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(easyBook())

	if got := o.SessionState(); got != StateObserving {
		t.Fatalf("got state %s, want observing", got)
	}
	if n := len(o.PendingSuggestions()); n != 0 {
		t.Fatalf("accessible new book should have no suggestions, got %d", n)
	}
	if o.ShouldShowSuggestions() {
		t.Error("observer mode with no confusion should hide suggestions")
	}
}

func TestMilestoneFiresOnce(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	o.UpdateProgress(0.12)
	if n := countType(o.PendingSuggestions(), TypeCelebration); n != 1 {
		t.Fatalf("crossing 10%% should queue one celebration, got %d", n)
	}

	o.UpdateProgress(0.13)
	if n := countType(o.PendingSuggestions(), TypeCelebration); n != 1 {
		t.Fatalf("no new milestone crossed, still want 1 celebration, got %d", n)
	}
	if head := o.PrimarySuggestion(); head == nil || head.Type != TypeCelebration {
		t.Error("celebration should sit at the queue front")
	}
}

func TestMultipleMilestonesInOneJump(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	o.UpdateProgress(0.55)
	pending := o.PendingSuggestions()
	if len(pending) != maxPending {
		t.Fatalf("got %d pending, want full queue of %d", len(pending), maxPending)
	}
	if countType(pending, TypeCelebration) != 3 {
		t.Fatalf("crossing 10/25/50 should keep three celebrations, got %v", pending)
	}
	// Most recent crossing first.
	if pending[0].TriggerReason != "crossed 50% milestone" {
		t.Errorf("queue front = %q", pending[0].TriggerReason)
	}
}

func TestCelebrationExpires(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	o.UpdateProgress(0.12)
	o.UpdateProgress(0.16)
	if countType(o.PendingSuggestions(), TypeCelebration) != 1 {
		t.Fatal("celebration should survive within its window")
	}

	o.UpdateProgress(0.21)
	if countType(o.PendingSuggestions(), TypeCelebration) != 0 {
		t.Fatal("celebration should expire once progress passes its window")
	}
}

func TestConfusionInjectsClarification(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	o.HandleQuestion("Who is the narrator here?")
	if containsType(o.PendingSuggestions(), TypeClarification) {
		t.Fatal("one signal should not trigger clarification")
	}

	o.HandleQuestion("I'm lost in this chapter")
	pending := o.PendingSuggestions()
	if len(pending) == 0 || pending[0].Type != TypeClarification {
		t.Fatalf("expected clarification at queue front, got %v", pending)
	}
	if pending[0].Priority != PriorityCritical {
		t.Errorf("got priority %v, want critical", pending[0].Priority)
	}

	// A third signal must not stack a second clarification.
	o.HandleQuestion("Still confused about the timeline")
	if countType(o.PendingSuggestions(), TypeClarification) != 1 {
		t.Fatal("clarification must not duplicate")
	}
}

func TestNeutralQuestionsCountWithoutSignal(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	o.HandleQuestion("Tell me about the author's style")
	o.HandleQuestion("What year is this set in?")

	r := o.Reader()
	if r.QuestionsAsked != 2 {
		t.Errorf("got %d questions, want 2", r.QuestionsAsked)
	}
	if r.ConfusionSignals != 0 {
		t.Errorf("got %d confusion signals, want 0", r.ConfusionSignals)
	}
}

func TestConfusionOverridesObserverMode(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(easyBook())

	o.HandleQuestion("I'm confused about the opening")
	o.HandleQuestion("this makes no sense to me")

	if !o.ShouldShowSuggestions() {
		t.Fatal("confusion should override observer-mode quiet")
	}
	if !containsType(o.PendingSuggestions(), TypeClarification) {
		t.Fatal("expected clarification for a confused reader")
	}
}

func TestEventsWithoutBookAreNoOps(t *testing.T) {
	o, rec, _ := newTestOrchestrator(t)

	o.UpdateProgress(0.5)
	o.HandleQuestion("hello?")
	o.Dismiss("nope")
	if s := o.Engage("nope"); s != nil {
		t.Fatal("engage with no book should return nil")
	}

	if got := o.SessionState(); got != StateIdle {
		t.Fatalf("got state %s, want idle", got)
	}
	if len(rec.interactions) != 0 {
		t.Fatalf("no interactions should be recorded, got %d", len(rec.interactions))
	}
}

func TestEngageSetsFlagsAndRecords(t *testing.T) {
	o, rec, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	prep := findType(o.PendingSuggestions(), TypePreparation)
	if prep == nil {
		t.Fatal("no preparation suggestion queued")
	}

	got := o.Engage(prep.ID)
	if got == nil || got.ID != prep.ID {
		t.Fatalf("engage returned %v", got)
	}
	if !o.Reader().HasSeenPreparation {
		t.Error("engaging preparation should set the seen flag")
	}
	if o.SessionState() != StateHelping {
		t.Errorf("got state %s, want helping", o.SessionState())
	}
	if containsType(o.PendingSuggestions(), TypePreparation) {
		t.Error("engaged suggestion should leave the queue")
	}

	if len(rec.interactions) != 1 {
		t.Fatalf("got %d interactions, want 1", len(rec.interactions))
	}
	in := rec.interactions[0]
	if !in.Engaged || in.SuggestionType != TypePreparation || in.BookID != "b1" {
		t.Errorf("unexpected interaction %+v", in)
	}
}

func TestDismissRecordsNonEngaged(t *testing.T) {
	o, rec, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	app := findType(o.PendingSuggestions(), TypeApproach)
	if app == nil {
		t.Fatal("no approach suggestion queued")
	}
	o.Dismiss(app.ID)

	if len(rec.interactions) != 1 || rec.interactions[0].Engaged {
		t.Fatalf("want one non-engaged interaction, got %+v", rec.interactions)
	}

	// Unknown id changes nothing.
	before := len(o.PendingSuggestions())
	o.Dismiss("missing")
	if len(o.PendingSuggestions()) != before || len(rec.interactions) != 1 {
		t.Error("dismissing an unknown id must be a no-op")
	}
}

func TestDismissWhileHelpingReflects(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	pending := o.PendingSuggestions()
	if len(pending) < 2 {
		t.Fatalf("fixture needs at least two suggestions, got %d", len(pending))
	}
	o.Engage(pending[0].ID)
	o.Dismiss(pending[1].ID)

	if got := o.SessionState(); got != StateReflecting {
		t.Fatalf("got state %s, want reflecting", got)
	}

	// The next event cycles back into the observing/ready loop.
	o.UpdateProgress(0.01)
	got := o.SessionState()
	if got != StateObserving && got != StateReadyToHelp {
		t.Fatalf("got state %s after next event, want observing or ready_to_help", got)
	}
}

func TestEndSessionResets(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())
	o.UpdateProgress(0.3)

	o.EndSession()
	if got := o.SessionState(); got != StateIdle {
		t.Fatalf("got state %s, want idle", got)
	}
	if n := len(o.PendingSuggestions()); n != 0 {
		t.Fatalf("queue should clear on session end, got %d", n)
	}
	if !o.Reader().SessionStart.IsZero() {
		t.Error("session start should reset")
	}
}

func TestPagesThisSessionAccumulates(t *testing.T) {
	o, _, clock := newTestOrchestrator(t)
	o.OpenBook(challengingBook())
	start := o.Reader().LastInteraction

	clock.advance(10 * time.Minute)
	o.UpdateProgress(0.10)
	clock.advance(10 * time.Minute)
	o.UpdateProgress(0.20)

	r := o.Reader()
	if r.PagesThisSession != 180 {
		t.Errorf("got %d pages, want 180", r.PagesThisSession)
	}
	if !r.LastInteraction.After(start) {
		t.Error("interaction timestamp should advance with the clock")
	}
}

func TestProgressClamped(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	o.OpenBook(challengingBook())

	o.UpdateProgress(1.7)
	if got := o.Reader().Progress; got != 1 {
		t.Errorf("got progress %v, want clamp to 1", got)
	}
	o.UpdateProgress(-0.2)
	if got := o.Reader().Progress; got != 0 {
		t.Errorf("got progress %v, want clamp to 0", got)
	}
}

func TestOpenBookResumesStoredProgress(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	book := challengingBook()
	book.CurrentPage = 450

	o.OpenBook(book)
	if got := o.Reader().Progress; got != 0.5 {
		t.Fatalf("got progress %v, want 0.5 from stored page", got)
	}
	// Mid-book resume should not offer preparation material.
	if containsType(o.PendingSuggestions(), TypePreparation) {
		t.Error("preparation is for readers who have not started")
	}
}
