// Package companion owns the per-session reader state and the policy for
// when and what proactive help to offer. All mutation happens through the
// Orchestrator's event methods, which serialize on an internal mutex; no
// other component touches ReaderState or the pending queue directly.
package companion

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/holloway/lector/internal/metadata"
	"github.com/holloway/lector/internal/profiler"
)

// State is the orchestrator's position in its session cycle:
// idle → observing → readyToHelp → helping → reflecting, cycling back to
// observing, and resetting to idle on session end.
type State string

const (
	StateIdle        State = "idle"
	StateObserving   State = "observing"
	StateReadyToHelp State = "ready_to_help"
	StateHelping     State = "helping"
	StateReflecting  State = "reflecting"
)

// Interaction is one append-only log entry. It feeds analytics and history
// only; decision logic never reads it back.
type Interaction struct {
	ID             string
	BookID         string
	SuggestionType SuggestionType
	Engaged        bool
	Progress       float64
	CreatedAt      time.Time
}

// Recorder persists interaction log entries. Implemented by storage.Store.
type Recorder interface {
	RecordInteraction(Interaction) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// confusionKeywords are the fixed markers scanned (lower-cased) in user
// questions. Any match counts one confusion signal.
var confusionKeywords = []string{
	"confused",
	"don't understand",
	"what does",
	"who is",
	"lost",
	"can't follow",
	"makes no sense",
	"huh",
}

// significantProgressDelta triggers a full suggestion regeneration.
const significantProgressDelta = 0.05

// Orchestrator runs the companion policy for one book session. Construct
// one per open book; instances share nothing.
type Orchestrator struct {
	profiler *profiler.Profiler
	recorder Recorder
	clock    Clock

	mu      sync.Mutex
	state   State
	hasBook bool
	book    metadata.Book
	profile profiler.BookProfile
	reader  ReaderState
	pending []Suggestion
}

// New creates an Orchestrator. recorder may be nil, in which case
// interactions are not persisted.
func New(pr *profiler.Profiler, recorder Recorder) *Orchestrator {
	return &Orchestrator{
		profiler: pr,
		recorder: recorder,
		clock:    realClock{},
		state:    StateIdle,
	}
}

// NewWithClock creates an Orchestrator with an injected clock (for tests).
func NewWithClock(pr *profiler.Profiler, recorder Recorder, clock Clock) *Orchestrator {
	o := New(pr, recorder)
	o.clock = clock
	return o
}

// OpenBook profiles the book (memoized per book id), initializes reader
// state from the book's stored progress, runs the first suggestion pass,
// and moves to observing.
func (o *Orchestrator) OpenBook(book metadata.Book) profiler.BookProfile {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.book = book
	o.profile = o.profiler.Profile(book)
	o.hasBook = true

	now := o.clock.Now()
	o.reader = ReaderState{
		CurrentBookID:   book.ID,
		Progress:        book.StoredProgress(),
		SessionStart:    now,
		LastInteraction: now,
	}

	o.state = StateObserving
	o.regenerate()
	return o.profile
}

// UpdateProgress records new reading progress. Milestone crossings emit
// celebration suggestions at the queue front; a move of more than 5%
// regenerates the non-celebration suggestions wholesale. A progress event
// with no book open is a no-op.
func (o *Orchestrator) UpdateProgress(progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasBook {
		return
	}
	progress = clamp01(progress)

	old := o.reader.Progress
	o.reader.Progress = progress
	if o.book.PageCount > 0 && progress > old {
		o.reader.PagesThisSession += int((progress - old) * float64(o.book.PageCount))
	}
	o.touch()
	o.cycleBack()

	if abs(progress-old) > significantProgressDelta {
		o.regenerate()
	} else {
		o.pending = pruneExpired(o.pending, progress)
	}

	for _, c := range crossedMilestones(old, progress) {
		o.pending = insertFront(o.pending, c)
	}
	o.settleState()
}

// HandleQuestion counts the question, scans it for confusion markers, and
// injects a critical clarification suggestion at the queue front once the
// reader seems confused (two signals) and none is already pending.
func (o *Orchestrator) HandleQuestion(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasBook {
		return
	}

	o.reader.QuestionsAsked++
	o.touch()
	o.cycleBack()

	lower := strings.ToLower(text)
	for _, kw := range confusionKeywords {
		if strings.Contains(lower, kw) {
			o.reader.ConfusionSignals++
			break
		}
	}

	if o.reader.SeemsConfused() && !containsType(o.pending, TypeClarification) {
		o.pending = insertFront(o.pending, clarificationSuggestion(PriorityCritical))
	}
	o.settleState()
}

// Dismiss removes a pending suggestion and logs a non-engaged interaction.
// Unknown ids are a no-op.
func (o *Orchestrator) Dismiss(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasBook {
		return
	}

	var removed *Suggestion
	o.pending, removed = removeByID(o.pending, id)
	if removed == nil {
		return
	}
	o.touch()
	o.record(*removed, false)

	if o.state == StateHelping {
		o.state = StateReflecting
		return
	}
	o.settleState()
}

// Engage removes a pending suggestion, records the seen-preparation /
// seen-approach flags, moves to helping, and logs an engaged interaction.
func (o *Orchestrator) Engage(id string) *Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasBook {
		return nil
	}

	var removed *Suggestion
	o.pending, removed = removeByID(o.pending, id)
	if removed == nil {
		return nil
	}

	switch removed.Type {
	case TypePreparation:
		o.reader.HasSeenPreparation = true
	case TypeApproach:
		o.reader.HasSeenApproachGuide = true
	}

	o.touch()
	o.state = StateHelping
	o.record(*removed, true)
	return removed
}

// EndSession resets to idle and clears the session start time. Remaining
// reader-state fields persist until the next OpenBook resets them.
func (o *Orchestrator) EndSession() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = StateIdle
	o.reader.SessionStart = time.Time{}
	o.pending = nil
}

// PendingSuggestions returns a copy of the pending queue (at most 3).
func (o *Orchestrator) PendingSuggestions() []Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Suggestion, len(o.pending))
	copy(out, o.pending)
	return out
}

// PrimarySuggestion returns the head of the queue, or nil when empty.
func (o *Orchestrator) PrimarySuggestion() *Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.pending) == 0 {
		return nil
	}
	s := o.pending[0]
	return &s
}

// ShouldShowSuggestions is true unless the companion is in observer mode
// and the reader shows no confusion.
func (o *Orchestrator) ShouldShowSuggestions() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasBook {
		return false
	}
	tables := o.profiler.Tables()
	mode := tables.Mode(tables.IntimidationScore(o.profile))
	return mode != profiler.ModeObserver || o.reader.SeemsConfused()
}

// Suggestion returns a pending suggestion by id, or nil.
func (o *Orchestrator) Suggestion(id string) *Suggestion {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, s := range o.pending {
		if s.ID == id {
			out := s
			return &out
		}
	}
	return nil
}

// SessionState returns the current position in the session cycle.
func (o *Orchestrator) SessionState() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Profile returns the profile of the open book (zero value when idle).
func (o *Orchestrator) Profile() profiler.BookProfile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.profile
}

// Reader returns a snapshot of the current reader state.
func (o *Orchestrator) Reader() ReaderState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reader
}

// Book returns the open book's metadata.
func (o *Orchestrator) Book() metadata.Book {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.book
}

// regenerate replaces the non-celebration suggestions with a freshly ranked
// candidate list, layering still-in-window celebrations back on top.
// Callers hold o.mu.
func (o *Orchestrator) regenerate() {
	var celebrations []Suggestion
	for _, s := range o.pending {
		if s.Type == TypeCelebration && !s.Expired(o.reader.Progress) {
			celebrations = append(celebrations, s)
		}
	}

	queue := rankCandidates(buildCandidates(o.profile, o.profiler.Tables(), o.reader), o.reader.Progress)

	if o.reader.SeemsConfused() && !containsType(queue, TypeClarification) {
		queue = insertFront(queue, clarificationSuggestion(PriorityHigh))
	}

	for i := len(celebrations) - 1; i >= 0; i-- {
		queue = insertFront(queue, celebrations[i])
	}

	o.pending = queue
	o.settleState()
}

// cycleBack returns a helping/reflecting session to observing before the
// next event is processed.
func (o *Orchestrator) cycleBack() {
	if o.state == StateHelping || o.state == StateReflecting {
		o.state = StateObserving
	}
}

// settleState moves between observing and readyToHelp based on the queue.
// Helping and reflecting are left alone; they cycle back on the next event.
func (o *Orchestrator) settleState() {
	if o.state != StateObserving && o.state != StateReadyToHelp {
		return
	}
	if len(o.pending) > 0 {
		o.state = StateReadyToHelp
	} else {
		o.state = StateObserving
	}
}

func (o *Orchestrator) touch() {
	o.reader.LastInteraction = o.clock.Now()
}

// record appends an interaction log entry; failures are logged and dropped.
func (o *Orchestrator) record(s Suggestion, engaged bool) {
	if o.recorder == nil {
		return
	}
	err := o.recorder.RecordInteraction(Interaction{
		ID:             uuid.New().String(),
		BookID:         o.book.ID,
		SuggestionType: s.Type,
		Engaged:        engaged,
		Progress:       o.reader.Progress,
		CreatedAt:      o.clock.Now(),
	})
	if err != nil {
		slog.Warn("recording interaction failed", "book_id", o.book.ID, "error", err)
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
