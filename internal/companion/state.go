package companion

import "time"

// ReaderState tracks one reading session. It is owned and mutated only by
// the Orchestrator's serialized event handlers.
type ReaderState struct {
	CurrentBookID    string    `json:"current_book_id"`
	Progress         float64   `json:"progress"`
	SessionStart     time.Time `json:"session_start"`
	PagesThisSession int       `json:"pages_this_session"`
	QuestionsAsked   int       `json:"questions_asked"`
	LastInteraction  time.Time `json:"last_interaction"`
	ConfusionSignals int       `json:"confusion_signals"`

	HasSeenPreparation   bool `json:"has_seen_preparation"`
	HasSeenApproachGuide bool `json:"has_seen_approach_guide"`
}

// Reading-phase predicates, derived from progress. The bands partition
// [0,1]: new < 0.05 ≤ early < 0.2 ≤ mid < 0.7 ≤ nearing end.

func (r ReaderState) IsNewToBook() bool    { return r.Progress < 0.05 }
func (r ReaderState) IsEarlyReading() bool { return r.Progress >= 0.05 && r.Progress < 0.2 }
func (r ReaderState) IsMidReading() bool   { return r.Progress >= 0.2 && r.Progress < 0.7 }
func (r ReaderState) IsNearingEnd() bool   { return r.Progress >= 0.7 }

// SeemsConfused is true once two confusion signals have accumulated.
func (r ReaderState) SeemsConfused() bool { return r.ConfusionSignals >= 2 }
