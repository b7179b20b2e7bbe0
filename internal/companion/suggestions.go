package companion

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/holloway/lector/internal/profiler"
)

// buildCandidates runs the suggestion-generation pass: a candidate list
// gated on reader-state predicates, each with a fixed priority and expiry
// window. Callers rank, filter, and truncate the result.
func buildCandidates(p profiler.BookProfile, tables profiler.Tables, r ReaderState) []Suggestion {
	var out []Suggestion

	add := func(t SuggestionType, headline, prompt string, prio Priority, reason string, expires float64, generated bool) {
		out = append(out, Suggestion{
			ID:                   uuid.New().String(),
			Type:                 t,
			Headline:             headline,
			FullPrompt:           prompt,
			Priority:             prio,
			TriggerReason:        reason,
			SpoilerSafe:          true,
			RequiresGeneration:   generated,
			ExpiresAfterProgress: expires,
		})
	}

	needsPrep := tables.NeedsPreparation(p)

	if r.IsNewToBook() {
		if needsPrep && !r.HasSeenPreparation {
			add(TypePreparation,
				fmt.Sprintf("Get ready for %s", p.Title),
				"Walk the reader through how to prepare for this book before they begin.",
				PriorityHigh, "new to an intimidating book", 0.10, true)
		}
		if p.Difficulty.Level == profiler.LevelChallenging && !r.HasSeenApproachGuide {
			add(TypeApproach,
				"How to read this one",
				"Lay out the recommended approach for a challenging book.",
				PriorityHigh, "challenging book, approach guide unseen", 0.15, true)
		}
		if len(p.EssentialContext()) > 0 {
			add(TypeContext,
				"Background worth knowing",
				"Brief the reader on the essential background before the story absorbs them.",
				PriorityMedium, "essential context needs exist", 0.20, true)
		}
		if p.HasChallenge(profiler.ChallengeLargeCharacterCast) || p.HasChallenge(profiler.ChallengeUnfamiliarNames) {
			add(TypeCharacterGuide,
				"Keeping the names straight",
				"Help the reader get oriented among the characters they are about to meet.",
				PriorityMedium, "heavy character cast or unfamiliar naming", 0.25, true)
		}
	}

	if r.IsEarlyReading() {
		if p.Difficulty.Level == profiler.LevelChallenging {
			add(TypeCheckIn,
				"How's it going so far?",
				"Check in on the early reading of a challenging book.",
				PriorityLow, "early in a challenging book", 0.25, true)
		}
		if r.Progress > 0.10 && needsPrep {
			add(TypeEncouragement,
				"You're past the hardest part",
				"The opening stretch of a demanding book is the steepest - and you're through it.",
				PriorityLow, "early progress in an intimidating book", 0.20, false)
		}
	}

	if r.IsMidReading() {
		add(TypeInsight,
			"Something worth noticing",
			"Offer one mid-book observation about what the reader has seen so far.",
			PriorityLow, "mid-book insight", 0, true)
	}

	if r.IsNearingEnd() {
		add(TypeInsight,
			"Looking back before the end",
			"Invite reflection on the journey so far as the book approaches its close.",
			PriorityLow, "nearing the end", 0, true)
	}

	return out
}

func clarificationSuggestion(prio Priority) Suggestion {
	return Suggestion{
		ID:                 uuid.New().String(),
		Type:               TypeClarification,
		Headline:           "Want me to untangle something?",
		FullPrompt:         "The reader has signaled confusion more than once; help them find their footing.",
		Priority:           prio,
		TriggerReason:      "repeated confusion signals",
		SpoilerSafe:        true,
		RequiresGeneration: true,
	}
}
