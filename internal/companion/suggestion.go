package companion

// SuggestionType is the closed set of proactive help kinds the companion can
// offer. Per-type presentation and generation data (icon, focus directive,
// static fallback, pill category) lives in one table below instead of being
// scattered across components.
type SuggestionType string

const (
	TypePreparation    SuggestionType = "preparation"
	TypeApproach       SuggestionType = "approach"
	TypeContext        SuggestionType = "context"
	TypeCharacterGuide SuggestionType = "character_guide"
	TypeStructureGuide SuggestionType = "structure_guide"
	TypeCheckIn        SuggestionType = "check_in"
	TypeEncouragement  SuggestionType = "encouragement"
	TypeClarification  SuggestionType = "clarification"
	TypeCelebration    SuggestionType = "progress_celebration"
	TypeInsight        SuggestionType = "insight"
	TypePacing         SuggestionType = "pacing"
)

// Priority orders suggestions; higher values win eviction contests.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Suggestion is one candidate help offer. Transient: it lives in the pending
// queue until dismissed, engaged, or expired by reading progress.
type Suggestion struct {
	ID            string         `json:"id"`
	Type          SuggestionType `json:"type"`
	Headline      string         `json:"headline"`
	FullPrompt    string         `json:"full_prompt"`
	Priority      Priority       `json:"priority"`
	TriggerReason string         `json:"trigger_reason"`
	SpoilerSafe   bool           `json:"spoiler_safe"`

	// RequiresGeneration is false for suggestions whose display text is
	// fully precomputed (encouragement, celebrations).
	RequiresGeneration bool `json:"requires_generation"`

	// ExpiresAfterProgress drops the suggestion once reading progress
	// passes it. Zero means no expiry.
	ExpiresAfterProgress float64 `json:"expires_after_progress,omitempty"`
}

// Expired reports whether the suggestion's window has closed at the given
// reading progress.
func (s Suggestion) Expired(progress float64) bool {
	return s.ExpiresAfterProgress > 0 && progress > s.ExpiresAfterProgress
}

// PillCategory is the visual grouping the presentation layer uses.
type PillCategory string

const (
	CategoryCompanion   PillCategory = "companion"
	CategoryQuestion    PillCategory = "question"
	CategoryAction      PillCategory = "action"
	CategoryCelebration PillCategory = "celebration"
	CategoryStandard    PillCategory = "standard"
)

type typeInfo struct {
	Icon      string
	Category  PillCategory
	Directive string // generation focus directive for the prompt builder
	Fallback  string // static text when both generation tiers fail
}

var suggestionTypes = map[SuggestionType]typeInfo{
	TypePreparation: {
		Icon:      "book.circle",
		Category:  CategoryCompanion,
		Directive: "Prepare the reader to start this book: what to know going in, without revealing anything that happens.",
	},
	TypeApproach: {
		Icon:      "map",
		Category:  CategoryCompanion,
		Directive: "Explain how to approach reading this book: pacing, what to push through, what to savor.",
	},
	TypeContext: {
		Icon:      "globe",
		Category:  CategoryCompanion,
		Directive: "Give the historical and cultural background a reader needs at this point, staying within the spoiler constraints.",
		Fallback:  "I have some background on this book whenever you want it - just ask.",
	},
	TypeCharacterGuide: {
		Icon:      "person.2",
		Category:  CategoryCompanion,
		Directive: "Introduce the characters the reader has met so far and how they relate, revealing nothing ahead of their progress.",
		Fallback:  "Want a quick who's-who of the characters so far? Just ask.",
	},
	TypeStructureGuide: {
		Icon:      "list.number",
		Category:  CategoryCompanion,
		Directive: "Explain how this book is structured and why, so the reader knows what the form is doing.",
		Fallback:  "I can walk you through how this book is put together whenever you like.",
	},
	TypeCheckIn: {
		Icon:      "hand.wave",
		Category:  CategoryQuestion,
		Directive: "Check in on how the reading is going; invite questions without presuming a problem.",
		Fallback:  "How's the reading going? I'm here if anything is unclear.",
	},
	TypeEncouragement: {
		Icon:      "sparkles",
		Category:  CategoryStandard,
		Directive: "Offer brief, genuine encouragement tied to where the reader is in the book.",
		Fallback:  "You're making real progress - keep going.",
	},
	TypeClarification: {
		Icon:      "questionmark.circle",
		Category:  CategoryQuestion,
		Directive: "Help untangle what is confusing the reader right now; explain plainly and stay behind their progress.",
		Fallback:  "Something seems tricky - tell me what's confusing and I'll help untangle it.",
	},
	TypeCelebration: {
		Icon:      "party.popper",
		Category:  CategoryCelebration,
		Directive: "Celebrate the milestone the reader just passed; reflect on the ground covered without looking ahead.",
		Fallback:  "That's a real milestone - nicely done.",
	},
	TypeInsight: {
		Icon:      "lightbulb",
		Category:  CategoryCompanion,
		Directive: "Offer one interesting observation about what the reader has already read - a theme, a technique, a connection.",
		Fallback:  "There's an interesting thread in what you've read so far - ask me about it.",
	},
	TypePacing: {
		Icon:      "clock",
		Category:  CategoryStandard,
		Directive: "Advise on reading pace for the remainder of the book.",
		Fallback:  "Happy to talk pacing whenever you want to plan the rest of the read.",
	},
}

// Icon returns the icon key for a suggestion type.
func Icon(t SuggestionType) string {
	if info, ok := suggestionTypes[t]; ok {
		return info.Icon
	}
	return "bubble.left"
}

// Category returns the pill category for a suggestion type.
func Category(t SuggestionType) PillCategory {
	if info, ok := suggestionTypes[t]; ok {
		return info.Category
	}
	return CategoryStandard
}

// FocusDirective returns the generation directive for a suggestion type.
func FocusDirective(t SuggestionType) string {
	if info, ok := suggestionTypes[t]; ok {
		return info.Directive
	}
	return "Help the reader with their current book."
}

// StaticFallback returns the canned text used when generation is impossible.
// Preparation and approach have no entry here: their fallbacks are rendered
// from the profile's precomputed steps and tips instead.
func StaticFallback(t SuggestionType) string {
	if info, ok := suggestionTypes[t]; ok && info.Fallback != "" {
		return info.Fallback
	}
	return "I'm here to help with this book - ask me anything about what you've read."
}
