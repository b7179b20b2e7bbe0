// Package bridge is the stateless adapter between orchestrator output and a
// host's renderable pill list. It owns no state: every call maps the current
// pending suggestions plus the host's last message into an ordered list of
// at most four pills.
package bridge

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/holloway/lector/internal/companion"
)

// PillKind says where a pill came from, which decides who handles taps:
// companion pills are forwarded to the orchestrator, the rest stay in the
// host.
type PillKind string

const (
	KindCompanion PillKind = "companion"
	KindReactive  PillKind = "reactive"
	KindAction    PillKind = "action"
)

// Pill is one renderable chip.
type Pill struct {
	ID           string                 `json:"id"`
	Kind         PillKind               `json:"kind"`
	Text         string                 `json:"text"`
	Category     companion.PillCategory `json:"category"`
	Icon         string                 `json:"icon"`
	SuggestionID string                 `json:"suggestion_id,omitempty"`

	// rank orders merged pills: companion > reactive > action, with the
	// suggestion's own priority breaking ties among companion pills.
	rank int
}

const maxPills = 4

// Build merges companion suggestions, reactive question pills scanned from
// the last message, and the always-available action pills, sorted by rank
// and truncated to four.
func Build(pending []companion.Suggestion, lastMessage string) []Pill {
	var pills []Pill

	for _, s := range pending {
		pills = append(pills, Pill{
			ID:           "suggestion:" + s.ID,
			Kind:         KindCompanion,
			Text:         s.Headline,
			Category:     companion.Category(s.Type),
			Icon:         companion.Icon(s.Type),
			SuggestionID: s.ID,
			rank:         100 + int(s.Priority),
		})
	}

	pills = append(pills, reactivePills(lastMessage)...)
	pills = append(pills, actionPills()...)

	// Stable insertion order within equal ranks; simple selection keeps it.
	sortByRank(pills)
	if len(pills) > maxPills {
		pills = pills[:maxPills]
	}
	return pills
}

func sortByRank(pills []Pill) {
	for i := 1; i < len(pills); i++ {
		for j := i; j > 0 && pills[j].rank > pills[j-1].rank; j-- {
			pills[j], pills[j-1] = pills[j-1], pills[j]
		}
	}
}

// namePhrases are the fixed lead-ins a character reference follows.
var namePhrases = []string{
	"who is ",
	"what about ",
	"tell me about ",
	"i like ",
	"i don't trust ",
}

var themeKeywords = []string{"theme", "meaning", "symbol", "represents", "metaphor"}

var confusionKeywords = []string{"confused", "lost", "don't understand", "makes no sense"}

// reactivePills derives up to three question pills from the last message.
func reactivePills(lastMessage string) []Pill {
	if strings.TrimSpace(lastMessage) == "" {
		return nil
	}
	lower := strings.ToLower(lastMessage)

	var pills []Pill

	if name := extractName(lastMessage, lower); name != "" {
		pills = append(pills, Pill{
			ID:       "reactive:character",
			Kind:     KindReactive,
			Text:     fmt.Sprintf("What happens to %s?", name),
			Category: companion.CategoryQuestion,
			Icon:     "person.crop.circle.badge.questionmark",
			rank:     50,
		})
	}

	if containsAny(lower, themeKeywords) {
		pills = append(pills, Pill{
			ID:       "reactive:theme",
			Kind:     KindReactive,
			Text:     "Show me more examples of this",
			Category: companion.CategoryQuestion,
			Icon:     "text.magnifyingglass",
			rank:     49,
		})
	}

	if containsAny(lower, confusionKeywords) {
		pills = append(pills, Pill{
			ID:       "reactive:clarify",
			Kind:     KindReactive,
			Text:     "Explain that differently",
			Category: companion.CategoryQuestion,
			Icon:     "arrow.triangle.2.circlepath",
			rank:     48,
		})
	}

	if len(pills) > 3 {
		pills = pills[:3]
	}
	return pills
}

// extractName finds the first capitalized word following one of the fixed
// lead-in phrases. The phrase is located in the lower-cased copy, but the
// word is sliced out of the original, so the byte offset has to be mapped
// back: lowercasing is rune to rune yet can change a rune's encoded length.
func extractName(original, lower string) string {
	for _, phrase := range namePhrases {
		idx := strings.Index(lower, phrase)
		if idx < 0 {
			continue
		}
		rest := original[originalOffset(original, lower, idx+len(phrase)):]
		word := firstWord(rest)
		if word == "" {
			continue
		}
		runes := []rune(word)
		if unicode.IsUpper(runes[0]) {
			return word
		}
	}
	return ""
}

// originalOffset maps a byte offset in lower back to the byte offset of the
// same rune position in original.
func originalOffset(original, lower string, off int) int {
	oo := 0
	for lo := 0; lo < off && oo < len(original); {
		_, on := utf8.DecodeRuneInString(original[oo:])
		_, ln := utf8.DecodeRuneInString(lower[lo:])
		oo += on
		lo += ln
	}
	return oo
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// actionPills are always available and handled entirely by the host.
func actionPills() []Pill {
	return []Pill{
		{
			ID:       "action:quote",
			Kind:     KindAction,
			Text:     "Capture a quote",
			Category: companion.CategoryAction,
			Icon:     "quote.opening",
			rank:     10,
		},
		{
			ID:       "action:note",
			Kind:     KindAction,
			Text:     "Add a note",
			Category: companion.CategoryAction,
			Icon:     "square.and.pencil",
			rank:     9,
		},
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
