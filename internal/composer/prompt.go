// Package composer assembles the structured prompt for suggestion response
// generation: book identity, reading progress, prior conversation, the
// progress-aware spoiler policy, and the suggestion's focus directive.
package composer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/holloway/lector/internal/companion"
	"github.com/holloway/lector/internal/profiler"
)

// SystemInstructions frames every generation call.
const SystemInstructions = "You are a warm, knowledgeable reading companion. " +
	"You discuss only what the reader has already reached, you never reveal " +
	"restricted content, and you keep responses short enough to read between pages."

// Composer builds prompts under a token budget for the conversation block.
type Composer struct {
	MaxContextTokens int
}

const defaultMaxContextTokens = 1000

// New creates a Composer; maxContextTokens <= 0 selects the default budget
// for the prior-conversation block.
func New(maxContextTokens int) *Composer {
	if maxContextTokens <= 0 {
		maxContextTokens = defaultMaxContextTokens
	}
	return &Composer{MaxContextTokens: maxContextTokens}
}

// Build produces the generation prompt for one suggestion. The spoiler
// block is derived purely from the profile's boundaries and the current
// progress: always-safe items are listed, progress-gated items appear once
// their threshold percentage is at or below the reader's, and never-reveal
// items are restated as hard constraints.
func (c *Composer) Build(s companion.Suggestion, p profiler.BookProfile, progress float64, conversation string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[Book]\n%s", p.Title)
	if p.Author != "" {
		fmt.Fprintf(&sb, " by %s", p.Author)
	}
	pct := progress * 100
	fmt.Fprintf(&sb, "\nReader progress: %.0f%% (%s)\n", pct, progressBand(pct))

	if conversation != "" {
		fmt.Fprintf(&sb, "\n[Prior Discussion]\n%s\n", truncateToTokens(conversation, c.MaxContextTokens))
	}

	sb.WriteString("\n[Safe to Discuss]\n")
	for _, item := range p.Boundaries.SafeToReveal {
		fmt.Fprintf(&sb, "- %s\n", item.Content)
	}
	for _, item := range p.Boundaries.RevealAfterProgress {
		if item.Threshold*100 <= pct {
			fmt.Fprintf(&sb, "- %s (reader is past %.0f%%)\n", item.Content, item.Threshold*100)
		}
	}

	if len(p.Boundaries.NeverReveal) > 0 {
		sb.WriteString("\n[Never Reveal - Hard Constraints]\n")
		for _, item := range p.Boundaries.NeverReveal {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
	}

	fmt.Fprintf(&sb, "\n[Focus]\n%s\n", companion.FocusDirective(s.Type))
	if s.FullPrompt != "" {
		fmt.Fprintf(&sb, "%s\n", s.FullPrompt)
	}

	return sb.String()
}

// progressBand is the qualitative statement of where the reader is.
func progressBand(pct float64) string {
	switch {
	case pct < 10:
		return "very early in the book"
	case pct < 25:
		return "early in the book"
	case pct < 50:
		return "in the first half"
	case pct < 75:
		return "past the midpoint"
	default:
		return "nearing the end"
	}
}

// EstimateTokens uses the rough 4-chars-per-token heuristic.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

func truncateToTokens(text string, budget int) string {
	if EstimateTokens(text) <= budget {
		return text
	}
	max := budget * 4
	// Back up to a rune boundary so the cut never splits a multibyte rune.
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	if idx := strings.LastIndex(text[:max], " "); idx > 0 {
		return text[:idx]
	}
	return text[:max]
}
