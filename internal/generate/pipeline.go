// Package generate turns a pending suggestion into displayable text through
// a two-tier generation chain with a static fallback. The pipeline never
// returns an error to its caller: generation failures are logged and the
// chain always terminates with some usable string.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/holloway/lector/internal/companion"
	"github.com/holloway/lector/internal/composer"
	"github.com/holloway/lector/internal/profiler"
)

// Generator is a best-effort text generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt, system string, maxTokens int) (string, error)
}

// ContextProvider supplies a free-text summary of prior discussion to splice
// into prompts. Implementations return "" when nothing is available.
type ContextProvider interface {
	ConversationContext(ctx context.Context, topicHint string) string
}

// NoContext is a ContextProvider with nothing to contribute.
type NoContext struct{}

func (NoContext) ConversationContext(context.Context, string) string { return "" }

const (
	defaultMaxTokens = 400
	generationTimeout = 30 * time.Second
)

// Pipeline is the fallback-chained generation process. Secondary and the
// context provider may be nil.
type Pipeline struct {
	primary   Generator
	secondary Generator
	context   ContextProvider
	composer  *composer.Composer
	maxTokens int
}

// NewPipeline wires the chain. maxTokens <= 0 selects the default budget.
func NewPipeline(primary, secondary Generator, cp ContextProvider, comp *composer.Composer, maxTokens int) *Pipeline {
	if cp == nil {
		cp = NoContext{}
	}
	if comp == nil {
		comp = composer.New(0)
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Pipeline{
		primary:   primary,
		secondary: secondary,
		context:   cp,
		composer:  comp,
		maxTokens: maxTokens,
	}
}

// Respond produces the display text for a suggestion. Suggestions with
// precomputed text skip generation entirely. Otherwise: primary capability,
// then secondary with the book identity prepended, then the static fallback
// for the suggestion's type. Always returns non-empty text.
func (p *Pipeline) Respond(ctx context.Context, s companion.Suggestion, profile profiler.BookProfile, progress float64) string {
	if !s.RequiresGeneration {
		if s.FullPrompt != "" {
			return s.FullPrompt
		}
		return staticFallback(s, profile)
	}

	conversation := p.context.ConversationContext(ctx, string(s.Type))
	prompt := p.composer.Build(s, profile, progress, conversation)

	genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	if p.primary != nil {
		text, err := p.primary.Generate(genCtx, prompt, composer.SystemInstructions, p.maxTokens)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		slog.Warn("primary generation failed", "suggestion_type", s.Type, "error", err)
	}

	if p.secondary != nil {
		identity := fmt.Sprintf("Book: %s by %s\n%s\n\n", profile.Title, profile.Author, bookSummaryLine(profile))
		text, err := p.secondary.Generate(genCtx, identity+prompt, composer.SystemInstructions, p.maxTokens)
		if err == nil && strings.TrimSpace(text) != "" {
			return text
		}
		slog.Warn("secondary generation failed", "suggestion_type", s.Type, "error", err)
	}

	return staticFallback(s, profile)
}

func bookSummaryLine(p profiler.BookProfile) string {
	if len(p.Difficulty.Reasons) > 0 {
		return strings.Join(p.Difficulty.Reasons, "; ")
	}
	return fmt.Sprintf("Difficulty: %s", p.Difficulty.Level)
}

// staticFallback renders the no-generation text for a suggestion type.
// Preparation and approach format the profile's precomputed guidance
// directly; the rest use the per-type canned offers.
func staticFallback(s companion.Suggestion, profile profiler.BookProfile) string {
	switch s.Type {
	case companion.TypePreparation:
		return formatPreparation(profile)
	case companion.TypeApproach:
		return formatApproach(profile)
	default:
		return companion.StaticFallback(s.Type)
	}
}

func formatPreparation(p profiler.BookProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Before starting %s:\n", p.Title)
	for _, step := range p.Approach.PreparationSteps {
		fmt.Fprintf(&sb, "• %s\n", step)
	}
	if len(p.Approach.PreparationSteps) == 0 {
		sb.WriteString("• Dive in - this one doesn't need a run-up\n")
	}
	if p.Approach.PaceGuidance != "" {
		fmt.Fprintf(&sb, "\nPace: %s", p.Approach.PaceGuidance)
	}
	return sb.String()
}

func formatApproach(p profiler.BookProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reading %s works best %s:\n", p.Title, strategyPhrase(p.Approach.Strategy))
	for _, tip := range p.Approach.ReadingTips {
		fmt.Fprintf(&sb, "• %s\n", tip)
	}
	if p.Approach.PaceGuidance != "" {
		fmt.Fprintf(&sb, "\nPace: %s", p.Approach.PaceGuidance)
	}
	return sb.String()
}

func strategyPhrase(s profiler.Strategy) string {
	switch s {
	case profiler.StrategyGuided:
		return "with a guide alongside"
	case profiler.StrategyEpisodic:
		return "one section at a time"
	case profiler.StrategyAnalytical:
		return "with notes in hand"
	case profiler.StrategyCommunal:
		return "with other readers"
	default:
		return "by immersion"
	}
}

// availabilityProber is implemented by generators that can cheaply report
// whether their backend is reachable.
type availabilityProber interface {
	Available(ctx context.Context) bool
}

// Warmup probes both generation tiers concurrently and logs their
// availability. Purely informational; an unavailable tier just means the
// chain will fall through at request time.
func (p *Pipeline) Warmup(ctx context.Context) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	probe := func(name string, gen Generator) {
		g.Go(func() error {
			prober, ok := gen.(availabilityProber)
			if !ok {
				return nil
			}
			if prober.Available(gCtx) {
				slog.Info("generation tier ready", "tier", name)
			} else {
				slog.Warn("generation tier unavailable", "tier", name)
			}
			return nil
		})
	}

	if p.primary != nil {
		probe("primary", p.primary)
	}
	if p.secondary != nil {
		probe("secondary", p.secondary)
	}
	g.Wait()
}
