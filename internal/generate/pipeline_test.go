package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/holloway/lector/internal/companion"
	"github.com/holloway/lector/internal/composer"
	"github.com/holloway/lector/internal/profiler"
)

type stubGenerator struct {
	text  string
	err   error
	calls int
	// captured from the last call
	prompt string
	system string
}

func (g *stubGenerator) Generate(_ context.Context, prompt, system string, _ int) (string, error) {
	g.calls++
	g.prompt = prompt
	g.system = system
	return g.text, g.err
}

type probeGenerator struct {
	stubGenerator
	available bool
	probed    bool
}

func (g *probeGenerator) Available(context.Context) bool {
	g.probed = true
	return g.available
}

type stubContext struct {
	text string
	hint string
}

func (c *stubContext) ConversationContext(_ context.Context, hint string) string {
	c.hint = hint
	return c.text
}

func generatedSuggestion() companion.Suggestion {
	return companion.Suggestion{
		ID:                 "s1",
		Type:               companion.TypeInsight,
		FullPrompt:         "Offer one mid-book observation.",
		RequiresGeneration: true,
	}
}

func testProfile() profiler.BookProfile {
	return profiler.BookProfile{
		Title:  "The Winter Estate",
		Author: "A. Petrov",
		Approach: profiler.Approach{
			Strategy:         profiler.StrategyGuided,
			PaceGuidance:     "Short, regular sessions",
			PreparationSteps: []string{"Skim the era", "Pick a pace"},
			ReadingTips:      []string{"Confusion early on is normal"},
		},
	}
}

func TestRespondUsesPrimary(t *testing.T) {
	primary := &stubGenerator{text: "primary answer"}
	secondary := &stubGenerator{text: "secondary answer"}
	p := NewPipeline(primary, secondary, nil, composer.New(1000), 0)

	got := p.Respond(context.Background(), generatedSuggestion(), testProfile(), 0.4)
	if got != "primary answer" {
		t.Fatalf("got %q", got)
	}
	if secondary.calls != 0 {
		t.Error("secondary must not run when primary succeeds")
	}
	if primary.system != composer.SystemInstructions {
		t.Error("system instructions not passed through")
	}
}

func TestRespondFallsBackToSecondary(t *testing.T) {
	primary := &stubGenerator{err: errors.New("proxy down")}
	secondary := &stubGenerator{text: "local answer"}
	p := NewPipeline(primary, secondary, nil, composer.New(1000), 0)

	got := p.Respond(context.Background(), generatedSuggestion(), testProfile(), 0.4)
	if got != "local answer" {
		t.Fatalf("got %q", got)
	}
	// The secondary gets the book identity prepended for a smaller model.
	if !strings.HasPrefix(secondary.prompt, "Book: The Winter Estate by A. Petrov") {
		t.Errorf("secondary prompt missing identity header:\n%s", secondary.prompt)
	}
}

func TestRespondBlankPrimaryFallsThrough(t *testing.T) {
	primary := &stubGenerator{text: "   \n"}
	secondary := &stubGenerator{text: "local answer"}
	p := NewPipeline(primary, secondary, nil, composer.New(1000), 0)

	if got := p.Respond(context.Background(), generatedSuggestion(), testProfile(), 0.4); got != "local answer" {
		t.Fatalf("got %q", got)
	}
}

func TestRespondStaticFallbackWhenBothFail(t *testing.T) {
	primary := &stubGenerator{err: errors.New("down")}
	secondary := &stubGenerator{err: errors.New("also down")}
	p := NewPipeline(primary, secondary, nil, composer.New(1000), 0)

	got := p.Respond(context.Background(), generatedSuggestion(), testProfile(), 0.4)
	if strings.TrimSpace(got) == "" {
		t.Fatal("static fallback must be non-empty")
	}
}

func TestRespondNilGenerators(t *testing.T) {
	p := NewPipeline(nil, nil, nil, composer.New(1000), 0)
	got := p.Respond(context.Background(), generatedSuggestion(), testProfile(), 0.4)
	if strings.TrimSpace(got) == "" {
		t.Fatal("pipeline with no generators must still answer")
	}
}

func TestRespondPrecomputedSkipsGeneration(t *testing.T) {
	primary := &stubGenerator{text: "should not be used"}
	p := NewPipeline(primary, nil, nil, composer.New(1000), 0)

	s := companion.Suggestion{
		Type:       companion.TypeCelebration,
		FullPrompt: "Halfway there.",
	}
	if got := p.Respond(context.Background(), s, testProfile(), 0.5); got != "Halfway there." {
		t.Fatalf("got %q", got)
	}
	if primary.calls != 0 {
		t.Error("precomputed suggestion must not reach a generator")
	}
}

func TestPreparationFallbackListsSteps(t *testing.T) {
	p := NewPipeline(nil, nil, nil, composer.New(1000), 0)
	s := companion.Suggestion{Type: companion.TypePreparation, RequiresGeneration: true}

	got := p.Respond(context.Background(), s, testProfile(), 0)
	for _, want := range []string{"Before starting The Winter Estate", "Skim the era", "Pick a pace", "Pace: Short, regular sessions"} {
		if !strings.Contains(got, want) {
			t.Errorf("fallback missing %q:\n%s", want, got)
		}
	}
}

func TestApproachFallbackUsesStrategy(t *testing.T) {
	p := NewPipeline(nil, nil, nil, composer.New(1000), 0)
	s := companion.Suggestion{Type: companion.TypeApproach, RequiresGeneration: true}

	got := p.Respond(context.Background(), s, testProfile(), 0)
	if !strings.Contains(got, "with a guide alongside") {
		t.Errorf("fallback missing strategy phrase:\n%s", got)
	}
	if !strings.Contains(got, "Confusion early on is normal") {
		t.Errorf("fallback missing reading tip:\n%s", got)
	}
}

func TestConversationContextSplicedIn(t *testing.T) {
	primary := &stubGenerator{text: "answer"}
	cp := &stubContext{text: "we talked about the prince"}
	p := NewPipeline(primary, nil, cp, composer.New(1000), 0)

	p.Respond(context.Background(), generatedSuggestion(), testProfile(), 0.4)
	if cp.hint != string(companion.TypeInsight) {
		t.Errorf("topic hint = %q", cp.hint)
	}
	if !strings.Contains(primary.prompt, "we talked about the prince") {
		t.Error("conversation context missing from prompt")
	}
}

func TestWarmupProbesTiers(t *testing.T) {
	primary := &probeGenerator{available: true}
	secondary := &probeGenerator{available: false}
	p := NewPipeline(primary, secondary, nil, nil, 0)

	p.Warmup(context.Background())
	if !primary.probed || !secondary.probed {
		t.Fatal("both tiers should be probed")
	}
}

func TestWarmupSkipsNonProbers(t *testing.T) {
	p := NewPipeline(&stubGenerator{}, nil, nil, nil, 0)
	p.Warmup(context.Background()) // must not panic or hang
}
