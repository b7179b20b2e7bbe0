package composer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/holloway/lector/internal/companion"
	"github.com/holloway/lector/internal/profiler"
)

func testProfile() profiler.BookProfile {
	return profiler.BookProfile{
		Title:  "The Winter Estate",
		Author: "A. Petrov",
		Boundaries: profiler.SpoilerBoundaries{
			SafeToReveal: []profiler.SafeItem{
				{Content: "The 1812 setting", Category: "historical_context"},
			},
			RevealAfterProgress: []profiler.GatedItem{
				{Content: "The duel and its fallout", Threshold: 0.5, Category: "plot_development"},
			},
			NeverReveal: []string{"How the book ends"},
		},
	}
}

func TestBuildIncludesIdentityAndProgress(t *testing.T) {
	c := New(1000)
	out := c.Build(companion.Suggestion{Type: companion.TypeContext}, testProfile(), 0.3, "")

	for _, want := range []string{
		"The Winter Estate by A. Petrov",
		"Reader progress: 30% (in the first half)",
		"The 1812 setting",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestGatedItemRespectsThreshold(t *testing.T) {
	c := New(1000)
	p := testProfile()

	below := c.Build(companion.Suggestion{Type: companion.TypeInsight}, p, 0.49, "")
	if strings.Contains(below, "The duel and its fallout") {
		t.Error("gated item leaked below its threshold")
	}

	at := c.Build(companion.Suggestion{Type: companion.TypeInsight}, p, 0.5, "")
	if !strings.Contains(at, "The duel and its fallout (reader is past 50%)") {
		t.Errorf("gated item missing at its threshold:\n%s", at)
	}
}

func TestNeverRevealAlwaysHardConstraint(t *testing.T) {
	c := New(1000)
	p := testProfile()

	for _, progress := range []float64{0, 0.5, 1} {
		out := c.Build(companion.Suggestion{Type: companion.TypeInsight}, p, progress, "")
		idx := strings.Index(out, "[Never Reveal - Hard Constraints]")
		if idx < 0 {
			t.Fatalf("missing hard-constraints block at progress %v", progress)
		}
		if !strings.Contains(out[idx:], "How the book ends") {
			t.Errorf("never-reveal item missing at progress %v", progress)
		}
	}
}

func TestConversationTruncatedToBudget(t *testing.T) {
	c := New(10) // 40-char budget
	long := strings.Repeat("word ", 50)

	out := c.Build(companion.Suggestion{Type: companion.TypeInsight}, testProfile(), 0.3, long)
	block := out[strings.Index(out, "[Prior Discussion]"):]
	block = block[:strings.Index(block, "[Safe to Discuss]")]
	if len(block) > 80 {
		t.Errorf("conversation block not truncated: %d chars", len(block))
	}

	// A short conversation passes through whole.
	out = c.Build(companion.Suggestion{Type: companion.TypeInsight}, testProfile(), 0.3, "we discussed the opening")
	if !strings.Contains(out, "we discussed the opening") {
		t.Error("short conversation should pass through untouched")
	}
}

func TestTruncationKeepsRunesWhole(t *testing.T) {
	// No spaces anywhere, so truncation falls back to the raw byte cut;
	// the leading ASCII byte shifts every two-byte "é" off alignment so the
	// 40-byte budget lands mid-rune.
	long := "x" + strings.Repeat("é", 100)
	got := truncateToTokens(long, 10)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
	if len(got) == 0 || len(got) > 40 {
		t.Fatalf("got %d bytes, want a cut at or under the 40-byte budget", len(got))
	}

	out := New(10).Build(companion.Suggestion{Type: companion.TypeInsight}, testProfile(), 0.3, long)
	if !utf8.ValidString(out) {
		t.Fatal("prompt with truncated conversation is not valid UTF-8")
	}
}

func TestEmptyConversationOmitsBlock(t *testing.T) {
	c := New(1000)
	out := c.Build(companion.Suggestion{Type: companion.TypeInsight}, testProfile(), 0.3, "")
	if strings.Contains(out, "[Prior Discussion]") {
		t.Error("empty conversation should omit the discussion block")
	}
}

func TestFocusDirectivePerType(t *testing.T) {
	c := New(1000)
	prep := c.Build(companion.Suggestion{Type: companion.TypePreparation}, testProfile(), 0, "")
	insight := c.Build(companion.Suggestion{Type: companion.TypeInsight}, testProfile(), 0.5, "")
	if companion.FocusDirective(companion.TypePreparation) == "" {
		t.Fatal("no directive for preparation")
	}
	if !strings.Contains(prep, companion.FocusDirective(companion.TypePreparation)) {
		t.Error("prompt missing preparation directive")
	}
	if prep[strings.Index(prep, "[Focus]"):] == insight[strings.Index(insight, "[Focus]"):] {
		t.Error("focus block should differ by suggestion type")
	}
}

func TestProgressBands(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{0, "very early in the book"},
		{9, "very early in the book"},
		{10, "early in the book"},
		{24, "early in the book"},
		{25, "in the first half"},
		{49, "in the first half"},
		{50, "past the midpoint"},
		{74, "past the midpoint"},
		{75, "nearing the end"},
		{100, "nearing the end"},
	}
	for _, c := range cases {
		if got := progressBand(c.pct); got != c.want {
			t.Errorf("progressBand(%v) = %q, want %q", c.pct, got, c.want)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("empty string: got %d", got)
	}
	if got := EstimateTokens("abcd"); got != 1 {
		t.Errorf("4 chars: got %d, want 1", got)
	}
	if got := EstimateTokens("abcde"); got != 2 {
		t.Errorf("5 chars: got %d, want 2", got)
	}
}
