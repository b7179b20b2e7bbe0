package bridge

import (
	"strings"
	"testing"

	"github.com/holloway/lector/internal/companion"
)

func suggestion(id string, typ companion.SuggestionType, prio companion.Priority) companion.Suggestion {
	return companion.Suggestion{
		ID:       id,
		Type:     typ,
		Headline: "headline " + id,
		Priority: prio,
	}
}

func TestBuildActionPillsAlwaysPresent(t *testing.T) {
	pills := Build(nil, "")
	if len(pills) != 2 {
		t.Fatalf("got %d pills, want the two action pills", len(pills))
	}
	if pills[0].ID != "action:quote" || pills[1].ID != "action:note" {
		t.Fatalf("got %v", pills)
	}
	for _, p := range pills {
		if p.Kind != KindAction {
			t.Errorf("pill %s kind = %s", p.ID, p.Kind)
		}
	}
}

func TestBuildCompanionPillsRankFirst(t *testing.T) {
	pending := []companion.Suggestion{
		suggestion("s1", companion.TypePreparation, companion.PriorityHigh),
	}
	pills := Build(pending, "who is Pierre anyway")

	if pills[0].Kind != KindCompanion {
		t.Fatalf("companion pill should lead, got %v", pills[0])
	}
	if pills[0].SuggestionID != "s1" || pills[0].Text != "headline s1" {
		t.Errorf("got %+v", pills[0])
	}
	if pills[1].Kind != KindReactive {
		t.Errorf("reactive pill should follow companion, got %v", pills[1])
	}
	if pills[len(pills)-1].Kind != KindAction {
		t.Errorf("action pill should trail, got %v", pills[len(pills)-1])
	}
}

func TestBuildTruncatesToFour(t *testing.T) {
	pending := []companion.Suggestion{
		suggestion("s1", companion.TypePreparation, companion.PriorityHigh),
		suggestion("s2", companion.TypeApproach, companion.PriorityHigh),
		suggestion("s3", companion.TypeContext, companion.PriorityMedium),
	}
	pills := Build(pending, "I'm confused about the theme here")
	if len(pills) != 4 {
		t.Fatalf("got %d pills, want 4", len(pills))
	}
	// Three companion pills plus the strongest reactive; no room for actions.
	for i := 0; i < 3; i++ {
		if pills[i].Kind != KindCompanion {
			t.Errorf("pill %d kind = %s, want companion", i, pills[i].Kind)
		}
	}
	if pills[3].Kind != KindReactive {
		t.Errorf("pill 3 kind = %s, want reactive", pills[3].Kind)
	}
}

func TestCompanionPriorityBreaksTies(t *testing.T) {
	pending := []companion.Suggestion{
		suggestion("low", companion.TypeInsight, companion.PriorityLow),
		suggestion("crit", companion.TypeClarification, companion.PriorityCritical),
	}
	pills := Build(pending, "")
	if pills[0].SuggestionID != "crit" || pills[1].SuggestionID != "low" {
		t.Fatalf("got order %s, %s", pills[0].SuggestionID, pills[1].SuggestionID)
	}
}

func TestReactiveCharacterPill(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"Who is Pierre?", "What happens to Pierre?"},
		{"tell me about Natasha and her family", "What happens to Natasha?"},
		{"I don't trust Kuragin.", "What happens to Kuragin?"},
		{"who is the narrator", ""}, // lower-case word is not a name
		{"what about it", ""},
	}
	for _, c := range cases {
		pills := reactivePills(c.message)
		var got string
		for _, p := range pills {
			if p.ID == "reactive:character" {
				got = p.Text
			}
		}
		if got != c.want {
			t.Errorf("message %q: got %q, want %q", c.message, got, c.want)
		}
	}
}

func TestReactiveThemeAndConfusionPills(t *testing.T) {
	pills := reactivePills("what's the meaning of the oak tree symbol? I'm lost")
	var ids []string
	for _, p := range pills {
		ids = append(ids, p.ID)
	}
	want := []string{"reactive:theme", "reactive:clarify"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}

func TestReactiveEmptyMessage(t *testing.T) {
	if pills := reactivePills("   "); pills != nil {
		t.Fatalf("blank message should produce no reactive pills, got %v", pills)
	}
}

func TestExtractNameLengthChangingLowercase(t *testing.T) {
	// "Ⱥ" (2 bytes) lowercases to "ⱥ" (3 bytes), so a phrase offset found
	// in the lower-cased copy lands past the word in the original.
	msg := "ȺȺȺȺȺȺȺȺ who is Pierre"
	if got := extractName(msg, strings.ToLower(msg)); got != "Pierre" {
		t.Fatalf("got %q, want Pierre", got)
	}

	pills := Build(nil, "ȺȺȺȺȺȺȺȺ who is A")
	var text string
	for _, p := range pills {
		if p.ID == "reactive:character" {
			text = p.Text
		}
	}
	if text != "What happens to A?" {
		t.Fatalf("got %q", text)
	}
}

func TestExtractNameStripsPunctuation(t *testing.T) {
	if got := extractName("Who is Andrei?", "who is andrei?"); got != "Andrei" {
		t.Fatalf("got %q", got)
	}
	if got := extractName("who is  ", "who is  "); got != "" {
		t.Fatalf("got %q for empty tail", got)
	}
}
