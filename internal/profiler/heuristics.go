package profiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holloway/lector/internal/metadata"
)

// detectEra determines the era from the published year when present,
// otherwise by keyword-matching title and author against known era markers.
// Defaults to contemporary.
func (t Tables) detectEra(book metadata.Book, search string) Era {
	if y := parseYear(book.PublishedYear); y != 0 {
		switch {
		case y < t.EraCutoffs.AncientBefore:
			return EraAncient
		case y < t.EraCutoffs.ClassicalBefore:
			return EraClassical
		case y < t.EraCutoffs.EarlyModernBefore:
			return EraEarlyModern
		case y < t.EraCutoffs.ModernBefore:
			return EraModern
		default:
			return EraContemporary
		}
	}

	for _, era := range []Era{EraAncient, EraClassical, EraEarlyModern, EraModern} {
		if matchAny(search, t.EraKeywords[era]) {
			return era
		}
	}
	return EraContemporary
}

// parseYear extracts a year from free-text publication strings like "1869",
// "c. 1605", or "8th century BCE" (approximated to 0, i.e. ancient by
// cutoff). Returns 0 when nothing usable is found.
func parseYear(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y
	}
	for _, f := range strings.Fields(s) {
		f = strings.Trim(f, ".,()")
		if y, err := strconv.Atoi(f); err == nil && y > 0 {
			if strings.Contains(strings.ToLower(s), "bc") {
				return 1 // before every cutoff
			}
			return y
		}
	}
	return 0
}

// detectLanguage scans title/author/description for register markers.
// First match wins in priority order: archaic > literary > conversational.
func (t Tables) detectLanguage(search string) LanguageComplexity {
	for _, lang := range []LanguageComplexity{LangArchaic, LangLiterary, LangConversational} {
		if matchAny(search, t.LanguageKeywords[lang]) {
			return lang
		}
	}
	return LangStandard
}

// detectStructure scans for structural markers.
// Priority order: non-linear > episodic > nested.
func (t Tables) detectStructure(search string) StructuralComplexity {
	for _, s := range []StructuralComplexity{StructNonLinear, StructEpisodic, StructNested} {
		if matchAny(search, t.StructureKeywords[s]) {
			return s
		}
	}
	return StructConventional
}

func (t Tables) isKnownDifficult(search string) bool {
	return matchAny(search, t.DifficultWorks)
}

// scoreDifficulty accumulates weighted contributions in fixed order
// (era, language, structure, length, known-work) and thresholds the total
// into a level. Reasons record every non-zero contribution in that order.
func (t Tables) scoreDifficulty(book metadata.Book, era Era, lang LanguageComplexity, structure StructuralComplexity, known bool) Difficulty {
	d := Difficulty{
		Era:                  era,
		Language:             lang,
		Structure:            structure,
		IsKnownDifficultWork: known,
	}

	var score float64
	if w := t.Weights.Era[era]; w > 0 {
		score += w
		d.Reasons = append(d.Reasons, fmt.Sprintf("Written in the %s era", eraLabel(era)))
	}
	if w := t.Weights.Language[lang]; w > 0 {
		score += w
		d.Reasons = append(d.Reasons, fmt.Sprintf("Language register: %s", strings.ReplaceAll(string(lang), "_", " ")))
	}
	if w := t.Weights.Structure[structure]; w > 0 {
		score += w
		d.Reasons = append(d.Reasons, fmt.Sprintf("Structure: %s narrative", strings.ReplaceAll(string(structure), "_", "-")))
	}
	switch {
	case book.PageCount > 800:
		score += t.Weights.VeryLongBook
		d.Reasons = append(d.Reasons, fmt.Sprintf("Very long at %d pages", book.PageCount))
	case book.PageCount > 500:
		score += t.Weights.LongBook
		d.Reasons = append(d.Reasons, fmt.Sprintf("Long at %d pages", book.PageCount))
	}
	if known {
		score += t.Weights.KnownWork
		d.Reasons = append(d.Reasons, "Widely considered a difficult work")
	}

	switch {
	case score > t.Weights.ChallengingAbove:
		d.Level = LevelChallenging
	case score > t.Weights.ModerateAbove:
		d.Level = LevelModerate
	default:
		d.Level = LevelAccessible
	}
	return d
}

func eraLabel(e Era) string {
	return strings.ReplaceAll(string(e), "_", "-")
}

// identifyChallenges emits one challenge per independently-met condition;
// several may co-occur for the same book.
func (t Tables) identifyChallenges(book metadata.Book, d Difficulty, search string) []Challenge {
	var out []Challenge

	if d.Era == EraAncient || d.Era == EraClassical {
		out = append(out, Challenge{
			Type:        ChallengeUnfamiliarContext,
			Description: "Assumes a cultural and historical world far from the present",
			Mitigation:  "A short background briefing before starting pays for itself",
			Severity:    SeverityModerate,
		})
	}
	if d.Language == LangArchaic {
		out = append(out,
			Challenge{
				Type:        ChallengeComplexLanguage,
				Description: "Archaic vocabulary and syntax slow the first chapters",
				Mitigation:  "Expect a slower pace early; it accelerates once the register is familiar",
				Severity:    SeverityModerate,
			},
			Challenge{
				Type:        ChallengeTranslationArtifacts,
				Description: "Likely read in translation; renderings differ widely",
				Mitigation:  "Compare a page of two translations before committing",
				Severity:    SeverityMinor,
			},
		)
	}
	if d.Structure == StructEpisodic {
		out = append(out, Challenge{
			Type:        ChallengeNonLinearStructure,
			Description: "Episodic structure means momentum resets between sections",
			Mitigation:  "Treat each episode as complete; don't wait for a single through-line",
			Severity:    SeverityMinor,
		})
	}
	if book.PageCount > 500 {
		sev := SeverityModerate
		if book.PageCount > 800 {
			sev = SeveritySignificant
		}
		out = append(out, Challenge{
			Type:        ChallengeLengthEndurance,
			Description: fmt.Sprintf("At %d pages, pacing matters more than comprehension", book.PageCount),
			Mitigation:  "Set a sustainable schedule rather than sprinting the opening",
			Severity:    sev,
		})
	}
	if matchAny(search, t.CharacterHeavyWorks) {
		out = append(out, Challenge{
			Type:        ChallengeLargeCharacterCast,
			Description: "Large cast of named characters introduced quickly",
			Mitigation:  "Keep a running character list for the first quarter",
			Severity:    SeverityModerate,
		})
	}
	if matchAny(search, t.UnfamiliarNameMarkers) {
		out = append(out, Challenge{
			Type:        ChallengeUnfamiliarNames,
			Description: "Naming conventions unfamiliar to most readers",
			Mitigation:  "Note the first appearance of each major name",
			Severity:    SeverityMinor,
		})
	}
	return out
}

// recommendApproach picks a strategy from difficulty level and augments it
// per challenge; ancient-era books get an oral-tradition preparation step
// prepended.
func (t Tables) recommendApproach(d Difficulty, challenges []Challenge) Approach {
	a := Approach{}
	switch d.Level {
	case LevelChallenging:
		a.Strategy = StrategyGuided
		a.PaceGuidance = "Short, regular sessions; consistency beats bursts for difficult books"
		a.PreparationSteps = []string{
			"Read a spoiler-free overview of what makes this book demanding",
			"Decide a realistic pace before starting",
		}
		a.ReadingTips = []string{
			"Confusion in the opening chapters is normal and usually temporary",
			"Ask for context the moment something feels opaque",
		}
	case LevelModerate:
		a.Strategy = StrategyEpisodic
		a.PaceGuidance = "A chapter or section per sitting keeps the thread without fatigue"
		a.ReadingTips = []string{
			"Natural break points are your friend; stop at section boundaries",
		}
	default:
		a.Strategy = StrategyImmersive
		a.PaceGuidance = "Read at whatever pace feels natural"
	}

	for _, c := range challenges {
		switch c.Type {
		case ChallengeLargeCharacterCast:
			a.RecommendedTools = appendUnique(a.RecommendedTools, "character_list")
			a.ReadingTips = append(a.ReadingTips, "Jot down each major character at first appearance")
		case ChallengeUnfamiliarNames:
			a.RecommendedTools = appendUnique(a.RecommendedTools, "name_guide")
		case ChallengeNonLinearStructure:
			a.ReadingTips = append(a.ReadingTips, "Note where and when each section takes place")
		case ChallengeLengthEndurance:
			a.ReadingTips = append(a.ReadingTips, "Celebrate progress by sections, not by pages remaining")
		}
	}

	if d.Era == EraAncient {
		a.PreparationSteps = append(
			[]string{"Remember this began as oral performance; rhythm and repetition are features"},
			a.PreparationSteps...,
		)
	}
	return a
}

// deriveContextNeeds emits era-specific background needs, a structural note
// for episodic works, and a series-dependency warning when the title carries
// a sequel marker.
func (t Tables) deriveContextNeeds(d Difficulty, search string) []ContextNeed {
	var out []ContextNeed

	switch d.Era {
	case EraAncient:
		out = append(out,
			ContextNeed{
				Type:          "historical",
				Importance:    ImportanceEssential,
				ShortBriefing: "The world of this work is ancient; its assumptions need a short briefing",
			},
			ContextNeed{
				Type:          "mythological",
				Importance:    ImportanceHelpful,
				ShortBriefing: "Gods and myth are load-bearing, not decoration",
			},
			ContextNeed{
				Type:          "linguistic",
				Importance:    ImportanceHelpful,
				ShortBriefing: "Translation choices shape the reading experience",
			},
		)
	case EraClassical, EraEarlyModern:
		out = append(out,
			ContextNeed{
				Type:          "cultural",
				Importance:    ImportanceHelpful,
				ShortBriefing: "Social conventions of the period drive plot points that can read as arbitrary",
			},
			ContextNeed{
				Type:          "historical",
				Importance:    ImportanceHelpful,
				ShortBriefing: "Contemporary events the first readers knew are assumed silently",
			},
		)
	}

	if d.Structure == StructEpisodic {
		out = append(out, ContextNeed{
			Type:          "structural",
			Importance:    ImportanceHelpful,
			ShortBriefing: "Episodic works reward knowing the shape before starting",
		})
	}

	if matchAny(search, t.SeriesMarkers) {
		out = append(out, ContextNeed{
			Type:          "literary",
			Importance:    ImportanceEssential,
			ShortBriefing: "This appears to continue an earlier book; its events are assumed",
		})
	}
	return out
}

func matchAny(search string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(search, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
