package profiler

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Tables holds every curated list, keyword bucket, weight, and threshold the
// profiler consults. Keeping them in data rather than control flow lets the
// curated-work list and keyword buckets grow without touching the heuristics.
type Tables struct {
	Weights      Weights          `yaml:"weights"`
	Intimidation Intimidation     `yaml:"intimidation"`
	EraCutoffs   EraCutoffs       `yaml:"era_cutoffs"`
	EraKeywords  map[Era][]string `yaml:"era_keywords"`

	LanguageKeywords  map[LanguageComplexity][]string   `yaml:"language_keywords"`
	StructureKeywords map[StructuralComplexity][]string `yaml:"structure_keywords"`

	DifficultWorks        []string `yaml:"difficult_works"`
	CharacterHeavyWorks   []string `yaml:"character_heavy_works"`
	UnfamiliarNameMarkers []string `yaml:"unfamiliar_name_markers"`
	SeriesMarkers         []string `yaml:"series_markers"`

	Curated []CuratedEntry `yaml:"curated"`
}

// Weights are the additive difficulty-score contributions. The specific
// values are hand-tuned policy, kept in data so they can be re-tuned without
// code changes; the 0.5/0.25 level thresholds are fixed behavior.
type Weights struct {
	Era       map[Era]float64                  `yaml:"era"`
	Language  map[LanguageComplexity]float64   `yaml:"language"`
	Structure map[StructuralComplexity]float64 `yaml:"structure"`

	LongBook     float64 `yaml:"long_book"`      // page count > 500
	VeryLongBook float64 `yaml:"very_long_book"` // page count > 800, replaces LongBook
	KnownWork    float64 `yaml:"known_work"`

	ChallengingAbove float64 `yaml:"challenging_above"`
	ModerateAbove    float64 `yaml:"moderate_above"`
}

// Intimidation are the contributions to the intimidation score and the
// mode thresholds (guide > 0.7, coach > 0.4, companion > 0.2).
type Intimidation struct {
	Level map[DifficultyLevel]float64 `yaml:"level"`
	Era   map[Era]float64             `yaml:"era"`

	LongBook     float64 `yaml:"long_book"`
	VeryLongBook float64 `yaml:"very_long_book"`
	PerChallenge float64 `yaml:"per_challenge"`
	ChallengeCap float64 `yaml:"challenge_cap"`
	KnownWork    float64 `yaml:"known_work"`

	GuideAbove     float64 `yaml:"guide_above"`
	CoachAbove     float64 `yaml:"coach_above"`
	CompanionAbove float64 `yaml:"companion_above"`

	NeedsPreparationAbove float64 `yaml:"needs_preparation_above"`
}

// EraCutoffs map a publication year to an era. A year before AncientBefore
// is ancient, before ClassicalBefore classical, and so on; anything at or
// past ModernBefore is contemporary.
type EraCutoffs struct {
	AncientBefore     int `yaml:"ancient_before"`
	ClassicalBefore   int `yaml:"classical_before"`
	EarlyModernBefore int `yaml:"early_modern_before"`
	ModernBefore      int `yaml:"modern_before"`
}

// CuratedEntry is a hand-written profile for a well-known work. Title and
// author are matched as lower-case substrings. Fields left empty fall back
// to heuristic defaults.
type CuratedEntry struct {
	MatchTitle  string `yaml:"match_title"`
	MatchAuthor string `yaml:"match_author"`

	Difficulty   Difficulty         `yaml:"difficulty"`
	Challenges   []Challenge        `yaml:"challenges"`
	Approach     Approach           `yaml:"approach"`
	Boundaries   *SpoilerBoundaries `yaml:"boundaries"` // nil → defaults
	ContextNeeds []ContextNeed      `yaml:"context_needs"`
}

// DefaultTables parses the embedded table set. The embedded YAML is
// validated by tests, so a parse failure here is a build defect.
func DefaultTables() Tables {
	t, err := parseTables(defaultTablesYAML)
	if err != nil {
		panic(fmt.Sprintf("profiler: embedded tables invalid: %v", err))
	}
	return t
}

// LoadTables reads a table set from a YAML file, falling back to the
// embedded defaults when path is empty.
func LoadTables(path string) (Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("reading profiler tables: %w", err)
	}
	t, err := parseTables(data)
	if err != nil {
		return Tables{}, fmt.Errorf("parsing profiler tables %s: %w", path, err)
	}
	return t, nil
}

func parseTables(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, err
	}
	if t.Weights.ChallengingAbove <= 0 || t.Weights.ModerateAbove <= 0 {
		return Tables{}, fmt.Errorf("difficulty thresholds must be positive")
	}
	if t.Intimidation.GuideAbove <= t.Intimidation.CoachAbove ||
		t.Intimidation.CoachAbove <= t.Intimidation.CompanionAbove {
		return Tables{}, fmt.Errorf("mode thresholds must be strictly descending")
	}
	return t, nil
}
