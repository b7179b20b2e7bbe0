package profiler

// DifficultyLevel buckets the accumulated difficulty score.
type DifficultyLevel string

const (
	LevelAccessible  DifficultyLevel = "accessible"
	LevelModerate    DifficultyLevel = "moderate"
	LevelChallenging DifficultyLevel = "challenging"
)

// Era classifies when a work was written.
type Era string

const (
	EraAncient      Era = "ancient"
	EraClassical    Era = "classical"
	EraEarlyModern  Era = "early_modern"
	EraModern       Era = "modern"
	EraContemporary Era = "contemporary"
)

// LanguageComplexity classifies the prose register.
type LanguageComplexity string

const (
	LangArchaic        LanguageComplexity = "archaic"
	LangLiterary       LanguageComplexity = "literary"
	LangConversational LanguageComplexity = "conversational"
	LangStandard       LanguageComplexity = "standard"
)

// StructuralComplexity classifies the narrative structure.
type StructuralComplexity string

const (
	StructNonLinear    StructuralComplexity = "non_linear"
	StructEpisodic     StructuralComplexity = "episodic"
	StructNested       StructuralComplexity = "nested"
	StructConventional StructuralComplexity = "conventional"
)

// ChallengeType names a specific difficulty a reader will face.
type ChallengeType string

const (
	ChallengeUnfamiliarContext    ChallengeType = "unfamiliar_context"
	ChallengeComplexLanguage      ChallengeType = "complex_language"
	ChallengeTranslationArtifacts ChallengeType = "translation_artifacts"
	ChallengeNonLinearStructure   ChallengeType = "non_linear_structure"
	ChallengeLengthEndurance      ChallengeType = "length_endurance"
	ChallengeLargeCharacterCast   ChallengeType = "large_character_cast"
	ChallengeUnfamiliarNames      ChallengeType = "unfamiliar_names"
)

// Severity grades how much a challenge matters.
type Severity string

const (
	SeverityMinor       Severity = "minor"
	SeverityModerate    Severity = "moderate"
	SeveritySignificant Severity = "significant"
)

// Strategy names the recommended overall reading approach.
type Strategy string

const (
	StrategyImmersive  Strategy = "immersive"
	StrategyAnalytical Strategy = "analytical"
	StrategyEpisodic   Strategy = "episodic"
	StrategyGuided     Strategy = "guided"
	StrategyCommunal   Strategy = "communal"
)

// Importance grades a context need.
type Importance string

const (
	ImportanceEssential Importance = "essential"
	ImportanceHelpful   Importance = "helpful"
	ImportanceEnriching Importance = "enriching"
)

// CompanionMode is the proactivity tier derived from the intimidation score.
type CompanionMode string

const (
	ModeObserver  CompanionMode = "observer"
	ModeCompanion CompanionMode = "companion"
	ModeCoach     CompanionMode = "coach"
	ModeGuide     CompanionMode = "guide"
)

// Difficulty is the assessed difficulty of a book, with the ordered list of
// contributions that produced it.
type Difficulty struct {
	Level                DifficultyLevel      `json:"level" yaml:"level"`
	Era                  Era                  `json:"era" yaml:"era"`
	Language             LanguageComplexity   `json:"language" yaml:"language"`
	Structure            StructuralComplexity `json:"structure" yaml:"structure"`
	Reasons              []string             `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	IsKnownDifficultWork bool                 `json:"is_known_difficult_work" yaml:"known_difficult,omitempty"`
}

// Challenge describes one obstacle the reader is likely to hit and how to
// soften it.
type Challenge struct {
	Type        ChallengeType `json:"type" yaml:"type"`
	Description string        `json:"description" yaml:"description"`
	Mitigation  string        `json:"mitigation" yaml:"mitigation"`
	Severity    Severity      `json:"severity" yaml:"severity"`
}

// Approach is the recommended way to read the book.
type Approach struct {
	Strategy         Strategy `json:"strategy" yaml:"strategy"`
	PaceGuidance     string   `json:"pace_guidance" yaml:"pace_guidance"`
	PreparationSteps []string `json:"preparation_steps,omitempty" yaml:"preparation_steps,omitempty"`
	ReadingTips      []string `json:"reading_tips,omitempty" yaml:"reading_tips,omitempty"`
	RecommendedTools []string `json:"recommended_tools,omitempty" yaml:"recommended_tools,omitempty"`
}

// SafeItem is a topic that may always be discussed.
type SafeItem struct {
	Content  string `json:"content" yaml:"content"`
	Category string `json:"category" yaml:"category"`
}

// GatedItem is a topic that becomes safe once reading progress passes
// Threshold (a fraction in [0,1]).
type GatedItem struct {
	Content   string  `json:"content" yaml:"content"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Category  string  `json:"category" yaml:"category"`
}

// SpoilerBoundaries is the policy for what may be said at a given progress.
type SpoilerBoundaries struct {
	SafeToReveal        []SafeItem  `json:"safe_to_reveal" yaml:"safe_to_reveal,omitempty"`
	RevealAfterProgress []GatedItem `json:"reveal_after_progress" yaml:"reveal_after_progress,omitempty"`
	NeverReveal         []string    `json:"never_reveal" yaml:"never_reveal,omitempty"`
}

// ContextNeed is background material that would help the reader.
type ContextNeed struct {
	Type          string     `json:"type" yaml:"type"`
	Importance    Importance `json:"importance" yaml:"importance"`
	ShortBriefing string     `json:"short_briefing" yaml:"short_briefing"`
	FullContext   string     `json:"full_context,omitempty" yaml:"full_context,omitempty"`
}

// BookProfile is the full static assessment of one book. It is immutable
// once produced; the intimidation score and companion mode are always
// recomputed from the stored fields so they can never drift.
type BookProfile struct {
	BookID       string            `json:"book_id"`
	Title        string            `json:"title"`
	Author       string            `json:"author,omitempty"`
	PageCount    int               `json:"page_count,omitempty"`
	Difficulty   Difficulty        `json:"difficulty"`
	Challenges   []Challenge       `json:"challenges,omitempty"`
	Approach     Approach          `json:"approach"`
	Boundaries   SpoilerBoundaries `json:"spoiler_boundaries"`
	ContextNeeds []ContextNeed     `json:"context_needs,omitempty"`
	Curated      bool              `json:"curated,omitempty"`
}

// HasChallenge reports whether the profile carries a challenge of type t.
func (p BookProfile) HasChallenge(t ChallengeType) bool {
	for _, c := range p.Challenges {
		if c.Type == t {
			return true
		}
	}
	return false
}

// EssentialContext returns the context needs marked essential.
func (p BookProfile) EssentialContext() []ContextNeed {
	var out []ContextNeed
	for _, n := range p.ContextNeeds {
		if n.Importance == ImportanceEssential {
			out = append(out, n)
		}
	}
	return out
}
