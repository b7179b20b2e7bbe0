package profiler

// IntimidationScore is the weighted sum of difficulty level, era, length,
// challenge count, and the known-work flag, clamped to 1.0. It is computed
// from the profile's current fields on every call; nothing caches it.
func (t Tables) IntimidationScore(p BookProfile) float64 {
	in := t.Intimidation

	score := in.Level[p.Difficulty.Level]
	score += in.Era[p.Difficulty.Era]

	switch {
	case p.PageCount > 800:
		score += in.VeryLongBook
	case p.PageCount > 500:
		score += in.LongBook
	}

	ch := float64(len(p.Challenges)) * in.PerChallenge
	if ch > in.ChallengeCap {
		ch = in.ChallengeCap
	}
	score += ch

	if p.Difficulty.IsKnownDifficultWork {
		score += in.KnownWork
	}

	if score > 1 {
		score = 1
	}
	return score
}

// Mode maps an intimidation score to the companion's proactivity tier:
// (0.7,1.0] guide, (0.4,0.7] coach, (0.2,0.4] companion, [0,0.2] observer.
func (t Tables) Mode(score float64) CompanionMode {
	in := t.Intimidation
	switch {
	case score > in.GuideAbove:
		return ModeGuide
	case score > in.CoachAbove:
		return ModeCoach
	case score > in.CompanionAbove:
		return ModeCompanion
	default:
		return ModeObserver
	}
}

// NeedsPreparation reports whether the book is intimidating enough to offer
// preparation material before the reader starts.
func (t Tables) NeedsPreparation(p BookProfile) bool {
	return t.IntimidationScore(p) > t.Intimidation.NeedsPreparationAbove
}
