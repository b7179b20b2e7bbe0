package profiler

// defaultBoundaries is the baseline spoiler policy used for every
// heuristically-profiled book. Curated entries may override it wholesale.
//
// Always safe: six categories of framing material. Progress-gated: character
// arcs after 25%, plot developments after 50%, thematic resolution after
// 75%. Never reveal: six universal categories of ending material.
func defaultBoundaries() SpoilerBoundaries {
	return SpoilerBoundaries{
		SafeToReveal: []SafeItem{
			{Content: "Historical and cultural context of the period", Category: "historical_context"},
			{Content: "The author's life and background", Category: "author_background"},
			{Content: "Genre conventions and what to expect from the form", Category: "genre_convention"},
			{Content: "The opening situation as the book presents it", Category: "opening_situation"},
			{Content: "Setting: where and when the story takes place", Category: "setting"},
			{Content: "Themes the book announces early", Category: "thematic_setup"},
		},
		RevealAfterProgress: []GatedItem{
			{Content: "How the main characters develop and change", Threshold: 0.25, Category: "character_arc"},
			{Content: "Major plot developments from the first half", Threshold: 0.50, Category: "plot_development"},
			{Content: "How the book's themes resolve", Threshold: 0.75, Category: "thematic_resolution"},
		},
		NeverReveal: []string{
			"How the book ends",
			"Deaths of major characters",
			"Plot twists and reversals",
			"Solutions to mysteries",
			"Betrayals and hidden identities",
			"The final fates of characters",
		},
	}
}
