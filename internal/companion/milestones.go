package companion

import (
	"fmt"

	"github.com/google/uuid"
)

// milestone is one fixed progress threshold with its celebration message.
type milestone struct {
	At      float64
	Message string
}

// milestones is the fixed ascending celebration set.
var milestones = []milestone{
	{0.10, "Ten percent in - you're properly underway now."},
	{0.25, "A quarter of the way through. The shape of the book is showing itself."},
	{0.50, "Halfway there. Everything from here is momentum."},
	{0.75, "Three quarters done - the end is genuinely in sight."},
	{0.90, "Ninety percent. Enjoy the final stretch."},
}

// celebrationWindow keeps a milestone celebration visible for this much
// further progress before it expires out of the queue.
const celebrationWindow = 0.1

// crossedMilestones returns a celebration suggestion for every milestone m
// with old < m ≤ new, in crossing order. Each crossing fires exactly once
// because the next event's old progress has already passed it.
func crossedMilestones(old, new float64) []Suggestion {
	var out []Suggestion
	for _, m := range milestones {
		if old < m.At && m.At <= new {
			out = append(out, Suggestion{
				ID:                   uuid.New().String(),
				Type:                 TypeCelebration,
				Headline:             m.Message,
				FullPrompt:           m.Message,
				Priority:             PriorityMedium,
				TriggerReason:        fmt.Sprintf("crossed %.0f%% milestone", m.At*100),
				SpoilerSafe:          true,
				RequiresGeneration:   false,
				ExpiresAfterProgress: m.At + celebrationWindow,
			})
		}
	}
	return out
}
