package companion

import "sort"

// maxPending caps the visible suggestion queue.
const maxPending = 3

// insertFront prepends a suggestion and, if the queue overflows, evicts the
// lowest-priority item (the last such item on ties, so older entries at the
// tail go first).
func insertFront(queue []Suggestion, s Suggestion) []Suggestion {
	queue = append([]Suggestion{s}, queue...)
	if len(queue) <= maxPending {
		return queue
	}

	evict := 0
	for i := 1; i < len(queue); i++ {
		if queue[i].Priority <= queue[evict].Priority {
			evict = i
		}
	}
	return append(queue[:evict], queue[evict+1:]...)
}

// rankCandidates sorts candidates by priority descending (stable, so ties
// keep generation order), drops any already past their expiry window, and
// truncates to the queue capacity.
func rankCandidates(candidates []Suggestion, progress float64) []Suggestion {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	out := candidates[:0]
	for _, c := range candidates {
		if c.Expired(progress) {
			continue
		}
		out = append(out, c)
		if len(out) == maxPending {
			break
		}
	}
	return out
}

// pruneExpired removes queue entries whose window has closed.
func pruneExpired(queue []Suggestion, progress float64) []Suggestion {
	out := queue[:0]
	for _, s := range queue {
		if !s.Expired(progress) {
			out = append(out, s)
		}
	}
	return out
}

func removeByID(queue []Suggestion, id string) ([]Suggestion, *Suggestion) {
	for i, s := range queue {
		if s.ID == id {
			removed := s
			return append(queue[:i], queue[i+1:]...), &removed
		}
	}
	return queue, nil
}

func containsType(queue []Suggestion, t SuggestionType) bool {
	for _, s := range queue {
		if s.Type == t {
			return true
		}
	}
	return false
}
