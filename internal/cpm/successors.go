package cpm

import "github.com/javiermolinar/sancho-schedule/internal/task"

// successor pairs a dependent task's id with the link type and lag that
// bind it to whichever predecessor owns this entry in the map below.
type successor struct {
	id   string
	link task.LinkType
	lag  int
}

// buildSuccessorMap inverts the dependency graph scheduled tasks carry —
// each task lists its own predecessors — into predecessorId -> list of
// successors, which the backward pass walks (spec.md §4.3 step 1).
func buildSuccessorMap(scheduled []*task.Task) map[string][]successor {
	m := make(map[string][]successor)
	for _, t := range scheduled {
		for _, d := range t.Dependencies {
			m[d.PredecessorID] = append(m[d.PredecessorID], successor{id: t.ID, link: d.Type, lag: d.Lag})
		}
	}
	return m
}
