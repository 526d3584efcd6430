package cpm

import (
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// runBackwardPass computes LateStart/LateFinish for every leaf task by
// propagating backward from tasks with no successors, iterating to a
// fixed point the same way the forward pass does (spec.md §4.3 step 4).
// Returns false if some tasks never resolved within MaxIterations — a
// cycle confined to the successor side of the graph — in which case they
// fall back to the project late finish so every task still reports a
// float figure.
func runBackwardPass(leaves []*task.Task, succMap map[string][]successor, byID map[string]*task.Task, cal *calendar.Calendar) bool {
	projectLateFinish := projectEnd(leaves)

	resolved := make(map[string]dateRange, len(leaves))
	durationOf := make(map[string]int, len(leaves))
	for _, t := range leaves {
		d := t.Duration
		if d < 0 {
			d = 0
		}
		durationOf[t.ID] = d
	}

	hasKnownSuccessor := func(id string) bool {
		for _, s := range succMap[id] {
			if _, ok := durationOf[s.id]; ok {
				return true
			}
		}
		return false
	}

	for _, t := range leaves {
		if !hasKnownSuccessor(t.ID) {
			end := clampToDeadline(projectLateFinish, t)
			start := cal.AddWorkDays(end, -(durationOf[t.ID] - 1))
			resolved[t.ID] = dateRange{start, end}
			setLateDates(t, start, end)
		}
	}

	for iter := 0; iter < MaxIterations; iter++ {
		changed := false
		for _, t := range leaves {
			if _, done := resolved[t.ID]; done {
				continue
			}

			var late *time.Time
			anyUnresolvedSuccessor := false
			for _, s := range succMap[t.ID] {
				if _, ok := durationOf[s.id]; !ok {
					continue
				}
				sr, ok := resolved[s.id]
				if !ok {
					anyUnresolvedSuccessor = true
					continue
				}
				derived := deriveBackwardDate(s.link, sr.start, sr.end, s.lag, durationOf[t.ID], cal)
				if late == nil || derived.Before(*late) {
					d := derived
					late = &d
				}
			}
			if late == nil || anyUnresolvedSuccessor {
				continue
			}

			lateFinish := clampToDeadline(*late, t)
			start := cal.AddWorkDays(lateFinish, -(durationOf[t.ID] - 1))
			resolved[t.ID] = dateRange{start, lateFinish}
			setLateDates(t, start, lateFinish)
			changed = true
		}
		if !changed {
			break
		}
	}

	converged := len(resolved) == len(leaves)
	for _, t := range leaves {
		if _, done := resolved[t.ID]; !done {
			end := clampToDeadline(projectLateFinish, t)
			start := cal.AddWorkDays(end, -(durationOf[t.ID] - 1))
			setLateDates(t, start, end)
		}
	}
	return converged
}

// clampToDeadline lowers a computed lateFinish to a task's FNLT deadline
// when the deadline is tighter — the deadline constraint's actual effect
// in this engine (see the FNLT case in applyConstraint).
func clampToDeadline(lateFinish time.Time, t *task.Task) time.Time {
	if d, ok := fnltDeadline(t); ok && d.Before(lateFinish) {
		return d
	}
	return lateFinish
}

func setLateDates(t *task.Task, start, end time.Time) {
	s := calendar.FormatDate(start)
	e := calendar.FormatDate(end)
	t.LateStart = &s
	t.LateFinish = &e
}

// projectEnd is the latest EarlyFinish across leaves — the project's
// overall late finish bound (spec.md §4.3 step 4).
func projectEnd(leaves []*task.Task) time.Time {
	var latest time.Time
	set := false
	for _, t := range leaves {
		if t.EarlyFinish == nil {
			continue
		}
		d, err := calendar.ParseDate(*t.EarlyFinish)
		if err != nil {
			continue
		}
		if !set || d.After(latest) {
			latest = d
			set = true
		}
	}
	return latest
}
