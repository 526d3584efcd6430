package cpm

import (
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

type dateRange struct {
	start time.Time
	end   time.Time
}

// runForwardPass computes EarlyStart/EarlyFinish (and, for auto-scheduled
// tasks, Start/End) for every leaf task. It iterates to a fixed point
// because a task's candidate start can depend on a predecessor resolved
// later in the same sweep (spec.md §4.3 step 2). Returns false if some
// leaf is still unresolved once a sweep makes no further progress or
// MaxIterations is reached — the signature of a circular dependency.
func runForwardPass(leaves []*task.Task, byID map[string]*task.Task, cal *calendar.Calendar, now time.Time) bool {
	resolved := make(map[string]dateRange, len(leaves))

	for _, t := range leaves {
		if t.IsManual() && t.Start != nil && t.End != nil {
			s, errS := calendar.ParseDate(*t.Start)
			e, errE := calendar.ParseDate(*t.End)
			if errS == nil && errE == nil {
				resolved[t.ID] = dateRange{s, e}
				setEarlyDates(t, s, e)
			}
		}
	}

	for iter := 0; iter < MaxIterations; iter++ {
		changed := false
		for _, t := range leaves {
			if _, done := resolved[t.ID]; done {
				continue
			}

			var candidate *time.Time
			pending := false
			for _, d := range t.Dependencies {
				pred, ok := byID[d.PredecessorID]
				if !ok {
					continue // malformed reference: skipped, not fatal
				}
				pr, ok := resolved[pred.ID]
				if !ok {
					pending = true // predecessor not yet resolved this sweep
					continue
				}
				derived := deriveForwardDate(d.Type, pr.start, pr.end, d.Lag, t.Duration, cal)
				if candidate == nil || derived.After(*candidate) {
					c := derived
					candidate = &c
				}
			}
			if pending {
				continue // wait for the predecessor(s) to resolve first
			}

			start := applyConstraint(t.ConstraintType, t.ConstraintDate, candidate, now, cal, t.Duration)
			end := endFromStart(cal, start, t.Duration)
			resolved[t.ID] = dateRange{start, end}
			setEarlyDates(t, start, end)
			changed = true
		}
		if !changed {
			return len(resolved) == len(leaves)
		}
	}
	return len(resolved) == len(leaves)
}

func setEarlyDates(t *task.Task, start, end time.Time) {
	s := calendar.FormatDate(start)
	e := calendar.FormatDate(end)
	t.EarlyStart = &s
	t.EarlyFinish = &e
	if !t.IsManual() {
		s2, e2 := s, e
		t.Start = &s2
		t.End = &e2
	}
}
