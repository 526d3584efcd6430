// Package cpm implements the Critical Path Method scheduling engine:
// forward pass, backward pass, float computation, critical-path marking
// and hierarchical rollup, exactly as spec'd — a deterministic function
// from (tasks, calendar, hierarchy) to a fully dated schedule.
package cpm

import (
	"sort"
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// MaxIterations bounds the forward/backward fixed-point loops, so a
// circular dependency can never make either pass loop forever; the
// calculation is still returned, with Stats.Warning set.
const MaxIterations = 100

// Stats summarizes a single calculation.
type Stats struct {
	CalcTime      time.Duration
	TaskCount     int
	CriticalCount int
	ProjectEnd    *string
	Warning       string
	Error         string
}

// Option configures a single Calculate call.
type Option func(*options)

type options struct {
	now time.Time
}

// WithNow overrides the "today" used for ASAP tasks with no resolvable
// predecessor date (spec.md §4.3 step 2). Defaults to time.Now(). Tests
// should always supply this for deterministic output.
func WithNow(now time.Time) Option {
	return func(o *options) { o.now = now }
}

// Calculate runs a full CPM pass over tasks under cal and returns a new
// slice of tasks (tasks is never mutated in place) with every calculated
// field rewritten, plus project statistics.
func Calculate(tasks []*task.Task, cal *calendar.Calendar, opts ...Option) ([]*task.Task, Stats) {
	start := time.Now()
	o := options{now: time.Now()}
	for _, opt := range opts {
		opt(&o)
	}

	out := make([]*task.Task, len(tasks))
	byID := make(map[string]*task.Task, len(tasks))
	for i, t := range tasks {
		c := t.Clone()
		out[i] = c
		byID[c.ID] = c
	}

	if len(out) == 0 {
		return out, Stats{CalcTime: time.Since(start)}
	}

	sortedIDs := sortedTaskIDs(out)
	scheduled := make([]*task.Task, 0, len(out))
	for _, id := range sortedIDs {
		t := byID[id]
		if t.Scheduled() {
			scheduled = append(scheduled, t)
		}
	}

	leaves := make([]*task.Task, 0, len(scheduled))
	for _, t := range scheduled {
		if !task.IsParent(out, t.ID) {
			leaves = append(leaves, t)
		}
	}

	succMap := buildSuccessorMap(scheduled)

	warning := ""
	if !runForwardPass(leaves, byID, cal, o.now) {
		warning = "CPM forward pass did not converge within MAX_ITERATIONS; result may be partial"
	}

	rollupForward(out, cal)

	if !runBackwardPass(leaves, succMap, byID, cal) {
		if warning != "" {
			warning += "; backward pass also did not converge"
		} else {
			warning = "CPM backward pass did not converge within MAX_ITERATIONS; result may be partial"
		}
	}

	rollupBackward(out, cal)

	computeFloatAndCritical(out, succMap, cal)

	criticalCount := 0
	var projectEnd *string
	for _, t := range out {
		if t.IsCritical {
			criticalCount++
		}
		if t.End != nil && (projectEnd == nil || *t.End > *projectEnd) {
			e := *t.End
			projectEnd = &e
		}
	}

	return out, Stats{
		CalcTime:      time.Since(start),
		TaskCount:     len(out),
		CriticalCount: criticalCount,
		ProjectEnd:    projectEnd,
		Warning:       warning,
	}
}

// sortedTaskIDs returns task IDs ordered by (parentId, sortKey) then id,
// the tie-break determinism requires (spec.md §4.3 "Determinism").
func sortedTaskIDs(tasks []*task.Task) []string {
	sorted := make([]*task.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		pa, pb := "", ""
		if a.ParentID != nil {
			pa = *a.ParentID
		}
		if b.ParentID != nil {
			pb = *b.ParentID
		}
		if pa != pb {
			return pa < pb
		}
		if a.SortKey != b.SortKey {
			return a.SortKey < b.SortKey
		}
		return a.ID < b.ID
	})
	ids := make([]string, len(sorted))
	for i, t := range sorted {
		ids[i] = t.ID
	}
	return ids
}
