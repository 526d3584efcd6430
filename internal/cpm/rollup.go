package cpm

import (
	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// rollupForward derives each parent task's Start/End (and EarlyStart/
// EarlyFinish) and Duration from its scheduled children, recursing
// bottom-up so multi-level hierarchies roll up correctly (spec.md §4.3
// step 3).
func rollupForward(tasks []*task.Task, cal *calendar.Calendar) {
	children := childrenByParent(tasks)
	byID := indexByID(tasks)
	memo := make(map[string]bool)

	var resolve func(id string)
	resolve = func(id string) {
		if memo[id] {
			return
		}
		memo[id] = true
		kids := children[id]
		if len(kids) == 0 {
			return
		}

		var minStart, maxEnd *string
		for _, cid := range kids {
			resolve(cid)
			c := byID[cid]
			if !c.Scheduled() {
				continue
			}
			if c.Start != nil && (minStart == nil || *c.Start < *minStart) {
				v := *c.Start
				minStart = &v
			}
			if c.End != nil && (maxEnd == nil || *c.End > *maxEnd) {
				v := *c.End
				maxEnd = &v
			}
		}

		t := byID[id]
		t.Start = minStart
		t.End = maxEnd
		t.EarlyStart = minStart
		t.EarlyFinish = maxEnd
		if minStart != nil && maxEnd != nil {
			if s, err1 := calendar.ParseDate(*minStart); err1 == nil {
				if e, err2 := calendar.ParseDate(*maxEnd); err2 == nil {
					t.Duration = cal.WorkDaysBetween(s, e)
				}
			}
		}
	}

	for _, t := range tasks {
		resolve(t.ID)
	}
}

// rollupBackward derives each parent task's LateStart/LateFinish as the
// min/max across its scheduled children — the backward-pass analogue of
// rollupForward.
func rollupBackward(tasks []*task.Task, cal *calendar.Calendar) {
	children := childrenByParent(tasks)
	byID := indexByID(tasks)
	memo := make(map[string]bool)

	var resolve func(id string)
	resolve = func(id string) {
		if memo[id] {
			return
		}
		memo[id] = true
		kids := children[id]
		if len(kids) == 0 {
			return
		}

		var minStart, maxEnd *string
		for _, cid := range kids {
			resolve(cid)
			c := byID[cid]
			if !c.Scheduled() {
				continue
			}
			if c.LateStart != nil && (minStart == nil || *c.LateStart < *minStart) {
				v := *c.LateStart
				minStart = &v
			}
			if c.LateFinish != nil && (maxEnd == nil || *c.LateFinish > *maxEnd) {
				v := *c.LateFinish
				maxEnd = &v
			}
		}

		t := byID[id]
		t.LateStart = minStart
		t.LateFinish = maxEnd
	}

	for _, t := range tasks {
		resolve(t.ID)
	}
}

func childrenByParent(tasks []*task.Task) map[string][]string {
	m := make(map[string][]string)
	for _, t := range tasks {
		if t.ParentID != nil {
			m[*t.ParentID] = append(m[*t.ParentID], t.ID)
		}
	}
	return m
}

func indexByID(tasks []*task.Task) map[string]*task.Task {
	m := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}
