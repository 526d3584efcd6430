package cpm

import (
	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// computeFloatAndCritical fills TotalFloat, FreeFloat and IsCritical for
// every task that now carries early/late dates — leaves from the CPM
// passes plus their parent rollups (spec.md §4.3 steps 6-7).
func computeFloatAndCritical(tasks []*task.Task, succMap map[string][]successor, cal *calendar.Calendar) {
	byID := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	// Leaves and rolled-up parents first get totalFloat.
	for _, t := range tasks {
		if t.EarlyStart == nil || t.LateStart == nil {
			continue
		}
		es, err1 := calendar.ParseDate(*t.EarlyStart)
		ls, err2 := calendar.ParseDate(*t.LateStart)
		if err1 != nil || err2 != nil {
			continue
		}
		t.TotalFloat = cal.WorkDaysDifference(es, ls)
	}

	for _, t := range tasks {
		if task.IsParent(tasks, t.ID) {
			continue
		}
		t.IsCritical = t.TotalFloat <= 0
		t.FreeFloat = computeFreeFloat(t, byID, succMap, cal)
	}

	// Parent total float and criticality derive from their children,
	// deepest first so multi-level hierarchies roll up correctly.
	children := childrenByParent(tasks)
	memo := make(map[string]bool)
	var resolveParent func(id string)
	resolveParent = func(id string) {
		if memo[id] {
			return
		}
		memo[id] = true
		kids := children[id]
		if len(kids) == 0 {
			return
		}
		minFloat := 0
		haveFloat := false
		anyCritical := false
		for _, cid := range kids {
			resolveParent(cid)
			c := byID[cid]
			if !c.Scheduled() {
				continue
			}
			if !haveFloat || c.TotalFloat < minFloat {
				minFloat = c.TotalFloat
				haveFloat = true
			}
			if c.IsCritical {
				anyCritical = true
			}
		}
		t := byID[id]
		if haveFloat {
			t.TotalFloat = minFloat
		}
		t.FreeFloat = 0
		t.IsCritical = anyCritical
	}
	for _, t := range tasks {
		resolveParent(t.ID)
	}
}

// computeFreeFloat is the slack before a task's earliest successor would
// be delayed: the minimum, across successors, of the gap between this
// task's own timing and the date each link type demands of the
// successor, clamped into [0, totalFloat] (spec.md §4.3 step 6).
func computeFreeFloat(t *task.Task, byID map[string]*task.Task, succMap map[string][]successor, cal *calendar.Calendar) int {
	succs := succMap[t.ID]
	if len(succs) == 0 || t.EarlyFinish == nil || t.EarlyStart == nil {
		return clampFloat(t.TotalFloat, t.TotalFloat)
	}
	ef, errEF := calendar.ParseDate(*t.EarlyFinish)
	es, errES := calendar.ParseDate(*t.EarlyStart)
	if errEF != nil || errES != nil {
		return clampFloat(t.TotalFloat, t.TotalFloat)
	}

	min := -1
	for _, s := range succs {
		succTask, ok := byID[s.id]
		if !ok || succTask.EarlyStart == nil {
			continue
		}
		succES, err := calendar.ParseDate(*succTask.EarlyStart)
		if err != nil {
			continue
		}

		var slack int
		switch s.link {
		case task.SS:
			slack = cal.WorkDaysDifference(es, succES) - s.lag
		case task.FF, task.SF:
			if succTask.EarlyFinish == nil {
				continue
			}
			succEF, err := calendar.ParseDate(*succTask.EarlyFinish)
			if err != nil {
				continue
			}
			slack = cal.WorkDaysDifference(ef, succEF) - s.lag
		default: // FS
			slack = cal.WorkDaysDifference(ef, succES) - 1 - s.lag
		}
		if min == -1 || slack < min {
			min = slack
		}
	}
	if min == -1 {
		min = t.TotalFloat
	}
	return clampFloat(min, t.TotalFloat)
}

// clampFloat keeps free float inside [0, total]. When total itself is
// negative (an infeasible constraint, spec.md §8 S4), there is no value
// satisfying both bounds; 0 is reported rather than a negative free float.
func clampFloat(free, total int) int {
	if total < 0 {
		return 0
	}
	if free < 0 {
		return 0
	}
	if free > total {
		return total
	}
	return free
}
