package cpm

import (
	"testing"
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func strp(s string) *string { return &s }

func mustTask(t *testing.T, id, name string) *task.Task {
	t.Helper()
	tk, err := task.New(id, name)
	if err != nil {
		t.Fatalf("task.New(%q): %v", id, err)
	}
	return tk
}

func dep(predID string, lt task.LinkType, lag int) task.Dependency {
	return task.Dependency{PredecessorID: predID, Type: lt, Lag: lag}
}

func withStart(tk *task.Task, date string) *task.Task {
	tk.ConstraintType = task.SNET
	tk.ConstraintDate = strp(date)
	return tk
}

func calcNow() time.Time {
	n, _ := calendar.ParseDate("2024-01-01")
	return n
}

func endOf(t *testing.T, tk *task.Task) string {
	t.Helper()
	if tk.End == nil {
		t.Fatalf("task %s has no End", tk.ID)
	}
	return *tk.End
}

func startOf(t *testing.T, tk *task.Task) string {
	t.Helper()
	if tk.Start == nil {
		t.Fatalf("task %s has no Start", tk.ID)
	}
	return *tk.Start
}

func byID(tasks []*task.Task, id string) *task.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// S1 — linear FS chain.
func TestCalculate_S1_LinearFSChain(t *testing.T) {
	a := withStart(mustTask(t, "A", "A"), "2024-01-01")
	a.Duration = 3
	b := mustTask(t, "B", "B")
	b.Duration = 2
	b.Dependencies = []task.Dependency{dep("A", task.FS, 0)}
	c := mustTask(t, "C", "C")
	c.Duration = 1
	c.Dependencies = []task.Dependency{dep("B", task.FS, 0)}

	out, stats := Calculate([]*task.Task{a, b, c}, calendar.Default(), WithNow(calcNow()))

	if got := endOf(t, byID(out, "A")); got != "2024-01-03" {
		t.Errorf("A.end = %s, want 2024-01-03", got)
	}
	if got := startOf(t, byID(out, "B")); got != "2024-01-04" {
		t.Errorf("B.start = %s, want 2024-01-04", got)
	}
	if got := endOf(t, byID(out, "B")); got != "2024-01-05" {
		t.Errorf("B.end = %s, want 2024-01-05", got)
	}
	if got := startOf(t, byID(out, "C")); got != "2024-01-08" {
		t.Errorf("C.start = %s, want 2024-01-08", got)
	}
	if got := endOf(t, byID(out, "C")); got != "2024-01-08" {
		t.Errorf("C.end = %s, want 2024-01-08", got)
	}
	for _, id := range []string{"A", "B", "C"} {
		tk := byID(out, id)
		if !tk.IsCritical {
			t.Errorf("%s should be critical", id)
		}
		if tk.TotalFloat != 0 {
			t.Errorf("%s totalFloat = %d, want 0", id, tk.TotalFloat)
		}
	}
	if stats.CriticalCount != 3 {
		t.Errorf("CriticalCount = %d, want 3", stats.CriticalCount)
	}
}

// S2 — calendar skip over a weekend.
func TestCalculate_S2_CalendarSkip(t *testing.T) {
	a := withStart(mustTask(t, "A", "A"), "2024-01-04")
	a.Duration = 3
	b := mustTask(t, "B", "B")
	b.Duration = 2
	b.Dependencies = []task.Dependency{dep("A", task.FS, 0)}
	c := mustTask(t, "C", "C")
	c.Duration = 1
	c.Dependencies = []task.Dependency{dep("B", task.FS, 0)}

	out, _ := Calculate([]*task.Task{a, b, c}, calendar.Default(), WithNow(calcNow()))

	if got := endOf(t, byID(out, "A")); got != "2024-01-08" {
		t.Errorf("A.end = %s, want 2024-01-08", got)
	}
	if got := startOf(t, byID(out, "B")); got != "2024-01-09" {
		t.Errorf("B.start = %s, want 2024-01-09", got)
	}
	if got := endOf(t, byID(out, "B")); got != "2024-01-10" {
		t.Errorf("B.end = %s, want 2024-01-10", got)
	}
	if got := startOf(t, byID(out, "C")); got != "2024-01-11" {
		t.Errorf("C.start = %s, want 2024-01-11", got)
	}
}

// S3 — SS link with lag.
func TestCalculate_S3_SSWithLag(t *testing.T) {
	a := withStart(mustTask(t, "A", "A"), "2024-01-01")
	a.Duration = 5
	b := mustTask(t, "B", "B")
	b.Duration = 3
	b.Dependencies = []task.Dependency{dep("A", task.SS, 2)}

	out, _ := Calculate([]*task.Task{a, b}, calendar.Default(), WithNow(calcNow()))

	if got := startOf(t, byID(out, "B")); got != "2024-01-03" {
		t.Errorf("B.start = %s, want 2024-01-03", got)
	}
	if got := endOf(t, byID(out, "B")); got != "2024-01-05" {
		t.Errorf("B.end = %s, want 2024-01-05", got)
	}
}

// S4 — FNLT deadline blown by the dependency chain produces negative float.
func TestCalculate_S4_FNLTInfeasible(t *testing.T) {
	a := withStart(mustTask(t, "A", "A"), "2024-01-01")
	a.Duration = 3
	b := mustTask(t, "B", "B")
	b.Duration = 5
	b.Dependencies = []task.Dependency{dep("A", task.FS, 0)}
	b.ConstraintType = task.FNLT
	b.ConstraintDate = strp("2024-01-05")

	out, _ := Calculate([]*task.Task{a, b}, calendar.Default(), WithNow(calcNow()))

	bb := byID(out, "B")
	if got := startOf(t, bb); got != "2024-01-04" {
		t.Errorf("B.start (early, dependency-driven) = %s, want 2024-01-04", got)
	}
	if got := endOf(t, bb); got != "2024-01-10" {
		t.Errorf("B.end (natural) = %s, want 2024-01-10", got)
	}
	if bb.TotalFloat >= 0 {
		t.Errorf("B.totalFloat = %d, want negative (deadline infeasible)", bb.TotalFloat)
	}
	if !bb.IsCritical {
		t.Error("B should be critical when infeasible")
	}
}

// S5 — parent rollup from two children.
func TestCalculate_S5_ParentRollup(t *testing.T) {
	p := mustTask(t, "P", "P")
	x := withStart(mustTask(t, "X", "X"), "2024-01-02")
	x.Duration = 2
	x.ParentID = strp("P")
	y := withStart(mustTask(t, "Y", "Y"), "2024-01-03")
	y.Duration = 4
	y.ParentID = strp("P")

	out, _ := Calculate([]*task.Task{p, x, y}, calendar.Default(), WithNow(calcNow()))

	pp := byID(out, "P")
	if got := startOf(t, pp); got != "2024-01-02" {
		t.Errorf("P.start = %s, want 2024-01-02", got)
	}
	if got := endOf(t, pp); got != "2024-01-08" {
		t.Errorf("P.end = %s, want 2024-01-08", got)
	}
	if pp.Duration != 5 {
		t.Errorf("P.duration = %d, want 5", pp.Duration)
	}
}

func TestCalculate_EmptySet(t *testing.T) {
	out, stats := Calculate(nil, calendar.Default())
	if len(out) != 0 {
		t.Errorf("expected empty output, got %d tasks", len(out))
	}
	if stats.TaskCount != 0 {
		t.Errorf("expected zeroed stats, got %+v", stats)
	}
}

func TestCalculate_CircularDependency_Terminates(t *testing.T) {
	a := mustTask(t, "A", "A")
	a.Duration = 1
	a.Dependencies = []task.Dependency{dep("B", task.FS, 0)}
	b := mustTask(t, "B", "B")
	b.Duration = 1
	b.Dependencies = []task.Dependency{dep("A", task.FS, 0)}

	out, stats := Calculate([]*task.Task{a, b}, calendar.Default(), WithNow(calcNow()))

	if len(out) != 2 {
		t.Fatalf("expected both tasks returned despite the cycle, got %d", len(out))
	}
	if stats.Warning == "" {
		t.Error("expected a non-fatal warning for a circular dependency")
	}
}

func TestCalculate_NegativeDurationCoercedToZero(t *testing.T) {
	a := withStart(mustTask(t, "A", "A"), "2024-01-01")
	a.Duration = -5

	out, _ := Calculate([]*task.Task{a}, calendar.Default(), WithNow(calcNow()))

	aa := byID(out, "A")
	if got := startOf(t, aa); got != "2024-01-01" {
		t.Errorf("A.start = %s, want 2024-01-01", got)
	}
	if got := endOf(t, aa); got != "2023-12-29" {
		t.Errorf("A.end = %s, want 2023-12-29 (addWorkDays(start, -1))", got)
	}
}

func TestCalculate_ManualTaskDatesUntouched(t *testing.T) {
	m := mustTask(t, "M", "M")
	m.SchedulingMode = task.Manual
	m.Duration = 4
	m.Start = strp("2024-02-01")
	m.End = strp("2024-02-06")

	out, _ := Calculate([]*task.Task{m}, calendar.Default(), WithNow(calcNow()))

	mm := byID(out, "M")
	if got := startOf(t, mm); got != "2024-02-01" {
		t.Errorf("manual task start changed: %s", got)
	}
	if got := endOf(t, mm); got != "2024-02-06" {
		t.Errorf("manual task end changed: %s", got)
	}
}

func TestCalculate_BlankRowsExcluded(t *testing.T) {
	a := withStart(mustTask(t, "A", "A"), "2024-01-01")
	a.Duration = 2
	blank := mustTask(t, "SEP", "")
	blank.RowType = task.RowBlank

	out, stats := Calculate([]*task.Task{a, blank}, calendar.Default(), WithNow(calcNow()))

	if stats.TaskCount != 2 {
		t.Errorf("TaskCount = %d, want 2 (blank rows pass through uncalculated)", stats.TaskCount)
	}
	bb := byID(out, "SEP")
	if bb.EarlyStart != nil {
		t.Error("blank row should not receive calculated dates")
	}
}
