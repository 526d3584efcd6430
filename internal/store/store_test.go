package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// noFlush returns Options whose timers are long enough that nothing in
// these tests ever fires on the timer — every flush/snapshot is driven
// explicitly, so tests stay deterministic without sleeping on a race.
func noFlush() Options {
	o := DefaultOptions()
	o.FlushInterval = time.Hour
	o.SnapshotInterval = time.Hour
	o.FlushMaxBatch = 1 << 30
	o.SnapshotMaxUnflushed = 1 << 30
	return o
}

type fakeState struct {
	tasks []*task.Task
	cal   *calendar.Calendar
}

func (f *fakeState) CurrentState() ([]*task.Task, *calendar.Calendar) { return f.tasks, f.cal }

func mustTask(t *testing.T, id, name string) *task.Task {
	t.Helper()
	tk, err := task.New(id, name)
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	tk.Duration = 3
	return tk
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

func TestStore_AppendAndForceFlush_PersistsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sancho.db")
	s, err := New(path, &fakeState{cal: calendar.Default()}, noFlush())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Shutdown(context.Background())

	a := mustTask(t, "A", "Task A")
	if err := s.AppendTaskCreated(a); err != nil {
		t.Fatalf("AppendTaskCreated: %v", err)
	}
	if err := s.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}
	if got := countRows(t, s.db, "events"); got != 1 {
		t.Fatalf("expected 1 event row, got %d", got)
	}
}

func TestStore_Snapshot_RecordsLastAppliedSeqAndResetsCounter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sancho.db")
	state := &fakeState{tasks: []*task.Task{mustTask(t, "A", "Task A")}, cal: calendar.Default()}
	s, err := New(path, state, noFlush())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Shutdown(context.Background())
	ctx := context.Background()

	if err := s.AppendTaskCreated(state.tasks[0]); err != nil {
		t.Fatalf("AppendTaskCreated: %v", err)
	}
	if err := s.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}
	if err := s.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	snap, err := s.latestSnapshot(ctx)
	if err != nil {
		t.Fatalf("latestSnapshot: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot row")
	}
	if snap.lastAppliedSeq != 1 {
		t.Errorf("expected lastAppliedSeq=1, got %d", snap.lastAppliedSeq)
	}

	s.mu.Lock()
	remaining := s.eventsSinceSnapshot
	s.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected eventsSinceSnapshot reset to 0, got %d", remaining)
	}
}

func TestStore_Load_NoSnapshotReplaysAllEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sancho.db")
	s, err := New(path, &fakeState{cal: calendar.Default()}, noFlush())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Shutdown(context.Background())
	ctx := context.Background()

	if err := s.AppendTaskCreated(mustTask(t, "A", "Task A")); err != nil {
		t.Fatalf("AppendTaskCreated A: %v", err)
	}
	if err := s.AppendTaskCreated(mustTask(t, "B", "Task B")); err != nil {
		t.Fatalf("AppendTaskCreated B: %v", err)
	}
	if err := s.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	tasks, _, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "A" || tasks[1].ID != "B" {
		t.Fatalf("expected [A B], got %+v", tasks)
	}
}

func TestStore_Load_MergesPartialUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sancho.db")
	s, err := New(path, &fakeState{cal: calendar.Default()}, noFlush())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Shutdown(context.Background())
	ctx := context.Background()

	a := mustTask(t, "A", "orig")
	if err := s.AppendTaskCreated(a); err != nil {
		t.Fatalf("AppendTaskCreated: %v", err)
	}
	newName := "renamed"
	if err := s.AppendTaskUpdated("A", task.Patch{Name: &newName}); err != nil {
		t.Fatalf("AppendTaskUpdated: %v", err)
	}
	if err := s.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	tasks, _, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	if tasks[0].Name != "renamed" {
		t.Errorf("expected merged name %q, got %q", "renamed", tasks[0].Name)
	}
	if tasks[0].Duration != 3 {
		t.Errorf("expected untouched Duration=3 to survive the partial merge, got %d", tasks[0].Duration)
	}
}

func TestStore_Load_DeleteIsTolerantOfMissingPriorState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sancho.db")
	s, err := New(path, &fakeState{cal: calendar.Default()}, noFlush())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Shutdown(context.Background())
	ctx := context.Background()

	s.AppendTaskDeleted("ghost")
	if err := s.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	tasks, _, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %+v", tasks)
	}
}

func TestStore_Load_CalendarUpdateReplays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sancho.db")
	s, err := New(path, &fakeState{cal: calendar.Default()}, noFlush())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Shutdown(context.Background())
	ctx := context.Background()

	custom := calendar.New([]time.Weekday{time.Monday, time.Wednesday, time.Friday})
	if err := s.AppendCalendarUpdated(custom); err != nil {
		t.Fatalf("AppendCalendarUpdated: %v", err)
	}
	if err := s.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	_, cal, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cal.WorkingDays[time.Monday] || cal.WorkingDays[time.Tuesday] {
		t.Errorf("expected Mon/Wed/Fri calendar to replay, got %+v", cal.WorkingDays)
	}
}

// TestStore_CrashRecovery_S6 mirrors spec.md §8 scenario S6: T1 and T2
// are flushed and snapshotted, T3 is flushed after the snapshot, and T4
// is appended but never flushed before the process "crashes" (a second
// Store is opened against the same file without ever calling ForceFlush
// or Shutdown on the first). Reload must restore {T1, T2, T3} and must
// not resurrect T4.
func TestStore_CrashRecovery_S6(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sancho.db")
	ctx := context.Background()

	t1, t2, t3 := mustTask(t, "T1", "one"), mustTask(t, "T2", "two"), mustTask(t, "T3", "three")
	state := &fakeState{tasks: []*task.Task{t1, t2}, cal: calendar.Default()}

	s1, err := New(path, state, noFlush())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s1.AppendTaskCreated(t1); err != nil {
		t.Fatalf("AppendTaskCreated T1: %v", err)
	}
	if err := s1.AppendTaskCreated(t2); err != nil {
		t.Fatalf("AppendTaskCreated T2: %v", err)
	}
	if err := s1.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}
	if err := s1.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	state.tasks = append(state.tasks, t3)
	if err := s1.AppendTaskCreated(t3); err != nil {
		t.Fatalf("AppendTaskCreated T3: %v", err)
	}
	if err := s1.ForceFlush(ctx); err != nil {
		t.Fatalf("ForceFlush: %v", err)
	}

	// T4 is queued but the store "crashes" before any flush observes it.
	if err := s1.AppendTaskCreated(mustTask(t, "T4", "four")); err != nil {
		t.Fatalf("AppendTaskCreated T4: %v", err)
	}
	s1.db.Close()

	s2, err := New(path, &fakeState{cal: calendar.Default()}, noFlush())
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s2.Shutdown(context.Background())

	tasks, _, err := s2.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ids := make(map[string]bool, len(tasks))
	for _, tk := range tasks {
		ids[tk.ID] = true
	}
	if len(tasks) != 3 || !ids["T1"] || !ids["T2"] || !ids["T3"] {
		t.Fatalf("expected exactly {T1,T2,T3}, got %+v", ids)
	}
	if ids["T4"] {
		t.Fatal("T4 was never flushed and must not survive recovery")
	}
}
