package importexport

import (
	"testing"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func TestExportImportJSONRoundTrip(t *testing.T) {
	t1, err := task.New("T1", "Pour foundation")
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	t1.Duration = 5

	t2, err := task.New("T2", "Frame walls")
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	t2.Duration = 3
	t2.Dependencies = []task.Dependency{{PredecessorID: "T1", Type: task.FS}}

	cal := calendar.Default()
	cal.Exceptions["2026-01-01"] = calendar.Exception{Working: false, Description: "holiday"}

	data, err := ExportJSON([]*task.Task{t1, t2}, cal, "2026-07-31T00:00:00Z")
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	gotTasks, gotCal, err := ImportJSON(data)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if len(gotTasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(gotTasks))
	}
	if gotTasks[0].ID != "T1" || gotTasks[0].Duration != 5 {
		t.Errorf("T1 round-tripped wrong: %+v", gotTasks[0])
	}
	if gotTasks[1].ID != "T2" || len(gotTasks[1].Dependencies) != 1 {
		t.Errorf("T2 round-tripped wrong: %+v", gotTasks[1])
	}
	if !gotCal.WorkingDays[2] { // time.Tuesday == 2
		t.Errorf("expected Tuesday to remain a working day")
	}
	exc, ok := gotCal.Exceptions["2026-01-01"]
	if !ok || exc.Working {
		t.Errorf("expected non-working exception on 2026-01-01, got %+v ok=%v", exc, ok)
	}
}

func TestImportJSONDefaultsCalendar(t *testing.T) {
	doc := `{"version":1,"exportedAt":"2026-07-31T00:00:00Z","tasks":[]}`
	_, cal, err := ImportJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if cal == nil || len(cal.WorkingDays) == 0 {
		t.Errorf("expected a default calendar when the document omits one, got %+v", cal)
	}
}

func TestImportJSONInvalid(t *testing.T) {
	if _, _, err := ImportJSON([]byte("not json")); err == nil {
		t.Error("expected an error parsing malformed JSON")
	}
}
