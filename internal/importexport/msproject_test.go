package importexport

import (
	"strings"
	"testing"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func TestExportImportMSProjectXMLRoundTrip(t *testing.T) {
	parent, err := task.New("P1", "Site work")
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	parent.Duration = 10

	child, err := task.New("T1", "Excavate")
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	child.Duration = 4
	child.ParentID = strPtr("P1")
	child.ConstraintType = task.SNET
	cdate := "2026-08-03"
	child.ConstraintDate = &cdate

	dependent, err := task.New("T2", "Pour footings")
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	dependent.Duration = 3
	dependent.ParentID = strPtr("P1")
	dependent.Dependencies = []task.Dependency{{PredecessorID: "T1", Type: task.FS, Lag: 1}}

	cal := calendar.Default()
	cal.Exceptions["2026-08-05"] = calendar.Exception{Working: false}

	tasks := []*task.Task{parent, child, dependent}
	data, err := ExportMSProjectXML(tasks, cal)
	if err != nil {
		t.Fatalf("ExportMSProjectXML: %v", err)
	}
	if !strings.Contains(string(data), "<Project>") {
		t.Fatalf("expected a <Project> root element, got:\n%s", data)
	}

	gotTasks, gotCal, err := ImportMSProjectXML(data)
	if err != nil {
		t.Fatalf("ImportMSProjectXML: %v", err)
	}
	if len(gotTasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(gotTasks))
	}

	byID := make(map[string]*task.Task, len(gotTasks))
	for _, gt := range gotTasks {
		byID[gt.ID] = gt
	}

	gotChild := byID["T1"]
	if gotChild == nil {
		t.Fatal("missing T1 after round-trip")
	}
	if gotChild.ParentID == nil || *gotChild.ParentID != "P1" {
		t.Errorf("expected T1's parent to be P1, got %+v", gotChild.ParentID)
	}
	if gotChild.Duration != 4 {
		t.Errorf("expected T1 duration 4, got %d", gotChild.Duration)
	}
	if gotChild.ConstraintType != task.SNET {
		t.Errorf("expected T1 constraint SNET, got %v", gotChild.ConstraintType)
	}

	gotDependent := byID["T2"]
	if gotDependent == nil {
		t.Fatal("missing T2 after round-trip")
	}
	if len(gotDependent.Dependencies) != 1 || gotDependent.Dependencies[0].PredecessorID != "T1" {
		t.Errorf("expected T2 to depend on T1, got %+v", gotDependent.Dependencies)
	}
	if gotDependent.Dependencies[0].Lag != 1 {
		t.Errorf("expected lag 1 to round-trip, got %d", gotDependent.Dependencies[0].Lag)
	}

	exc, ok := gotCal.Exceptions["2026-08-05"]
	if !ok || exc.Working {
		t.Errorf("expected a non-working exception on 2026-08-05, got %+v ok=%v", exc, ok)
	}
}

func TestConstraintCodeMapping(t *testing.T) {
	// ALAP (1) has no equivalent and degrades to ASAP.
	if got := constraintCodeToType[1]; got != task.ASAP {
		t.Errorf("ALAP(1) should degrade to ASAP, got %v", got)
	}
	// MSO (2) has no equivalent and degrades to SNET.
	if got := constraintCodeToType[2]; got != task.SNET {
		t.Errorf("MSO(2) should degrade to SNET, got %v", got)
	}
}

func TestDurationLagConversion(t *testing.T) {
	if got := minutesToWorkDays(workDaysToMinutes(5)); got != 5 {
		t.Errorf("5 work days round-tripped to %d", got)
	}
	if got := lagTenthsToWorkDays(workDaysToLagTenths(2)); got != 2 {
		t.Errorf("2 work days of lag round-tripped to %d", got)
	}
	if got, err := parseXMLDuration("PT40H0M0S"); err != nil || got != 40*60 {
		t.Errorf("parseXMLDuration(PT40H0M0S) = %d, %v", got, err)
	}
	if got := formatXMLDuration(40 * 60); got != "PT40H0M0S" {
		t.Errorf("formatXMLDuration(2400) = %q", got)
	}
}

func TestParseXMLDurationInvalid(t *testing.T) {
	if _, err := parseXMLDuration("not-a-duration"); err == nil {
		t.Error("expected an error for a malformed plain-number duration")
	}
}

func strPtr(s string) *string { return &s }
