package ui

import (
	"context"
	"testing"

	"github.com/javiermolinar/sancho-schedule/internal/llm"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return &App{ctrl: newTestController(t)}
}

func TestApplyPlan_ResolvesPlaceholderDependencies(t *testing.T) {
	a := newTestApp(t)

	planned := []llm.PlannedTask{
		{ID: "T1", Name: "Pour foundation", DurationDays: 5},
		{ID: "T2", Name: "Frame walls", DurationDays: 3, DependsOn: []string{"T1"}},
	}

	added, err := a.applyPlan(context.Background(), planned)
	if err != nil {
		t.Fatalf("applyPlan: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("got %d tasks, want 2", len(added))
	}
	if added[0].ID == added[1].ID {
		t.Fatalf("expected distinct generated ids, got %q twice", added[0].ID)
	}
	if len(added[1].Dependencies) != 1 || added[1].Dependencies[0].PredecessorID != added[0].ID {
		t.Errorf("frame walls should depend on the generated id for T1, got %+v", added[1].Dependencies)
	}
}

func TestApplyPlan_DependsOnExistingTask(t *testing.T) {
	a := newTestApp(t)
	existing := addTestTask(t, a.ctrl, "existing-1", "")

	planned := []llm.PlannedTask{
		{ID: "T1", Name: "Paint walls", DurationDays: 2, DependsOn: []string{existing.ID}},
	}

	added, err := a.applyPlan(context.Background(), planned)
	if err != nil {
		t.Fatalf("applyPlan: %v", err)
	}
	if len(added[0].Dependencies) != 1 || added[0].Dependencies[0].PredecessorID != existing.ID {
		t.Errorf("expected dependency on existing task %q, got %+v", existing.ID, added[0].Dependencies)
	}
}
