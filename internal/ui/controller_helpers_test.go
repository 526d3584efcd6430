package ui

import (
	"context"
	"testing"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/controller"
	"github.com/javiermolinar/sancho-schedule/internal/history"
	"github.com/javiermolinar/sancho-schedule/internal/order"
	"github.com/javiermolinar/sancho-schedule/internal/task"
	"github.com/javiermolinar/sancho-schedule/internal/worker"
)

func newTestController(t *testing.T) *controller.Controller {
	t.Helper()
	h := worker.NewHost()
	<-h.Ready()
	ctrl := controller.New(h, history.New(history.DefaultCapacity), nil)
	if err := ctrl.Initialize(context.Background(), nil, calendar.Default()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return ctrl
}

func addTestTask(t *testing.T, ctrl *controller.Controller, id, parentID string) *task.Task {
	t.Helper()
	tk, err := task.New(id, id)
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	tk.Duration = 1
	if parentID != "" {
		p := parentID
		tk.ParentID = &p
	}
	last := lastChildSortKey(ctrl, parentID)
	tk.SortKey = order.GenerateAppendKey(last)
	if err := ctrl.AddTask(context.Background(), tk); err != nil {
		t.Fatalf("AddTask(%s): %v", id, err)
	}
	return tk
}

func TestDepthOf(t *testing.T) {
	ctrl := newTestController(t)
	addTestTask(t, ctrl, "root", "")
	addTestTask(t, ctrl, "child", "root")
	addTestTask(t, ctrl, "grandchild", "child")

	if got := depthOf(ctrl, "root"); got != 0 {
		t.Errorf("depthOf(root) = %d, want 0", got)
	}
	if got := depthOf(ctrl, "child"); got != 1 {
		t.Errorf("depthOf(child) = %d, want 1", got)
	}
	if got := depthOf(ctrl, "grandchild"); got != 2 {
		t.Errorf("depthOf(grandchild) = %d, want 2", got)
	}
}

func TestLastChildSortKey(t *testing.T) {
	ctrl := newTestController(t)
	if got := lastChildSortKey(ctrl, ""); got != nil {
		t.Fatalf("expected nil last sort key for an empty task set, got %v", got)
	}

	addTestTask(t, ctrl, "A", "")
	firstKey := lastChildSortKey(ctrl, "")
	if firstKey == nil {
		t.Fatal("expected a sort key after adding one root task")
	}

	addTestTask(t, ctrl, "B", "")
	secondKey := lastChildSortKey(ctrl, "")
	if secondKey == nil || *secondKey <= *firstKey {
		t.Errorf("expected the second append's sort key (%v) to sort after the first (%v)", secondKey, firstKey)
	}

	// A child under "A" shouldn't affect root-level lookups.
	addTestTask(t, ctrl, "A1", "A")
	if got := lastChildSortKey(ctrl, ""); got == nil || *got != *secondKey {
		t.Errorf("adding a child of A changed the root-level last sort key: got %v, want %v", got, secondKey)
	}
}
