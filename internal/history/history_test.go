package history

import (
	"testing"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func snap(name string) Snapshot {
	tk, _ := task.New("T1", name)
	return Snapshot{Tasks: []*task.Task{tk}, Calendar: calendar.Default()}
}

func TestUndo_RestoresPreImage(t *testing.T) {
	h := New(DefaultCapacity)
	h.Checkpoint(snap("v1"))

	current := snap("v2")
	popped, ok := h.Undo(current)
	if !ok {
		t.Fatal("expected undo to succeed")
	}
	if popped.Tasks[0].Name != "v1" {
		t.Errorf("expected v1, got %s", popped.Tasks[0].Name)
	}
}

func TestUndoThenRedo_RestoresExactState(t *testing.T) {
	h := New(DefaultCapacity)
	h.Checkpoint(snap("v1"))
	current := snap("v2")

	pre, ok := h.Undo(current)
	if !ok {
		t.Fatal("expected undo to succeed")
	}

	post, ok := h.Redo(pre)
	if !ok {
		t.Fatal("expected redo to succeed")
	}
	if post.Tasks[0].Name != "v2" {
		t.Errorf("redo should restore v2, got %s", post.Tasks[0].Name)
	}
}

func TestCheckpoint_TruncatesRedoStack(t *testing.T) {
	h := New(DefaultCapacity)
	h.Checkpoint(snap("v1"))
	h.Undo(snap("v2"))
	if !h.CanRedo() {
		t.Fatal("expected redo to be available after undo")
	}

	h.Checkpoint(snap("v3"))
	if h.CanRedo() {
		t.Error("a new mutation should truncate the redo stack")
	}
}

func TestHistory_BoundedCapacity(t *testing.T) {
	h := New(2)
	h.Checkpoint(snap("v1"))
	h.Checkpoint(snap("v2"))
	h.Checkpoint(snap("v3"))

	current := snap("v4")
	first, ok := h.Undo(current)
	if !ok {
		t.Fatal("expected undo")
	}
	if first.Tasks[0].Name != "v3" {
		t.Errorf("expected v3, got %s", first.Tasks[0].Name)
	}
	second, ok := h.Undo(first)
	if !ok {
		t.Fatal("expected second undo")
	}
	if second.Tasks[0].Name != "v2" {
		t.Errorf("expected v2 (v1 dropped by capacity), got %s", second.Tasks[0].Name)
	}
	if h.CanUndo() {
		t.Error("expected undo stack exhausted at capacity 2")
	}
}

func TestComposite_CollapsesToOneEntry(t *testing.T) {
	h := New(DefaultCapacity)
	h.BeginComposite()
	h.Checkpoint(snap("before-paste"))
	h.Checkpoint(snap("mid-paste")) // should be ignored: composite keeps only the first
	h.EndComposite()

	current := snap("after-paste")
	popped, ok := h.Undo(current)
	if !ok {
		t.Fatal("expected undo")
	}
	if popped.Tasks[0].Name != "before-paste" {
		t.Errorf("expected before-paste, got %s", popped.Tasks[0].Name)
	}
	if h.CanUndo() {
		t.Error("composite should have produced exactly one undo entry")
	}
}

func TestCancelComposite_DiscardsEntry(t *testing.T) {
	h := New(DefaultCapacity)
	h.BeginComposite()
	h.Checkpoint(snap("before-paste"))
	h.CancelComposite()

	if h.CanUndo() {
		t.Error("cancelled composite should not have recorded an undo entry")
	}
}

func TestClone_Independence(t *testing.T) {
	s := snap("v1")
	clone := s.Clone()
	clone.Tasks[0].Name = "mutated"
	clone.Calendar.Exceptions["2024-01-01"] = calendar.Exception{Working: true}

	if s.Tasks[0].Name != "v1" {
		t.Error("mutating clone task affected original")
	}
	if _, ok := s.Calendar.Exceptions["2024-01-01"]; ok {
		t.Error("mutating clone calendar affected original")
	}
}
