// Package history implements bounded undo/redo over (tasks, calendar)
// snapshots: a capped stack of pre-images, with composite grouping for
// multi-task operations like paste (spec.md §4.6).
package history

import (
	"sync"
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// DefaultCapacity is the default bound on the undo stack.
const DefaultCapacity = 50

// Snapshot is a point-in-time copy of the state the controller owns.
type Snapshot struct {
	Tasks    []*task.Task
	Calendar *calendar.Calendar
}

// Clone returns a deep copy, safe to store independent of further
// mutation of s's originals.
func (s Snapshot) Clone() Snapshot {
	tasks := make([]*task.Task, len(s.Tasks))
	for i, t := range s.Tasks {
		tasks[i] = t.Clone()
	}
	return Snapshot{Tasks: tasks, Calendar: cloneCalendar(s.Calendar)}
}

func cloneCalendar(cal *calendar.Calendar) *calendar.Calendar {
	if cal == nil {
		return nil
	}
	wd := make(map[time.Weekday]bool, len(cal.WorkingDays))
	for k, v := range cal.WorkingDays {
		wd[k] = v
	}
	exc := make(map[string]calendar.Exception, len(cal.Exceptions))
	for k, v := range cal.Exceptions {
		exc[k] = v
	}
	return &calendar.Calendar{WorkingDays: wd, Exceptions: exc}
}

// History is a bounded undo stack plus an unbounded redo stack, with
// support for grouping several checkpoints into one composite entry.
type History struct {
	mu       sync.Mutex
	capacity int
	undo     []Snapshot
	redo     []Snapshot

	compositeActive bool
	compositeBase   *Snapshot
}

// New returns a History bounded at capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{capacity: capacity}
}

// Checkpoint records snap as a pre-image before a mutation. Inside a
// composite, only the first checkpoint of the group is kept — the whole
// composite collapses to one undo entry.
func (h *History) Checkpoint(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.compositeActive {
		if h.compositeBase == nil {
			c := snap.Clone()
			h.compositeBase = &c
		}
		return
	}
	h.push(snap.Clone())
}

func (h *History) push(snap Snapshot) {
	h.undo = append(h.undo, snap)
	if len(h.undo) > h.capacity {
		h.undo = h.undo[len(h.undo)-h.capacity:]
	}
	h.redo = nil
}

// BeginComposite starts grouping subsequent Checkpoint calls into a
// single undo entry.
func (h *History) BeginComposite() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.compositeActive = true
	h.compositeBase = nil
}

// EndComposite closes the group, pushing its base pre-image (if any
// checkpoint occurred) as a single undo entry.
func (h *History) EndComposite() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.compositeActive = false
	if h.compositeBase != nil {
		base := *h.compositeBase
		h.compositeBase = nil
		h.push(base)
	}
}

// CancelComposite discards an in-progress composite without recording
// an undo entry — used when a rollback aborts a multi-step mutation.
func (h *History) CancelComposite() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.compositeActive = false
	h.compositeBase = nil
}

// Undo pops the most recent entry, pushes current onto the redo stack,
// and returns the popped pre-image for the caller to restore. ok is
// false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}
	popped := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	return popped, true
}

// Redo is Undo's inverse: it pops the most recent redo entry, pushes
// current back onto the (capacity-bounded) undo stack, and returns the
// popped state.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}
	popped := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())
	if len(h.undo) > h.capacity {
		h.undo = h.undo[len(h.undo)-h.capacity:]
	}
	return popped, true
}

// CanUndo reports whether Undo would currently succeed.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether Redo would currently succeed.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}
