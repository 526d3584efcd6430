// Package task defines the core domain types scheduled by the CPM engine.
package task

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrEmptyID          = errors.New("task id cannot be empty")
	ErrDuplicateID      = errors.New("duplicate task id")
	ErrUnknownPredecessor = errors.New("predecessor references an unknown task")
	ErrSelfDependency   = errors.New("task cannot depend on itself")
	ErrCyclicDependency = errors.New("dependency graph contains a cycle")
	ErrCyclicHierarchy  = errors.New("parent hierarchy contains a cycle")
	ErrUnknownParent    = errors.New("parentId references an unknown task")
	ErrInvalidLinkType  = errors.New("invalid dependency link type")
	ErrInvalidConstraint = errors.New("invalid constraint type")
)

// LinkType is the relationship between a predecessor and a successor task.
type LinkType string

const (
	FS LinkType = "FS" // finish-to-start
	SS LinkType = "SS" // start-to-start
	FF LinkType = "FF" // finish-to-finish
	SF LinkType = "SF" // start-to-finish
)

// Valid reports whether l is one of the four recognized link types.
func (l LinkType) Valid() bool {
	switch l {
	case FS, SS, FF, SF:
		return true
	default:
		return false
	}
}

// ConstraintType bounds a task's start or finish date.
type ConstraintType string

const (
	ASAP ConstraintType = "ASAP"
	SNET ConstraintType = "SNET" // start no earlier than
	SNLT ConstraintType = "SNLT" // start no later than
	FNET ConstraintType = "FNET" // finish no earlier than
	FNLT ConstraintType = "FNLT" // finish no later than
	MFO  ConstraintType = "MFO"  // must finish on
)

// Valid reports whether c is one of the six recognized constraint types.
func (c ConstraintType) Valid() bool {
	switch c {
	case ASAP, SNET, SNLT, FNET, FNLT, MFO:
		return true
	default:
		return false
	}
}

// SchedulingMode determines whether the engine may recompute a task's dates.
type SchedulingMode string

const (
	Auto   SchedulingMode = "auto"
	Manual SchedulingMode = "manual"
)

// RowType distinguishes tasks participating in scheduling from layout rows.
type RowType string

const (
	RowTask    RowType = "task"
	RowBlank   RowType = "blank"
	RowPhantom RowType = "phantom"
)

// Scheduled reports whether rows of this type take part in CPM calculation.
func (r RowType) Scheduled() bool {
	return r == RowTask || r == ""
}

// Dependency is a single predecessor link with its type and lag.
type Dependency struct {
	PredecessorID string   `json:"predecessorId"`
	Type          LinkType `json:"linkType"`
	Lag           int      `json:"lag"`
}

// Task is the unit of scheduling.
type Task struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	Start    *string `json:"start"`
	End      *string `json:"end"`

	Dependencies   []Dependency   `json:"dependencies"`
	ConstraintType ConstraintType `json:"constraintType"`
	ConstraintDate *string        `json:"constraintDate"`
	SchedulingMode SchedulingMode `json:"schedulingMode"`

	ParentID *string `json:"parentId"`
	SortKey  string  `json:"sortKey"`
	RowType  RowType `json:"rowType"`

	Progress          int     `json:"progress"`
	ActualStart       *string `json:"actualStart"`
	ActualFinish      *string `json:"actualFinish"`
	RemainingDuration *int    `json:"remainingDuration"`
	BaselineStart     *string `json:"baselineStart"`
	BaselineFinish    *string `json:"baselineFinish"`
	BaselineDuration  *int    `json:"baselineDuration"`

	// Calculated outputs, rewritten by every CPM pass. Never user-edited.
	EarlyStart  *string `json:"earlyStart"`
	EarlyFinish *string `json:"earlyFinish"`
	LateStart   *string `json:"lateStart"`
	LateFinish  *string `json:"lateFinish"`
	TotalFloat  int     `json:"totalFloat"`
	FreeFloat   int     `json:"freeFloat"`
	IsCritical  bool    `json:"isCritical"`
	Health      string  `json:"health"`
}

// New creates a Task with the given id and name, defaulting every other
// field to its scheduling-neutral value (ASAP/Auto/task row, zero duration).
// Validation of cross-task invariants (unique id, acyclic graphs) is the
// caller's responsibility — see ValidateSet.
func New(id, name string) (*Task, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	return &Task{
		ID:             id,
		Name:           name,
		ConstraintType: ASAP,
		SchedulingMode: Auto,
		RowType:        RowTask,
	}, nil
}

// Clone returns a deep copy of t, safe to mutate without affecting t.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.Dependencies = append([]Dependency(nil), t.Dependencies...)
	c.Start = clonePtr(t.Start)
	c.End = clonePtr(t.End)
	c.ConstraintDate = clonePtr(t.ConstraintDate)
	c.ActualStart = clonePtr(t.ActualStart)
	c.ActualFinish = clonePtr(t.ActualFinish)
	c.BaselineStart = clonePtr(t.BaselineStart)
	c.BaselineFinish = clonePtr(t.BaselineFinish)
	c.EarlyStart = clonePtr(t.EarlyStart)
	c.EarlyFinish = clonePtr(t.EarlyFinish)
	c.LateStart = clonePtr(t.LateStart)
	c.LateFinish = clonePtr(t.LateFinish)
	if t.RemainingDuration != nil {
		v := *t.RemainingDuration
		c.RemainingDuration = &v
	}
	if t.BaselineDuration != nil {
		v := *t.BaselineDuration
		c.BaselineDuration = &v
	}
	return &c
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Patch carries a partial update: only non-nil fields are applied. It is
// the payload UPDATE_TASK commands and controller.UpdateTask carry,
// mirroring how the store layer merges partial JSON documents.
type Patch struct {
	Name           *string        `json:"name,omitempty"`
	Duration       *int           `json:"duration,omitempty"`
	Start          *string        `json:"start,omitempty"`
	End            *string        `json:"end,omitempty"`
	Dependencies   *[]Dependency  `json:"dependencies,omitempty"`
	ConstraintType *ConstraintType `json:"constraintType,omitempty"`
	ConstraintDate *string        `json:"constraintDate,omitempty"`
	SchedulingMode *SchedulingMode `json:"schedulingMode,omitempty"`
	ParentID       *string        `json:"parentId,omitempty"`
	SortKey        *string        `json:"sortKey,omitempty"`
	RowType        *RowType       `json:"rowType,omitempty"`
	Progress       *int           `json:"progress,omitempty"`
}

// Apply merges non-nil fields of p into t in place.
func (t *Task) Apply(p Patch) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Start != nil {
		t.Start = p.Start
	}
	if p.End != nil {
		t.End = p.End
	}
	if p.Dependencies != nil {
		t.Dependencies = *p.Dependencies
	}
	if p.ConstraintType != nil {
		t.ConstraintType = *p.ConstraintType
	}
	if p.ConstraintDate != nil {
		t.ConstraintDate = p.ConstraintDate
	}
	if p.SchedulingMode != nil {
		t.SchedulingMode = *p.SchedulingMode
	}
	if p.ParentID != nil {
		t.ParentID = p.ParentID
	}
	if p.SortKey != nil {
		t.SortKey = *p.SortKey
	}
	if p.RowType != nil {
		t.RowType = *p.RowType
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
}

// IsParent reports whether id is referenced as a parentId by any task in tasks.
func IsParent(tasks []*Task, id string) bool {
	for _, t := range tasks {
		if t.ParentID != nil && *t.ParentID == id {
			return true
		}
	}
	return false
}

// IsLeaf reports whether the task has no children in the given set.
func (t *Task) IsLeaf(tasks []*Task) bool {
	return !IsParent(tasks, t.ID)
}

// Scheduled reports whether this task participates in CPM calculation —
// blank and phantom rows are excluded.
func (t *Task) Scheduled() bool {
	return t.RowType.Scheduled()
}

// IsManual reports whether the engine must leave this task's dates untouched.
func (t *Task) IsManual() bool {
	return t.SchedulingMode == Manual
}

// ValidateSet checks the structural invariants spec.md §3 requires across a
// whole task collection: unique non-empty ids, parent references that
// resolve, no self-dependency, valid link and constraint types, and
// acyclic hierarchy/dependency graphs. A predecessor id that names no task
// in the set is not rejected; cycle detection skips it. It does not run CPM.
func ValidateSet(tasks []*Task) error {
	byID := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			return ErrEmptyID
		}
		if _, dup := byID[t.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		byID[t.ID] = t
	}

	for _, t := range tasks {
		if t.ParentID != nil {
			if _, ok := byID[*t.ParentID]; !ok {
				return fmt.Errorf("%w: task %s parent %s", ErrUnknownParent, t.ID, *t.ParentID)
			}
			if *t.ParentID == t.ID {
				return fmt.Errorf("%w: task %s", ErrCyclicHierarchy, t.ID)
			}
		}
		for _, d := range t.Dependencies {
			if d.PredecessorID == t.ID {
				return fmt.Errorf("%w: task %s", ErrSelfDependency, t.ID)
			}
			if !d.Type.Valid() {
				return fmt.Errorf("%w: %s on task %s", ErrInvalidLinkType, d.Type, t.ID)
			}
		}
		if t.ConstraintType != "" && !t.ConstraintType.Valid() {
			return fmt.Errorf("%w: %s on task %s", ErrInvalidConstraint, t.ConstraintType, t.ID)
		}
	}

	if err := checkHierarchyAcyclic(tasks); err != nil {
		return err
	}
	if err := checkDependenciesAcyclic(tasks, byID); err != nil {
		return err
	}
	return nil
}

func checkHierarchyAcyclic(tasks []*Task) error {
	parentOf := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if t.ParentID != nil {
			parentOf[t.ID] = *t.ParentID
		}
	}
	for _, t := range tasks {
		seen := map[string]bool{t.ID: true}
		cur := t.ID
		for {
			p, ok := parentOf[cur]
			if !ok {
				break
			}
			if seen[p] {
				return fmt.Errorf("%w: starting at %s", ErrCyclicHierarchy, t.ID)
			}
			seen[p] = true
			cur = p
		}
	}
	return nil
}

func checkDependenciesAcyclic(tasks []*Task, byID map[string]*Task) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(tasks))
	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		t := byID[id]
		if t != nil {
			for _, d := range t.Dependencies {
				if _, ok := byID[d.PredecessorID]; !ok {
					continue // malformed reference: skipped, not fatal (spec.md §4.3/§7)
				}
				switch color[d.PredecessorID] {
				case white:
					if err := visit(d.PredecessorID); err != nil {
						return err
					}
				case gray:
					return fmt.Errorf("%w: involving %s", ErrCyclicDependency, id)
				}
			}
		}
		color[id] = black
		return nil
	}
	for _, t := range tasks {
		if color[t.ID] == white {
			if err := visit(t.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
