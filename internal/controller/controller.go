package controller

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/cpm"
	"github.com/javiermolinar/sancho-schedule/internal/history"
	"github.com/javiermolinar/sancho-schedule/internal/order"
	"github.com/javiermolinar/sancho-schedule/internal/task"
	"github.com/javiermolinar/sancho-schedule/internal/worker"
)

// Position names where Move places a task relative to its target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
	Child  Position = "child"
)

// Variance is the difference between a task's baseline and its
// actual-or-projected dates, in signed working days (spec.md §6
// "calculateVariance").
type Variance struct {
	StartDays  int
	FinishDays int
}

// Persister receives durable-log events for mutations the worker has
// confirmed. internal/store.Store satisfies this; a nil Persister is
// valid and simply means nothing is persisted (e.g. in tests).
type Persister interface {
	AppendTaskCreated(t *task.Task) error
	AppendTaskUpdated(id string, p task.Patch) error
	AppendTaskDeleted(id string)
	AppendCalendarUpdated(cal *calendar.Calendar) error
}

// Controller is the single owner of live (tasks, calendar, stats) state.
// It applies mutations optimistically, forwards them to a worker.Host,
// and either confirms the authoritative result or rolls back to the
// pre-image recorded in its history — grounded on the teacher's
// internal/tui Model/Update message-passing loop, generalized from one
// UI model to several named observable streams (spec.md §4.5).
type Controller struct {
	host    *worker.Host
	hist    *history.History
	persist Persister

	tasksStream *Stream[[]*task.Task]
	calStream   *Stream[*calendar.Calendar]
	statsStream *Stream[cpm.Stats]
	calcStream  *Stream[bool]
	errs        chan error

	mu             sync.Mutex
	tasks          []*task.Task
	cal            *calendar.Calendar
	pendingPatches map[string]*task.Patch
	calcInFlight   bool
}

// New builds a Controller around an already-running worker.Host. The
// caller must have consumed host.Ready() before issuing commands.
// persist may be nil, in which case confirmed mutations are not logged.
func New(host *worker.Host, hist *history.History, persist Persister) *Controller {
	return &Controller{
		host:           host,
		hist:           hist,
		persist:        persist,
		tasksStream:    NewStream[[]*task.Task](nil),
		calStream:      NewStream[*calendar.Calendar](calendar.Default()),
		statsStream:    NewStream(cpm.Stats{}),
		calcStream:     NewStream(false),
		errs:           make(chan error, 16),
		cal:            calendar.Default(),
		pendingPatches: make(map[string]*task.Patch),
	}
}

// Streams returns the observable latest-value containers a renderer
// subscribes to.
func (c *Controller) Tasks() *Stream[[]*task.Task]        { return c.tasksStream }
func (c *Controller) Calendar() *Stream[*calendar.Calendar] { return c.calStream }
func (c *Controller) Stats() *Stream[cpm.Stats]           { return c.statsStream }
func (c *Controller) IsCalculating() *Stream[bool]        { return c.calcStream }

// SetPersister attaches or replaces the Persister after construction —
// needed because internal/store.Store itself takes the Controller as
// its StateProvider, so the two can't be built in a single step.
func (c *Controller) SetPersister(p Persister) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persist = p
}

// CurrentState returns the confirmed (tasks, calendar) pair, satisfying
// internal/store.StateProvider for periodic snapshotting.
func (c *Controller) CurrentState() ([]*task.Task, *calendar.Calendar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks, c.cal
}

// Errors yields asynchronous failures (worker errors that survive a
// rollback) for a host application to surface — errors are never
// silently swallowed (spec.md §4.5).
func (c *Controller) Errors() <-chan error { return c.errs }

func (c *Controller) surface(err error) {
	select {
	case c.errs <- err:
	default:
		// drop rather than block the controller goroutine; the stream's
		// stats/tasks already reflect the rolled-back state.
	}
}

// snapshot returns a history.Snapshot of the controller's current state.
// Caller must hold c.mu.
func (c *Controller) snapshot() history.Snapshot {
	return history.Snapshot{Tasks: c.tasks, Calendar: c.cal}
}

func (c *Controller) publishAll() {
	c.tasksStream.Set(c.tasks)
	c.calStream.Set(c.cal)
}

func (c *Controller) setCalculating(v bool) {
	c.calcStream.Set(v)
}

// commit adopts resp as the new authoritative state. Caller must hold
// c.mu.
func (c *Controller) commit(resp worker.Response) {
	c.tasks = resp.Tasks
	c.statsStream.Set(resp.Stats)
	c.publishAll()
}

// rollback restores pre and surfaces err (or the worker's error
// message) without discarding the history entry already pushed for the
// attempted mutation — spec.md's optimistic-update sequence records the
// pre-image before the outcome of the enqueued command is known.
func (c *Controller) rollback(pre history.Snapshot, resp worker.Response, sendErr error) {
	c.mu.Lock()
	c.tasks = pre.Tasks
	c.cal = pre.Calendar
	c.publishAll()
	c.mu.Unlock()

	if sendErr != nil {
		c.surface(fmt.Errorf("controller: %w", sendErr))
		return
	}
	c.surface(fmt.Errorf("controller: %s", resp.Message))
}

// Initialize seeds the controller with an initial task set and
// calendar (normally loaded from internal/store) and primes the worker.
func (c *Controller) Initialize(ctx context.Context, tasks []*task.Task, cal *calendar.Calendar) error {
	c.mu.Lock()
	c.tasks = tasks
	c.cal = cal
	c.mu.Unlock()
	c.publishAll()

	c.setCalculating(true)
	resp, err := c.host.Send(ctx, worker.Command{Type: worker.Initialize, Tasks: tasks, Calendar: cal})
	c.setCalculating(false)
	if err != nil {
		c.surface(fmt.Errorf("controller: initialize: %w", err))
		return err
	}
	if resp.Type == worker.Error {
		c.surface(fmt.Errorf("controller: initialize: %s", resp.Message))
		return fmt.Errorf("initialize: %s", resp.Message)
	}
	c.mu.Lock()
	c.commit(resp)
	c.mu.Unlock()
	return nil
}

// AddTask appends t, optimistically, then confirms against the worker.
func (c *Controller) AddTask(ctx context.Context, t *task.Task) error {
	c.mu.Lock()
	pre := c.snapshot()
	c.hist.Checkpoint(pre)
	c.tasks = append(append([]*task.Task(nil), c.tasks...), t)
	c.publishAll()
	c.mu.Unlock()

	c.setCalculating(true)
	resp, err := c.host.Send(ctx, worker.Command{Type: worker.AddTask, Task: t})
	c.setCalculating(false)
	if resolveErr := c.resolve(pre, resp, err); resolveErr != nil {
		return resolveErr
	}
	if c.persist != nil {
		if err := c.persist.AppendTaskCreated(t); err != nil {
			c.surface(fmt.Errorf("controller: persisting new task: %w", err))
		}
	}
	return nil
}

// DeleteTask removes id, optimistically, then confirms against the worker.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	c.mu.Lock()
	pre := c.snapshot()
	c.hist.Checkpoint(pre)
	out := make([]*task.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	c.tasks = out
	c.publishAll()
	c.mu.Unlock()

	c.setCalculating(true)
	resp, err := c.host.Send(ctx, worker.Command{Type: worker.DeleteTask, TaskID: id})
	c.setCalculating(false)
	if resolveErr := c.resolve(pre, resp, err); resolveErr != nil {
		return resolveErr
	}
	if c.persist != nil {
		c.persist.AppendTaskDeleted(id)
	}
	return nil
}

// SyncTasks replaces the entire task set, e.g. after a paste or import.
func (c *Controller) SyncTasks(ctx context.Context, tasks []*task.Task) error {
	c.mu.Lock()
	pre := c.snapshot()
	c.hist.Checkpoint(pre)
	c.tasks = tasks
	c.publishAll()
	c.mu.Unlock()

	c.setCalculating(true)
	resp, err := c.host.Send(ctx, worker.Command{Type: worker.SyncTasks, Tasks: tasks})
	c.setCalculating(false)
	return c.resolve(pre, resp, err)
}

// UpdateCalendar replaces the project calendar.
func (c *Controller) UpdateCalendar(ctx context.Context, cal *calendar.Calendar) error {
	c.mu.Lock()
	pre := c.snapshot()
	c.hist.Checkpoint(pre)
	c.cal = cal
	c.publishAll()
	c.mu.Unlock()

	c.setCalculating(true)
	resp, err := c.host.Send(ctx, worker.Command{Type: worker.UpdateCalendar, Calendar: cal})
	c.setCalculating(false)
	if resolveErr := c.resolve(pre, resp, err); resolveErr != nil {
		return resolveErr
	}
	if c.persist != nil {
		if err := c.persist.AppendCalendarUpdated(cal); err != nil {
			c.surface(fmt.Errorf("controller: persisting calendar: %w", err))
		}
	}
	return nil
}

// ForceRecalculate re-runs CPM over the current state. A CALCULATE
// already in flight causes this call to be dropped (spec.md §4.5):
// the in-flight calculation already covers whatever prompted this one.
func (c *Controller) ForceRecalculate(ctx context.Context) error {
	c.mu.Lock()
	if c.calcInFlight {
		c.mu.Unlock()
		return nil
	}
	c.calcInFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.calcInFlight = false
		c.mu.Unlock()
	}()

	c.setCalculating(true)
	resp, err := c.host.Send(ctx, worker.Command{Type: worker.Calculate})
	c.setCalculating(false)

	if err != nil {
		c.surface(fmt.Errorf("controller: recalculate: %w", err))
		return err
	}
	if resp.Type == worker.Error {
		c.surface(fmt.Errorf("controller: recalculate: %s", resp.Message))
		return fmt.Errorf("recalculate: %s", resp.Message)
	}
	c.mu.Lock()
	c.commit(resp)
	c.mu.Unlock()
	return nil
}

// Undo restores the most recently checkpointed state, pushing the
// current state onto the redo stack, and reconciles the worker with the
// restored tasks/calendar (spec.md §4.6). A no-op, returning nil, when
// there is nothing to undo.
func (c *Controller) Undo(ctx context.Context) error {
	c.mu.Lock()
	current := c.snapshot()
	popped, ok := c.hist.Undo(current)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.restore(ctx, popped)
}

// Redo is Undo's inverse.
func (c *Controller) Redo(ctx context.Context) error {
	c.mu.Lock()
	current := c.snapshot()
	popped, ok := c.hist.Redo(current)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.restore(ctx, popped)
}

// CanUndo reports whether Undo would currently do anything.
func (c *Controller) CanUndo() bool { return c.hist.CanUndo() }

// CanRedo reports whether Redo would currently do anything.
func (c *Controller) CanRedo() bool { return c.hist.CanRedo() }

// restore adopts snap as the live state and re-primes the worker over
// it, so CPM outputs (float, critical path) reflect the restored tasks
// rather than whatever the worker last computed.
func (c *Controller) restore(ctx context.Context, snap history.Snapshot) error {
	c.mu.Lock()
	c.tasks = snap.Tasks
	c.cal = snap.Calendar
	c.publishAll()
	c.mu.Unlock()

	c.setCalculating(true)
	resp, err := c.host.Send(ctx, worker.Command{Type: worker.Initialize, Tasks: snap.Tasks, Calendar: snap.Calendar})
	c.setCalculating(false)
	if err != nil {
		c.surface(fmt.Errorf("controller: restore: %w", err))
		return err
	}
	if resp.Type == worker.Error {
		c.surface(fmt.Errorf("controller: restore: %s", resp.Message))
		return fmt.Errorf("restore: %s", resp.Message)
	}
	c.mu.Lock()
	c.commit(resp)
	c.mu.Unlock()
	return nil
}

// resolve applies the worker's verdict for any single-shot mutation:
// commit the authoritative result, or roll back to pre on failure.
func (c *Controller) resolve(pre history.Snapshot, resp worker.Response, sendErr error) error {
	if sendErr != nil || resp.Type == worker.Error {
		c.rollback(pre, resp, sendErr)
		if sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("%s", resp.Message)
	}
	c.mu.Lock()
	c.commit(resp)
	c.mu.Unlock()
	return nil
}

// UpdateTask patches the task identified by id. Successive calls for
// the same id while one is still in flight are coalesced into a single
// outstanding command — grounded on the teacher's internal/tui
// slotstate.go, which merges successive in-flight intents before
// committing rather than applying each one individually.
func (c *Controller) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	c.mu.Lock()
	if existing, inFlight := c.pendingPatches[id]; inFlight {
		// Merge into a fresh copy so flushUpdate sees a different pointer
		// and loops to send the merged patch.
		merged := *existing
		mergePatch(&merged, patch)
		c.pendingPatches[id] = &merged
		c.mu.Unlock()
		return nil
	}
	p := patch
	c.pendingPatches[id] = &p
	c.mu.Unlock()

	return c.flushUpdate(ctx, id)
}

// flushUpdate drives one id's pending patch to completion, looping if
// further patches were coalesced in while the command was in flight.
func (c *Controller) flushUpdate(ctx context.Context, id string) error {
	for {
		c.mu.Lock()
		p, ok := c.pendingPatches[id]
		c.mu.Unlock()
		if !ok {
			return nil
		}

		c.mu.Lock()
		pre := c.snapshot()
		c.hist.Checkpoint(pre)
		idx := indexOfID(c.tasks, id)
		if idx >= 0 {
			tasks := append([]*task.Task(nil), c.tasks...)
			tasks[idx] = tasks[idx].Clone()
			tasks[idx].Apply(*p)
			c.tasks = tasks
		}
		c.publishAll()
		c.mu.Unlock()

		c.setCalculating(true)
		resp, sendErr := c.host.Send(ctx, worker.Command{Type: worker.UpdateTask, TaskID: id, Patch: *p})
		c.setCalculating(false)

		c.mu.Lock()
		stillSame := c.pendingPatches[id] == p
		if stillSame {
			delete(c.pendingPatches, id)
		}
		c.mu.Unlock()

		if sendErr != nil || resp.Type == worker.Error {
			c.rollback(pre, resp, sendErr)
			if stillSame {
				if sendErr != nil {
					return sendErr
				}
				return fmt.Errorf("%s", resp.Message)
			}
			continue // a newer patch arrived: retry with it even though this one failed
		}

		c.mu.Lock()
		c.commit(resp)
		c.mu.Unlock()

		if c.persist != nil {
			if err := c.persist.AppendTaskUpdated(id, *p); err != nil {
				c.surface(fmt.Errorf("controller: persisting update: %w", err))
			}
		}

		if stillSame {
			return nil
		}
		// a patch was coalesced in while this one was in flight: flush it too
	}
}

// mergePatch folds the fields of next into base, field by field, so
// the base reflects the most recently requested value per field.
func mergePatch(base *task.Patch, next task.Patch) {
	if next.Name != nil {
		base.Name = next.Name
	}
	if next.Duration != nil {
		base.Duration = next.Duration
	}
	if next.Start != nil {
		base.Start = next.Start
	}
	if next.End != nil {
		base.End = next.End
	}
	if next.Dependencies != nil {
		base.Dependencies = next.Dependencies
	}
	if next.ConstraintType != nil {
		base.ConstraintType = next.ConstraintType
	}
	if next.ConstraintDate != nil {
		base.ConstraintDate = next.ConstraintDate
	}
	if next.SchedulingMode != nil {
		base.SchedulingMode = next.SchedulingMode
	}
	if next.ParentID != nil {
		base.ParentID = next.ParentID
	}
	if next.SortKey != nil {
		base.SortKey = next.SortKey
	}
	if next.RowType != nil {
		base.RowType = next.RowType
	}
	if next.Progress != nil {
		base.Progress = next.Progress
	}
}

func indexOfID(tasks []*task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// GetTask returns the task with the given id, or nil if none exists.
func (c *Controller) GetTask(id string) *task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// GetChildren returns the direct children of id, ordered by sortKey.
func (c *Controller) GetChildren(id string) []*task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*task.Task
	for _, t := range c.tasks {
		if t.ParentID != nil && *t.ParentID == id {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out
}

// GetVisibleRowNumber returns t's 1-based position among the currently
// visible rows: a depth-first, sortKey-ordered walk of the hierarchy
// starting at the roots. Collapsed/hidden rows are a renderer-side
// concern outside the core (spec.md §6), so this always numbers every
// row — renderers filter the result for collapsed subtrees themselves.
func (c *Controller) GetVisibleRowNumber(t *task.Task) int {
	c.mu.Lock()
	rowOrder := visibleOrder(c.tasks)
	c.mu.Unlock()
	for i, id := range rowOrder {
		if id == t.ID {
			return i + 1
		}
	}
	return 0
}

// VisibleTasks returns every task in depth-first, sortKey order — the
// same walk GetVisibleRowNumber numbers against, exposed directly for
// renderers that print the whole tree rather than looking up one row.
func (c *Controller) VisibleTasks() []*task.Task {
	c.mu.Lock()
	tasks := c.tasks
	order := visibleOrder(tasks)
	c.mu.Unlock()

	byID := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	out := make([]*task.Task, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

func visibleOrder(tasks []*task.Task) []string {
	children := make(map[string][]*task.Task)
	var roots []*task.Task
	for _, t := range tasks {
		if t.ParentID == nil {
			roots = append(roots, t)
		} else {
			children[*t.ParentID] = append(children[*t.ParentID], t)
		}
	}
	sortBySortKey := func(ts []*task.Task) {
		sort.Slice(ts, func(i, j int) bool { return ts[i].SortKey < ts[j].SortKey })
	}
	sortBySortKey(roots)
	for k := range children {
		sortBySortKey(children[k])
	}

	var out []string
	var walk func(ts []*task.Task)
	walk = func(ts []*task.Task) {
		for _, t := range ts {
			out = append(out, t.ID)
			walk(children[t.ID])
		}
	}
	walk(roots)
	return out
}

// CalculateVariance reports the signed working-day difference between
// t's baseline dates and its actual (if recorded) or projected dates.
// A task with no baseline recorded has zero variance by definition.
func (c *Controller) CalculateVariance(t *task.Task) (Variance, error) {
	if t.BaselineStart == nil || t.BaselineFinish == nil {
		return Variance{}, nil
	}
	c.mu.Lock()
	cal := c.cal
	c.mu.Unlock()

	startDate := t.ActualStart
	if startDate == nil {
		startDate = t.Start
	}
	finishDate := t.ActualFinish
	if finishDate == nil {
		finishDate = t.End
	}
	if startDate == nil || finishDate == nil {
		return Variance{}, nil
	}

	baseStart, err := calendar.ParseDate(*t.BaselineStart)
	if err != nil {
		return Variance{}, err
	}
	baseFinish, err := calendar.ParseDate(*t.BaselineFinish)
	if err != nil {
		return Variance{}, err
	}
	curStart, err := calendar.ParseDate(*startDate)
	if err != nil {
		return Variance{}, err
	}
	curFinish, err := calendar.ParseDate(*finishDate)
	if err != nil {
		return Variance{}, err
	}

	return Variance{
		StartDays:  cal.WorkDaysDifference(baseStart, curStart),
		FinishDays: cal.WorkDaysDifference(baseFinish, curFinish),
	}, nil
}

// Indent makes id a child of its immediately preceding sibling,
// appended at the end of that sibling's children (spec.md §6 "indent").
func (c *Controller) Indent(ctx context.Context, id string) error {
	c.mu.Lock()
	t := c.findTask(id)
	if t == nil {
		c.mu.Unlock()
		return fmt.Errorf("controller: indent: unknown task %q", id)
	}
	siblings := c.siblingsOf(t)
	var newParent *string
	for i, s := range siblings {
		if s.ID == id && i > 0 {
			prev := siblings[i-1].ID
			newParent = &prev
			break
		}
	}
	c.mu.Unlock()
	if newParent == nil {
		return fmt.Errorf("controller: indent: %q has no preceding sibling to become a child of", id)
	}

	c.mu.Lock()
	lastChild := lastSortKey(c.tasks, *newParent)
	c.mu.Unlock()
	sortKey := order.GenerateAppendKey(lastChild)

	return c.UpdateTask(ctx, id, task.Patch{ParentID: newParent, SortKey: &sortKey})
}

// Outdent moves id up one level, placing it immediately after its
// current parent among the parent's own siblings (spec.md §6 "outdent").
func (c *Controller) Outdent(ctx context.Context, id string) error {
	c.mu.Lock()
	t := c.findTask(id)
	if t == nil || t.ParentID == nil {
		c.mu.Unlock()
		return fmt.Errorf("controller: outdent: %q has no parent to outdent from", id)
	}
	parent := c.findTask(*t.ParentID)
	c.mu.Unlock()
	if parent == nil {
		return fmt.Errorf("controller: outdent: dangling parent for %q", id)
	}

	c.mu.Lock()
	nextKey := nextSiblingKey(c.tasks, parent)
	c.mu.Unlock()
	sortKey, err := order.GenerateBetween(&parent.SortKey, nextKey)
	if err != nil {
		return fmt.Errorf("controller: outdent: %w", err)
	}

	return c.UpdateTask(ctx, id, task.Patch{ParentID: parent.ParentID, SortKey: &sortKey})
}

// Move relocates ids relative to targetID. position Before/After places
// them as targetId's sibling; Child appends them under targetId. Every
// id is processed in the given order so relative order is preserved
// among the moved set (spec.md §6 "move").
func (c *Controller) Move(ctx context.Context, ids []string, targetID string, position Position) error {
	c.hist.BeginComposite()
	var firstErr error
	for _, id := range ids {
		if err := c.moveOne(ctx, id, targetID, position); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	// EndComposite unconditionally: any ids that did move left a
	// pre-image as the composite's base, which must stay undoable even
	// if a later id in the batch failed. If nothing moved, the history
	// package records no entry (see History.EndComposite).
	c.hist.EndComposite()
	return firstErr
}

func (c *Controller) moveOne(ctx context.Context, id, targetID string, position Position) error {
	c.mu.Lock()
	target := c.findTask(targetID)
	if target == nil {
		c.mu.Unlock()
		return fmt.Errorf("controller: move: unknown target %q", targetID)
	}

	var parentID *string
	var sortKey string
	var err error
	switch position {
	case Child:
		parentID = &target.ID
		last := lastSortKey(c.tasks, targetID)
		sortKey = order.GenerateAppendKey(last)
	case Before:
		parentID = target.ParentID
		prev := prevSiblingKey(c.tasks, target)
		sortKey, err = order.GenerateBetween(prev, &target.SortKey)
	case After:
		parentID = target.ParentID
		next := nextSiblingKey(c.tasks, target)
		sortKey, err = order.GenerateBetween(&target.SortKey, next)
	default:
		err = fmt.Errorf("controller: move: unknown position %q", position)
	}
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("controller: move: %w", err)
	}

	return c.UpdateTask(ctx, id, task.Patch{ParentID: parentID, SortKey: &sortKey})
}

// findTask looks up a task by id. Caller must hold c.mu.
func (c *Controller) findTask(id string) *task.Task {
	for _, t := range c.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// siblingsOf returns t and its siblings (same parentId), sortKey-ordered.
// Caller must hold c.mu.
func (c *Controller) siblingsOf(t *task.Task) []*task.Task {
	var out []*task.Task
	for _, other := range c.tasks {
		if samePtr(other.ParentID, t.ParentID) {
			out = append(out, other)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// lastSortKey returns the sortKey of the last child of parentID, or nil
// if it has none. Caller must hold c.mu.
func lastSortKey(tasks []*task.Task, parentID string) *string {
	var last *string
	for _, t := range tasks {
		if t.ParentID != nil && *t.ParentID == parentID {
			if last == nil || t.SortKey > *last {
				k := t.SortKey
				last = &k
			}
		}
	}
	return last
}

// nextSiblingKey returns the sortKey of the sibling immediately after t
// among tasks sharing t's parentId, or nil if t is last. Caller must
// hold c.mu.
func nextSiblingKey(tasks []*task.Task, t *task.Task) *string {
	var best *string
	for _, other := range tasks {
		if other.ID == t.ID || !samePtr(other.ParentID, t.ParentID) {
			continue
		}
		if other.SortKey > t.SortKey && (best == nil || other.SortKey < *best) {
			k := other.SortKey
			best = &k
		}
	}
	return best
}

// prevSiblingKey returns the sortKey of the sibling immediately before
// t among tasks sharing t's parentId, or nil if t is first. Caller must
// hold c.mu.
func prevSiblingKey(tasks []*task.Task, t *task.Task) *string {
	var best *string
	for _, other := range tasks {
		if other.ID == t.ID || !samePtr(other.ParentID, t.ParentID) {
			continue
		}
		if other.SortKey < t.SortKey && (best == nil || other.SortKey > *best) {
			k := other.SortKey
			best = &k
		}
	}
	return best
}
