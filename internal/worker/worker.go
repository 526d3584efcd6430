// Package worker hosts a single CPM engine instance behind a serialized
// command queue: one goroutine, one owner of the task/calendar state,
// every command processed to completion before the next begins. Two
// logical threads (controller, worker) talk only by copy-value message
// passing over a channel — no shared mutable memory (spec.md §4.4).
package worker

import (
	"context"
	"fmt"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/cpm"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// CommandType names one of the host's supported operations.
type CommandType string

const (
	Initialize     CommandType = "INITIALIZE"
	AddTask        CommandType = "ADD_TASK"
	UpdateTask     CommandType = "UPDATE_TASK"
	DeleteTask     CommandType = "DELETE_TASK"
	SyncTasks      CommandType = "SYNC_TASKS"
	UpdateCalendar CommandType = "UPDATE_CALENDAR"
	Calculate      CommandType = "CALCULATE"
	Dispose        CommandType = "DISPOSE"
)

// Command is one unit of work enqueued to the host. Only the fields the
// given Type uses are read.
type Command struct {
	Type     CommandType
	Tasks    []*task.Task  // INITIALIZE, SYNC_TASKS
	Task     *task.Task    // ADD_TASK
	TaskID   string        // UPDATE_TASK, DELETE_TASK
	Patch    task.Patch    // UPDATE_TASK
	Calendar *calendar.Calendar // INITIALIZE, UPDATE_CALENDAR

	reply chan Response
}

// ResponseType names the kind of result a command produced.
type ResponseType string

const (
	Ready             ResponseType = "READY"
	Initialized       ResponseType = "INITIALIZED"
	CalculationResult ResponseType = "CALCULATION_RESULT"
	TasksSynced       ResponseType = "TASKS_SYNCED"
	Error             ResponseType = "ERROR"
)

// Response is what the host sends back for a processed command.
type Response struct {
	Type    ResponseType
	Tasks   []*task.Task
	Stats   cpm.Stats
	Message string
}

// Host owns one in-memory (tasks, calendar) pair and a single goroutine
// that drains commands one at a time — the host never executes commands
// in parallel, and every command's response is sent before the next
// command begins processing (spec.md §4.4).
type Host struct {
	cmds  chan Command
	ready chan Response
	done  chan struct{}
}

// NewHost starts the host goroutine and returns immediately. Ready()
// yields the initial READY signal once the goroutine is running.
func NewHost() *Host {
	h := &Host{
		cmds:  make(chan Command),
		ready: make(chan Response, 1),
		done:  make(chan struct{}),
	}
	go h.run()
	return h
}

// Ready returns a channel that yields exactly one READY response once
// the host goroutine has started.
func (h *Host) Ready() <-chan Response {
	return h.ready
}

// Send enqueues cmd and blocks for its response, or returns ctx.Err() if
// ctx is done first. Commands from a single caller are processed FIFO;
// concurrent callers may interleave at the channel but each command is
// still fully processed (including its response) before the next one
// starts inside the host.
func (h *Host) Send(ctx context.Context, cmd Command) (Response, error) {
	cmd.reply = make(chan Response, 1)
	select {
	case h.cmds <- cmd:
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-h.done:
		return Response{}, fmt.Errorf("worker: host disposed")
	}
	select {
	case resp := <-cmd.reply:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func (h *Host) run() {
	h.ready <- Response{Type: Ready}

	var tasks []*task.Task
	var cal *calendar.Calendar

	recalc := func() Response {
		if cal == nil {
			cal = calendar.Default()
		}
		out, stats := cpm.Calculate(tasks, cal)
		tasks = out
		resp := Response{Type: CalculationResult, Tasks: cloneAll(out), Stats: stats}
		if stats.Error != "" {
			resp.Type = Error
			resp.Message = stats.Error
		}
		return resp
	}

	for cmd := range h.cmds {
		var resp Response
		switch cmd.Type {
		case Initialize:
			tasks = cloneAll(cmd.Tasks)
			cal = cmd.Calendar
			resp = recalc()
			if resp.Type == CalculationResult {
				resp.Type = Initialized
			}
		case AddTask:
			if cmd.Task == nil {
				resp = Response{Type: Error, Message: "ADD_TASK: missing task payload"}
				break
			}
			tasks = append(tasks, cmd.Task.Clone())
			resp = recalc()
		case UpdateTask:
			idx := indexOf(tasks, cmd.TaskID)
			if idx < 0 {
				resp = Response{Type: Error, Message: fmt.Sprintf("UPDATE_TASK: unknown task %q", cmd.TaskID)}
				break
			}
			tasks[idx].Apply(cmd.Patch)
			resp = recalc()
		case DeleteTask:
			idx := indexOf(tasks, cmd.TaskID)
			if idx < 0 {
				resp = Response{Type: Error, Message: fmt.Sprintf("DELETE_TASK: unknown task %q", cmd.TaskID)}
				break
			}
			tasks = append(tasks[:idx], tasks[idx+1:]...)
			resp = recalc()
		case SyncTasks:
			tasks = cloneAll(cmd.Tasks)
			resp = recalc()
			if resp.Type == CalculationResult {
				resp.Type = TasksSynced
			}
		case UpdateCalendar:
			cal = cmd.Calendar
			resp = recalc()
		case Calculate:
			resp = recalc()
		case Dispose:
			resp = Response{Type: Ready}
			cmd.reply <- resp
			close(h.done)
			return
		default:
			resp = Response{Type: Error, Message: fmt.Sprintf("unknown command %q", cmd.Type)}
		}
		cmd.reply <- resp
	}
}

func indexOf(tasks []*task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
