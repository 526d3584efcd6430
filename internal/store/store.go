// Package store persists tasks and the calendar as an append-only event
// log plus periodic snapshots, mirroring the teacher's SQLite-backed
// repository (internal/db/sqlite.go) generalized from a single tasks
// table to an event-sourced shape (spec.md §6).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// EventKind names one row of the events table.
type EventKind string

const (
	TaskCreated         EventKind = "TASK_CREATED"
	TaskUpdated         EventKind = "TASK_UPDATED"
	TaskDeleted         EventKind = "TASK_DELETED"
	CalendarUpdated     EventKind = "CALENDAR_UPDATED"
	TradePartnerCreated EventKind = "TRADE_PARTNER_CREATED"
	TradePartnerUpdated EventKind = "TRADE_PARTNER_UPDATED"
	TradePartnerDeleted EventKind = "TRADE_PARTNER_DELETED"
)

type pendingEvent struct {
	ts       time.Time
	kind     EventKind
	entityID string
	payload  string
}

// StateProvider supplies the live (tasks, calendar) pair the periodic
// snapshot timer persists. internal/controller.Controller satisfies this
// via its CurrentState method.
type StateProvider interface {
	CurrentState() ([]*task.Task, *calendar.Calendar)
}

// Options tunes the batched-flush and snapshot cadence. Zero-valued
// fields fall back to DefaultOptions's values.
type Options struct {
	// FlushInterval bounds how long an event can sit unflushed in the
	// in-memory queue (spec.md §6: "batched, at most every 250ms").
	FlushInterval time.Duration
	// FlushMaxBatch forces an immediate flush once the queue reaches
	// this many pending events, instead of waiting for the timer.
	FlushMaxBatch int
	// SnapshotInterval is the timer-driven snapshot cadence.
	SnapshotInterval time.Duration
	// SnapshotMaxUnflushed forces a snapshot once this many events have
	// been durably flushed since the last one, bounding replay length.
	SnapshotMaxUnflushed int
	// ShutdownFlushTimeout bounds how long Shutdown waits for the final
	// forced flush before giving up (spec.md §5).
	ShutdownFlushTimeout time.Duration
}

// DefaultOptions mirrors spec.md §6's stated defaults.
func DefaultOptions() Options {
	return Options{
		FlushInterval:        250 * time.Millisecond,
		FlushMaxBatch:        100,
		SnapshotInterval:     60 * time.Second,
		SnapshotMaxUnflushed: 500,
		ShutdownFlushTimeout: 3 * time.Second,
	}
}

// PersistConfig is the subset of internal/config.PersistConfig this
// package needs, named locally so internal/store doesn't import
// internal/config (config already depends on nothing in this package's
// graph; this keeps the dependency one-directional the other way too).
type PersistConfig interface {
	FlushInterval() time.Duration
	SnapshotInterval() time.Duration
	ShutdownFlushTimeout() time.Duration
}

// OptionsFromConfig builds Options from a loaded internal/config.Config's
// Persist section. The two count fields, which PersistConfig has no
// accessor for, are passed in directly; zero values are replaced by
// DefaultOptions's when New applies defaults.
func OptionsFromConfig(p PersistConfig, flushMaxBatch, snapshotMaxUnflushed int) Options {
	return Options{
		FlushInterval:        p.FlushInterval(),
		FlushMaxBatch:        flushMaxBatch,
		SnapshotInterval:     p.SnapshotInterval(),
		SnapshotMaxUnflushed: snapshotMaxUnflushed,
		ShutdownFlushTimeout: p.ShutdownFlushTimeout(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FlushInterval <= 0 {
		o.FlushInterval = d.FlushInterval
	}
	if o.FlushMaxBatch <= 0 {
		o.FlushMaxBatch = d.FlushMaxBatch
	}
	if o.SnapshotInterval <= 0 {
		o.SnapshotInterval = d.SnapshotInterval
	}
	if o.SnapshotMaxUnflushed <= 0 {
		o.SnapshotMaxUnflushed = d.SnapshotMaxUnflushed
	}
	if o.ShutdownFlushTimeout <= 0 {
		o.ShutdownFlushTimeout = d.ShutdownFlushTimeout
	}
	return o
}

// Store is the single writer of the events/snapshots database. All
// appends funnel through its in-memory queue and are flushed by one
// background goroutine, so writes are always serialized — no
// transaction ever races another (spec.md §6).
type Store struct {
	db    *sql.DB
	state StateProvider
	opts  Options

	mu                  sync.Mutex
	queue               []pendingEvent
	highestSeq          int64
	eventsSinceSnapshot int

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// New opens (creating if necessary) the SQLite database at path, runs
// migrations, and starts the background flush/snapshot loop. state
// supplies the (tasks, calendar) pair periodic snapshots persist.
func New(path string, state StateProvider, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{
		db:    db,
		state: state,
		opts:  opts.withDefaults(),
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	go s.loop()
	return s, nil
}

// AppendTaskCreated enqueues a TASK_CREATED event for t.
func (s *Store) AppendTaskCreated(t *task.Task) error {
	payload, err := taskPayload(t)
	if err != nil {
		return fmt.Errorf("encoding task %s: %w", t.ID, err)
	}
	s.enqueue(TaskCreated, t.ID, payload)
	return nil
}

// AppendTaskUpdated enqueues a TASK_UPDATED event carrying only the
// fields p actually set.
func (s *Store) AppendTaskUpdated(id string, p task.Patch) error {
	payload, err := patchPayload(p)
	if err != nil {
		return fmt.Errorf("encoding patch for %s: %w", id, err)
	}
	s.enqueue(TaskUpdated, id, payload)
	return nil
}

// AppendTaskDeleted enqueues a TASK_DELETED event for id.
func (s *Store) AppendTaskDeleted(id string) {
	s.enqueue(TaskDeleted, id, "{}")
}

// AppendCalendarUpdated enqueues a CALENDAR_UPDATED event for the whole
// new calendar.
func (s *Store) AppendCalendarUpdated(cal *calendar.Calendar) error {
	camel, err := json.Marshal(cal)
	if err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	payload, err := calendarPayload(camel)
	if err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	s.enqueue(CalendarUpdated, "calendar", payload)
	return nil
}

func (s *Store) enqueue(kind EventKind, entityID, payload string) {
	s.mu.Lock()
	s.queue = append(s.queue, pendingEvent{ts: time.Now().UTC(), kind: kind, entityID: entityID, payload: payload})
	full := len(s.queue) >= s.opts.FlushMaxBatch
	s.mu.Unlock()

	if full {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

func (s *Store) loop() {
	flushTicker := time.NewTicker(s.opts.FlushInterval)
	defer flushTicker.Stop()
	snapshotTicker := time.NewTicker(s.opts.SnapshotInterval)
	defer snapshotTicker.Stop()
	defer close(s.done)

	ctx := context.Background()
	for {
		select {
		case <-flushTicker.C:
			s.flush(ctx)
		case <-s.wake:
			s.flush(ctx)
		case <-snapshotTicker.C:
			s.Snapshot(ctx)
		case <-s.stop:
			s.flush(ctx)
			return
		}
	}
}

// ForceFlush runs an out-of-band flush, for callers that need durability
// at a specific point rather than waiting on the timer.
func (s *Store) ForceFlush(ctx context.Context) error {
	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) error {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	if err := s.writeBatch(ctx, batch); err != nil {
		s.mu.Lock()
		s.queue = append(batch, s.queue...)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.eventsSinceSnapshot += len(batch)
	needSnapshot := s.eventsSinceSnapshot >= s.opts.SnapshotMaxUnflushed
	s.mu.Unlock()

	if needSnapshot {
		return s.Snapshot(ctx)
	}
	return nil
}

func (s *Store) writeBatch(ctx context.Context, batch []pendingEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("flush: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events (ts, kind, entity_id, payload_json) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("flush: preparing statement: %w", err)
	}
	defer stmt.Close()

	var lastID int64
	for _, ev := range batch {
		res, err := stmt.ExecContext(ctx, ev.ts.Format(time.RFC3339Nano), string(ev.kind), ev.entityID, ev.payload)
		if err != nil {
			return fmt.Errorf("flush: inserting event: %w", err)
		}
		if lastID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("flush: reading insert id: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("flush: committing: %w", err)
	}

	s.mu.Lock()
	s.highestSeq = lastID
	s.mu.Unlock()
	return nil
}

// Snapshot materializes the current state from state and writes a new
// snapshot row, resetting the unflushed-since-snapshot counter.
func (s *Store) Snapshot(ctx context.Context) error {
	tasks, cal := s.state.CurrentState()

	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encoding snapshot tasks: %w", err)
	}
	calJSON, err := json.Marshal(cal)
	if err != nil {
		return fmt.Errorf("encoding snapshot calendar: %w", err)
	}

	s.mu.Lock()
	lastApplied := s.highestSeq
	s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (ts, last_applied_seq, tasks_json, calendar_json, trade_partners_json) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), lastApplied, string(tasksJSON), string(calJSON), "[]")
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	s.mu.Lock()
	s.eventsSinceSnapshot = 0
	s.mu.Unlock()
	return nil
}

// Shutdown stops the background loop and waits for its final forced
// flush, up to the configured ShutdownFlushTimeout. If the timeout
// elapses first, Shutdown returns an error and the unflushed batch (if
// any) is left queued in memory and lost — spec.md §5 accepts this
// rather than blocking process exit indefinitely.
func (s *Store) Shutdown(ctx context.Context) error {
	close(s.stop)
	timeout, cancel := context.WithTimeout(ctx, s.opts.ShutdownFlushTimeout)
	defer cancel()

	select {
	case <-s.done:
		return s.db.Close()
	case <-timeout.Done():
		s.db.Close()
		return fmt.Errorf("store: shutdown flush timed out after %s, unflushed events were lost", s.opts.ShutdownFlushTimeout)
	}
}
