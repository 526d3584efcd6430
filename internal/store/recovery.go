package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

type snapshotRow struct {
	lastAppliedSeq int64
	tasksJSON      string
	calendarJSON   string
}

func (s *Store) latestSnapshot(ctx context.Context) (*snapshotRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT last_applied_seq, tasks_json, calendar_json FROM snapshots ORDER BY snapshot_id DESC LIMIT 1`)

	var snap snapshotRow
	switch err := row.Scan(&snap.lastAppliedSeq, &snap.tasksJSON, &snap.calendarJSON); err {
	case nil:
		return &snap, nil
	case sql.ErrNoRows:
		return nil, nil
	default:
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
}

// Load rebuilds the confirmed task set and calendar from the latest
// snapshot plus every event after it (spec.md §6 recovery): load the
// snapshot if one exists, then replay seq > lastAppliedSeq in order,
// merging TASK_UPDATED payloads onto the snake_case document already in
// hand rather than round-tripping through Go structs mid-replay. The
// returned calendar is nil when neither a snapshot nor a CALENDAR_UPDATED
// event has recorded one.
func (s *Store) Load(ctx context.Context) ([]*task.Task, *calendar.Calendar, error) {
	snap, err := s.latestSnapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	tasksJSON := make(map[string]string)
	var cal *calendar.Calendar
	var lastApplied int64

	if snap != nil {
		var snapTasks []*task.Task
		if err := json.Unmarshal([]byte(snap.tasksJSON), &snapTasks); err != nil {
			return nil, nil, fmt.Errorf("decoding snapshot tasks: %w", err)
		}
		for _, t := range snapTasks {
			payload, err := taskPayload(t)
			if err != nil {
				return nil, nil, fmt.Errorf("re-encoding snapshot task %s: %w", t.ID, err)
			}
			tasksJSON[t.ID] = payload
		}
		cal = calendar.Default()
		if err := json.Unmarshal([]byte(snap.calendarJSON), cal); err != nil {
			return nil, nil, fmt.Errorf("decoding snapshot calendar: %w", err)
		}
		lastApplied = snap.lastAppliedSeq
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, entity_id, payload_json FROM events WHERE seq > ? ORDER BY seq`, lastApplied)
	if err != nil {
		return nil, nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, entityID, payload string
		if err := rows.Scan(&kind, &entityID, &payload); err != nil {
			return nil, nil, fmt.Errorf("scanning event: %w", err)
		}

		switch EventKind(kind) {
		case TaskCreated:
			tasksJSON[entityID] = payload

		case TaskUpdated:
			merged, err := mergeSnakeJSON(tasksJSON[entityID], payload)
			if err != nil {
				return nil, nil, fmt.Errorf("merging update for %s: %w", entityID, err)
			}
			tasksJSON[entityID] = merged

		case TaskDeleted:
			// Tolerant of a missing prior task — replaying a delete for
			// an id never created (or already removed) is a no-op.
			delete(tasksJSON, entityID)

		case CalendarUpdated:
			camel, err := camelizeTopLevel(payload)
			if err != nil {
				return nil, nil, fmt.Errorf("decoding calendar update: %w", err)
			}
			newCal := &calendar.Calendar{}
			if err := json.Unmarshal([]byte(camel), newCal); err != nil {
				return nil, nil, fmt.Errorf("decoding calendar update: %w", err)
			}
			cal = newCal

		case TradePartnerCreated, TradePartnerUpdated, TradePartnerDeleted:
			// Trade-partner directory UI is out of scope; events are
			// durably logged but carry no materialized state to replay.
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating events: %w", err)
	}

	ids := make([]string, 0, len(tasksJSON))
	for id := range tasksJSON {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tasks := make([]*task.Task, 0, len(ids))
	for _, id := range ids {
		camel, err := camelizeTopLevel(tasksJSON[id])
		if err != nil {
			return nil, nil, fmt.Errorf("decoding task %s: %w", id, err)
		}
		var t task.Task
		if err := json.Unmarshal([]byte(camel), &t); err != nil {
			return nil, nil, fmt.Errorf("decoding task %s: %w", id, err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, cal, nil
}
