package store

import "fmt"

// migrate creates the events/snapshots schema if it does not already
// exist, mirroring the teacher's own migrate-on-open discipline
// (internal/db/migrations.go), generalized from a single tasks table
// to the event-log/snapshot shape spec.md §6 requires.
func (s *Store) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			ts         DATETIME NOT NULL,
			kind       TEXT NOT NULL,
			entity_id  TEXT NOT NULL,
			payload_json TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS snapshots (
			snapshot_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			ts                DATETIME NOT NULL,
			last_applied_seq  INTEGER NOT NULL,
			tasks_json        TEXT NOT NULL,
			calendar_json     TEXT NOT NULL,
			trade_partners_json TEXT NOT NULL DEFAULT '[]'
		);

		CREATE INDEX IF NOT EXISTS idx_events_seq ON events(seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating event/snapshot schema: %w", err)
	}
	return nil
}
