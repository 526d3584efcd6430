// Package importexport implements the two file formats spec.md §6
// names: the native JSON project format, and MS Project XML
// import/export (spec.md §6.4 / SPEC_FULL.md §6.4).
package importexport

import (
	"encoding/json"
	"fmt"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// FormatVersion is the native JSON document's version field.
const FormatVersion = 1

// Document is the native JSON project format: {version, exportedAt,
// tasks, calendar, tradePartners?}. TradePartners is carried as opaque
// JSON, since no domain type for it exists yet (DESIGN.md).
type Document struct {
	Version       int             `json:"version"`
	ExportedAt    string          `json:"exportedAt"`
	Tasks         []*task.Task    `json:"tasks"`
	Calendar      *calendar.Calendar `json:"calendar"`
	TradePartners json.RawMessage `json:"tradePartners,omitempty"`
}

// ExportJSON renders tasks and cal as a native JSON project document.
func ExportJSON(tasks []*task.Task, cal *calendar.Calendar, exportedAt string) ([]byte, error) {
	doc := Document{
		Version:    FormatVersion,
		ExportedAt: exportedAt,
		Tasks:      tasks,
		Calendar:   cal,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("importexport: encoding document: %w", err)
	}
	return data, nil
}

// ImportJSON parses a native JSON project document back into tasks and
// a calendar. It does not validate cross-task invariants — callers
// should run the result through task.ValidateSet.
func ImportJSON(data []byte) ([]*task.Task, *calendar.Calendar, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("importexport: parsing document: %w", err)
	}
	cal := doc.Calendar
	if cal == nil {
		cal = calendar.Default()
	}
	return doc.Tasks, cal, nil
}
