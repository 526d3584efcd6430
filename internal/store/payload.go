package store

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// taskPayload renders t as the snake_case JSON shape the event log
// persists (spec.md §6: "payload_json for TASK_* uses the Task shape
// in §3 with snake_case field names mapped from the in-memory
// camelCase"). It marshals through the existing camelCase json tags
// and remaps keys rather than duplicating the struct with a second tag
// set.
func taskPayload(t *task.Task) (string, error) {
	camel, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return snakeCaseTopLevel(camel)
}

// patchPayload renders a task.Patch the same way for TASK_UPDATED
// events. Patch's own json tags carry omitempty, so only the fields
// the caller actually set appear in the payload — this is what makes
// replay's merge step a genuine partial update.
func patchPayload(p task.Patch) (string, error) {
	camel, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return snakeCaseTopLevel(camel)
}

// calendarPayload renders a calendar.Calendar's already-camelCase JSON
// (workdays/exceptions) with its top-level keys snake_cased. Both keys
// happen to already be snake-case-safe (single words), so this mostly
// documents intent/consistency with the task payloads.
func calendarPayload(camel []byte) (string, error) {
	return snakeCaseTopLevel(camel)
}

// snakeCaseTopLevel rewrites the top-level keys of a JSON object from
// camelCase to snake_case, leaving nested values (including the
// dependencies array spec.md calls out as "stored as a JSON array
// within the task payload") untouched — the spec only mandates the
// remap for the task's own field names, not for the shape of a nested
// array of dependency objects.
func snakeCaseTopLevel(camel []byte) (string, error) {
	out := "{}"
	var err error
	gjson.ParseBytes(camel).ForEach(func(key, value gjson.Result) bool {
		out, err = sjson.SetRaw(out, camelToSnake(key.String()), value.Raw)
		return err == nil
	})
	return out, err
}

// camelizeTopLevel is snakeCaseTopLevel's inverse, used during replay to
// turn a persisted snake_case document back into the camelCase shape
// task.Task / calendar.Calendar's own json tags expect.
func camelizeTopLevel(snake string) (string, error) {
	out := "{}"
	var err error
	gjson.Parse(snake).ForEach(func(key, value gjson.Result) bool {
		out, err = sjson.SetRaw(out, snakeToCamel(key.String()), value.Raw)
		return err == nil
	})
	return out, err
}

func snakeToCamel(s string) string {
	var b strings.Builder
	upNext := false
	for _, r := range s {
		if r == '_' {
			upNext = true
			continue
		}
		if upNext && r >= 'a' && r <= 'z' {
			b.WriteRune(r - 'a' + 'A')
			upNext = false
			continue
		}
		upNext = false
		b.WriteRune(r)
	}
	return b.String()
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// mergeSnakeJSON folds every top-level field present in patch (a
// snake_case partial payload) into base (a snake_case full or partial
// task document), returning the merged document. This is the literal
// "partial JSON field merge" replay performs for TASK_UPDATED events,
// without ever deserializing into a Go struct mid-replay.
func mergeSnakeJSON(base, patch string) (string, error) {
	if base == "" {
		base = "{}"
	}
	var err error
	gjson.Parse(patch).ForEach(func(key, value gjson.Result) bool {
		base, err = sjson.SetRaw(base, key.String(), value.Raw)
		return err == nil
	})
	return base, err
}
