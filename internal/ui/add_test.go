package ui

import (
	"testing"

	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func TestParseDeps(t *testing.T) {
	deps, err := parseDeps([]string{"T1:FS:0", "T2:SS:2", "T3"})
	if err != nil {
		t.Fatalf("parseDeps: %v", err)
	}
	if len(deps) != 3 {
		t.Fatalf("got %d deps, want 3", len(deps))
	}
	if deps[0] != (task.Dependency{PredecessorID: "T1", Type: task.FS, Lag: 0}) {
		t.Errorf("deps[0] = %+v", deps[0])
	}
	if deps[1] != (task.Dependency{PredecessorID: "T2", Type: task.SS, Lag: 2}) {
		t.Errorf("deps[1] = %+v", deps[1])
	}
	if deps[2] != (task.Dependency{PredecessorID: "T3", Type: task.FS, Lag: 0}) {
		t.Errorf("deps[2] (bare id) = %+v, want default FS/0", deps[2])
	}
}

func TestParseDepsInvalid(t *testing.T) {
	cases := []string{"", ":FS:0", "T1:BOGUS:0", "T1:FS:notanumber"}
	for _, c := range cases {
		if _, err := parseDeps([]string{c}); err == nil {
			t.Errorf("parseDeps(%q) expected an error, got none", c)
		}
	}
}
