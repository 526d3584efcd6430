package llm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestBuildPrompt_IncludesExistingTasks(t *testing.T) {
	planner := NewPlanner(nil)
	req := PlanRequest{
		Input: "pour the foundation over 5 days",
		Today: time.Date(2026, 1, 8, 9, 30, 0, 0, time.UTC), // Thursday
		ExistingTasks: []ExistingTask{
			{ID: "T0", Name: "Site survey", DurationDays: 2},
		},
	}

	content := planner.buildPrompt(req)
	if !strings.Contains(content, "Today: 2026-01-08 (Thursday)") {
		t.Fatalf("missing today context: %s", content)
	}
	if !strings.Contains(content, `T0: "Site survey" (2 working day(s))`) {
		t.Fatalf("missing existing task entry: %s", content)
	}
	if !strings.Contains(content, `pour the foundation over 5 days`) {
		t.Fatalf("missing user request: %s", content)
	}
}

func TestBuildPrompt_NoExistingTasks(t *testing.T) {
	planner := NewPlanner(nil)
	content := planner.buildPrompt(PlanRequest{Input: "start fresh", Today: time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)})
	if !strings.Contains(content, "(none)") {
		t.Fatalf("expected placeholder for no existing tasks: %s", content)
	}
}

type fakeClient struct {
	response string
	err      error
}

func (f *fakeClient) Chat(context.Context, []Message) (string, error) {
	return f.response, f.err
}

func (f *fakeClient) ChatJSON(_ context.Context, _ []Message, result any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(extractJSON(f.response)), result)
}

func TestPlanner_Plan(t *testing.T) {
	client := &fakeClient{response: `{
		"tasks": [
			{"id": "T1", "name": "Pour foundation", "durationDays": 5, "dependsOn": []},
			{"id": "T2", "name": "Frame walls", "durationDays": 3, "dependsOn": ["T1"]}
		],
		"warnings": ["check concrete cure time"]
	}`}

	resp, err := NewPlanner(client).Plan(context.Background(), PlanRequest{Input: "build a shed"})
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(resp.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(resp.Tasks))
	}
	if resp.Tasks[1].DependsOn[0] != "T1" {
		t.Errorf("expected T2 to depend on T1, got %v", resp.Tasks[1].DependsOn)
	}
	if len(resp.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(resp.Warnings))
	}
}

func TestPlanner_Plan_PropagatesClientError(t *testing.T) {
	client := &fakeClient{err: context.DeadlineExceeded}
	_, err := NewPlanner(client).Plan(context.Background(), PlanRequest{Input: "build a shed"})
	if err == nil {
		t.Fatal("expected an error")
	}
}
