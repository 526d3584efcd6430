package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const systemPrompt = `You are a project-scheduling assistant implementing the Critical Path Method.

Context:
- Today: %s (%s)

Existing tasks (use their ids as dependency targets when the request refers to them):
%s

User request: "%s"

Break the request down into a list of tasks. Rules:
1. Assign each new task a short id (e.g. "T1", "T2", ...) not already used above.
2. "durationDays" is a positive integer count of working days.
3. "dependsOn" lists ids of tasks (existing or newly assigned above) that must
   finish before this task can start. Omit or leave empty for tasks with no
   predecessor.
4. Preserve the natural order implied by the request: a task mentioned as
   following another should depend on it.
5. Do not invent work the request didn't ask for.

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "tasks": [
    {"id": "string", "name": "string", "durationDays": 1, "dependsOn": ["string"]}
  ],
  "warnings": ["string"]
}`

// ExistingTask summarizes a task already in the plan for LLM context.
type ExistingTask struct {
	ID           string
	Name         string
	DurationDays int
}

// PlanRequest contains the input for a planning request.
type PlanRequest struct {
	Input         string
	Today         time.Time
	ExistingTasks []ExistingTask
}

// PlannedTask is a single task proposed by the LLM, referencing
// predecessors by the ids assigned within the same response (or an id
// from PlanRequest.ExistingTasks).
type PlannedTask struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	DurationDays int      `json:"durationDays"`
	DependsOn    []string `json:"dependsOn"`
}

// PlanResponse is the parsed LLM response.
type PlanResponse struct {
	Tasks    []PlannedTask `json:"tasks"`
	Warnings []string      `json:"warnings"`
}

// Planner turns natural language into a batch of CPM tasks.
type Planner struct {
	client Client
}

// NewPlanner creates a Planner backed by client.
func NewPlanner(client Client) *Planner {
	return &Planner{client: client}
}

// Plan converts req.Input into a PlanResponse.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	messages := []Message{{Role: "system", Content: p.buildPrompt(req)}}

	var resp PlanResponse
	if err := p.client.ChatJSON(ctx, messages, &resp); err != nil {
		return nil, fmt.Errorf("getting plan from LLM: %w", err)
	}
	return &resp, nil
}

func (p *Planner) buildPrompt(req PlanRequest) string {
	today := req.Today
	if today.IsZero() {
		today = time.Now()
	}
	return fmt.Sprintf(systemPrompt,
		today.Format("2006-01-02"), today.Format("Monday"),
		formatExistingTasks(req.ExistingTasks),
		req.Input,
	)
}

func formatExistingTasks(tasks []ExistingTask) string {
	if len(tasks) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(fmt.Sprintf("- %s: %q (%d working day(s))\n", t.ID, t.Name, t.DurationDays))
	}
	return sb.String()
}
