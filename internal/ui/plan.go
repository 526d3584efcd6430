package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/llm"
	"github.com/javiermolinar/sancho-schedule/internal/order"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// planCmd adds tasks to the plan from a natural-language description,
// using the configured LLM provider to break the request down into
// durations and dependency ordering.
func (a *App) planCmd() *cobra.Command {
	var (
		provider string
		model    string
		baseURL  string
	)

	cmd := &cobra.Command{
		Use:   "plan [description]",
		Short: "Add tasks from a natural-language description via an LLM",
		Long: `Plan sends a natural-language description of upcoming work to an LLM,
which breaks it into tasks with estimated durations and dependency
ordering, then adds them to the current plan.

Example:
  sancho plan "pour the foundation over 5 days, then frame the walls over 3 days"`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}

			if provider == "" {
				provider = a.cfg.LLM.Provider
			}
			if model == "" {
				model = a.cfg.LLM.Model
			}
			if baseURL == "" {
				baseURL = a.cfg.LLM.BaseURL
			}

			client, err := llm.NewClient(provider, model, baseURL)
			if err != nil {
				return fmt.Errorf("building LLM client: %w", err)
			}

			existingTasks, _ := a.ctrl.CurrentState()
			req := llm.PlanRequest{
				Input: args[0],
				Today: time.Now(),
			}
			for _, t := range existingTasks {
				req.ExistingTasks = append(req.ExistingTasks, llm.ExistingTask{
					ID: t.ID, Name: t.Name, DurationDays: t.Duration,
				})
			}

			resp, err := llm.NewPlanner(client).Plan(ctx, req)
			if err != nil {
				return fmt.Errorf("planning: %w", err)
			}
			if len(resp.Tasks) == 0 {
				fmt.Println("the LLM proposed no tasks")
				return nil
			}

			added, err := a.applyPlan(ctx, resp.Tasks)
			if err != nil {
				return err
			}

			fmt.Printf("added %d task(s) from plan\n", len(added))
			for _, t := range added {
				fmt.Printf("  %s (%s), %s\n", t.ID, t.Name, FormatDuration(t.Duration))
			}
			for _, w := range resp.Warnings {
				fmt.Printf("warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: copilot, ollama, or lmstudio (default: config)")
	cmd.Flags().StringVar(&model, "model", "", "model name (default: config, or the provider's default)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "provider base URL override (ollama, lmstudio)")

	return cmd
}

// applyPlan resolves the LLM's placeholder ids into real task ids,
// builds a task.Task per PlannedTask, and adds them to the plan in the
// order the LLM returned them so dependencies already exist by the time
// their successors are added.
func (a *App) applyPlan(ctx context.Context, planned []llm.PlannedTask) ([]*task.Task, error) {
	idMap := make(map[string]string, len(planned))
	for _, pt := range planned {
		idMap[pt.ID] = uuid.NewString()
	}

	added := make([]*task.Task, 0, len(planned))
	for _, pt := range planned {
		realID := idMap[pt.ID]
		t, err := task.New(realID, pt.Name)
		if err != nil {
			return added, fmt.Errorf("planned task %q: %w", pt.ID, err)
		}
		t.Duration = pt.DurationDays

		for _, dep := range pt.DependsOn {
			predID, ok := idMap[dep]
			if !ok {
				predID = dep // reference to an existing task id, unchanged
			}
			t.Dependencies = append(t.Dependencies, task.Dependency{PredecessorID: predID, Type: task.FS})
		}

		last := lastChildSortKey(a.ctrl, "")
		t.SortKey = order.GenerateAppendKey(last)

		if err := a.ctrl.AddTask(ctx, t); err != nil {
			return added, fmt.Errorf("adding planned task %q: %w", pt.Name, err)
		}
		added = append(added, t)
	}
	return added, nil
}
