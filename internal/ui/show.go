package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one task's full detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			t := a.ctrl.GetTask(args[0])
			if t == nil {
				return fmt.Errorf("unknown task %q", args[0])
			}
			printTaskDetail(a, t)
			return nil
		},
	}
}

func printTaskDetail(a *App, t *task.Task) {
	fmt.Println(formatHeader(fmt.Sprintf("%s — %s", t.ID, t.Name)))
	fmt.Printf("  duration:        %s\n", FormatDuration(t.Duration))
	fmt.Printf("  scheduling mode: %s\n", t.SchedulingMode)
	fmt.Printf("  constraint:      %s %s\n", t.ConstraintType, optionalDate(t.ConstraintDate))
	fmt.Printf("  early start/end: %s / %s\n", optionalDate(t.EarlyStart), optionalDate(t.EarlyFinish))
	fmt.Printf("  late start/end:  %s / %s\n", optionalDate(t.LateStart), optionalDate(t.LateFinish))
	fmt.Printf("  total float:     %d\n", t.TotalFloat)
	fmt.Printf("  free float:      %d\n", t.FreeFloat)
	if t.IsCritical {
		fmt.Println("  " + formatCritical("on the critical path"))
	}
	if t.ParentID != nil {
		fmt.Printf("  parent:          %s\n", *t.ParentID)
	}
	if len(t.Dependencies) > 0 {
		fmt.Println("  depends on:")
		for _, d := range t.Dependencies {
			fmt.Printf("    %s (%s, lag %d)\n", d.PredecessorID, d.Type, d.Lag)
		}
	}
	if t.BaselineStart != nil && t.BaselineFinish != nil {
		v, err := a.ctrl.CalculateVariance(t)
		if err == nil {
			fmt.Printf("  variance:        start %+d, finish %+d working days\n", v.StartDays, v.FinishDays)
		}
	}
}
