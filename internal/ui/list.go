package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/controller"
	"github.com/javiermolinar/sancho-schedule/internal/dateutil"
)

func (a *App) listCmd() *cobra.Command {
	var criticalOnly bool
	var upcomingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with their CPM dates and float",
		Long: `List every task in hierarchy order, with early/late dates and total
float. Critical-path tasks print in red; tasks carrying float are dimmed.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}

			tasks := a.ctrl.VisibleTasks()
			if len(tasks) == 0 {
				fmt.Println("no tasks yet — try `sancho add \"first task\" --duration=1`")
				return nil
			}

			var monday, sunday time.Time
			if upcomingOnly {
				monday, sunday = dateutil.WeekRange(time.Now())
			}

			PrintTaskHeader()
			for _, t := range tasks {
				if criticalOnly && !t.IsCritical {
					continue
				}
				if upcomingOnly && !startsInWeek(t.EarlyStart, monday, sunday) {
					continue
				}
				fmt.Print(strings.Repeat("  ", depthOf(a.ctrl, t.ID)))
				PrintTaskRow(t)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&criticalOnly, "critical", false, "show only tasks on the critical path")
	cmd.Flags().BoolVar(&upcomingOnly, "upcoming", false, "show only tasks whose early start falls in the current week")
	return cmd
}

// startsInWeek reports whether start falls within [monday, sunday] — the
// ISO week internal/dateutil.WeekRange computes for "now".
func startsInWeek(start *string, monday, sunday time.Time) bool {
	if start == nil {
		return false
	}
	parsed, err := calendar.ParseDate(*start)
	if err != nil {
		return false
	}
	return !parsed.Before(monday) && !parsed.After(sunday)
}

// depthOf counts how many ancestors id has, for indenting hierarchy
// output — a thin convenience over the controller's public GetTask.
func depthOf(ctrl *controller.Controller, id string) int {
	depth := 0
	cur := ctrl.GetTask(id)
	for cur != nil && cur.ParentID != nil {
		depth++
		cur = ctrl.GetTask(*cur.ParentID)
	}
	return depth
}
