package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/dateutil"
	"github.com/javiermolinar/sancho-schedule/internal/order"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func (a *App) addCmd() *cobra.Command {
	var (
		id       string
		duration int
		parentID string
		deps     []string
		ctype    string
		cdate    string
		manual   bool
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a new task",
		Long: `Add a new task to the plan.

Example:
  sancho add "Pour foundation" --duration=5
  sancho add "Frame walls" --duration=3 --dep=T1:FS:0`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}

			if id == "" {
				id = uuid.NewString()
			}
			t, err := task.New(id, args[0])
			if err != nil {
				return err
			}
			t.Duration = duration

			if len(deps) > 0 {
				parsed, err := parseDeps(deps)
				if err != nil {
					return err
				}
				t.Dependencies = parsed
			}
			if ctype != "" {
				t.ConstraintType = task.ConstraintType(strings.ToUpper(ctype))
				if !t.ConstraintType.Valid() {
					return fmt.Errorf("invalid --constraint-type %q", ctype)
				}
			}
			if cdate != "" {
				parsed, err := dateutil.ParseRelativeDate(cdate, time.Now())
				if err != nil {
					return fmt.Errorf("invalid --constraint-date %q: %w", cdate, err)
				}
				d := calendar.FormatDate(parsed)
				t.ConstraintDate = &d
			}
			if manual {
				t.SchedulingMode = task.Manual
			}
			if parentID != "" {
				t.ParentID = &parentID
			}
			last := lastChildSortKey(a.ctrl, parentID)
			t.SortKey = order.GenerateAppendKey(last)

			if err := a.ctrl.AddTask(ctx, t); err != nil {
				return fmt.Errorf("adding task: %w", err)
			}
			fmt.Printf("added %s (%s), %s\n", t.ID, t.Name, FormatDuration(t.Duration))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "task id (default: generated UUID)")
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in working days")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent task id")
	cmd.Flags().StringArrayVar(&deps, "dep", nil, "predecessor as id:type:lag, e.g. T1:FS:0 (repeatable)")
	cmd.Flags().StringVar(&ctype, "constraint-type", "", "ASAP, SNET, SNLT, FNET, FNLT, or MFO")
	cmd.Flags().StringVar(&cdate, "constraint-date", "", "constraint date: YYYY-MM-DD, \"tomorrow\", a weekday name, or \"next-week\"")
	cmd.Flags().BoolVar(&manual, "manual", false, "manual scheduling: the engine never moves this task's dates")

	return cmd
}

func parseDeps(raw []string) ([]task.Dependency, error) {
	out := make([]task.Dependency, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, ":")
		if len(parts) < 1 || parts[0] == "" {
			return nil, fmt.Errorf("invalid --dep %q: expected id:type:lag", r)
		}
		d := task.Dependency{PredecessorID: parts[0], Type: task.FS}
		if len(parts) > 1 && parts[1] != "" {
			d.Type = task.LinkType(strings.ToUpper(parts[1]))
			if !d.Type.Valid() {
				return nil, fmt.Errorf("invalid link type %q in --dep %q", parts[1], r)
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			lag, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid lag %q in --dep %q", parts[2], r)
			}
			d.Lag = lag
		}
		out = append(out, d)
	}
	return out, nil
}
