package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/dateutil"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func (a *App) updateCmd() *cobra.Command {
	var (
		name     string
		duration int
		deps     []string
		ctype    string
		cdate    string
		progress int
		manual   bool
		auto     bool
	)

	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Patch an existing task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			id := args[0]
			if a.ctrl.GetTask(id) == nil {
				return fmt.Errorf("unknown task %q", id)
			}

			var p task.Patch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("duration") {
				p.Duration = &duration
			}
			if cmd.Flags().Changed("dep") {
				parsed, err := parseDeps(deps)
				if err != nil {
					return err
				}
				p.Dependencies = &parsed
			}
			if cmd.Flags().Changed("constraint-type") {
				c := task.ConstraintType(strings.ToUpper(ctype))
				if !c.Valid() {
					return fmt.Errorf("invalid --constraint-type %q", ctype)
				}
				p.ConstraintType = &c
			}
			if cmd.Flags().Changed("constraint-date") {
				parsed, err := dateutil.ParseRelativeDate(cdate, time.Now())
				if err != nil {
					return fmt.Errorf("invalid --constraint-date %q: %w", cdate, err)
				}
				d := calendar.FormatDate(parsed)
				p.ConstraintDate = &d
			}
			if cmd.Flags().Changed("progress") {
				p.Progress = &progress
			}
			if manual {
				m := task.Manual
				p.SchedulingMode = &m
			}
			if auto {
				m := task.Auto
				p.SchedulingMode = &m
			}

			if err := a.ctrl.UpdateTask(ctx, id, p); err != nil {
				return fmt.Errorf("updating %s: %w", id, err)
			}
			fmt.Printf("updated %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().IntVar(&duration, "duration", 0, "new duration in working days")
	cmd.Flags().StringArrayVar(&deps, "dep", nil, "replace dependencies with id:type:lag (repeatable)")
	cmd.Flags().StringVar(&ctype, "constraint-type", "", "ASAP, SNET, SNLT, FNET, FNLT, or MFO")
	cmd.Flags().StringVar(&cdate, "constraint-date", "", "constraint date: YYYY-MM-DD, \"tomorrow\", a weekday name, or \"next-week\"")
	cmd.Flags().IntVar(&progress, "progress", 0, "percent complete (0-100)")
	cmd.Flags().BoolVar(&manual, "manual", false, "switch to manual scheduling")
	cmd.Flags().BoolVar(&auto, "auto", false, "switch back to automatic scheduling")

	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			id := args[0]
			if a.ctrl.GetTask(id) == nil {
				return fmt.Errorf("unknown task %q", id)
			}
			if err := a.ctrl.DeleteTask(ctx, id); err != nil {
				return fmt.Errorf("deleting %s: %w", id, err)
			}
			fmt.Printf("deleted %s\n", id)
			return nil
		},
	}
}
