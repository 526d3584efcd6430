package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/importexport"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

func (a *App) importCmd() *cobra.Command {
	var xmlFormat bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the current plan with one loaded from a file",
		Long: `Import loads a project file and replaces the current task set and
calendar with it. Native JSON (default) and MS Project XML (--xml) are
supported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			var tasks []*task.Task
			var cal *calendar.Calendar
			if xmlFormat || strings.HasSuffix(strings.ToLower(args[0]), ".xml") {
				tasks, cal, err = importexport.ImportMSProjectXML(data)
			} else {
				tasks, cal, err = importexport.ImportJSON(data)
			}
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}
			if err := task.ValidateSet(tasks); err != nil {
				return fmt.Errorf("imported plan is invalid: %w", err)
			}
			if err := a.ctrl.SyncTasks(ctx, tasks); err != nil {
				return fmt.Errorf("applying imported plan: %w", err)
			}
			if cal != nil {
				if err := a.ctrl.UpdateCalendar(ctx, cal); err != nil {
					return fmt.Errorf("applying imported calendar: %w", err)
				}
			}
			fmt.Printf("imported %d tasks from %s\n", len(tasks), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&xmlFormat, "xml", false, "parse the file as MS Project XML instead of native JSON")
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	var xmlFormat bool

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the current plan to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			tasks, cal := a.ctrl.CurrentState()

			var data []byte
			var err error
			if xmlFormat || strings.HasSuffix(strings.ToLower(args[0]), ".xml") {
				data, err = importexport.ExportMSProjectXML(tasks, cal)
			} else {
				data, err = importexport.ExportJSON(tasks, cal, time.Now().UTC().Format(time.RFC3339))
			}
			if err != nil {
				return fmt.Errorf("exporting: %w", err)
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			fmt.Printf("exported %d tasks to %s\n", len(tasks), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&xmlFormat, "xml", false, "write MS Project XML instead of native JSON")
	return cmd
}
