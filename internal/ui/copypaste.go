package ui

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/order"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// copyCmd and pasteCmd round-trip a single task through the system
// clipboard — the teacher pulls in atotto/clipboard for exactly this
// copy/paste shape.
func (a *App) copyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy [id]",
		Short: "Copy a task to the system clipboard as JSON",
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
			data, err := json.MarshalIndent(t, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding task: %w", err)
			}
			if err := clipboard.WriteAll(string(data)); err != nil {
				return fmt.Errorf("writing clipboard: %w", err)
			}
			fmt.Printf("copied %s to clipboard\n", t.ID)
			return nil
		},
	}
}

func (a *App) pasteCmd() *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Paste a task from the clipboard as a new task",
		Long: `Paste re-creates a task from clipboard JSON produced by "sancho copy",
assigning it a fresh id and appending it to the current plan. Its
dependencies are dropped since they'd otherwise reference the original
plan's task ids, not this one's.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			data, err := clipboard.ReadAll()
			if err != nil {
				return fmt.Errorf("reading clipboard: %w", err)
			}
			var t task.Task
			if err := json.Unmarshal([]byte(data), &t); err != nil {
				return fmt.Errorf("clipboard does not contain a valid task: %w", err)
			}

			t.ID = uuid.NewString()
			t.Dependencies = nil
			t.ParentID = nil
			if parentID != "" {
				t.ParentID = &parentID
			}
			last := lastChildSortKey(a.ctrl, parentID)
			t.SortKey = order.GenerateAppendKey(last)

			if err := a.ctrl.AddTask(ctx, &t); err != nil {
				return fmt.Errorf("pasting task: %w", err)
			}
			fmt.Printf("pasted as %s (%s)\n", t.ID, t.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "parent task id for the pasted copy")
	return cmd
}
