package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/controller"
)

func (a *App) indentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indent [id]",
		Short: "Make a task a child of its preceding sibling",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			if err := a.ctrl.Indent(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("indented %s\n", args[0])
			return nil
		},
	}
}

func (a *App) outdentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outdent [id]",
		Short: "Move a task up one level, after its former parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			if err := a.ctrl.Outdent(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("outdented %s\n", args[0])
			return nil
		},
	}
}

func (a *App) moveCmd() *cobra.Command {
	var position string

	cmd := &cobra.Command{
		Use:   "move [id...] --target=<target-id>",
		Short: "Move one or more tasks relative to a target task",
		Long: `Move relocates tasks (by id) relative to a target task.

Example:
  sancho move T3 T4 --position=before --target=T7
  sancho move T3 --position=child --target=T1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			target, _ := cmd.Flags().GetString("target")
			if target == "" {
				return fmt.Errorf("--target is required")
			}
			pos := controller.Position(position)
			switch pos {
			case controller.Before, controller.After, controller.Child:
			default:
				return fmt.Errorf("invalid --position %q: must be before, after, or child", position)
			}
			if err := a.ctrl.Move(ctx, args, target, pos); err != nil {
				return err
			}
			fmt.Printf("moved %v %s %s\n", args, position, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&position, "position", "after", "before, after, or child")
	cmd.Flags().String("target", "", "the task to move relative to")
	return cmd
}
