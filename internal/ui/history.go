package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) undoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the last mutation",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			if !a.ctrl.CanUndo() {
				fmt.Println("nothing to undo")
				return nil
			}
			if err := a.ctrl.Undo(ctx); err != nil {
				return fmt.Errorf("undo: %w", err)
			}
			fmt.Println("undone")
			return nil
		},
	}
}

func (a *App) redoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Redo the last undone mutation",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			if !a.ctrl.CanRedo() {
				fmt.Println("nothing to redo")
				return nil
			}
			if err := a.ctrl.Redo(ctx); err != nil {
				return fmt.Errorf("redo: %w", err)
			}
			fmt.Println("redone")
			return nil
		},
	}
}
