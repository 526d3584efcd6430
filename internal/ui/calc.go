package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) calcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc",
		Short: "Force a CPM recalculation and print the project summary",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			if err := a.ctrl.ForceRecalculate(ctx); err != nil {
				return fmt.Errorf("recalculating: %w", err)
			}
			PrintStats(a.ctrl.Stats().Get())
			return nil
		},
	}
}
