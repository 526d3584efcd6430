package ui

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/dashboard"
)

func (a *App) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open a live-updating dashboard of the current plan",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			if err := a.ensureRuntime(ctx); err != nil {
				return err
			}
			return dashboard.Run(a.ctrl)
		},
	}
}
