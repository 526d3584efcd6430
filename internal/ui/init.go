package ui

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/config"
)

func (a *App) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := config.DefaultConfigPath()
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("config already exists at %s\n", path)
				return nil
			}
			if err := config.Default().SaveTo(path); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Printf("wrote default config to %s\n", path)
			return nil
		},
	}
}
