package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/config"
)

// configCmd is grounded on the teacher's internal/ui/config.go
// interactive-editing flow, adapted field-by-field to this repo's
// config.Config shape.
func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigInteractive()
		},
	}
}

func runConfigInteractive() error {
	path := config.DefaultConfigPath()
	fmt.Printf("config file: %s\n\n", path)

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		fmt.Println("no config file found, creating one with default values...")
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
	}

	printConfig(cfg)

	if !promptYesNo("\nedit the configuration?") {
		return nil
	}

	reader := bufio.NewReader(os.Stdin)
	cfg.Calendar.Workdays = promptSlice(reader, "workdays (comma-separated)", cfg.Calendar.Workdays)
	cfg.Storage.DBPath = promptValue(reader, "database path", cfg.Storage.DBPath)
	cfg.History.Size = promptInt(reader, "undo history size", cfg.History.Size)
	cfg.UI.Theme = promptValue(reader, "theme", cfg.UI.Theme)
	cfg.LLM.Provider = promptValue(reader, "llm provider (copilot/ollama/lmstudio)", cfg.LLM.Provider)
	cfg.LLM.Model = promptValue(reader, "llm model", cfg.LLM.Model)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Println("\nconfiguration saved")
	return nil
}

func printConfig(cfg *config.Config) {
	fmt.Println("current configuration:")
	fmt.Println("───────────────────────")
	fmt.Println("[calendar]")
	fmt.Printf("  workdays = %s\n", strings.Join(cfg.Calendar.Workdays, ", "))
	fmt.Println("[storage]")
	fmt.Printf("  db_path  = %s\n", cfg.Storage.DBPath)
	fmt.Println("[history]")
	fmt.Printf("  size     = %d\n", cfg.History.Size)
	fmt.Println("[persist]")
	fmt.Printf("  flush_interval_ms        = %d\n", cfg.Persist.FlushIntervalMS)
	fmt.Printf("  snapshot_interval_s      = %d\n", cfg.Persist.SnapshotIntervalS)
	fmt.Println("[ui]")
	fmt.Printf("  theme    = %s\n", cfg.UI.Theme)
	fmt.Println("[llm]")
	fmt.Printf("  provider = %s\n", cfg.LLM.Provider)
	fmt.Printf("  model    = %s\n", cfg.LLM.Model)
}

func promptYesNo(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, label, current string) string {
	fmt.Printf("  %s [%s]: ", label, current)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptSlice(reader *bufio.Reader, label string, current []string) []string {
	fmt.Printf("  %s [%s]: ", label, strings.Join(current, ", "))
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func promptInt(reader *bufio.Reader, label string, current int) int {
	fmt.Printf("  %s [%d]: ", label, current)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	n := 0
	for _, c := range input {
		if c < '0' || c > '9' {
			return current
		}
		n = n*10 + int(c-'0')
	}
	return n
}
