package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/javiermolinar/sancho-schedule/internal/cpm"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// FormatDuration renders a task duration in working days, grounded on
// the teacher's human-facing CLI output conventions (internal/ui/format.go).
func FormatDuration(days int) string {
	switch days {
	case 0:
		return "0 working days"
	case 1:
		return "1 working day"
	default:
		return fmt.Sprintf("%d working days", days)
	}
}

func optionalDate(s *string) string {
	if s == nil {
		return formatMuted("-")
	}
	return *s
}

// nameColumnWidth scales the name column to the terminal width, staying
// within [16, 40] so narrow terminals don't wrap and wide ones don't
// leave the name column looking cramped next to the fixed date columns.
func nameColumnWidth() int {
	w := termWidth() - 60
	switch {
	case w < 16:
		return 16
	case w > 40:
		return 40
	default:
		return w
	}
}

// PrintTaskRow prints a single task row, colorizing critical-path tasks
// and dimming tasks that carry float (spec.md §6.2).
func PrintTaskRow(t *task.Task) {
	nameWidth := nameColumnWidth()
	floatCol := fmt.Sprintf("%4d", t.TotalFloat)
	row := fmt.Sprintf("  %-8s %-*s %-11s %-11s %-11s %-11s %s",
		t.ID,
		nameWidth, truncate(t.Name, nameWidth),
		optionalDate(t.EarlyStart),
		optionalDate(t.EarlyFinish),
		optionalDate(t.LateStart),
		optionalDate(t.LateFinish),
		floatCol,
	)
	if t.IsCritical {
		fmt.Println(formatCritical(row))
		return
	}
	if t.TotalFloat > 0 {
		fmt.Println(formatFloat(row))
		return
	}
	fmt.Println(row)
}

// PrintTaskHeader prints the column header matching PrintTaskRow's layout.
func PrintTaskHeader() {
	header := fmt.Sprintf("  %-8s %-*s %-11s %-11s %-11s %-11s %s",
		"ID", nameColumnWidth(), "NAME", "ES", "EF", "LS", "LF", "FLOAT")
	fmt.Println(formatHeader(header))
}

// PrintStats prints the project-level summary a CALCULATE response carries.
func PrintStats(stats cpm.Stats) {
	fmt.Println(formatHeader("\nProject summary"))
	fmt.Printf("  tasks:          %s\n", formatStats(humanize.Comma(int64(stats.TaskCount))))
	fmt.Printf("  critical tasks: %s\n", formatStats(humanize.Comma(int64(stats.CriticalCount))))
	if stats.ProjectEnd != nil {
		fmt.Printf("  project end:    %s\n", *stats.ProjectEnd)
	}
	fmt.Printf("  calc time:      %s\n", stats.CalcTime)
	if stats.Warning != "" {
		fmt.Println(formatWarn("  warning: " + stats.Warning))
	}
	if stats.Error != "" {
		fmt.Println(formatWarn("  error: " + stats.Error))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return strings.TrimSpace(s[:n-1]) + "…"
}
