package ui

import (
	"testing"
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/config"
)

func TestDefaultCalendarFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Calendar.Workdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	cal := defaultCalendarFromConfig(cfg)
	if !cal.WorkingDays[time.Monday] || cal.WorkingDays[time.Saturday] {
		t.Errorf("expected Mon-Fri working calendar, got %+v", cal.WorkingDays)
	}
}

func TestDefaultCalendarFromConfig_EmptyFallsBackToDefault(t *testing.T) {
	cfg := config.Default()
	cfg.Calendar.Workdays = nil
	cal := defaultCalendarFromConfig(cfg)
	if !cal.WorkingDays[time.Monday] || !cal.WorkingDays[time.Friday] {
		t.Errorf("expected fallback to the default Mon-Fri calendar, got %+v", cal.WorkingDays)
	}
}
