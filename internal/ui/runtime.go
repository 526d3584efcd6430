package ui

import (
	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/config"
)

// defaultCalendarFromConfig builds the project calendar's initial weekly
// working pattern from the loaded configuration, used the first time a
// database is initialized (no CALENDAR_UPDATED event has been recorded yet).
func defaultCalendarFromConfig(cfg *config.Config) *calendar.Calendar {
	cal := calendar.NewFromNames(cfg.Calendar.Workdays)
	if len(cal.WorkingDays) == 0 {
		return calendar.Default()
	}
	return cal
}
