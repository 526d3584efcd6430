package cpm

import (
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// applyConstraint folds a task's constraint type into the predecessor-
// derived candidate start date, per spec.md §4.3 step 2. A missing or
// unparsable constraintDate is treated as no constraint at all (ASAP).
func applyConstraint(ct task.ConstraintType, constraintDateStr *string, candidate *time.Time, now time.Time, cal *calendar.Calendar, duration int) time.Time {
	d := duration
	if d < 0 {
		d = 0
	}

	var constraintDate time.Time
	hasConstraint := false
	if constraintDateStr != nil {
		if parsed, err := calendar.ParseDate(*constraintDateStr); err == nil {
			constraintDate = parsed
			hasConstraint = true
		}
	}
	if !hasConstraint {
		return fallback(candidate, now)
	}

	switch ct {
	case task.SNET:
		if candidate != nil && candidate.After(constraintDate) {
			return *candidate
		}
		return constraintDate
	case task.SNLT:
		if candidate != nil && candidate.Before(constraintDate) {
			return *candidate
		}
		return constraintDate
	case task.FNET:
		implied := cal.AddWorkDays(constraintDate, -(d - 1))
		if candidate != nil && candidate.After(implied) {
			return *candidate
		}
		return implied
	case task.FNLT:
		// A deadline, not a start bound: it never forces the early pass's
		// start earlier than the dependency chain allows. Its effect is on
		// the backward pass (fnltDeadline caps lateFinish), where blowing
		// past it surfaces as negative float (spec.md §8 S4).
		return fallback(candidate, now)
	case task.MFO:
		// Must-finish-on bypasses the dependency-driven start entirely.
		return cal.AddWorkDays(constraintDate, -(d - 1))
	default: // ASAP
		return fallback(candidate, now)
	}
}

func fallback(candidate *time.Time, now time.Time) time.Time {
	if candidate != nil {
		return *candidate
	}
	return now
}

// fnltDeadline returns a task's FNLT constraint date, if it has one and it
// parses, for the backward pass to clamp lateFinish against.
func fnltDeadline(t *task.Task) (time.Time, bool) {
	if t.ConstraintType != task.FNLT || t.ConstraintDate == nil {
		return time.Time{}, false
	}
	d, err := calendar.ParseDate(*t.ConstraintDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// deriveForwardDate computes the date a single dependency imposes on its
// successor's start, given the successor's own duration (needed to
// translate the FF/SF end-to-end formulas into a start bound).
func deriveForwardDate(linkType task.LinkType, predStart, predEnd time.Time, lag, succDuration int, cal *calendar.Calendar) time.Time {
	d := succDuration
	if d < 0 {
		d = 0
	}
	switch linkType {
	case task.SS:
		return cal.AddWorkDays(predStart, lag)
	case task.FF:
		return cal.AddWorkDays(predEnd, lag-(d-1))
	case task.SF:
		return cal.AddWorkDays(predStart, lag-(d-1))
	default: // FS
		return cal.AddWorkDays(predEnd, 1+lag)
	}
}

// deriveBackwardDate computes the LateFinish a single successor relation
// imposes on its predecessor, the backward-pass mirror of
// deriveForwardDate (spec.md §4.3 step 4).
func deriveBackwardDate(linkType task.LinkType, succLateStart, succLateFinish time.Time, lag, predDuration int, cal *calendar.Calendar) time.Time {
	d := predDuration
	if d < 0 {
		d = 0
	}
	switch linkType {
	case task.SS:
		return cal.AddWorkDays(succLateStart, d-1-lag)
	case task.FF:
		return cal.AddWorkDays(succLateFinish, -lag)
	case task.SF:
		return cal.AddWorkDays(succLateFinish, d-1-lag)
	default: // FS
		return cal.AddWorkDays(succLateStart, -1-lag)
	}
}

// endFromStart applies the inclusive-duration convention: a 1-day task's
// end equals its start, so end = addWorkDays(start, duration-1).
func endFromStart(cal *calendar.Calendar, start time.Time, duration int) time.Time {
	d := duration
	if d < 0 {
		d = 0
	}
	return cal.AddWorkDays(start, d-1)
}
