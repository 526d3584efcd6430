package importexport

import (
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/javiermolinar/sancho-schedule/internal/calendar"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

// workMinutesPerDay is the assumed working-day length MS Project
// durations/lags are converted against — MS Project has no native
// "working day" unit, only minutes, so a fixed day length is required
// to convert (SPEC_FULL.md §6.4).
const workMinutesPerDay = 8 * 60

const msDateTimeLayout = "2006-01-02T15:04:05"

// xmlProject is the subset of the MS Project XML schema this package
// reads and writes: tasks, their outline level, predecessor links, and
// calendar exceptions.
type xmlProject struct {
	XMLName   xml.Name `xml:"Project"`
	Calendars struct {
		Calendar []xmlCalendar `xml:"Calendar"`
	} `xml:"Calendars"`
	Tasks struct {
		Task []xmlTask `xml:"Task"`
	} `xml:"Tasks"`
}

type xmlCalendar struct {
	Exceptions struct {
		Exception []xmlException `xml:"Exception"`
	} `xml:"Exceptions"`
}

type xmlException struct {
	TimePeriod struct {
		FromDate string `xml:"FromDate"`
		ToDate   string `xml:"ToDate"`
	} `xml:"TimePeriod"`
	DayWorking string `xml:"DayWorking"` // "0" or "1"
}

type xmlTask struct {
	UID             string        `xml:"UID"`
	Name            string        `xml:"Name"`
	Duration        string        `xml:"Duration"`
	Start           string        `xml:"Start"`
	Finish          string        `xml:"Finish"`
	OutlineLevel    int           `xml:"OutlineLevel"`
	ConstraintType  int           `xml:"ConstraintType"`
	ConstraintDate  string        `xml:"ConstraintDate"`
	PredecessorLink []xmlPredLink `xml:"PredecessorLink"`
}

type xmlPredLink struct {
	PredecessorUID string `xml:"PredecessorUID"`
	Type           int    `xml:"Type"`
	LinkLag        int    `xml:"LinkLag"` // tenths of minutes
}

var linkTypeCodeToType = map[int]task.LinkType{0: task.FF, 1: task.FS, 2: task.SF, 3: task.SS}
var linkTypeToCode = map[task.LinkType]int{task.FF: 0, task.FS: 1, task.SF: 2, task.SS: 3}

// constraintCodeToType maps MS Project's eight constraint codes onto
// this domain's six ConstraintType values. ALAP (1) and MSO (2) have no
// direct equivalent here (spec.md's ConstraintType doesn't model
// "as late as possible" or "must start on"); ALAP degrades to ASAP and
// MSO degrades to SNET on the same date — the closest available
// constraint, preserving the date but not the exact semantics
// (DESIGN.md).
var constraintCodeToType = map[int]task.ConstraintType{
	0: task.ASAP,
	1: task.ASAP,
	2: task.SNET,
	3: task.MFO,
	4: task.SNET,
	5: task.SNLT,
	6: task.FNET,
	7: task.FNLT,
}

var constraintTypeToCode = map[task.ConstraintType]int{
	task.ASAP: 0,
	task.MFO:  3,
	task.SNET: 4,
	task.SNLT: 5,
	task.FNET: 6,
	task.FNLT: 7,
}

// ExportMSProjectXML renders tasks and cal as MS Project XML.
func ExportMSProjectXML(tasks []*task.Task, cal *calendar.Calendar) ([]byte, error) {
	var doc xmlProject
	doc.Calendars.Calendar = []xmlCalendar{{Exceptions: struct {
		Exception []xmlException `xml:"Exception"`
	}{Exception: exportExceptions(cal)}}}

	depth := taskDepths(tasks)
	for _, t := range tasks {
		xt := xmlTask{
			UID:            t.ID,
			Name:           t.Name,
			Duration:       formatXMLDuration(workDaysToMinutes(t.Duration)),
			OutlineLevel:   depth[t.ID] + 1,
			ConstraintType: constraintTypeToCode[t.ConstraintType],
		}
		if t.Start != nil {
			if parsed, err := calendar.ParseDate(*t.Start); err == nil {
				xt.Start = parsed.Format(msDateTimeLayout)
			}
		}
		if t.End != nil {
			if parsed, err := calendar.ParseDate(*t.End); err == nil {
				xt.Finish = parsed.Format(msDateTimeLayout)
			}
		}
		if t.ConstraintDate != nil {
			if parsed, err := calendar.ParseDate(*t.ConstraintDate); err == nil {
				xt.ConstraintDate = parsed.Format(msDateTimeLayout)
			}
		}
		for _, d := range t.Dependencies {
			xt.PredecessorLink = append(xt.PredecessorLink, xmlPredLink{
				PredecessorUID: d.PredecessorID,
				Type:           linkTypeToCode[d.Type],
				LinkLag:        workDaysToLagTenths(d.Lag),
			})
		}
		doc.Tasks.Task = append(doc.Tasks.Task, xt)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("importexport: encoding MS Project XML: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// ImportMSProjectXML parses an MS Project XML document into tasks and a
// calendar, reconstructing parent ids from outlineLevel and expanding
// calendar exceptions per day. It does not validate cross-task
// invariants — callers should run the result through task.ValidateSet.
func ImportMSProjectXML(data []byte) ([]*task.Task, *calendar.Calendar, error) {
	var doc xmlProject
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("importexport: parsing MS Project XML: %w", err)
	}

	tasks := make([]*task.Task, 0, len(doc.Tasks.Task))
	// stack[level-1] holds the id of the most recently seen task at that level.
	var stack []string
	for _, xt := range doc.Tasks.Task {
		t, err := task.New(xt.UID, xt.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("importexport: task %s: %w", xt.UID, err)
		}

		minutes, err := parseXMLDuration(xt.Duration)
		if err != nil {
			return nil, nil, fmt.Errorf("importexport: task %s duration: %w", xt.UID, err)
		}
		t.Duration = minutesToWorkDays(minutes)

		if xt.Start != "" {
			if parsed, err := time.Parse(msDateTimeLayout, xt.Start); err == nil {
				s := calendar.FormatDate(parsed)
				t.Start = &s
			}
		}
		if xt.Finish != "" {
			if parsed, err := time.Parse(msDateTimeLayout, xt.Finish); err == nil {
				s := calendar.FormatDate(parsed)
				t.End = &s
			}
		}
		if ct, ok := constraintCodeToType[xt.ConstraintType]; ok {
			t.ConstraintType = ct
		}
		if xt.ConstraintDate != "" {
			if parsed, err := time.Parse(msDateTimeLayout, xt.ConstraintDate); err == nil {
				s := calendar.FormatDate(parsed)
				t.ConstraintDate = &s
			}
		}

		level := xt.OutlineLevel
		if level < 1 {
			level = 1
		}
		if level > 1 && level-2 < len(stack) {
			parent := stack[level-2]
			t.ParentID = &parent
		}
		if level > len(stack) {
			stack = append(stack, t.ID)
		} else {
			stack = append(stack[:level-1], t.ID)
		}

		for _, link := range xt.PredecessorLink {
			if link.PredecessorUID == "" {
				continue
			}
			lt, ok := linkTypeCodeToType[link.Type]
			if !ok {
				lt = task.FS
			}
			t.Dependencies = append(t.Dependencies, task.Dependency{
				PredecessorID: link.PredecessorUID,
				Type:          lt,
				Lag:           lagTenthsToWorkDays(link.LinkLag),
			})
		}

		tasks = append(tasks, t)
	}

	cal, err := importExceptions(doc.Calendars.Calendar)
	if err != nil {
		return nil, nil, err
	}
	return tasks, cal, nil
}

// taskDepths computes each task's parent-chain depth (root = 0), used
// to derive its exported outlineLevel.
func taskDepths(tasks []*task.Task) map[string]int {
	byID := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	depth := make(map[string]int, len(tasks))
	var depthOf func(id string) int
	depthOf = func(id string) int {
		if d, ok := depth[id]; ok {
			return d
		}
		t := byID[id]
		if t == nil || t.ParentID == nil {
			depth[id] = 0
			return 0
		}
		d := depthOf(*t.ParentID) + 1
		depth[id] = d
		return d
	}
	for _, t := range tasks {
		depthOf(t.ID)
	}
	return depth
}

func exportExceptions(cal *calendar.Calendar) []xmlException {
	if cal == nil {
		return nil
	}
	out := make([]xmlException, 0, len(cal.Exceptions))
	for date, exc := range cal.Exceptions {
		parsed, err := calendar.ParseDate(date)
		if err != nil {
			continue
		}
		working := "0"
		if exc.Working {
			working = "1"
		}
		var x xmlException
		x.TimePeriod.FromDate = parsed.Format(msDateTimeLayout)
		x.TimePeriod.ToDate = parsed.Format(msDateTimeLayout)
		x.DayWorking = working
		out = append(out, x)
	}
	return out
}

// importExceptions expands each <Exception>'s [FromDate, ToDate] range
// into one calendar.Exception per day (SPEC_FULL.md §6.4 "per-day
// expansion").
func importExceptions(cals []xmlCalendar) (*calendar.Calendar, error) {
	cal := calendar.Default()
	for _, c := range cals {
		for _, exc := range c.Exceptions.Exception {
			from, err := time.Parse(msDateTimeLayout, exc.TimePeriod.FromDate)
			if err != nil {
				continue
			}
			to := from
			if exc.TimePeriod.ToDate != "" {
				if parsed, err := time.Parse(msDateTimeLayout, exc.TimePeriod.ToDate); err == nil {
					to = parsed
				}
			}
			working := exc.DayWorking == "1"
			for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
				cal.Exceptions[calendar.FormatDate(d)] = calendar.Exception{Working: working}
			}
		}
	}
	return cal, nil
}

func parseXMLDuration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !strings.HasPrefix(s, "PT") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return n, nil
	}
	rest := s[2:]
	var hours, minutes int
	if idx := strings.IndexByte(rest, 'H'); idx >= 0 {
		h, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		hours = h
		rest = rest[idx+1:]
	}
	if idx := strings.IndexByte(rest, 'M'); idx >= 0 {
		m, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		minutes = m
	}
	return hours*60 + minutes, nil
}

func formatXMLDuration(minutes int) string {
	return fmt.Sprintf("PT%dH%dM0S", minutes/60, minutes%60)
}

func minutesToWorkDays(minutes int) int {
	return int(math.Round(float64(minutes) / workMinutesPerDay))
}

func workDaysToMinutes(days int) int {
	return days * workMinutesPerDay
}

func lagTenthsToWorkDays(tenths int) int {
	minutes := float64(tenths) / 10
	return int(math.Round(minutes / workMinutesPerDay))
}

func workDaysToLagTenths(days int) int {
	return days * workMinutesPerDay * 10
}
