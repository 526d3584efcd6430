// Package dashboard is a small live-updating terminal view over a
// running controller.Controller — the kind of external renderer
// spec.md §1 places outside the core's scope, grounded on the
// teacher's internal/tui (bubbletea Model/Update/View loop), talking to
// the core only through its public Tasks/Stats/IsCalculating streams.
package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/sancho-schedule/internal/controller"
	"github.com/javiermolinar/sancho-schedule/internal/cpm"
	"github.com/javiermolinar/sancho-schedule/internal/task"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	floatStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	calcStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

type tasksMsg []*task.Task
type statsMsg cpm.Stats
type calcMsg bool

// Model is the dashboard's bubbletea model: a table of tasks plus a
// project-summary footer, refreshed whenever the controller publishes
// a new value on any of its three streams.
type Model struct {
	ctrl *controller.Controller

	table       table.Model
	stats       cpm.Stats
	calculating bool

	tasksCh <-chan []*task.Task
	statsCh <-chan cpm.Stats
	calcCh  <-chan bool

	cancelTasks func()
	cancelStats func()
	cancelCalc  func()
}

// New builds a dashboard Model subscribed to ctrl's streams.
func New(ctrl *controller.Controller) *Model {
	tasksCh, cancelTasks := ctrl.Tasks().Subscribe()
	statsCh, cancelStats := ctrl.Stats().Subscribe()
	calcCh, cancelCalc := ctrl.IsCalculating().Subscribe()

	cols := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Name", Width: 28},
		{Title: "ES", Width: 11},
		{Title: "EF", Width: 11},
		{Title: "LS", Width: 11},
		{Title: "LF", Width: 11},
		{Title: "Float", Width: 6},
		{Title: "Crit", Width: 5},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(20))

	return &Model{
		ctrl:        ctrl,
		table:       t,
		tasksCh:     tasksCh,
		statsCh:     statsCh,
		calcCh:      calcCh,
		cancelTasks: cancelTasks,
		cancelStats: cancelStats,
		cancelCalc:  cancelCalc,
	}
}

// Init starts listening on all three streams.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(listenTasks(m.tasksCh), listenStats(m.statsCh), listenCalc(m.calcCh))
}

func listenTasks(ch <-chan []*task.Task) tea.Cmd {
	return func() tea.Msg { return tasksMsg(<-ch) }
}
func listenStats(ch <-chan cpm.Stats) tea.Cmd {
	return func() tea.Msg { return statsMsg(<-ch) }
}
func listenCalc(ch <-chan bool) tea.Cmd {
	return func() tea.Msg { return calcMsg(<-ch) }
}

// Update handles stream pushes and key input.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksMsg:
		m.table.SetRows(rowsFor([]*task.Task(msg)))
		return m, listenTasks(m.tasksCh)
	case statsMsg:
		m.stats = cpm.Stats(msg)
		return m, listenStats(m.statsCh)
	case calcMsg:
		m.calculating = bool(msg)
		return m, listenCalc(m.calcCh)
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 6)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancelTasks()
			m.cancelStats()
			m.cancelCalc()
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the task table and a one-line project summary.
func (m *Model) View() string {
	status := ""
	if m.calculating {
		status = calcStyle.Render(" recalculating…")
	}
	footer := fmt.Sprintf("\n%s\n",
		statsStyle.Render(fmt.Sprintf("tasks=%d critical=%d", m.stats.TaskCount, m.stats.CriticalCount))+status)
	return headerStyle.Render("sancho-schedule — live plan") + "\n" + m.table.View() + footer + "\n(q to quit)\n"
}

func rowsFor(tasks []*task.Task) []table.Row {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		name := t.Name
		floatCol := fmt.Sprintf("%d", t.TotalFloat)
		crit := ""
		switch {
		case t.IsCritical:
			crit = criticalStyle.Render("yes")
			name = criticalStyle.Render(name)
		case t.TotalFloat > 0:
			name = floatStyle.Render(name)
			floatCol = floatStyle.Render(floatCol)
		}
		rows = append(rows, table.Row{
			t.ID, name,
			deref(t.EarlyStart), deref(t.EarlyFinish),
			deref(t.LateStart), deref(t.LateFinish),
			floatCol, crit,
		})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
