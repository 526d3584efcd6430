package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/sancho-schedule/internal/controller"
)

// Run launches the dashboard as a full-screen bubbletea program and
// blocks until the user quits.
func Run(ctrl *controller.Controller) error {
	p := tea.NewProgram(New(ctrl), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
