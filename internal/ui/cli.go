// Package ui implements the demo command-line surface over the
// controller's public API — spec.md §6 states no CLI is mandated, but
// the teacher ships one over its own core in exactly this shape
// (internal/ui/cli.go: App{repo, config, root, debug}).
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/sancho-schedule/internal/config"
	"github.com/javiermolinar/sancho-schedule/internal/controller"
	"github.com/javiermolinar/sancho-schedule/internal/history"
	"github.com/javiermolinar/sancho-schedule/internal/store"
	"github.com/javiermolinar/sancho-schedule/internal/worker"
)

// Version is set at build time.
var Version = "dev"

// App holds the CLI application state: a lazily-initialized runtime
// (worker host, controller, store) wrapped in a cobra command tree.
type App struct {
	cfg   *config.Config
	root  *cobra.Command
	debug bool

	host *worker.Host
	ctrl *controller.Controller
	st   *store.Store
}

// NewApp builds the command tree around cfg. The runtime (worker host,
// controller, store) is not started until the first command needs it.
func NewApp(cfg *config.Config) *App {
	a := &App{cfg: cfg}

	a.root = &cobra.Command{
		Use:   "sancho",
		Short: "Critical-path project scheduling",
		Long: `sancho-schedule is a CPM (Critical Path Method) scheduling engine.

It tracks tasks, dependencies, and a working-day calendar, and keeps
early/late dates, float, and the critical path up to date as the plan
changes.`,
		SilenceUsage: true,
	}
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "print the full error chain on failure")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.initCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.updateCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.calcCmd())
	a.root.AddCommand(a.indentCmd())
	a.root.AddCommand(a.outdentCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.undoCmd())
	a.root.AddCommand(a.redoCmd())
	a.root.AddCommand(a.copyCmd())
	a.root.AddCommand(a.pasteCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.watchCmd())
	a.root.AddCommand(a.planCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("sancho-schedule %s\n", Version)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	defer a.Close()
	return a.root.Execute()
}

// Close shuts the runtime down if it was ever started, flushing any
// outstanding events within the configured shutdown deadline.
func (a *App) Close() error {
	if a.st == nil {
		return nil
	}
	err := a.st.Shutdown(context.Background())
	a.st = nil
	a.ctrl = nil
	a.host = nil
	return err
}

// ensureRuntime lazily starts the worker host, controller, and store,
// loading prior state from the event log if the database already
// exists. Every command that touches live state calls this first.
func (a *App) ensureRuntime(ctx context.Context) error {
	if a.ctrl != nil {
		return nil
	}

	dbDir := filepath.Dir(a.cfg.Storage.DBPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	host := worker.NewHost()
	<-host.Ready()

	hist := history.New(a.cfg.History.Size)
	ctrl := controller.New(host, hist, nil)

	opts := store.OptionsFromConfig(a.cfg.Persist, a.cfg.Persist.FlushMaxBatch, a.cfg.Persist.SnapshotMaxUnflushed)
	st, err := store.New(a.cfg.Storage.DBPath, ctrl, opts)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	ctrl.SetPersister(st)

	tasks, cal, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading prior state: %w", err)
	}
	if cal == nil {
		cal = defaultCalendarFromConfig(a.cfg)
	}
	if err := ctrl.Initialize(ctx, tasks, cal); err != nil {
		return fmt.Errorf("initializing scheduler: %w", err)
	}

	a.host = host
	a.ctrl = ctrl
	a.st = st
	return nil
}
