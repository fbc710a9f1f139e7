package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coolteam/cardshop/internal/logging"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	deps    Deps
	logger  *logging.Logger
}

// New creates a new TUI application
func New(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &App{deps: d, logger: logger.WithView("tui")}
}

// Run starts the TUI and blocks until the user quits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := a.deps
	if d.SessionEvents == nil && d.Store != nil {
		events := make(chan string, 8)
		err := d.Store.Watch(ctx, func(key string) {
			select {
			case events <- key:
			default:
				// A redraw is already pending.
			}
		})
		if err != nil {
			a.logger.Warn("session watcher unavailable", "error", err.Error())
		} else {
			d.SessionEvents = events
		}
	}

	a.program = tea.NewProgram(
		NewModel(ctx, d),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case <-sigChan:
			a.program.Send(tea.Quit())
		case <-ctx.Done():
		}
	}()

	_, err := a.program.Run()
	signal.Stop(sigChan)

	// Canceling the context through WithContext is a normal way to stop.
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
