package tray

import (
	"context"
	"os"

	"github.com/username/ctxc-desktop/internal/backend"
	"github.com/username/ctxc-desktop/internal/notify"
	"go.uber.org/zap"
)

// WindowOpener reveals the main window
type WindowOpener interface {
	Open() error
}

// BackendSender issues a single backend request
type BackendSender interface {
	Send(ctx context.Context, path string, method backend.Method, body interface{}) error
}

// Notifier delivers a UI event
type Notifier interface {
	Emit(eventName, message string) error
}

// Dispatcher maps menu clicks to actions. It is driven by a single goroutine.
type Dispatcher struct {
	window   WindowOpener
	backend  BackendSender
	notifier Notifier
	exit     func(code int)
	logger   *zap.Logger
}

// NewDispatcher creates a new dispatcher. exit defaults to os.Exit.
func NewDispatcher(window WindowOpener, backend BackendSender, notifier Notifier, exit func(int), logger *zap.Logger) *Dispatcher {
	if exit == nil {
		exit = os.Exit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		window:   window,
		backend:  backend,
		notifier: notifier,
		exit:     exit,
		logger:   logger,
	}
}

// Run dispatches events until ctx is done or events is closed
func (d *Dispatcher) Run(ctx context.Context, events <-chan MenuAction) {
	for {
		select {
		case <-ctx.Done():
			return
		case action, ok := <-events:
			if !ok {
				return
			}
			d.Dispatch(ctx, action)
		}
	}
}

// Dispatch performs the action for one menu click. Errors are logged and
// swallowed so the menu stays usable.
func (d *Dispatcher) Dispatch(ctx context.Context, action MenuAction) {
	switch action {
	case ActionOpen:
		d.logger.Info("Open UI clicked from tray")
		if err := d.window.Open(); err != nil {
			d.logger.Error("Failed to open UI", zap.Error(err))
		}

	case ActionIngest:
		d.logger.Info("Ingest Now clicked from tray")
		// Blocks the dispatch loop until the backend answers
		if err := d.backend.Send(ctx, backend.IngestPath, backend.MethodPost, backend.IngestAll); err != nil {
			d.logger.Error("Failed to ingest", zap.Error(err))
			return
		}
		if err := d.notifier.Emit(notify.IngestFinished, IngestMessage); err != nil {
			d.logger.Error("Failed to emit ingest notification", zap.Error(err))
		}

	case ActionQuit:
		d.logger.Info("Quit clicked from tray")
		_ = d.logger.Sync()
		d.exit(0)

	default:
		d.logger.Debug("Ignoring unknown menu action", zap.String("action", string(action)))
	}
}
