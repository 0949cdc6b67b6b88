package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/username/ctxc-desktop/internal/notify"
	"github.com/username/ctxc-desktop/internal/tray"
	"github.com/username/ctxc-desktop/internal/window"
	"go.uber.org/zap"
)

// Host is the UI toolkit that owns the main event loop and the main window
type Host interface {
	window.Registry
	notify.Sink
	OnStartup(fn func(ctx context.Context))
	Run() error
	Quit()
}

// TrayEvents is a live tray registration
type TrayEvents interface {
	Events() <-chan tray.MenuAction
	Close()
}

// TrayStarter creates the tray icon and menu
type TrayStarter func() (TrayEvents, error)

// ControllerStarter adapts a tray controller to a TrayStarter
func ControllerStarter(c *tray.Controller) TrayStarter {
	return func() (TrayEvents, error) {
		h, err := c.Initialize()
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}

// Daemon represents the desktop shell process: Starting until the tray is
// up, then Running until Quit or a signal.
type Daemon struct {
	host       Host
	startTray  TrayStarter
	dispatcher *tray.Dispatcher
	logger     *zap.Logger
	startErr   chan error
}

// NewDaemon creates a new daemon instance
func NewDaemon(host Host, startTray TrayStarter, dispatcher *tray.Dispatcher, logger *zap.Logger) *Daemon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daemon{
		host:       host,
		startTray:  startTray,
		dispatcher: dispatcher,
		logger:     logger,
		startErr:   make(chan error, 1),
	}
}

// Start runs the host event loop and blocks until it exits. A tray that
// cannot be created aborts startup with tray.ErrTrayInit.
func (d *Daemon) Start() error {
	d.host.OnStartup(d.onStartup)

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.host.Quit()
		case <-done:
		}
	}()

	d.logger.Info("Daemon starting")
	runErr := d.host.Run()

	select {
	case err := <-d.startErr:
		return err
	default:
	}
	if runErr != nil {
		return fmt.Errorf("webview failed: %w", runErr)
	}

	d.logger.Info("Daemon stopped")
	return nil
}

// onStartup brings the tray up once the host runtime exists. It must not
// block the host's startup callback.
func (d *Daemon) onStartup(ctx context.Context) {
	go func() {
		d.logger.Info("Initializing system tray")
		events, err := d.startTray()
		if err != nil {
			d.logger.Error("Failed to initialize system tray", zap.Error(err))
			d.startErr <- err
			d.host.Quit()
			return
		}
		defer events.Close()

		d.logger.Info("Daemon running")
		d.dispatcher.Run(ctx, events.Events())
	}()
}
