// Package webview hosts the main window: a Wails webview that renders the
// Context Cache UI served by the backend host.
package webview

import (
	"context"
	"errors"
	"sync"

	"github.com/username/ctxc-desktop/internal/window"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"
)

// ErrNotStarted is returned when the webview runtime is not up yet
var ErrNotStarted = errors.New("webview not started")

// Options configures the main window
type Options struct {
	Title       string
	Width       int
	Height      int
	StartHidden bool
	Host        func() string
}

// App is the Wails application hosting the main window
type App struct {
	opts   Options
	logger *zap.Logger

	mu        sync.RWMutex
	ctx       context.Context
	onStartup []func(ctx context.Context)
}

// NewApp creates a new webview application
func NewApp(opts Options, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{opts: opts, logger: logger}
}

// OnStartup registers fn to run once the Wails runtime is available
func (a *App) OnStartup(fn func(ctx context.Context)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStartup = append(a.onStartup, fn)
}

// Run blocks until the application exits
func (a *App) Run() error {
	return wails.Run(&options.App{
		Title:             a.opts.Title,
		Width:             a.opts.Width,
		Height:            a.opts.Height,
		StartHidden:       a.opts.StartHidden,
		HideWindowOnClose: true,
		AssetServer: &assetserver.Options{
			Handler: NewProxy(a.opts.Host, a.logger),
		},
		OnStartup:  a.startup,
		OnShutdown: a.shutdown,
	})
}

// Quit stops the Wails event loop
func (a *App) Quit() {
	if ctx := a.context(); ctx != nil {
		runtime.Quit(ctx)
	}
}

func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	hooks := append([]func(context.Context){}, a.onStartup...)
	a.mu.Unlock()

	a.logger.Info("Webview started")
	for _, fn := range hooks {
		fn(ctx)
	}
}

func (a *App) shutdown(ctx context.Context) {
	a.logger.Info("Webview shutting down")
}

func (a *App) context() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ctx
}

// Window implements window.Registry. Only the main window exists and only
// after startup.
func (a *App) Window(label string) (window.Window, bool) {
	if label != window.MainLabel {
		return nil, false
	}
	ctx := a.context()
	if ctx == nil {
		return nil, false
	}
	return &mainWindow{ctx: ctx}, true
}

// Emit implements notify.Sink by sending a Wails event to the frontend
func (a *App) Emit(event string, payload interface{}) error {
	ctx := a.context()
	if ctx == nil {
		return ErrNotStarted
	}
	runtime.EventsEmit(ctx, event, payload)
	return nil
}

type mainWindow struct {
	ctx context.Context
}

func (w *mainWindow) Show() error {
	runtime.WindowShow(w.ctx)
	return nil
}

// Focus raises the window: Wails v2 has no direct focus call, toggling
// always-on-top brings it to the front.
func (w *mainWindow) Focus() error {
	runtime.WindowUnminimise(w.ctx)
	runtime.WindowSetAlwaysOnTop(w.ctx, true)
	runtime.WindowSetAlwaysOnTop(w.ctx, false)
	return nil
}
