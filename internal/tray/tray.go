//go:build !darwin || cgo

package tray

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/systray"
	"go.uber.org/zap"
)

// A process owns at most one tray icon
var initialized atomic.Bool

// Options configures the tray icon
type Options struct {
	Title        string
	Tooltip      string
	Icon         []byte
	ReadyTimeout time.Duration
}

// Handle owns the tray registration and the click event stream
type Handle struct {
	events chan MenuAction
	end    func()
	once   sync.Once
}

// Events returns the stream of menu clicks
func (h *Handle) Events() <-chan MenuAction {
	return h.events
}

// Close removes the tray icon
func (h *Handle) Close() {
	h.once.Do(h.end)
}

// Controller builds the tray icon and menu
type Controller struct {
	opts   Options
	logger *zap.Logger
}

// NewController creates a new tray controller
func NewController(opts Options, logger *zap.Logger) *Controller {
	if opts.Icon == nil {
		opts.Icon = Icon()
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{opts: opts, logger: logger}
}

// Initialize registers the tray icon and menu with the OS and returns once
// the menu is live. It runs alongside the host toolkit's event loop.
func (c *Controller) Initialize() (*Handle, error) {
	if err := validateIcon(c.opts.Icon); err != nil {
		return nil, err
	}
	if !initialized.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: tray already initialized", ErrTrayInit)
	}

	h := &Handle{
		events: make(chan MenuAction),
	}
	ready := make(chan struct{})

	start, end := systray.RunWithExternalLoop(func() {
		c.onReady(h)
		close(ready)
	}, func() {
		c.logger.Info("System tray exited")
	})
	h.end = end

	start()

	select {
	case <-ready:
		c.logger.Info("System tray ready", zap.Int("items", len(menuItems)))
		return h, nil
	case <-time.After(c.opts.ReadyTimeout):
		h.Close()
		return nil, fmt.Errorf("%w: tray not ready after %s", ErrTrayInit, c.opts.ReadyTimeout)
	}
}

func (c *Controller) onReady(h *Handle) {
	systray.SetIcon(c.opts.Icon)
	if c.opts.Title != "" {
		systray.SetTitle(c.opts.Title)
	}
	systray.SetTooltip(c.opts.Tooltip)

	for _, item := range Items() {
		mi := systray.AddMenuItem(item.Label, item.Tooltip)
		go forwardClicks(mi.ClickedCh, item.Action, h.events)
	}
}

// forwardClicks funnels one item's clicks into the shared event stream
func forwardClicks(clicked <-chan struct{}, action MenuAction, events chan<- MenuAction) {
	for range clicked {
		events <- action
	}
}
