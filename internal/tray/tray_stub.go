//go:build darwin && !cgo

package tray

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Options configures the tray icon
type Options struct {
	Title        string
	Tooltip      string
	Icon         []byte
	ReadyTimeout time.Duration
}

// Handle owns the tray registration (stub for builds without cgo on macOS)
type Handle struct {
	events chan MenuAction
}

// Events returns the stream of menu clicks
func (h *Handle) Events() <-chan MenuAction {
	return h.events
}

// Close does nothing without a tray
func (h *Handle) Close() {}

// Controller builds the tray icon and menu
type Controller struct {
	logger *zap.Logger
}

// NewController creates a new tray controller
func NewController(opts Options, logger *zap.Logger) *Controller {
	return &Controller{logger: logger}
}

// Initialize always fails: the macOS tray needs cgo
func (c *Controller) Initialize() (*Handle, error) {
	return nil, fmt.Errorf("%w: system tray is unavailable without cgo support", ErrTrayInit)
}
