// Package window reveals the application's main window.
package window

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// MainLabel identifies the single application window
const MainLabel = "main"

// ErrWindowUnavailable is returned when the registry has no main window
var ErrWindowUnavailable = errors.New("main window not available")

// Window is a native window handle
type Window interface {
	Show() error
	Focus() error
}

// Registry looks windows up by label
type Registry interface {
	Window(label string) (Window, bool)
}

// Manager shows and focuses the main window
type Manager struct {
	registry Registry
	logger   *zap.Logger
}

// NewManager creates a new window manager
func NewManager(registry Registry, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{registry: registry, logger: logger}
}

// Open makes the main window visible and gives it input focus, stopping at
// the first failing step.
func (m *Manager) Open() error {
	if m.registry == nil {
		return ErrWindowUnavailable
	}

	w, ok := m.registry.Window(MainLabel)
	if !ok || w == nil {
		return ErrWindowUnavailable
	}

	if err := w.Show(); err != nil {
		return fmt.Errorf("failed to show %s window: %w", MainLabel, err)
	}
	if err := w.Focus(); err != nil {
		return fmt.Errorf("failed to focus %s window: %w", MainLabel, err)
	}

	m.logger.Debug("Window opened", zap.String("window", MainLabel))
	return nil
}
