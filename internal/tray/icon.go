package tray

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	_ "image/png"
)

//go:embed assets/tray.png
var iconData []byte

// ErrTrayInit is returned when the tray icon or menu cannot be created
var ErrTrayInit = errors.New("tray initialization failed")

// Icon returns the bundled tray icon
func Icon() []byte {
	return iconData
}

// validateIcon rejects icons the OS tray would not accept
func validateIcon(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty icon", ErrTrayInit)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: decode icon: %v", ErrTrayInit, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: icon has no pixels", ErrTrayInit)
	}
	return nil
}
