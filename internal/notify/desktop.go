package notify

import "github.com/gen2brain/beeep"

// DesktopToaster shows notifications through the OS notification center
func DesktopToaster() Toaster {
	return func(title, message string) error {
		return beeep.Notify(title, message, "")
	}
}
