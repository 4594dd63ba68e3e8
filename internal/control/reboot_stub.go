//go:build !linux && !tinygo

package control

import "errors"

// SystemRebooter is unavailable on this platform.
type SystemRebooter struct{}

func (SystemRebooter) Reboot() error {
	return errors.New("reboot not supported on this platform")
}
