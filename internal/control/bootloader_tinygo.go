//go:build tinygo

package control

import "machine"

// SystemRebooter resets the microcontroller into its USB bootloader.
type SystemRebooter struct{}

func (SystemRebooter) Reboot() error {
	machine.EnterBootloader()
	return nil
}
