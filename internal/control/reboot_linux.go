//go:build linux && !tinygo

package control

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SystemRebooter restarts the host. Requires CAP_SYS_BOOT.
type SystemRebooter struct{}

func (SystemRebooter) Reboot() error {
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		return fmt.Errorf("reboot: %w", err)
	}
	return nil
}
