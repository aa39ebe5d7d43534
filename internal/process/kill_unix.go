//go:build !windows

package process

import (
	"errors"
	"fmt"
	"syscall"
)

// KillTree sends SIGKILL to the process group led by pid.
// A process that is already gone is not an error.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("process: kill group %d: %w", pid, err)
	}
	return nil
}
