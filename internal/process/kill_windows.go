//go:build windows

package process

import (
	"fmt"
	"os/exec"
	"strconv"
)

// KillTree kills pid and its children with taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	// #nosec G204 -- pid is an integer
	if err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run(); err != nil {
		return fmt.Errorf("process: taskkill %d: %w", pid, err)
	}
	return nil
}
