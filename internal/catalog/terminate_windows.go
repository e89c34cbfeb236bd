//go:build windows
// +build windows

package catalog

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Terminate kills the process with the given PID.
func Terminate(pid uint32) error {
	if pid == 0 {
		return fmt.Errorf("invalid pid: %d", pid)
	}

	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, pid)
	if err != nil {
		return fmt.Errorf("open process: %w", err)
	}
	defer windows.CloseHandle(h)

	if err := windows.TerminateProcess(h, 1); err != nil {
		return fmt.Errorf("terminate process: %w", err)
	}

	return nil
}
