//go:build !windows
// +build !windows

package catalog

import (
	"errors"

	"kenject/internal/shared"
)

func Collect() ([]shared.ProcessInfo, error) {
	return nil, errors.New("process catalog is only supported on Windows")
}

func Terminate(pid uint32) error {
	return errors.New("process termination is only supported on Windows")
}
