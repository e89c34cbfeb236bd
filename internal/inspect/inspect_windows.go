//go:build windows
// +build windows

package inspect

import (
	"unsafe"

	"kenject/internal/shared"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// IsElevated reads the elevation flag from the process's security token.
// Callers must treat a failure as "assume elevated"; an indeterminate
// privilege state is never permissive.
func IsElevated(h windows.Handle) (bool, error) {
	var token windows.Token
	if err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token); err != nil {
		return false, errors.Wrapf(shared.ErrAccessDenied, "open process token: %v", err)
	}
	defer token.Close()

	// TOKEN_ELEVATION is a single DWORD.
	var elevation uint32
	var outLen uint32
	err := windows.GetTokenInformation(token, windows.TokenElevation,
		(*byte)(unsafe.Pointer(&elevation)), uint32(unsafe.Sizeof(elevation)), &outLen)
	if err != nil {
		return false, errors.Wrapf(shared.ErrAccessDenied, "query token elevation: %v", err)
	}

	return elevation != 0, nil
}

// Architecture queries IsWow64Process2 and classifies the machine pair.
// It errors only when the underlying call itself fails (invalid or closed
// handle); callers fall back to ArchUnknown rather than propagate.
func Architecture(h windows.Handle) (shared.Arch, error) {
	var processMachine, nativeMachine uint16

	r, _, e := shared.ProcIsWow64Process2.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&processMachine)),
		uintptr(unsafe.Pointer(&nativeMachine)),
	)
	if r == 0 {
		return shared.ArchUnknown, errors.Errorf("IsWow64Process2: %v", e)
	}

	return ClassifyMachinePair(processMachine, nativeMachine), nil
}

// QueryPrivilege opens the process with limited rights and reads its
// elevation flag.
func QueryPrivilege(pid uint32) (bool, error) {
	h, err := windows.OpenProcess(uint32(shared.AccessLimited), false, pid)
	if err != nil {
		return false, errors.Wrapf(shared.ErrAccessDenied, "open process %d: %v", pid, err)
	}
	defer windows.CloseHandle(h)

	return IsElevated(h)
}

// QueryArchitecture opens the process with limited rights and classifies it.
func QueryArchitecture(pid uint32) (shared.Arch, error) {
	h, err := windows.OpenProcess(uint32(shared.AccessLimited), false, pid)
	if err != nil {
		return shared.ArchUnknown, errors.Wrapf(shared.ErrAccessDenied, "open process %d: %v", pid, err)
	}
	defer windows.CloseHandle(h)

	return Architecture(h)
}

// CallerElevated reports whether this process runs elevated.
func CallerElevated() (bool, error) {
	return IsElevated(windows.CurrentProcess())
}
