//go:build windows
// +build windows

package inject

import (
	"fmt"
	"strings"
	"time"
	"unsafe"

	"kenject/internal/shared"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// NewInjector wires the protocol to the real Win32 calls.
func NewInjector(waitTimeout time.Duration) *Injector {
	return &Injector{
		WaitTimeout: waitTimeout,
		Ops: Ops{
			ResolvePid:  resolvePid,
			OpenFull:    openFull,
			AllocRemote: allocRemote,
			WriteRemote: writeRemote,
			LoaderEntry: loaderEntry,
			SpawnThread: spawnThread,
			WaitThread:  waitThread,
			ExitCode:    exitCode,
			CloseHandle: func(h uintptr) { windows.CloseHandle(windows.Handle(h)) },
		},
	}
}

// Kennject runs one injection with the given wait bound.
func Kennject(target shared.KenjectionInfo, path string, waitTimeout time.Duration) (string, error) {
	return NewInjector(waitTimeout).Inject(target, path)
}

func resolvePid(name string) (uint32, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, err
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snap, &entry); err != nil {
		return 0, err
	}

	for {
		if strings.EqualFold(windows.UTF16ToString(entry.ExeFile[:]), name) {
			return entry.ProcessID, nil
		}
		if err := windows.Process32Next(snap, &entry); err != nil {
			return 0, fmt.Errorf("no process named %q in snapshot", name)
		}
	}
}

func openFull(pid uint32) (uintptr, error) {
	h, err := windows.OpenProcess(uint32(shared.AccessFull), false, pid)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func allocRemote(process uintptr, size uintptr) (uintptr, error) {
	addr, _, e := shared.ProcVirtualAllocEx.Call(
		process,
		0,
		size,
		windows.MEM_COMMIT|windows.MEM_RESERVE,
		windows.PAGE_READWRITE,
	)
	if addr == 0 {
		return 0, e
	}
	return addr, nil
}

func writeRemote(process, addr uintptr, data []byte) error {
	return windows.WriteProcessMemory(
		windows.Handle(process), addr, &data[0], uintptr(len(data)), nil)
}

func loaderEntry() (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(shared.ModKernel32.Handle()), "LoadLibraryA")
}

func spawnThread(process, entry, arg uintptr) (uintptr, error) {
	var threadID uint32
	th, _, e := shared.ProcCreateRemoteThread.Call(
		process,
		0,
		0,
		entry,
		arg,
		0,
		uintptr(unsafe.Pointer(&threadID)),
	)
	if th == 0 {
		return 0, e
	}
	return th, nil
}

func waitThread(thread uintptr, timeout time.Duration) error {
	ms := uint32(windows.INFINITE)
	if timeout > 0 {
		ms = uint32(timeout / time.Millisecond)
	}

	ev, err := windows.WaitForSingleObject(windows.Handle(thread), ms)
	if err != nil {
		return err
	}

	switch ev {
	case windows.WAIT_OBJECT_0:
		return nil
	case uint32(windows.WAIT_TIMEOUT):
		// Best effort; the target may be left mid-load.
		shared.ProcTerminateThread.Call(thread, 1)
		return errors.Wrapf(ErrWaitTimeout, "remote thread still running after %s", timeout)
	default:
		return fmt.Errorf("unexpected wait result %#x", ev)
	}
}

func exitCode(thread uintptr) (uint32, error) {
	var code uint32
	r, _, e := shared.ProcGetExitCodeThread.Call(thread, uintptr(unsafe.Pointer(&code)))
	if r == 0 {
		return 0, e
	}
	return code, nil
}
