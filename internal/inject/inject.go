// Package inject implements DLL injection over CreateRemoteThread: write the
// module path into the target, then start a remote thread at LoadLibraryA
// with that path as its argument.
package inject

import (
	"fmt"
	"time"

	"kenject/internal/shared"

	"github.com/pkg/errors"
)

var (
	// ErrWaitTimeout: the remote thread outlived the bounded wait. The
	// target's state is unknown; the module may or may not have loaded.
	ErrWaitTimeout = errors.New("remote wait timed out; target state unknown")

	// ErrThreadCreate: CreateRemoteThread failed.
	ErrThreadCreate = errors.New("remote thread creation failed")
)

// Ops is the OS surface the protocol runs against. NewInjector wires the
// real Win32 calls; tests substitute fakes.
type Ops struct {
	// ResolvePid matches name case-insensitively against a fresh process
	// snapshot. The PID carried in a KenjectionInfo may be stale.
	ResolvePid func(name string) (uint32, error)

	OpenFull    func(pid uint32) (uintptr, error)
	AllocRemote func(process uintptr, size uintptr) (uintptr, error)
	WriteRemote func(process, addr uintptr, data []byte) error

	// LoaderEntry resolves LoadLibraryA in this process. The address is
	// valid inside the target only because kernel32 is mapped at the same
	// base in every process of the same bitness; across a bitness mismatch
	// this silently misbehaves.
	LoaderEntry func() (uintptr, error)

	SpawnThread func(process, entry, arg uintptr) (uintptr, error)
	WaitThread  func(thread uintptr, timeout time.Duration) error
	ExitCode    func(thread uintptr) (uint32, error)
	CloseHandle func(h uintptr)
}

type Injector struct {
	Ops Ops

	// WaitTimeout bounds the wait on the remote thread; 0 waits forever.
	WaitTimeout time.Duration
}

// Inject runs the five-stage protocol against one target. Each stage either
// advances or fails terminally; there are no retries. The process and thread
// handles are closed on every exit path. The remote page holding the path is
// never freed: on success LoadLibraryA has read it, and either way it goes
// away with process teardown.
func (inj *Injector) Inject(target shared.KenjectionInfo, path string) (string, error) {
	buf, err := ansiModulePath(path)
	if err != nil {
		return "", err
	}

	pid, err := inj.Ops.ResolvePid(target.Name)
	if err != nil {
		return "", errors.Wrapf(shared.ErrNotFound, "resolve %q: %v", target.Name, err)
	}

	process, err := inj.Ops.OpenFull(pid)
	if err != nil {
		return "", errors.Wrapf(shared.ErrAccessDenied,
			"open process %d with full access (elevated or protected target?): %v", pid, err)
	}
	defer inj.Ops.CloseHandle(process)

	addr, err := inj.Ops.AllocRemote(process, uintptr(len(buf)))
	if err != nil {
		return "", errors.Wrapf(shared.ErrResourceExhausted,
			"allocate %d bytes in target: %v", len(buf), err)
	}

	if err := inj.Ops.WriteRemote(process, addr, buf); err != nil {
		return "", errors.Wrapf(shared.ErrResourceExhausted,
			"write module path into target: %v", err)
	}

	entry, err := inj.Ops.LoaderEntry()
	if err != nil {
		return "", errors.Wrapf(shared.ErrResolutionFailed, "resolve LoadLibraryA: %v", err)
	}

	thread, err := inj.Ops.SpawnThread(process, entry, addr)
	if err != nil {
		return "", errors.Wrapf(ErrThreadCreate, "%v", err)
	}
	defer inj.Ops.CloseHandle(thread)

	if err := inj.Ops.WaitThread(thread, inj.WaitTimeout); err != nil {
		return "", errors.Wrap(err, "wait for remote thread")
	}

	exit, exitErr := inj.Ops.ExitCode(thread)
	return FormatOutcome(exitErr == nil, exit), nil
}

// FormatOutcome renders the terminal report. An unreadable exit code is a
// distinct case; it must not be conflated with a failed or successful load.
func FormatOutcome(exitReadable bool, exit uint32) string {
	switch {
	case !exitReadable:
		return "remote thread finished but its exit code is unreadable; load state unknown"
	case exit == 0:
		return "LoadLibraryA ran but did not load the module"
	default:
		return fmt.Sprintf("module loaded at 0x%X", exit)
	}
}

// ansiModulePath encodes the path as NUL-terminated ANSI bytes, the form
// LoadLibraryA reads. Non-ASCII paths cannot be transferred this way and are
// rejected up front.
func ansiModulePath(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("empty module path")
	}
	for i := 0; i < len(path); i++ {
		if path[i] == 0 {
			return nil, errors.New("module path contains a NUL byte")
		}
		if path[i] > 0x7F {
			return nil, errors.Errorf(
				"module path %q contains non-ASCII characters; only ANSI paths are supported", path)
		}
	}
	return append([]byte(path), 0), nil
}
