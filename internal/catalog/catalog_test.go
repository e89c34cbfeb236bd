package catalog

import (
	"testing"

	"kenject/internal/shared"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorld struct {
	entries  []Entry
	enumErr  error
	openFail map[uint32]bool // PIDs whose limited open is denied
	elevated map[uint32]bool
	elevErr  map[uint32]error
	arch     map[uint32]shared.Arch
	archErr  map[uint32]error

	opened []uintptr
	closed []uintptr
}

func (w *fakeWorld) source() *Source {
	return &Source{
		Enumerate: func() ([]Entry, error) {
			if w.enumErr != nil {
				return nil, w.enumErr
			}
			return w.entries, nil
		},
		OpenLimited: func(pid uint32) (uintptr, error) {
			if w.openFail[pid] {
				return 0, errors.New("access is denied")
			}
			h := uintptr(pid) // handle value mirrors the pid for accounting
			w.opened = append(w.opened, h)
			return h, nil
		},
		CloseHandle: func(h uintptr) {
			w.closed = append(w.closed, h)
		},
		Elevated: func(h uintptr) (bool, error) {
			pid := uint32(h)
			if err := w.elevErr[pid]; err != nil {
				return false, err
			}
			return w.elevated[pid], nil
		},
		Architecture: func(h uintptr) (shared.Arch, error) {
			pid := uint32(h)
			if err := w.archErr[pid]; err != nil {
				return shared.ArchUnknown, err
			}
			return w.arch[pid], nil
		},
	}
}

func TestRefreshFoldsInspectors(t *testing.T) {
	w := &fakeWorld{
		entries: []Entry{
			{Pid: 100, Name: "notepad.exe"},
			{Pid: 200, Name: "svchost.exe"},
		},
		elevated: map[uint32]bool{100: false, 200: true},
		arch:     map[uint32]shared.Arch{100: shared.ArchX64, 200: shared.ArchX86OnX64},
	}

	procs, err := w.source().Refresh()
	require.NoError(t, err)
	require.Len(t, procs, 2)

	assert.Equal(t, uint32(100), procs[0].Pid)
	assert.Equal(t, "notepad.exe", procs[0].Name)
	assert.False(t, procs[0].Elevated)
	assert.Equal(t, shared.ArchX64, procs[0].Arch)

	assert.True(t, procs[1].Elevated)
	assert.Equal(t, shared.ArchX86OnX64, procs[1].Arch)

	for _, p := range procs {
		assert.NotEmpty(t, p.Name)
		assert.Greater(t, p.Pid, uint32(0))
	}
}

func TestRefreshEmitsUnopenableProcesses(t *testing.T) {
	w := &fakeWorld{
		entries:  []Entry{{Pid: 4, Name: "System"}},
		openFail: map[uint32]bool{4: true},
	}

	procs, err := w.source().Refresh()
	require.NoError(t, err)
	require.Len(t, procs, 1)

	// visibility never depends on rights; defaults are conservative
	assert.True(t, procs[0].Elevated)
	assert.Equal(t, shared.ArchUnknown, procs[0].Arch)
}

func TestRefreshDefaultsOnInspectorFailure(t *testing.T) {
	w := &fakeWorld{
		entries: []Entry{{Pid: 100, Name: "lsass.exe"}},
		elevErr: map[uint32]error{100: shared.ErrAccessDenied},
		archErr: map[uint32]error{100: errors.New("IsWow64Process2: handle closed")},
	}

	procs, err := w.source().Refresh()
	require.NoError(t, err)
	require.Len(t, procs, 1)

	assert.True(t, procs[0].Elevated, "indeterminate privilege must read as elevated")
	assert.Equal(t, shared.ArchUnknown, procs[0].Arch)
}

func TestRefreshFailsClosedOnSnapshotError(t *testing.T) {
	w := &fakeWorld{enumErr: errors.New("CreateToolhelp32Snapshot failed")}

	procs, err := w.source().Refresh()
	assert.Error(t, err)
	assert.NotNil(t, procs)
	assert.Empty(t, procs)
}

func TestRefreshSkipsIdleProcess(t *testing.T) {
	w := &fakeWorld{
		entries: []Entry{{Pid: 0, Name: "[System Process]"}, {Pid: 100, Name: "a.exe"}},
	}

	procs, err := w.source().Refresh()
	require.NoError(t, err)
	require.Len(t, procs, 1)
	assert.Equal(t, uint32(100), procs[0].Pid)
}

func TestRefreshClosesEveryOpenedHandle(t *testing.T) {
	w := &fakeWorld{
		entries: []Entry{
			{Pid: 100, Name: "a.exe"},
			{Pid: 200, Name: "b.exe"},
			{Pid: 300, Name: "c.exe"},
		},
		openFail: map[uint32]bool{200: true},
	}

	_, err := w.source().Refresh()
	require.NoError(t, err)
	assert.ElementsMatch(t, w.opened, w.closed)
}

func TestRefreshIsIdempotentWithoutChurn(t *testing.T) {
	w := &fakeWorld{
		entries: []Entry{
			{Pid: 100, Name: "a.exe"},
			{Pid: 200, Name: "b.exe"},
		},
		elevated: map[uint32]bool{100: true},
		arch:     map[uint32]shared.Arch{100: shared.ArchX64, 200: shared.ArchArm64},
	}
	src := w.source()

	first, err := src.Refresh()
	require.NoError(t, err)
	second, err := src.Refresh()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
