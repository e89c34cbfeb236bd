package shared

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ---------------- InjectorAdapter gates ---------------- */

type fakeInject struct {
	called bool
	target KenjectionInfo
	path   string

	outcome string
	err     error
}

func (f *fakeInject) fn(target KenjectionInfo, path string) (string, error) {
	f.called = true
	f.target = target
	f.path = path
	return f.outcome, f.err
}

func alwaysDLL(string) (bool, error) { return true, nil }
func neverDLL(string) (bool, error)  { return false, nil }
func elevatedYes() (bool, error)     { return true, nil }
func elevatedNo() (bool, error)      { return false, nil }
func elevatedUnknown() (bool, error) { return false, errors.New("token query failed") }

func TestKennjectPassesTargetThrough(t *testing.T) {
	fi := &fakeInject{outcome: "module loaded at 0x7FF000000000"}
	a := &InjectorAdapter{
		Validate:       alwaysDLL,
		CallerElevated: elevatedNo,
		Inject:         fi.fn,
	}

	outcome, err := a.Kennject(
		ProcessInfo{Pid: 1234, Name: "notepad.exe", Elevated: false},
		`C:\mod.dll`,
	)
	require.NoError(t, err)
	assert.Equal(t, fi.outcome, outcome)
	assert.Equal(t, KenjectionInfo{Name: "notepad.exe", Pid: 1234}, fi.target)
	assert.Equal(t, `C:\mod.dll`, fi.path)
}

func TestKennjectRefusesNonDLL(t *testing.T) {
	fi := &fakeInject{}
	a := &InjectorAdapter{
		Validate:       neverDLL,
		CallerElevated: elevatedYes,
		Inject:         fi.fn,
	}

	_, err := a.Kennject(ProcessInfo{Pid: 1234, Name: "notepad.exe"}, `C:\app.exe`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DLL flag missing")
	assert.False(t, fi.called)
}

func TestKennjectWrapsValidationError(t *testing.T) {
	fi := &fakeInject{}
	a := &InjectorAdapter{
		Validate: func(string) (bool, error) {
			return false, errors.Wrap(ErrParse, "parse C:\\mod.dll: bad magic")
		},
		CallerElevated: elevatedYes,
		Inject:         fi.fn,
	}

	_, err := a.Kennject(ProcessInfo{Pid: 1234, Name: "notepad.exe"}, `C:\mod.dll`)
	assert.ErrorIs(t, err, ErrParse)
	assert.False(t, fi.called)
}

func TestKennjectRefusesElevatedTargetFromPlainCaller(t *testing.T) {
	fi := &fakeInject{}
	a := &InjectorAdapter{
		Validate:       alwaysDLL,
		CallerElevated: elevatedNo,
		Inject:         fi.fn,
	}

	_, err := a.Kennject(
		ProcessInfo{Pid: 700, Name: "winlogon.exe", Elevated: true},
		`C:\mod.dll`,
	)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Contains(t, err.Error(), "winlogon.exe")
	assert.False(t, fi.called, "refusal must come before any remote work")
}

func TestKennjectTreatsUnknownCallerAsPlain(t *testing.T) {
	fi := &fakeInject{}
	a := &InjectorAdapter{
		Validate:       alwaysDLL,
		CallerElevated: elevatedUnknown,
		Inject:         fi.fn,
	}

	_, err := a.Kennject(
		ProcessInfo{Pid: 700, Name: "winlogon.exe", Elevated: true},
		`C:\mod.dll`,
	)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.False(t, fi.called)
}

func TestKennjectAllowsElevatedCaller(t *testing.T) {
	fi := &fakeInject{outcome: "module loaded at 0x1000"}
	a := &InjectorAdapter{
		Validate:       alwaysDLL,
		CallerElevated: elevatedYes,
		Inject:         fi.fn,
	}

	outcome, err := a.Kennject(
		ProcessInfo{Pid: 700, Name: "winlogon.exe", Elevated: true},
		`C:\mod.dll`,
	)
	require.NoError(t, err)
	assert.Equal(t, fi.outcome, outcome)
	assert.True(t, fi.called)
}

func TestKennjectSkipsCallerCheckForPlainTarget(t *testing.T) {
	fi := &fakeInject{outcome: "module loaded at 0x1000"}
	a := &InjectorAdapter{
		Validate: alwaysDLL,
		CallerElevated: func() (bool, error) {
			t.Fatal("caller elevation must not be queried for a non-elevated target")
			return false, nil
		},
		Inject: fi.fn,
	}

	_, err := a.Kennject(
		ProcessInfo{Pid: 1234, Name: "notepad.exe", Elevated: false},
		`C:\mod.dll`,
	)
	require.NoError(t, err)
	assert.True(t, fi.called)
}

/* ---------------- ScannerAdapter ---------------- */

func TestScannerRefreshDegradesOnError(t *testing.T) {
	app := &AppState{
		Processes:   []ProcessInfo{{Pid: 1, Name: "stale.exe"}},
		SelectedPid: 1,
	}
	sc := &ScannerAdapter{
		Collect: func() ([]ProcessInfo, error) {
			return []ProcessInfo{}, errors.New("snapshot failed")
		},
	}

	sc.Refresh(app)
	assert.Equal(t, "snapshot failed", app.LastError)
	assert.Empty(t, app.Processes)
	assert.Equal(t, -1, app.SelectedIdx)
	assert.False(t, app.LastUpdate.IsZero())
}

func TestScannerRefreshKeepsSelectionByPid(t *testing.T) {
	app := &AppState{SelectedPid: 200, SelectedIdx: 1}
	sc := &ScannerAdapter{
		Collect: func() ([]ProcessInfo, error) {
			// new process inserted before the selected one
			return []ProcessInfo{
				{Pid: 50, Name: "new.exe"},
				{Pid: 100, Name: "a.exe"},
				{Pid: 200, Name: "b.exe"},
			}, nil
		},
	}

	sc.Refresh(app)
	require.Equal(t, 2, app.SelectedIdx)
	assert.Equal(t, uint32(200), app.SelectedPid)
	assert.Empty(t, app.LastError)
}

func TestScannerRefreshResetsSelectionWhenPidGone(t *testing.T) {
	app := &AppState{SelectedPid: 999, SelectedIdx: 5}
	sc := &ScannerAdapter{
		Collect: func() ([]ProcessInfo, error) {
			return []ProcessInfo{{Pid: 100, Name: "a.exe"}}, nil
		},
	}

	sc.Refresh(app)
	assert.Equal(t, 0, app.SelectedIdx)
	assert.Equal(t, uint32(100), app.SelectedPid)
}

/* ---------------- Visible ---------------- */

func visibleFixture() []ProcessInfo {
	return []ProcessInfo{
		{Pid: 300, Name: "Svchost.exe"},
		{Pid: 100, Name: "notepad.exe"},
		{Pid: 200, Name: "explorer.exe"},
	}
}

func TestVisibleSortsByPidByDefault(t *testing.T) {
	app := &AppState{Processes: visibleFixture()}

	got := app.Visible()
	require.Len(t, got, 3)
	assert.Equal(t, uint32(100), got[0].Pid)
	assert.Equal(t, uint32(200), got[1].Pid)
	assert.Equal(t, uint32(300), got[2].Pid)
}

func TestVisibleSortsByNameCaseInsensitive(t *testing.T) {
	app := &AppState{Processes: visibleFixture(), SortByName: true}

	got := app.Visible()
	require.Len(t, got, 3)
	assert.Equal(t, "explorer.exe", got[0].Name)
	assert.Equal(t, "notepad.exe", got[1].Name)
	assert.Equal(t, "Svchost.exe", got[2].Name)
}

func TestVisibleFilterIsCaseInsensitiveSubstring(t *testing.T) {
	app := &AppState{Processes: visibleFixture(), Filter: "SVC"}

	got := app.Visible()
	require.Len(t, got, 1)
	assert.Equal(t, "Svchost.exe", got[0].Name)
}

func TestVisibleFilterMayMatchNothing(t *testing.T) {
	app := &AppState{Processes: visibleFixture(), Filter: "nosuch"}
	assert.Empty(t, app.Visible())
}
