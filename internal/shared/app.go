package shared

import (
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

type AppMode int

const (
	ModeDashboard AppMode = iota
	ModeInspect
)

type AppState struct {
	Screen tcell.Screen

	LastError  string
	LastUpdate time.Time
	RefreshInt time.Duration

	// Module chosen on the command line. Injection stays disabled until the
	// path has passed validation.
	ModulePath string
	ModuleOK   bool

	Processes   []ProcessInfo
	Mode        AppMode
	SelectedPid uint32
	SelectedIdx int
	InspectPid  uint32

	Filter       string
	FilterActive bool
	SortByName   bool
}

// Visible applies the name filter and sort order to the last snapshot.
// SelectedIdx indexes this slice, not Processes.
func (app *AppState) Visible() []ProcessInfo {
	f := strings.ToLower(app.Filter)
	out := make([]ProcessInfo, 0, len(app.Processes))
	for _, p := range app.Processes {
		if f == "" || strings.Contains(strings.ToLower(p.Name), f) {
			out = append(out, p)
		}
	}

	if app.SortByName {
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
			}
			return out[i].Pid < out[j].Pid
		})
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Pid < out[j].Pid })
	}
	return out
}

func FindIndexByPid(list []ProcessInfo, pid uint32) int {
	for i := range list {
		if list[i].Pid == pid {
			return i
		}
	}
	return -1
}

type Scanner interface {
	Refresh(app *AppState)
}

// ScannerAdapter pulls a fresh catalog snapshot on each Refresh. Collection
// failures degrade to an empty catalog plus a status line; they never abort.
type ScannerAdapter struct {
	Logger  *JSONLogger
	Collect func() ([]ProcessInfo, error)
}

func (s *ScannerAdapter) Refresh(app *AppState) {
	if s.Collect == nil {
		app.LastError = "scanner not configured"
		app.Processes = nil
		app.SelectedIdx = -1
		app.SelectedPid = 0
		app.LastUpdate = time.Now().UTC()
		return
	}

	procs, err := s.Collect()
	if err != nil {
		app.LastError = err.Error()
	} else {
		app.LastError = ""
	}

	if s.Logger != nil {
		if lerr := s.Logger.WriteRefresh(procs, err); lerr != nil {
			app.LastError = "log write failed: " + lerr.Error()
		}
	}

	app.Processes = procs
	app.LastUpdate = time.Now().UTC()

	visible := app.Visible()
	if len(visible) == 0 {
		app.SelectedIdx = -1
		app.SelectedPid = 0
		return
	}

	// maintain selection across refreshes
	if app.SelectedPid != 0 {
		if idx := FindIndexByPid(visible, app.SelectedPid); idx >= 0 {
			app.SelectedIdx = idx
			return
		}
	}

	app.SelectedIdx = 0
	app.SelectedPid = visible[0].Pid
}

// InjectorAdapter fronts the injection protocol with the two gates the
// protocol itself does not enforce: the module must be a loadable library,
// and an elevated target is refused unless the caller is elevated too. Both
// gates run before any remote memory is touched.
type InjectorAdapter struct {
	Logger         *JSONLogger
	Validate       func(path string) (bool, error)
	CallerElevated func() (bool, error)
	Inject         func(target KenjectionInfo, path string) (string, error)
}

func (a *InjectorAdapter) Kennject(target ProcessInfo, path string) (string, error) {
	outcome, err := a.kennject(target, path)

	if a.Logger != nil {
		info := KenjectionInfo{Name: target.Name, Pid: target.Pid}
		if lerr := a.Logger.WriteInjection(info, path, outcome, err); lerr != nil && err == nil {
			err = errors.Wrap(lerr, "injection succeeded but audit log write failed")
		}
	}

	return outcome, err
}

func (a *InjectorAdapter) kennject(target ProcessInfo, path string) (string, error) {
	if a.Validate == nil || a.Inject == nil {
		return "", errors.New("injector not configured")
	}

	isDLL, err := a.Validate(path)
	if err != nil {
		return "", errors.Wrap(err, "module validation")
	}
	if !isDLL {
		return "", errors.Errorf("%s is a valid image but not a loadable library (DLL flag missing)", path)
	}

	if target.Elevated {
		// Indeterminate caller elevation is treated as not elevated.
		callerElevated := false
		if a.CallerElevated != nil {
			if v, cerr := a.CallerElevated(); cerr == nil {
				callerElevated = v
			}
		}
		if !callerElevated {
			return "", errors.Wrapf(ErrAccessDenied,
				"target %s (pid %d) is elevated and the caller is not; restart elevated and retry",
				target.Name, target.Pid)
		}
	}

	return a.Inject(KenjectionInfo{Name: target.Name, Pid: target.Pid}, path)
}
