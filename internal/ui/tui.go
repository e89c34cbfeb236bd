package ui

import (
	"fmt"
	"time"
	"unicode"

	"kenject/internal/catalog"
	"kenject/internal/shared"

	"github.com/gdamore/tcell/v2"
)

// Run drives the interactive shell: a process table with filter/sort, an
// inspector pane, and the inject/terminate actions. All systems work happens
// behind the scanner and injector adapters.
func Run(app *shared.AppState, scanner shared.Scanner, injector *shared.InjectorAdapter) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	app.Screen = s
	if app.RefreshInt <= 0 {
		app.RefreshInt = 2 * time.Second
	}
	app.SelectedIdx = -1
	app.Mode = shared.ModeDashboard

	scanner.Refresh(app)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			events <- s.PollEvent()
		}
	}()

	type refreshResult struct {
		processes           []shared.ProcessInfo
		lastError           string
		lastUpdate          time.Time
		selectedPid         uint32
		selectionPidAtStart uint32
	}

	refreshCh := make(chan refreshResult, 1)
	refreshInFlight := false
	startRefresh := func() {
		if refreshInFlight {
			return
		}
		refreshInFlight = true
		selectionPidAtStart := app.SelectedPid
		go func() {
			tmp := *app
			tmp.Screen = nil
			scanner.Refresh(&tmp)
			refreshCh <- refreshResult{
				processes:           tmp.Processes,
				lastError:           tmp.LastError,
				lastUpdate:          tmp.LastUpdate,
				selectedPid:         tmp.SelectedPid,
				selectionPidAtStart: selectionPidAtStart,
			}
		}()
	}

	type injectResult struct {
		target  shared.ProcessInfo
		outcome string
		err     error
	}

	// One injection at a time; the remote wait can take a while.
	injectCh := make(chan injectResult, 1)
	injectInFlight := false
	startInject := func(target shared.ProcessInfo) {
		if injectInFlight || injector == nil {
			return
		}
		if app.ModulePath == "" || !app.ModuleOK {
			app.LastError = "no validated module; start with -dll <path>"
			return
		}
		injectInFlight = true
		app.LastError = fmt.Sprintf("injecting into %s (pid %d)...", target.Name, target.Pid)
		go func() {
			outcome, err := injector.Kennject(target, app.ModulePath)
			injectCh <- injectResult{target: target, outcome: outcome, err: err}
		}()
	}

	tick := time.NewTicker(app.RefreshInt)
	defer tick.Stop()

	for {
		switch app.Mode {
		case shared.ModeDashboard:
			DrawDashboard(app)
		case shared.ModeInspect:
			DrawInspector(app)
		}
		s.Show()

		select {
		case ev := <-events:
			switch tev := ev.(type) {
			case *tcell.EventResize:
				s.Sync()

			case *tcell.EventKey:
				if app.Mode == shared.ModeDashboard && app.FilterActive {
					handleFilterKey(app, tev)
					break
				}

				switch app.Mode {

				case shared.ModeDashboard:
					visible := app.Visible()
					switch tev.Key() {
					case tcell.KeyUp:
						if app.SelectedIdx > 0 && app.SelectedIdx < len(visible) {
							app.SelectedIdx--
							app.SelectedPid = visible[app.SelectedIdx].Pid
						}
					case tcell.KeyDown:
						if app.SelectedIdx >= 0 && app.SelectedIdx < len(visible)-1 {
							app.SelectedIdx++
							app.SelectedPid = visible[app.SelectedIdx].Pid
						}
					case tcell.KeyEnter:
						if app.SelectedIdx >= 0 && app.SelectedIdx < len(visible) {
							app.InspectPid = visible[app.SelectedIdx].Pid
							app.Mode = shared.ModeInspect
						}
					}

					switch tev.Rune() {
					case 'q':
						return nil
					case 'r':
						startRefresh()
					case 's':
						app.SortByName = !app.SortByName
						ResyncSelection(app)
					case '/':
						app.FilterActive = true
					}

				case shared.ModeInspect:
					if tev.Key() == tcell.KeyEscape {
						app.Mode = shared.ModeDashboard
					}
					switch tev.Rune() {
					case 'q':
						return nil
					case 'i', 'I':
						if idx := shared.FindIndexByPid(app.Processes, app.InspectPid); idx >= 0 {
							startInject(app.Processes[idx])
						} else {
							app.LastError = "process no longer present"
						}
					case 'k', 'K':
						pid := app.InspectPid
						idx := shared.FindIndexByPid(app.Processes, pid)
						if idx == -1 {
							app.LastError = "process no longer present"
							break
						}
						if err := catalog.Terminate(pid); err != nil {
							app.LastError = "terminate failed: " + err.Error()
						} else {
							app.LastError = fmt.Sprintf("terminated pid %d (%s)", pid, app.Processes[idx].Name)
						}
					}
				}
			}

		case <-tick.C:
			startRefresh()

		case res := <-refreshCh:
			refreshInFlight = false
			statusBefore := app.LastError
			app.Processes = res.processes
			app.LastError = res.lastError
			app.LastUpdate = res.lastUpdate

			// keep the injection status line while one is in flight
			if injectInFlight && app.LastError == "" {
				app.LastError = statusBefore
			}

			if app.SelectedPid == res.selectionPidAtStart {
				app.SelectedPid = res.selectedPid
			}
			ResyncSelection(app)

		case res := <-injectCh:
			injectInFlight = false
			if res.err != nil {
				app.LastError = "injection failed: " + res.err.Error()
			} else {
				app.LastError = res.outcome
			}
		}
	}
}

func handleFilterKey(app *shared.AppState, tev *tcell.EventKey) {
	switch tev.Key() {
	case tcell.KeyEscape:
		app.Filter = ""
		app.FilterActive = false
		ResyncSelection(app)
	case tcell.KeyEnter:
		app.FilterActive = false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(app.Filter) > 0 {
			app.Filter = app.Filter[:len(app.Filter)-1]
			ResyncSelection(app)
		}
	default:
		if r := tev.Rune(); r != 0 && !unicode.IsControl(r) {
			app.Filter += string(r)
			ResyncSelection(app)
		}
	}
}
