package ui

import (
	"fmt"
	"time"

	"kenject/internal/shared"
)

func DrawDashboard(app *shared.AppState) {
	s := app.Screen
	s.Clear()

	w, h := s.Size()
	nowUTC := time.Now().UTC()

	PutString(s, 0, 0,
		TruncateToWidth(fmt.Sprintf("kenject | UTC: %s", nowUTC.Format("2006-01-02 15:04:05")), w),
	)

	module := "(none; injection disabled)"
	if app.ModulePath != "" {
		if app.ModuleOK {
			module = app.ModulePath
		} else {
			module = app.ModulePath + " (not a valid DLL)"
		}
	}
	PutString(s, 0, 1, TruncateToWidth("Module: "+module, w))

	PutString(s, 0, 2,
		TruncateToWidth("UP/DOWN select | ENTER inspect | / filter | s sort | r refresh | q quit", w),
	)

	filterLine := ""
	if app.Filter != "" || app.FilterActive {
		filterLine = "Filter: " + app.Filter
		if app.FilterActive {
			filterLine += "_"
		}
	}
	if filterLine != "" {
		PutString(s, 0, 3, TruncateToWidth(filterLine, w))
	}

	if app.LastError != "" {
		PutString(s, 0, 4, TruncateToWidth("Status: "+app.LastError, w))
	}

	y := 6
	visible := app.Visible()
	if len(visible) == 0 {
		PutString(s, 0, y, "no processes matching filter")
		return
	}

	PutString(s, 0, y,
		fmt.Sprintf("%-1s %-7s %-28s %-12s %-5s %-10s %-24s",
			" ", "PID", "NAME", "ARCH", "ELEV", "MEM", "USER"),
	)
	y++
	PutString(s, 0, y,
		fmt.Sprintf("%-1s %-7s %-28s %-12s %-5s %-10s %-24s",
			" ", "------", "----------------------------", "------------", "-----", "----------", "------------------------"),
	)
	y++

	// scroll window keeping the selection on screen
	rows := h - y
	if rows < 1 {
		return
	}
	first := 0
	if app.SelectedIdx >= rows {
		first = app.SelectedIdx - rows + 1
	}

	for i := first; i < len(visible) && y < h; i++ {
		p := visible[i]
		arrow := " "
		if i == app.SelectedIdx {
			arrow = ">"
		}

		elev := "no"
		if p.Elevated {
			elev = "yes"
		}

		line := fmt.Sprintf("%-1s %-7d %-28s %-12s %-5s %-10s %-24s",
			arrow,
			p.Pid,
			shared.TrimName(p.Name, 28),
			p.Arch,
			elev,
			shared.FormatMem(p.MemUsage),
			shared.TrimName(p.UserName, 24),
		)

		PutString(s, 0, y, TruncateToWidth(line, w))
		y++
	}
}
