package ui

import (
	"fmt"
	"strings"
	"time"

	"kenject/internal/shared"
)

func DrawInspector(app *shared.AppState) {
	s := app.Screen
	s.Clear()

	w, h := s.Size()
	nowUTC := time.Now().UTC()

	PutString(s, 0, 0,
		TruncateToWidth(fmt.Sprintf("kenject | UTC: %s", nowUTC.Format("2006-01-02 15:04:05")), w),
	)

	var proc *shared.ProcessInfo
	for i := range app.Processes {
		if app.Processes[i].Pid == app.InspectPid {
			proc = &app.Processes[i]
			break
		}
	}

	if proc == nil {
		PutString(s, 0, 2, "Process no longer present. Press ESC.")
		return
	}

	y := 2
	title := fmt.Sprintf(" %s (PID %d) ", proc.Name, proc.Pid)
	sep := strings.Repeat("─", MinInt(len(title), w))

	PutString(s, 0, y, sep)
	y++
	PutString(s, 0, y, TruncateToWidth(title, w))
	y++
	PutString(s, 0, y, sep)
	y += 2

	PutString(s, 0, y, fmt.Sprintf("Architecture: %s", proc.Arch))
	y++
	elev := "no"
	if proc.Elevated {
		elev = "yes"
	}
	PutString(s, 0, y, fmt.Sprintf("Elevated:     %s", elev))
	y += 2

	PutString(s, 0, y, "Process:")
	y++

	user := proc.UserName
	if user == "" {
		user = "(unknown)"
	}
	PutString(s, 2, y, TruncateToWidth(fmt.Sprintf("User: %s", user), w-2))
	y++

	parentPid := "unknown"
	if proc.ParentPid > 0 {
		parentPid = fmt.Sprintf("%d", proc.ParentPid)
	}
	PutString(s, 2, y, fmt.Sprintf("Parent PID: %s", parentPid))
	y++

	PutString(s, 2, y, fmt.Sprintf("Session: %d", proc.SessionID))
	y++

	path := proc.ExePath
	if path == "" {
		path = "(unknown)"
	}
	PutString(s, 2, y, TruncateToWidth(fmt.Sprintf("Path: %s", path), w-2))
	y++

	company := proc.Company
	if company == "" {
		company = "(unknown)"
	}
	PutString(s, 2, y, TruncateToWidth(fmt.Sprintf("Company: %s", company), w-2))
	y++

	PutString(s, 2, y, fmt.Sprintf("Memory: %s", shared.FormatMem(proc.MemUsage)))
	y += 2

	if y < h-4 {
		PutString(s, 0, y, "Injection:")
		y++
		module := "(none; start with -dll <path>)"
		if app.ModulePath != "" {
			module = app.ModulePath
			if !app.ModuleOK {
				module += " (not a valid DLL)"
			}
		}
		PutString(s, 2, y, TruncateToWidth("Module: "+module, w-2))
	}

	if app.LastError != "" && h >= 2 {
		PutString(s, 0, h-2, TruncateToWidth("Status: "+app.LastError, w))
	}

	PutString(s, 0, h-1, "ESC return | i inject | k terminate | q quit")
}
