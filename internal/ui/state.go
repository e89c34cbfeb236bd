package ui

import (
	"kenject/internal/shared"

	"github.com/gdamore/tcell/v2"
)

/* ---------- helpers ---------- */

func PutString(s tcell.Screen, x, y int, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}

func TruncateToWidth(s string, w int) string {
	if w <= 0 || len(s) <= w {
		return s
	}
	if w <= 3 {
		return s[:w]
	}
	return s[:w-3] + "..."
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ResyncSelection re-anchors the selection after the visible list changed
// (refresh, filter edit, sort toggle).
func ResyncSelection(app *shared.AppState) {
	visible := app.Visible()
	if len(visible) == 0 {
		app.SelectedIdx = -1
		app.SelectedPid = 0
		return
	}

	if app.SelectedPid != 0 {
		if idx := shared.FindIndexByPid(visible, app.SelectedPid); idx >= 0 {
			app.SelectedIdx = idx
			return
		}
	}

	app.SelectedIdx = 0
	app.SelectedPid = visible[0].Pid
}
