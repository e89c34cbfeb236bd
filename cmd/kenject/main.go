//go:build windows
// +build windows

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"kenject/internal/catalog"
	"kenject/internal/config"
	"kenject/internal/inject"
	"kenject/internal/inspect"
	"kenject/internal/pefile"
	"kenject/internal/shared"
	"kenject/internal/ui"
)

/* ---------------- one-shot modes ---------------- */

func runQuery(pid uint32) {
	// degrade the same way the catalog does: indeterminate privilege is
	// reported as elevated, indeterminate architecture as unknown
	elevated := true
	if v, err := inspect.QueryPrivilege(pid); err == nil {
		elevated = v
	}
	arch := shared.ArchUnknown
	if a, err := inspect.QueryArchitecture(pid); err == nil {
		arch = a
	}

	fmt.Printf("pid=%d elevated=%v arch=%q\n", pid, elevated, arch)
}

func runList(logger *shared.JSONLogger) {
	procs, err := catalog.Collect()
	if err != nil {
		fmt.Println("warning:", err)
	}
	if logger != nil {
		_ = logger.WriteRefresh(procs, err)
	}

	// intentionally minimal, machine-friendly output
	for _, p := range procs {
		fmt.Printf("pid=%d name=%s arch=%q elevated=%v\n",
			p.Pid, p.Name, p.Arch, p.Elevated)
	}
}

func runInject(injector *shared.InjectorAdapter, dll, name string, pid uint32) {
	procs, err := catalog.Collect()
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}

	var target *shared.ProcessInfo
	for i := range procs {
		if pid != 0 && procs[i].Pid == pid {
			target = &procs[i]
			break
		}
		if pid == 0 && strings.EqualFold(procs[i].Name, name) {
			target = &procs[i]
			break
		}
	}
	if target == nil {
		fmt.Println("error: target process not found in snapshot")
		os.Exit(1)
	}

	outcome, err := injector.Kennject(*target, dll)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	fmt.Println(outcome)
}

/* ---------------- main ---------------- */

func main() {
	cfg := config.Load()

	list := flag.Bool("list", false, "Print one catalog snapshot and exit")
	query := flag.Uint("query", 0, "Print privilege and architecture for a PID and exit")
	dll := flag.String("dll", "", "Path to the DLL to inject")
	name := flag.String("name", "", "Target process name for one-shot injection")
	pid := flag.Uint("pid", 0, "Target PID for one-shot injection")
	interval := flag.Duration("interval", cfg.RefreshInterval, "Catalog refresh interval (e.g. 500ms, 2s)")
	timeout := flag.Duration("timeout", cfg.WaitTimeout, "Remote thread wait bound (0 waits forever)")
	logPath := flag.String("log", cfg.LogPath, `Audit log path ("-" for stdout, empty disables)`)
	logPretty := flag.Bool("log-pretty", cfg.LogPretty, "Indent audit log entries")

	flag.Parse()

	logger, err := shared.NewJSONLogger(*logPath, *logPretty)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if logger != nil {
		defer logger.Close()
	}

	injector := &shared.InjectorAdapter{
		Logger:         logger,
		Validate:       pefile.IsDLL,
		CallerElevated: inspect.CallerElevated,
		Inject: func(target shared.KenjectionInfo, path string) (string, error) {
			return inject.Kennject(target, path, *timeout)
		},
	}

	if *query != 0 {
		runQuery(uint32(*query))
		return
	}

	if *list {
		runList(logger)
		return
	}

	if *dll != "" && (*name != "" || *pid != 0) {
		runInject(injector, *dll, *name, uint32(*pid))
		return
	}

	// -------- interactive TUI --------
	app := &shared.AppState{
		RefreshInt: *interval,
		ModulePath: *dll,
	}
	if *dll != "" {
		ok, verr := pefile.IsDLL(*dll)
		if verr != nil {
			fmt.Println("error:", verr)
			os.Exit(1)
		}
		app.ModuleOK = ok
	}

	sc := &shared.ScannerAdapter{
		Logger:  logger,
		Collect: catalog.Collect,
	}

	if err := ui.Run(app, sc, injector); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
