//go:build windows
// +build windows

package shared

import "golang.org/x/sys/windows"

var (
	ModKernel32              = windows.NewLazySystemDLL("kernel32.dll")
	ProcVirtualAllocEx       = ModKernel32.NewProc("VirtualAllocEx")
	ProcCreateRemoteThread   = ModKernel32.NewProc("CreateRemoteThread")
	ProcTerminateThread      = ModKernel32.NewProc("TerminateThread")
	ProcGetExitCodeThread    = ModKernel32.NewProc("GetExitCodeThread")
	ProcIsWow64Process2      = ModKernel32.NewProc("IsWow64Process2")
	ProcProcessIdToSessionId = ModKernel32.NewProc("ProcessIdToSessionId")

	ModPsapi                 = windows.NewLazySystemDLL("psapi.dll")
	ProcGetProcessMemoryInfo = ModPsapi.NewProc("GetProcessMemoryInfo")

	ModVersion                 = windows.NewLazySystemDLL("version.dll")
	ProcGetFileVersionInfoSize = ModVersion.NewProc("GetFileVersionInfoSizeW")
	ProcGetFileVersionInfo     = ModVersion.NewProc("GetFileVersionInfoW")
	ProcVerQueryValue          = ModVersion.NewProc("VerQueryValueW")
)

type ProcessMemoryCounters struct {
	Cb             uint32
	WorkingSetSize uintptr
}
