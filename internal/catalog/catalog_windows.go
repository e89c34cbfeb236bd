//go:build windows
// +build windows

package catalog

import (
	"fmt"
	"strings"
	"unsafe"

	"kenject/internal/inspect"
	"kenject/internal/shared"

	"golang.org/x/sys/windows"
)

// NewSource wires the real Win32 calls.
func NewSource() *Source {
	return &Source{
		Enumerate:   enumerate,
		OpenLimited: openLimited,
		CloseHandle: func(h uintptr) { windows.CloseHandle(windows.Handle(h)) },
		Elevated: func(h uintptr) (bool, error) {
			return inspect.IsElevated(windows.Handle(h))
		},
		Architecture: func(h uintptr) (shared.Arch, error) {
			return inspect.Architecture(windows.Handle(h))
		},
		Annotate: annotate,
	}
}

// Collect returns a fresh catalog snapshot.
func Collect() ([]shared.ProcessInfo, error) {
	return NewSource().Refresh()
}

func enumerate() ([]Entry, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snap, &entry); err != nil {
		return nil, err
	}

	var out []Entry
	for {
		out = append(out, Entry{
			Pid:       entry.ProcessID,
			ParentPid: entry.ParentProcessID,
			Name:      strings.TrimSpace(windows.UTF16ToString(entry.ExeFile[:])),
		})

		if err := windows.Process32Next(snap, &entry); err != nil {
			break
		}
	}

	return out, nil
}

func openLimited(pid uint32) (uintptr, error) {
	h, err := windows.OpenProcess(uint32(shared.AccessLimited), false, pid)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

/* --- display extras, all best effort --- */

func annotate(hu uintptr, pi *shared.ProcessInfo) {
	h := windows.Handle(hu)
	fillUser(h, pi)
	fillExePath(h, pi)
	fillMemory(h, pi)
	fillSession(pi)
	fillCompany(pi)
}

func fillUser(h windows.Handle, pi *shared.ProcessInfo) {
	var token windows.Token
	if windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token) != nil {
		return
	}
	defer token.Close()

	tu, err := token.GetTokenUser()
	if err != nil || tu.User.Sid == nil {
		return
	}

	name, domain, _, err := tu.User.Sid.LookupAccount("")
	if err != nil {
		return
	}

	if domain != "" {
		pi.UserName = domain + `\` + name
	} else {
		pi.UserName = name
	}
}

func fillExePath(h windows.Handle, pi *shared.ProcessInfo) {
	size := uint32(260)
	for i := 0; i < 4; i++ {
		buf := make([]uint16, size)
		sz := size
		err := windows.QueryFullProcessImageName(h, 0, &buf[0], &sz)
		if err == nil {
			if sz > 0 {
				pi.ExePath = windows.UTF16ToString(buf[:sz])
			}
			return
		}
		if size < 32768 && err == windows.ERROR_INSUFFICIENT_BUFFER {
			size *= 2
			continue
		}
		return
	}
}

func fillMemory(h windows.Handle, pi *shared.ProcessInfo) {
	var pmc shared.ProcessMemoryCounters
	pmc.Cb = uint32(unsafe.Sizeof(pmc))

	if r, _, _ := shared.ProcGetProcessMemoryInfo.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&pmc)),
		uintptr(pmc.Cb),
	); r != 0 {
		pi.MemUsage = uint64(pmc.WorkingSetSize)
	}
}

func fillSession(pi *shared.ProcessInfo) {
	var sid uint32
	if r, _, _ := shared.ProcProcessIdToSessionId.Call(
		uintptr(pi.Pid),
		uintptr(unsafe.Pointer(&sid)),
	); r != 0 {
		pi.SessionID = sid
	}
}

// fillCompany reads CompanyName from the executable's version resources,
// using the first language listed in the translation table.
func fillCompany(pi *shared.ProcessInfo) {
	if pi.ExePath == "" {
		return
	}

	pathPtr, err := windows.UTF16PtrFromString(pi.ExePath)
	if err != nil {
		return
	}

	var handle uint32
	size, _, _ := shared.ProcGetFileVersionInfoSize.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&handle)),
	)
	if size == 0 {
		return
	}

	buf := make([]byte, size)
	if r, _, _ := shared.ProcGetFileVersionInfo.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		0,
		size,
		uintptr(unsafe.Pointer(&buf[0])),
	); r == 0 {
		return
	}

	var blockPtr uintptr
	var blockLen uint32
	transKey, _ := windows.UTF16PtrFromString(`\VarFileInfo\Translation`)
	if r, _, _ := shared.ProcVerQueryValue.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(transKey)),
		uintptr(unsafe.Pointer(&blockPtr)),
		uintptr(unsafe.Pointer(&blockLen)),
	); r == 0 || blockLen < 4 {
		return
	}

	lang := *(*uint16)(unsafe.Pointer(blockPtr))
	codepage := *(*uint16)(unsafe.Pointer(blockPtr + 2))

	key, _ := windows.UTF16PtrFromString(
		fmt.Sprintf(`\StringFileInfo\%04x%04x\CompanyName`, lang, codepage))

	var valPtr uintptr
	var valLen uint32
	if r, _, _ := shared.ProcVerQueryValue.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(key)),
		uintptr(unsafe.Pointer(&valPtr)),
		uintptr(unsafe.Pointer(&valLen)),
	); r == 0 || valLen == 0 {
		return
	}

	pi.Company = windows.UTF16ToString(unsafe.Slice((*uint16)(unsafe.Pointer(valPtr)), valLen))
}
