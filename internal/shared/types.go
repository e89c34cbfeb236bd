package shared

import "fmt"

// Arch classifies a process by the (process machine, native machine) pair
// reported by IsWow64Process2. Unknown is the fallback whenever the query
// fails or the pairing is unrecognized.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchX64
	ArchX86OnX64
	ArchX86
	ArchArm64
)

func (a Arch) String() string {
	switch a {
	case ArchX64:
		return "x64"
	case ArchX86OnX64:
		return "x86 (WOW64)"
	case ArchX86:
		return "x86"
	case ArchArm64:
		return "arm64"
	default:
		return "unknown"
	}
}

// Access is the handle-rights bundle requested from OpenProcess. Full is
// needed to allocate/write remote memory and create a remote thread; Limited
// is enough for token and architecture queries. A request, not a guarantee.
type Access uint32

const (
	AccessFull    Access = 0x001F0FFF // PROCESS_ALL_ACCESS
	AccessLimited Access = 0x00001000 // PROCESS_QUERY_LIMITED_INFORMATION
)

// ProcessInfo is one row of a catalog snapshot. Rebuilt wholesale on every
// refresh; PIDs are recycled by the OS, so nothing here is stable across
// refreshes.
type ProcessInfo struct {
	Pid       uint32
	ParentPid uint32
	Name      string // executable file name, not a path
	Arch      Arch
	Elevated  bool // true is the conservative default when undeterminable

	// Display extras, best-effort. Empty/zero when the handle or query is
	// denied; never affects injection decisions beyond Elevated/Arch above.
	SessionID uint32
	UserName  string // DOMAIN\User
	ExePath   string
	Company   string // file publisher from version resources
	MemUsage  uint64 // bytes (WorkingSetSize)
}

func (p ProcessInfo) String() string {
	return fmt.Sprintf("%s - %#X", p.Name, p.Pid)
}

// KenjectionInfo is the user's injection intent: which process, by name and
// last-seen PID. The PID may be stale by the time injection runs; the
// injector re-resolves by name against a fresh snapshot.
type KenjectionInfo struct {
	Name string
	Pid  uint32
}

func (k KenjectionInfo) String() string {
	return fmt.Sprintf("%s - %#X", k.Name, k.Pid)
}
