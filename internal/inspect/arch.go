package inspect

import "kenject/internal/shared"

// IMAGE_FILE_MACHINE values as reported by IsWow64Process2. The process
// machine is IMAGE_FILE_MACHINE_UNKNOWN when the process is not running
// under WOW64, i.e. it matches the native machine.
const (
	MachineUnknown uint16 = 0x0
	MachineI386    uint16 = 0x014C
	MachineAMD64   uint16 = 0x8664
	MachineArm64   uint16 = 0xAA64
)

// ClassifyMachinePair maps the (process machine, native machine) pair to an
// Arch. Unrecognized pairings classify as ArchUnknown; that is a terminal
// answer, not an error.
func ClassifyMachinePair(processMachine, nativeMachine uint16) shared.Arch {
	switch {
	case processMachine == MachineUnknown && nativeMachine == MachineAMD64:
		return shared.ArchX64
	case processMachine == MachineI386 && nativeMachine == MachineAMD64:
		return shared.ArchX86OnX64
	case processMachine == MachineI386 && nativeMachine == MachineI386:
		return shared.ArchX86
	case processMachine == MachineUnknown && nativeMachine == MachineArm64:
		return shared.ArchArm64
	default:
		return shared.ArchUnknown
	}
}
