package catalog

import (
	"kenject/internal/shared"

	"github.com/pkg/errors"
)

// Entry is one (PID, name) pair from a process-table snapshot.
type Entry struct {
	Pid       uint32
	ParentPid uint32
	Name      string
}

// Source builds catalog snapshots from a set of OS operations. The split
// keeps Refresh testable off-Windows; NewSource wires the real calls.
type Source struct {
	Enumerate    func() ([]Entry, error)
	OpenLimited  func(pid uint32) (uintptr, error)
	CloseHandle  func(h uintptr)
	Elevated     func(h uintptr) (bool, error)
	Architecture func(h uintptr) (shared.Arch, error)

	// Annotate fills display extras from an open limited handle. Best
	// effort; failures leave fields zero.
	Annotate func(h uintptr, p *shared.ProcessInfo)
}

// Refresh takes one snapshot and emits a descriptor per live process.
// Introspection failures degrade per process to the conservative defaults
// (Elevated=true, ArchUnknown); a process the caller cannot open is still
// listed. A snapshot failure yields an empty catalog plus a diagnostic, not
// a fatal error.
func (s *Source) Refresh() ([]shared.ProcessInfo, error) {
	entries, err := s.Enumerate()
	if err != nil {
		return []shared.ProcessInfo{}, errors.Wrap(err, "process enumeration")
	}

	procs := make([]shared.ProcessInfo, 0, len(entries))
	for _, e := range entries {
		if e.Pid == 0 {
			continue
		}

		p := shared.ProcessInfo{
			Pid:       e.Pid,
			ParentPid: e.ParentPid,
			Name:      e.Name,
			Elevated:  true,
			Arch:      shared.ArchUnknown,
		}

		if s.OpenLimited != nil {
			if h, oerr := s.OpenLimited(e.Pid); oerr == nil {
				if v, eerr := s.Elevated(h); eerr == nil {
					p.Elevated = v
				}
				if a, aerr := s.Architecture(h); aerr == nil {
					p.Arch = a
				}
				if s.Annotate != nil {
					s.Annotate(h, &p)
				}
				s.CloseHandle(h)
			}
		}

		procs = append(procs, p)
	}

	return procs, nil
}
