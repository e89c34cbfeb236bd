package shared

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type AuditEntry struct {
	At    time.Time `json:"at"`
	Event string    `json:"event"` // "refresh" or "inject"

	ProcessCount int            `json:"process_count,omitempty"`
	Processes    []ProcessInfo  `json:"processes,omitempty"`
	Target       *KenjectionInfo `json:"target,omitempty"`
	ModulePath   string         `json:"module_path,omitempty"`
	Outcome      string         `json:"outcome,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// JSONLogger appends audit entries to a single JSON array, one entry per
// catalog refresh or injection attempt. Path "-" means stdout.
type JSONLogger struct {
	mu      sync.Mutex
	w       io.Writer
	closeFn func() error
	pretty  bool
	started bool
	first   bool
}

func NewJSONLogger(path string, pretty bool) (*JSONLogger, error) {
	if path == "" {
		return nil, nil
	}
	if path == "-" {
		return &JSONLogger{
			w:      os.Stdout,
			pretty: pretty,
			first:  true,
		}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	return &JSONLogger{
		w:       f,
		closeFn: f.Close,
		pretty:  pretty,
		first:   true,
	}, nil
}

func (l *JSONLogger) WriteRefresh(procs []ProcessInfo, diag error) error {
	entry := AuditEntry{
		At:           time.Now().UTC(),
		Event:        "refresh",
		ProcessCount: len(procs),
		Processes:    procs,
	}
	if diag != nil {
		entry.Error = diag.Error()
	}
	return l.write(entry)
}

func (l *JSONLogger) WriteInjection(target KenjectionInfo, path, outcome string, err error) error {
	entry := AuditEntry{
		At:         time.Now().UTC(),
		Event:      "inject",
		Target:     &target,
		ModulePath: path,
		Outcome:    outcome,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	return l.write(entry)
}

func (l *JSONLogger) write(entry AuditEntry) error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		if _, err := io.WriteString(l.w, "[\n"); err != nil {
			return err
		}
		l.started = true
	}

	if !l.first {
		if _, err := io.WriteString(l.w, ",\n"); err != nil {
			return err
		}
	}
	l.first = false

	var (
		out []byte
		err error
	)
	if l.pretty {
		out, err = json.MarshalIndent(entry, "  ", "  ")
	} else {
		out, err = json.Marshal(entry)
	}
	if err != nil {
		return err
	}

	if _, err := l.w.Write(out); err != nil {
		return err
	}
	if _, err := io.WriteString(l.w, "\n"); err != nil {
		return err
	}

	return nil
}

func (l *JSONLogger) Close() error {
	if l == nil || l.w == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		if _, err := io.WriteString(l.w, "]\n"); err != nil {
			return err
		}
		l.started = false
	}

	if l.closeFn != nil {
		return l.closeFn()
	}
	return nil
}
