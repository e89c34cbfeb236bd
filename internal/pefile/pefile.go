// Package pefile validates candidate modules before any injection attempt.
package pefile

import (
	"bytes"
	stdpe "debug/pe"
	"os"

	"github.com/Binject/debug/pe"
	"github.com/pkg/errors"

	"kenject/internal/shared"
)

// IsDLL reports whether the file at path is a well-formed PE image whose
// header marks it as a dynamically loadable library rather than a standalone
// executable. A well-formed EXE answers false, not an error. Architecture
// compatibility with any target process is not checked here.
func IsDLL(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(shared.ErrIO, "read %s: %v", path, err)
	}

	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return false, errors.Wrapf(shared.ErrParse, "parse %s: %v", path, err)
	}
	defer f.Close()

	return f.FileHeader.Characteristics&stdpe.IMAGE_FILE_DLL != 0, nil
}
