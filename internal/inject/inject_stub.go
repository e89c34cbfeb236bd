//go:build !windows
// +build !windows

package inject

import (
	"time"

	"kenject/internal/shared"

	"github.com/pkg/errors"
)

func Kennject(target shared.KenjectionInfo, path string, waitTimeout time.Duration) (string, error) {
	return "", errors.New("injection is only supported on Windows")
}
