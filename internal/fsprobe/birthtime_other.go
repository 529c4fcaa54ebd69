//go:build !linux && !darwin && !windows

package fsprobe

import (
	"io/fs"
	"time"
)

func birthTime(string, fs.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
