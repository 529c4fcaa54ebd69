//go:build windows

package fsprobe

import (
	"io/fs"
	"syscall"
	"time"
)

func birthTime(_ string, fi fs.FileInfo) (time.Time, bool) {
	attr, ok := fi.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(0, attr.CreationTime.Nanoseconds()), true
}
