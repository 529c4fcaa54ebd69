//go:build darwin

package fsprobe

import (
	"io/fs"
	"syscall"
	"time"
)

func birthTime(_ string, fi fs.FileInfo) (time.Time, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec), true
}
