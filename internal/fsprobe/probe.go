// Package fsprobe inspects local paths and enumerates uploadable files
// under a directory tree.
package fsprobe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FS is the filesystem surface used by the prober and the walker.
// Stat follows symbolic links; ReadDir reports entry types without
// following them.
type FS interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
}

// BirthTimer is implemented by filesystems that can report a file's
// creation time.
type BirthTimer interface {
	BirthTime(path string, fi fs.FileInfo) (time.Time, bool)
}

// OS is the host filesystem.
type OS struct{}

var (
	_ FS         = OS{}
	_ BirthTimer = OS{}
)

// Stat implements FS.
func (OS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// ReadDir implements FS.
func (OS) ReadDir(path string) ([]fs.DirEntry, error) { return os.ReadDir(path) }

// BirthTime implements BirthTimer using the platform's native call.
func (OS) BirthTime(path string, fi fs.FileInfo) (time.Time, bool) {
	return birthTime(path, fi)
}

// Info describes a probed path.
type Info struct {
	Name   string
	Path   string
	IsFile bool
	IsDir  bool
	Size   uint64

	// BirthTime is the creation time. Zero when the platform or the
	// filesystem does not record it.
	BirthTime time.Time
}

// Probe reports existence, type, size and creation time of path.
// A missing path yields an error wrapping ErrNotFound; any other failure
// is returned as is.
func Probe(fsys FS, path string) (Info, error) {
	fi, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Info{}, fmt.Errorf("fsprobe: stat %s: %w", path, err)
	}

	info := Info{
		Name:   filepath.Base(path),
		Path:   path,
		IsFile: fi.Mode().IsRegular(),
		IsDir:  fi.IsDir(),
	}
	if fi.Size() > 0 {
		info.Size = uint64(fi.Size())
	}
	if bt, ok := fsys.(BirthTimer); ok {
		if t, ok := bt.BirthTime(path, fi); ok {
			info.BirthTime = t.UTC()
		}
	}
	return info, nil
}
