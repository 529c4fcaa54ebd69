// Package fsprobetest provides an in-memory filesystem for tests of code
// built on fsprobe.
package fsprobetest

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing/fstest"
	"time"

	"github.com/flemzord/tgupload/internal/fsprobe"
)

// MemFS is a mutable in-memory filesystem addressed with absolute paths.
// Parent directories are implied by the files they contain.
type MemFS struct {
	mu     sync.Mutex
	files  fstest.MapFS
	failOn map[string]error
}

var (
	_ fsprobe.FS         = (*MemFS)(nil)
	_ fsprobe.BirthTimer = (*MemFS)(nil)
)

// New returns an empty MemFS.
func New() *MemFS {
	return &MemFS{
		files:  fstest.MapFS{},
		failOn: make(map[string]error),
	}
}

// AddFile creates a file with the given content. created doubles as the
// modification time and is reported as the birth time.
func (m *MemFS) AddFile(p string, data []byte, created time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key(p)] = &fstest.MapFile{Data: data, Mode: 0o644, ModTime: created}
}

// AddDir creates an empty directory.
func (m *MemFS) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key(p)] = &fstest.MapFile{Mode: fs.ModeDir | 0o755}
}

// Remove deletes a file or directory entry.
func (m *MemFS) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key(p))
}

// FailOn makes every operation on p return err.
func (m *MemFS) FailOn(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[key(p)] = err
}

// Stat implements fsprobe.FS.
func (m *MemFS) Stat(p string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(p)
	if err := m.failOn[k]; err != nil {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: err}
	}
	return m.files.Stat(k)
}

// ReadDir implements fsprobe.FS.
func (m *MemFS) ReadDir(p string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(p)
	if err := m.failOn[k]; err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: err}
	}
	return m.files.ReadDir(k)
}

// BirthTime implements fsprobe.BirthTimer.
func (m *MemFS) BirthTime(_ string, fi fs.FileInfo) (time.Time, bool) {
	t := fi.ModTime()
	return t, !t.IsZero()
}

func key(p string) string {
	k := strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "/")
	if k == "" {
		return "."
	}
	return k
}
