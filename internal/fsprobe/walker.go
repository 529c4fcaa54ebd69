package fsprobe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// gitDir is never descended into nor uploaded.
const gitDir = ".git"

// FileEntry is one uploadable file discovered by the walker.
type FileEntry struct {
	Name      string
	Path      string
	Size      uint64
	CreatedAt time.Time
}

// Walker enumerates uploadable files below a directory.
type Walker struct {
	FS FS

	// Limit is the largest accepted file size in bytes. Zero disables
	// the upper bound.
	Limit uint64

	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to the walk root.
	Exclude []string

	Logger *slog.Logger
}

// Walk returns every regular, non-empty file under root whose size is
// within Limit, sorted by path. Entries named ".git" and excluded paths
// are skipped. Symbolic links to files are followed, links to directories
// are not. Files that vanish during the walk are skipped; any other
// filesystem error aborts the walk.
func (w *Walker) Walk(ctx context.Context, root string) ([]FileEntry, error) {
	fsys := w.FS
	if fsys == nil {
		fsys = OS{}
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var files []FileEntry
	stack := []string{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := fsys.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && dir != root {
				logger.Debug("directory vanished during walk", "path", dir)
				continue
			}
			return nil, fmt.Errorf("fsprobe: reading %s: %w", dir, err)
		}

		// Push in reverse so subdirectories pop in listing order.
		var subdirs []string
		for _, entry := range entries {
			name := entry.Name()
			if name == gitDir {
				continue
			}
			path := filepath.Join(dir, name)
			if w.excluded(root, path) {
				logger.Debug("excluded", "path", path)
				continue
			}

			if entry.IsDir() {
				subdirs = append(subdirs, path)
				continue
			}

			file, ok, err := w.accept(fsys, path, name)
			if err != nil {
				return nil, err
			}
			if ok {
				files = append(files, file)
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	slices.SortFunc(files, func(a, b FileEntry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

// accept re-probes a non-directory entry and applies the size rules.
func (w *Walker) accept(fsys FS, path, name string) (FileEntry, bool, error) {
	info, err := Probe(fsys, path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return FileEntry{}, false, nil
		}
		return FileEntry{}, false, err
	}
	// Directories reached through a symlink and special files are ignored.
	if !info.IsFile {
		return FileEntry{}, false, nil
	}
	if info.Size == 0 || (w.Limit > 0 && info.Size > w.Limit) {
		return FileEntry{}, false, nil
	}
	return FileEntry{
		Name:      name,
		Path:      path,
		Size:      info.Size,
		CreatedAt: info.BirthTime,
	}, true, nil
}

func (w *Walker) excluded(root, path string) bool {
	if len(w.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
