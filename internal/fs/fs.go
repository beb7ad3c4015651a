package fs

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// File represents an open file.
type File interface {
	io.ReadWriteCloser
	Sync() error
	Stat() (os.FileInfo, error)
}

// FileSystem abstracts file system operations for testability.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// TempSuffix marks files that are still being written by WriteFileAtomic.
const TempSuffix = ".tmp-"

// WriteFileAtomic writes a file through a temp file in the same directory
// followed by a rename, so readers see either the old or the new content.
// The temp file is removed on any failure.
func WriteFileAtomic(fsys FileSystem, filename string, perm os.FileMode, write func(io.Writer) error) error {
	if fsys == nil {
		fsys = Default
	}
	dir := filepath.Dir(filename)

	var (
		tmp     File
		tmpName string
		err     error
	)
	for range 10 {
		tmpName = fmt.Sprintf("%s%s%016x", filename, TempSuffix, rand.Uint64())
		tmp, err = fsys.OpenFile(tmpName, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
		if !os.IsExist(err) {
			break
		}
	}
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := write(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		committed = true
		return err
	}

	if err := fsys.Rename(tmpName, filename); err != nil {
		_ = fsys.Remove(tmpName)
		committed = true
		return err
	}
	committed = true

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
