package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hupe1980/strtab/internal/fs"
	"github.com/hupe1980/strtab/internal/mmap"
)

// LocalStore implements BlobStore on the local file system. Blobs are
// memory-mapped on Open and implement Mappable.
type LocalStore struct {
	root string
	fsys fs.FileSystem
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root, fsys: fs.Default}
}

// NewLocalStoreFS is NewLocalStore with a custom file system for writes.
// Reads always map the real file.
func NewLocalStoreFS(root string, fsys fs.FileSystem) *LocalStore {
	return &LocalStore{root: root, fsys: fsys}
}

func (s *LocalStore) path(name string) (string, error) {
	if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

// Open maps the blob into memory.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return &localBlob{m: m}, nil
}

// Put atomically replaces the blob through a temp file and rename.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fsys.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return fs.WriteFileAtomic(s.fsys, p, 0o644, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Delete removes the blob file.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fsys.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// List walks the root recursively. Unfinished temp files are skipped.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk(ctx, "", &names); err != nil {
		return nil, err
	}

	out := names[:0]
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *LocalStore) walk(ctx context.Context, dir string, names *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.fsys.ReadDir(filepath.Join(s.root, filepath.FromSlash(dir)))
	if err != nil {
		if dir == "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := path.Join(dir, e.Name())
		if e.IsDir() {
			if err := s.walk(ctx, name, names); err != nil {
				return err
			}
			continue
		}
		if strings.Contains(e.Name(), fs.TempSuffix) {
			continue
		}
		*names = append(*names, name)
	}
	return nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	return readAtBytes(b.m.Bytes(), p, off)
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Bytes() ([]byte, error) {
	return b.m.Bytes(), nil
}
