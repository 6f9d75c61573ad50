package blobstorage

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/immune-gmbh/hwdb/pkg/lockmap"
	"github.com/immune-gmbh/hwdb/pkg/types"
)

// FS is a BlobStorage on a local directory, one file per blob.
type FS struct {
	RootDir string

	// concurrent writes of the same blob share the temporary file
	locks *lockmap.LockMap[types.BlobKey]
}

var _ BlobStorage = (*FS)(nil)

func newFS(rootDir string) (*FS, error) {
	err := os.MkdirAll(rootDir, 0750)
	if err != nil {
		return nil, fmt.Errorf("unable to create the rootdir '%s': %w", rootDir, err)
	}
	return &FS{
		RootDir: rootDir,
		locks:   lockmap.New[types.BlobKey](),
	}, nil
}

func (s *FS) Get(ctx context.Context, key types.BlobKey) ([]byte, error) {
	b, err := os.ReadFile(s.getPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound{Key: key}
	}
	return b, err
}

func (s *FS) Replace(ctx context.Context, key types.BlobKey, blob []byte) error {
	defer s.locks.Lock(key).Unlock()
	objPath := s.getPath(key)
	tmpPath := objPath + ".tmp"
	if err := os.WriteFile(tmpPath, blob, 0640); err != nil {
		return err
	}
	return os.Rename(tmpPath, objPath)
}

func (s *FS) Delete(ctx context.Context, key types.BlobKey) error {
	defer s.locks.Lock(key).Unlock()
	err := os.Remove(s.getPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound{Key: key}
	}
	return err
}

func (s *FS) getPath(key types.BlobKey) string {
	return filepath.Join(s.RootDir, base32.StdEncoding.EncodeToString(key[:]))
}

func (s *FS) Close() error {
	return nil
}
