package blobstorage

import (
	"context"
	"sync"

	"github.com/immune-gmbh/hwdb/pkg/types"
)

// Mem is an in-memory BlobStorage, used for one-shot runs and tests.
type Mem struct {
	locker sync.RWMutex
	blobs  map[types.BlobKey][]byte
}

var _ BlobStorage = (*Mem)(nil)

// NewMem returns an empty in-memory BlobStorage.
func NewMem() *Mem {
	return &Mem{
		blobs: map[types.BlobKey][]byte{},
	}
}

func (m *Mem) Get(ctx context.Context, key types.BlobKey) ([]byte, error) {
	m.locker.RLock()
	defer m.locker.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound{Key: key}
	}
	return b, nil
}

func (m *Mem) Replace(ctx context.Context, key types.BlobKey, blob []byte) error {
	m.locker.Lock()
	defer m.locker.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (m *Mem) Delete(ctx context.Context, key types.BlobKey) error {
	m.locker.Lock()
	defer m.locker.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return ErrNotFound{Key: key}
	}
	delete(m.blobs, key)
	return nil
}

func (m *Mem) Close() error {
	return nil
}
