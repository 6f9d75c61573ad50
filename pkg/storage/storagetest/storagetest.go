// Package storagetest provides an ephemeral Storage (backed by SQLite) for
// unit-tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/hwdb/pkg/blobstorage"
	"github.com/immune-gmbh/hwdb/pkg/storage"
)

// New returns a migrated Storage in a temporary directory, it is closed
// automatically when the test finishes.
func New(t testing.TB, log logger.Logger) *storage.Storage {
	dsn := filepath.Join(t.TempDir(), "hwdb.sqlite")
	stor, err := storage.New("sqlite", dsn, blobstorage.NewMem(), nil, log)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, stor.Close())
	})
	stor.RetryDefaultInitialDelay = 0
	stor.RetryTimeout = 0

	require.NoError(t, stor.Migrate(context.Background()))
	return stor
}
