package status

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/hwdb/cmd/hwdbcli/helpers"
	"github.com/immune-gmbh/hwdb/pkg/commands"
	"github.com/immune-gmbh/hwdb/pkg/storage"
)

func TestExecute(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := commands.Config{Storage: commands.StorageConfig{
		RDBMSDriver:    "sqlite",
		RDBMSDSN:       filepath.Join(dir, "hwdb.sqlite"),
		BlobStorageURL: "fs://" + filepath.Join(dir, "blobs"),
	}}

	stor, err := helpers.OpenStorage(ctx, cfg.Storage)
	require.NoError(t, err)
	require.NoError(t, stor.Migrate(ctx))
	_, err = stor.AddSubmission(ctx, "t41", "1.0", time.Date(2008, 6, 4, 12, 0, 0, 0, time.UTC), []byte("<system/>"))
	require.NoError(t, err)
	require.NoError(t, stor.Close())

	t.Run("found", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Command{output: &out}.Execute(ctx, cfg, []string{"t41"}))
		require.Contains(t, out.String(), "key:       t41\n")
		require.Contains(t, out.String(), "status:    SUBMITTED\n")
		require.Contains(t, out.String(), "submitted: 2008-06-04T12:00:00Z\n")
		require.NotContains(t, out.String(), "devices:")
	})

	t.Run("not_found", func(t *testing.T) {
		err := Command{}.Execute(ctx, cfg, []string{"unknown"})
		require.True(t, errors.As(err, &storage.ErrNotFound{}), err)
	})

	t.Run("no_arguments", func(t *testing.T) {
		err := Command{}.Execute(ctx, cfg, nil)
		require.True(t, errors.As(err, &commands.ErrArgs{}), err)
	})
}
