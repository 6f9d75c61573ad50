package enqueue

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/hwdb/cmd/hwdbcli/helpers"
	"github.com/immune-gmbh/hwdb/pkg/commands"
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

func newStorageConfig(t *testing.T) commands.StorageConfig {
	dir := t.TempDir()
	cfg := commands.StorageConfig{
		RDBMSDriver:    "sqlite",
		RDBMSDSN:       filepath.Join(dir, "hwdb.sqlite"),
		BlobStorageURL: "fs://" + filepath.Join(dir, "blobs"),
	}
	ctx := context.Background()
	stor, err := helpers.OpenStorage(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, stor.Migrate(ctx))
	require.NoError(t, stor.Close())
	return cfg
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	cfg := commands.Config{Storage: newStorageConfig(t)}
	raw, err := os.ReadFile("../inspect/testdata/hal_t41.xml")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "submission.xml")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	for name, args := range map[string][]string{
		"random_key": {path},
		"given_key":  {"-key", "t41", "-submitted-at", "2008-06-04T12:00:00Z", path},
	} {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := &Command{output: &out}
			flagSet := flag.NewFlagSet("enqueue", flag.ContinueOnError)
			cmd.SetupFlagSet(flagSet)
			require.NoError(t, flagSet.Parse(args))
			require.NoError(t, cmd.Execute(ctx, cfg, flagSet.Args()))

			submissionKey := strings.TrimSpace(out.String())
			if name == "given_key" {
				require.Equal(t, "t41", submissionKey)
			} else {
				_, err := uuid.Parse(submissionKey)
				require.NoError(t, err)
			}

			stor, err := helpers.OpenStorage(ctx, cfg.Storage)
			require.NoError(t, err)
			defer func() {
				require.NoError(t, stor.Close())
			}()
			sub, err := stor.GetSubmissionByKey(ctx, submissionKey)
			require.NoError(t, err)
			require.Equal(t, models.SubmissionStatusSubmitted, sub.Status)
			require.Equal(t, "1.0", sub.FormatVersion)
			if name == "given_key" {
				require.True(t, sub.DateSubmitted.Equal(time.Date(2008, 6, 4, 12, 0, 0, 0, time.UTC)), sub.DateSubmitted)
			}

			stored, err := stor.GetRawSubmission(ctx, sub)
			require.NoError(t, err)
			require.Equal(t, raw, stored)
		})
	}
}
