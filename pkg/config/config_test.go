package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("hwdbd", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(newFlags(t), "")
		require.NoError(t, err)
		require.Equal(t, "mysql", cfg.RDBMSDriver)
		require.Equal(t, DefaultDSN(), cfg.RDBMSDSN)
		require.Equal(t, uint64(blobCacheSizeDefault), cfg.BlobCacheSize)
		require.Zero(t, cfg.MaxSubmissions)
		require.False(t, cfg.NoWarnings)

		level, err := cfg.Level()
		require.NoError(t, err)
		require.Equal(t, logger.LevelInfo, level)
	})

	t.Run("config_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hwdbd.yaml")
		require.NoError(t, os.WriteFile(path, []byte(
			"rdbms-driver: sqlite\nrdbms-dsn: /tmp/hwdb.sqlite\nmax-submissions: 100\nlog-level: debug\n"), 0o600))

		cfg, err := Load(nil, path)
		require.NoError(t, err)
		require.Equal(t, "sqlite", cfg.RDBMSDriver)
		require.Equal(t, "/tmp/hwdb.sqlite", cfg.RDBMSDSN)
		require.Equal(t, uint(100), cfg.MaxSubmissions)

		level, err := cfg.Level()
		require.NoError(t, err)
		require.Equal(t, logger.LevelDebug, level)
	})

	t.Run("env_overrides_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hwdbd.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max-submissions: 100\n"), 0o600))
		t.Setenv("HWDB_MAX_SUBMISSIONS", "5")
		t.Setenv("HWDB_NO_WARNINGS", "true")

		cfg, err := Load(nil, path)
		require.NoError(t, err)
		require.Equal(t, uint(5), cfg.MaxSubmissions)
		require.True(t, cfg.NoWarnings)
	})

	t.Run("flags_override_env", func(t *testing.T) {
		t.Setenv("HWDB_MAX_SUBMISSIONS", "5")

		cfg, err := Load(newFlags(t, "--max-submissions=7", "--migrate"), "")
		require.NoError(t, err)
		require.Equal(t, uint(7), cfg.MaxSubmissions)
		require.True(t, cfg.Migrate)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
		require.True(t, errors.As(err, &ErrReadConfig{}), err)
	})

	t.Run("invalid_driver", func(t *testing.T) {
		_, err := Load(newFlags(t, "--rdbms-driver=postgres"), "")
		var errInvalid ErrInvalidValue
		require.True(t, errors.As(err, &errInvalid), err)
		require.Equal(t, KeyRDBMSDriver, errInvalid.Key)
	})
}
