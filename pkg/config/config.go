// Copyright 2023 Meta Platforms, Inc. and affiliates.
//
// Redistribution and use in source and binary forms, with or without modification, are permitted provided that the following conditions are met:
//
// 1. Redistributions of source code must retain the above copyright notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright notice, this list of conditions and the following disclaimer in the documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its contributors may be used to endorse or promote products derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
// Package config loads the settings of the batch driver: defaults are
// overridden by a YAML file, then by HWDB_-prefixed environment variables,
// then by command line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/go-sql-driver/mysql"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables, for example
// HWDB_RDBMS_DSN overrides "rdbms-dsn".
const EnvPrefix = "HWDB"

const (
	KeyLogLevel       = "log-level"
	KeyRDBMSDriver    = "rdbms-driver"
	KeyRDBMSDSN       = "rdbms-dsn"
	KeyBlobStorageURL = "blob-storage-url"
	KeyBlobCacheSize  = "blob-cache-size"
	KeyMaxSubmissions = "max-submissions"
	KeyNoWarnings     = "no-warnings"
	KeyMigrate        = "migrate"
	KeyTracePrefix    = "trace-prefix"
)

const (
	blobCacheSizeDefault  = 1 << 28 // 256MiB
	blobStorageURLDefault = "fs:///srv/hwdb"
	tracePrefixDefault    = "HWDB"
)

// Config is the settings of the batch driver.
type Config struct {
	LogLevel       string `mapstructure:"log-level"`
	RDBMSDriver    string `mapstructure:"rdbms-driver"`
	RDBMSDSN       string `mapstructure:"rdbms-dsn"`
	BlobStorageURL string `mapstructure:"blob-storage-url"`
	BlobCacheSize  uint64 `mapstructure:"blob-cache-size"`
	MaxSubmissions uint   `mapstructure:"max-submissions"`
	NoWarnings     bool   `mapstructure:"no-warnings"`
	Migrate        bool   `mapstructure:"migrate"`
	TracePrefix    string `mapstructure:"trace-prefix"`
}

// DefaultDSN returns the DSN of the MySQL database defined by
// environment variables DBHOST, DBUSER and DBPASS.
func DefaultDSN() string {
	dbAddr := os.Getenv("DBHOST")
	if dbAddr == "" {
		dbAddr = "127.0.0.1:3306"
	}
	return (&mysql.Config{
		User:                 os.Getenv("DBUSER"),
		Passwd:               os.Getenv("DBPASS"),
		Net:                  "tcp",
		Addr:                 dbAddr,
		DBName:               "hwdb",
		ParseTime:            true,
		ClientFoundRows:      true,
		AllowNativePasswords: true,
	}).FormatDSN()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, logger.LevelInfo.String())
	v.SetDefault(KeyRDBMSDriver, "mysql")
	v.SetDefault(KeyRDBMSDSN, DefaultDSN())
	v.SetDefault(KeyBlobStorageURL, blobStorageURLDefault)
	v.SetDefault(KeyBlobCacheSize, blobCacheSizeDefault)
	v.SetDefault(KeyMaxSubmissions, 0)
	v.SetDefault(KeyNoWarnings, false)
	v.SetDefault(KeyMigrate, false)
	v.SetDefault(KeyTracePrefix, tracePrefixDefault)
}

// RegisterFlags adds the flags of all the settings to the flag set.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(KeyLogLevel, logger.LevelInfo.String(), "logging level")
	flags.String(KeyRDBMSDriver, "mysql", "the database driver: mysql or sqlite")
	flags.String(KeyRDBMSDSN, DefaultDSN(), "the database DSN")
	flags.String(KeyBlobStorageURL, blobStorageURLDefault, "where the raw submission documents are stored")
	flags.Uint64(KeyBlobCacheSize, blobCacheSizeDefault, "the memory limit of the cache of raw submission documents")
	flags.Uint(KeyMaxSubmissions, 0, "process at most this amount of submissions (0 means no limit)")
	flags.Bool(KeyNoWarnings, false, "do not log warnings about inconsistent submission data")
	flags.Bool(KeyMigrate, false, "apply the database migrations before processing")
	flags.String(KeyTracePrefix, tracePrefixDefault, "the prefix of the trace ID of the batch")
}

// Load returns the settings. "flags" (could be nil) are expected to be
// registered by RegisterFlags and already parsed. "configPath" is an
// optional path to a YAML file.
func Load(flags *pflag.FlagSet, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, ErrBindFlags{Err: err}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, ErrReadConfig{Path: configPath, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ErrReadConfig{Path: configPath, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns an error if a setting has an unacceptable value.
func (cfg Config) Validate() error {
	if _, err := cfg.Level(); err != nil {
		return ErrInvalidValue{Key: KeyLogLevel, Value: cfg.LogLevel, Err: err}
	}
	switch cfg.RDBMSDriver {
	case "mysql", "sqlite":
	default:
		return ErrInvalidValue{Key: KeyRDBMSDriver, Value: cfg.RDBMSDriver, Err: fmt.Errorf("expected 'mysql' or 'sqlite'")}
	}
	if cfg.RDBMSDSN == "" {
		return ErrInvalidValue{Key: KeyRDBMSDSN, Err: fmt.Errorf("empty")}
	}
	if cfg.BlobStorageURL == "" {
		return ErrInvalidValue{Key: KeyBlobStorageURL, Err: fmt.Errorf("empty")}
	}
	return nil
}

// Level returns the parsed logging level.
func (cfg Config) Level() (logger.Level, error) {
	var level logger.Level
	if err := level.Set(cfg.LogLevel); err != nil {
		return logger.LevelUndefined, err
	}
	return level, nil
}
