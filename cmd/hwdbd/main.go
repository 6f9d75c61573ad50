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

package main

import (
	"context"
	"os"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/pflag"

	"github.com/immune-gmbh/hwdb/pkg/batch"
	"github.com/immune-gmbh/hwdb/pkg/blobstorage"
	"github.com/immune-gmbh/hwdb/pkg/config"
	"github.com/immune-gmbh/hwdb/pkg/objcache"
	"github.com/immune-gmbh/hwdb/pkg/observability"
	"github.com/immune-gmbh/hwdb/pkg/storage"
)

func usageExit() {
	pflag.Usage()
	os.Exit(2) // The default Go's exitcode on flag.Parse() problems
}

func main() {
	configPath := pflag.String("config", "", "path to a YAML configuration file")
	config.RegisterFlags(pflag.CommandLine)
	pflag.Parse()
	if pflag.NArg() != 0 {
		usageExit()
	}

	cfg, err := config.Load(pflag.CommandLine, *configPath)
	if err != nil {
		// the logger is not configured yet
		ctx := observability.WithBelt(context.Background(), logger.LevelInfo, "", false)
		logger.FromCtx(ctx).Fatalf("%v", err)
	}
	logLevel, _ := cfg.Level()

	ctx := observability.WithBelt(
		context.Background(),
		logLevel,
		cfg.TracePrefix, true,
	)
	log := logger.FromCtx(ctx)

	os.Exit(run(ctx, cfg, log))
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) int {
	defer beltctx.Flush(ctx)

	blobStorage, err := blobstorage.New(cfg.BlobStorageURL)
	if err != nil {
		log.Errorf("unable to initialize the blob storage: %v", err)
		return 1
	}

	blobCache, err := objcache.New(cfg.BlobCacheSize)
	if err != nil {
		log.Errorf("unable to initialize the blob cache: %v", err)
		return 1
	}

	stor, err := storage.New(cfg.RDBMSDriver, cfg.RDBMSDSN, blobStorage, blobCache, log)
	if err != nil {
		log.Errorf("unable to initialize the storage: %v", err)
		return 1
	}
	defer func() {
		if err := stor.Close(); err != nil {
			log.Errorf("unable to close the storage: %v", err)
		}
	}()

	if cfg.Migrate {
		if err := stor.Migrate(ctx); err != nil {
			log.Errorf("%v", err)
			return 1
		}
	}

	_, err = batch.ProcessPendingSubmissions(ctx, batch.NewStorageStore(stor),
		batch.OptionMaxSubmissions(cfg.MaxSubmissions),
		batch.OptionDisableWarnings(cfg.NoWarnings),
	)
	if err != nil {
		// already logged
		return 1
	}
	return 0
}
