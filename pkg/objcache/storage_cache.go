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
package objcache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/immune-gmbh/hwdb/pkg/storage"
	"github.com/immune-gmbh/hwdb/pkg/types"
)

const (
	storageCacheItemSizeLimit = 16 * (1 << 20) // 16MiB
	storageCacheTTL           = time.Minute * 10
)

type storageCache struct {
	cache *ristretto.Cache
}

var _ storage.Cache = (*storageCache)(nil)

// New returns a storage.Cache which keeps raw submission documents in memory,
// up to memoryLimit bytes in total.
func New(memoryLimit uint64) (*storageCache, error) {
	cfg := &ristretto.Config{
		NumCounters: 1000,
		MaxCost:     int64(memoryLimit),
		BufferItems: 64,
		Metrics:     false,
	}
	cache, err := ristretto.NewCache(cfg)
	if err != nil {
		return nil, err
	}
	return &storageCache{
		cache: cache,
	}, nil
}

func (c *storageCache) Get(ctx context.Context, key types.BlobKey) []byte {
	obj, ok := c.cache.Get(string(key[:]))
	if !ok {
		return nil
	}
	return obj.([]byte)
}

func (c *storageCache) Set(ctx context.Context, key types.BlobKey, b []byte) {
	if len(b) > storageCacheItemSizeLimit {
		// too big object
		return
	}

	c.cache.SetWithTTL(string(key[:]), b, int64(len(b)), storageCacheTTL)
}

// Wait blocks until all the pending writes are applied.
func (c *storageCache) Wait() {
	c.cache.Wait()
}
