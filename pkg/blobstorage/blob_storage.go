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
package blobstorage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/immune-gmbh/hwdb/pkg/types"
)

// BlobStorage keeps raw submission documents addressed by their content key.
type BlobStorage interface {
	io.Closer
	Get(ctx context.Context, key types.BlobKey) ([]byte, error)
	Replace(ctx context.Context, key types.BlobKey, blob []byte) error
	Delete(ctx context.Context, key types.BlobKey) error
}

// New returns a BlobStorage given its URL. Supported schemes:
//
//	fs:///path/to/dir
//	mem://
func New(urlString string) (BlobStorage, error) {
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL '%s': %w", urlString, err)
	}
	switch parsedURL.Scheme {
	case "fs":
		rootDir := parsedURL.Path
		return newFS(rootDir)
	case "mem":
		return NewMem(), nil
	default:
		return nil, fmt.Errorf("unknown scheme '%s'", parsedURL.Scheme)
	}
}
