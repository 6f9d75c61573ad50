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
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/dummy"
	"github.com/go-sql-driver/mysql"
	lru "github.com/hashicorp/golang-lru"
	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/immune-gmbh/hwdb/pkg/blobstorage"
	"github.com/immune-gmbh/hwdb/pkg/types"
)

// BlobStorage is the storage of raw submission documents.
type BlobStorage = blobstorage.BlobStorage

// Storage is the implementation of the hardware database storage (which
// handles both: the relational data and the raw submission documents).
type Storage struct {
	DB                       *sqlx.DB
	Dialect                  Dialect
	BlobStorage              BlobStorage
	Cache                    Cache
	Logger                   logger.Logger
	RetryDefaultInitialDelay time.Duration
	RetryTimeout             time.Duration

	identityCache *lru.Cache
}

// Dialect is the RDBMS flavor of the database.
type Dialect string

const (
	DialectMySQL  = Dialect("mysql")
	DialectSQLite = Dialect("sqlite")
)

const (
	defaultRetryDefaultInitialDelay = time.Second
	defaultRetryTimeout             = time.Minute
	identityCacheSize               = 65536
)

// Cache is used to avoid repeating downloads of raw submission documents.
type Cache interface {
	// Get returns a document, given its key.
	//
	// Returns nil if there is no such entry in the cache.
	Get(ctx context.Context, key types.BlobKey) []byte

	// Set tries to set a document with its key. It is up to implementation
	// to decide whether to actually store the document.
	Set(ctx context.Context, key types.BlobKey, blob []byte)
}

// New returns an instance of Storage.
//
// rdbmsDriver is either "mysql" or "sqlite".
func New(
	rdbmsDriver string,
	rdbmsDSN string,
	blobStorage BlobStorage,
	cache Cache,
	log logger.Logger,
) (*Storage, error) {
	if log == nil {
		log = dummy.New()
	}
	if cache == nil {
		cache = dummyCache{}
	}
	identityCache, err := lru.New(identityCacheSize)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the identity cache: %w", err)
	}
	stor := &Storage{
		Dialect:                  Dialect(rdbmsDriver),
		Logger:                   log,
		BlobStorage:              blobStorage,
		Cache:                    cache,
		RetryDefaultInitialDelay: defaultRetryDefaultInitialDelay,
		RetryTimeout:             defaultRetryTimeout,
		identityCache:            identityCache,
	}

	switch stor.Dialect {
	case DialectMySQL, DialectSQLite:
	default:
		return nil, ErrInitDB{Err: fmt.Errorf("unsupported driver '%s'", rdbmsDriver), DSN: rdbmsDSN}
	}

	db, err := sql.Open(rdbmsDriver, rdbmsDSN)
	if err != nil {
		return nil, ErrInitDB{Err: err, DSN: rdbmsDSN}
	}

	if stor.Dialect == DialectSQLite {
		// Only one writer is possible anyway, and a single connection also
		// makes the pragmas below apply to every query.
		db.SetMaxOpenConns(1)
	}

	err = db.Ping()
	if err != nil {
		_ = db.Close()
		return nil, ErrPing{Err: err}
	}

	if stor.Dialect == DialectSQLite {
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.Exec(pragma); err != nil {
				_ = db.Close()
				return nil, ErrInitDB{Err: fmt.Errorf("unable to execute '%s': %w", pragma, err), DSN: rdbmsDSN}
			}
		}
	}

	stor.DB = sqlx.NewDb(db, rdbmsDriver)
	return stor, nil
}

func (stor *Storage) startTransaction(
	ctx context.Context,
) (*sqlx.Tx, error) {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	if stor.Dialect == DialectSQLite {
		// SQLite transactions are always serializable.
		opts = nil
	}
	return stor.DB.BeginTxx(ctx, opts)
}

func (stor *Storage) rollback(tx *sqlx.Tx) {
	errRollback := tx.Rollback()
	if errRollback == nil || errors.Is(errRollback, sql.ErrTxDone) {
		return
	}
	if errors.Is(errRollback, mysql.ErrInvalidConn) {
		// Lost connection, therefore the transaction will be reset
		// automatically.
		return
	}
	// To do not leave a transaction which could hang other workers we panic,
	// it with disconnect from MySQL and force-release the transaction.
	panic(fmt.Errorf("unable to rollback the transaction and do not how to remediate: %w", errRollback))
}

// Close stops the instance of the Storage.
func (stor *Storage) Close() error {
	return multierror.Append((error)(nil),
		stor.DB.Close(),
		stor.BlobStorage.Close(),
	).ErrorOrNil()
}

func (stor *Storage) retryLoop(fn func() error) error {
	timeout := time.NewTimer(stor.RetryTimeout)
	defer timeout.Stop()

	delay := stor.RetryDefaultInitialDelay

	for {
		err := fn()
		if err == nil {
			return nil
		}
		stor.Logger.Debugf("err == %T:%v", err, err)

		select {
		case <-timeout.C:
			stor.Logger.Debugf("timed out")
			return err
		default:
		}

		canRetryErr, ok := err.(interface {
			CanRetry() bool
		})
		if !ok || !canRetryErr.CanRetry() {
			stor.Logger.Debugf("is not a retriable error")
			return err
		}
		if retryAter, ok := err.(interface {
			RetryAt() time.Time
		}); ok {
			delay = time.Until(retryAter.RetryAt())
		}

		stor.Logger.Debugf("delay is: %v", delay)
		select {
		case <-time.After(delay):
			delay *= 2
		case <-timeout.C:
			// It might be we waited a long time in this `select`, was it for
			// nothing? No: we will make one last try before exit (and will
			// exit in the `select` above).
		}
		stor.Logger.Debugf("retry")
	}
}
