package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Tx is a unit of work of processing one submission: either everything
// made through it is committed or nothing.
//
// Tx is not safe for concurrent use.
type Tx struct {
	stor *Storage
	tx   *sqlx.Tx

	// rows which are looked-up/created within this transaction,
	// they are published to Storage.identityCache only on Commit.
	pendingIdentities map[string]any
	isClosed          bool
}

// BeginTx starts a new transaction.
//
// With SQLite only one connection is used, so no other method of Storage
// may be called until the transaction is closed.
func (stor *Storage) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := stor.startTransaction(ctx)
	if err != nil {
		return nil, ErrSelect{Err: err}
	}
	return &Tx{
		stor:              stor,
		tx:                tx,
		pendingIdentities: map[string]any{},
	}, nil
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	if tx.isClosed {
		return ErrTxClosed{}
	}
	tx.isClosed = true
	if err := tx.tx.Commit(); err != nil {
		tx.stor.rollback(tx.tx)
		return err
	}
	for key, row := range tx.pendingIdentities {
		tx.stor.identityCache.Add(key, row)
	}
	return nil
}

// Rollback aborts the transaction. It is a no-op on a closed transaction,
// thus could be used in "defer".
func (tx *Tx) Rollback() error {
	if tx.isClosed {
		return nil
	}
	tx.isClosed = true
	err := tx.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (tx *Tx) lookupIdentity(key string) (any, bool) {
	if row, ok := tx.pendingIdentities[key]; ok {
		return row, true
	}
	return tx.stor.identityCache.Get(key)
}

func (tx *Tx) rememberIdentity(key string, row any) {
	tx.pendingIdentities[key] = row
}

// getOrInsert fills "row" with the row selected by "where", and inserts
// "row" if there is no such row, yet. Returns the ID of the row.
func (tx *Tx) getOrInsert(
	ctx context.Context,
	table string,
	row any,
	getID func() int64,
	where string,
	args ...any,
) (int64, error) {
	if tx.isClosed {
		return 0, ErrTxClosed{}
	}
	query := "SELECT * FROM `" + table + "` WHERE " + where
	err := tx.tx.GetContext(ctx, row, query, args...)
	switch {
	case err == nil:
		return getID(), nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, ErrSelect{Err: err}
	}

	id, err := insertRow(ctx, tx.tx, table, row)
	if err == nil {
		return id, nil
	}
	if !errors.As(err, &ErrAlreadyExists{}) {
		return 0, err
	}

	// Somebody else inserted the same row concurrently.
	tx.stor.Logger.Debugf("the row is already inserted to '%s', re-selecting", table)
	if err := tx.tx.GetContext(ctx, row, query, args...); err != nil {
		return 0, ErrSelect{Err: err}
	}
	return getID(), nil
}
