package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/immune-gmbh/hwdb/pkg/blobstorage"
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
	"github.com/immune-gmbh/hwdb/pkg/types"
)

// AddSubmission stores the raw document and enqueues it for processing
// (with status SUBMITTED).
func (stor *Storage) AddSubmission(
	ctx context.Context,
	submissionKey string,
	formatVersion string,
	dateSubmitted time.Time,
	raw []byte,
) (*models.Submission, error) {
	sub := models.Submission{
		SubmissionKey: submissionKey,
		Status:        models.SubmissionStatusSubmitted,
		DateCreated:   time.Now().UTC(),
		DateSubmitted: dateSubmitted.UTC(),
		FormatVersion: formatVersion,
		RawDataKey:    types.NewBlobKey(raw),
	}

	// The blob is content-addressed, so it is safe to upload it before
	// the row is inserted: a retry will just overwrite it.
	err := stor.retryLoop(func() error {
		return stor.BlobStorage.Replace(ctx, sub.RawDataKey, raw)
	})
	if err != nil {
		return nil, ErrUnableToUpload{Key: sub.RawDataKey, Err: err}
	}

	tx, err := stor.startTransaction(ctx)
	if err != nil {
		return nil, ErrUnableToInsert{Table: "submission", Err: fmt.Errorf("unable to start a transaction: %w", err)}
	}
	defer stor.rollback(tx)

	sub.ID, err = insertRow(ctx, tx, "submission", &sub)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, insertError("submission", fmt.Errorf("unable to commit the transaction: %w", err))
	}

	stor.Cache.Set(ctx, sub.RawDataKey, raw)
	return &sub, nil
}

// PendingSubmissions returns submissions with status SUBMITTED, the oldest
// first. Zero limit means no limit.
func (stor *Storage) PendingSubmissions(ctx context.Context, limit uint) ([]models.Submission, error) {
	query := "SELECT * FROM `submission` WHERE `status` = ? ORDER BY `date_submitted`, `id`"
	args := []any{models.SubmissionStatusSubmitted.String()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var result []models.Submission
	if err := stor.DB.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, ErrSelect{Err: err}
	}
	return result, nil
}

// GetSubmissionByKey returns the submission with the given key.
func (stor *Storage) GetSubmissionByKey(ctx context.Context, submissionKey string) (*models.Submission, error) {
	query := "SELECT * FROM `submission` WHERE `submission_key` = ?"
	var sub models.Submission
	err := stor.DB.GetContext(ctx, &sub, query, submissionKey)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound{Query: fmt.Sprintf("%s [%s]", query, submissionKey)}
	case err != nil:
		return nil, ErrSelect{Err: err}
	}
	return &sub, nil
}

// GetRawSubmission returns the raw document of the submission.
//
// Returns ErrNotFound if the document is missing in the blob storage.
func (stor *Storage) GetRawSubmission(ctx context.Context, sub *models.Submission) ([]byte, error) {
	if b := stor.Cache.Get(ctx, sub.RawDataKey); b != nil {
		return b, nil
	}

	var raw []byte
	err := stor.retryLoop(func() error {
		var err error
		raw, err = stor.BlobStorage.Get(ctx, sub.RawDataKey)
		return err
	})
	if err != nil {
		if errors.As(err, &blobstorage.ErrNotFound{}) {
			return nil, ErrNotFound{Query: fmt.Sprintf("raw data of submission '%s' (%s)", sub.SubmissionKey, sub.RawDataKey)}
		}
		return nil, ErrGetData{Err: err}
	}

	stor.Cache.Set(ctx, sub.RawDataKey, raw)
	return raw, nil
}

// SubmissionDevices returns the device tree of the submission (as rows).
func (stor *Storage) SubmissionDevices(ctx context.Context, submissionID int64) ([]models.HWSubmissionDevice, error) {
	var result []models.HWSubmissionDevice
	err := stor.DB.SelectContext(ctx, &result,
		"SELECT * FROM `hw_submission_device` WHERE `submission_id` = ? ORDER BY `id`", submissionID)
	if err != nil {
		return nil, ErrSelect{Err: err}
	}
	return result, nil
}

// SetSubmissionStatus updates the status of the submission.
func (tx *Tx) SetSubmissionStatus(
	ctx context.Context,
	submissionID int64,
	status models.SubmissionStatus,
) error {
	if tx.isClosed {
		return ErrTxClosed{}
	}
	result, err := tx.tx.ExecContext(ctx,
		"UPDATE `submission` SET `status` = ? WHERE `id` = ?", status.String(), submissionID)
	if err != nil {
		return ErrUnableToUpdate{Table: "submission", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ErrUnableToUpdate{Table: "submission", Err: err}
	}
	if affected == 0 {
		return ErrNotFound{Query: fmt.Sprintf("submission #%d", submissionID)}
	}
	return nil
}
