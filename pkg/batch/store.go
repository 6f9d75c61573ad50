package batch

import (
	"context"

	"github.com/immune-gmbh/hwdb/pkg/storage"
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
	"github.com/immune-gmbh/hwdb/pkg/submission"
)

// Store is the queue of submissions and the access to their data.
type Store interface {
	PendingSubmissions(ctx context.Context, limit uint) ([]models.Submission, error)

	// GetRawSubmission returns storage.ErrNotFound if the raw document
	// of the submission is lost.
	GetRawSubmission(ctx context.Context, sub *models.Submission) ([]byte, error)

	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is the transactional scope of processing one submission.
type Tx interface {
	submission.Persister
	SetSubmissionStatus(ctx context.Context, submissionID int64, status models.SubmissionStatus) error
	Commit() error
	Rollback() error
}

type storageStore struct {
	*storage.Storage
}

var _ Store = storageStore{}

// NewStorageStore returns a Store backed by the storage.
func NewStorageStore(stor *storage.Storage) Store {
	return storageStore{Storage: stor}
}

func (s storageStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.Storage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
