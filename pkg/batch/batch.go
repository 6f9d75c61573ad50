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
package batch

import (
	"context"
	"errors"

	"github.com/facebookincubator/go-belt/beltctx"
	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/immune-gmbh/hwdb/pkg/observability"
	"github.com/immune-gmbh/hwdb/pkg/storage"
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
	"github.com/immune-gmbh/hwdb/pkg/submission"
)

// Result is the outcome of a batch.
type Result struct {
	Valid   int
	Invalid int
}

// ProcessPendingSubmissions processes the submissions with status SUBMITTED,
// the oldest first. Every submission is processed in its own transaction and
// is marked either PROCESSED or INVALID.
//
// An operational failure (storage is unreachable, etc) stops the batch: it
// is returned as ErrOperational and the status of the failed submission is
// not changed, so it will be picked up again by the next batch.
func ProcessPendingSubmissions(ctx context.Context, store Store, opts ...Option) (Result, error) {
	cfg := Options(opts).Config()
	log := logger.FromCtx(ctx)

	var result Result
	pending, err := store.PendingSubmissions(ctx, cfg.MaxSubmissions)
	if err != nil {
		err = ErrOperational{Err: err}
		log.Errorf("%v", err)
		return result, err
	}

	for idx := range pending {
		sub := &pending[idx]
		valid, err := processSubmission(ctx, store, sub, cfg)
		if err != nil {
			err = ErrOperational{SubmissionKey: sub.SubmissionKey, Err: err}
			log.Errorf("%v", err)
			return result, err
		}
		if valid {
			result.Valid++
		} else {
			result.Invalid++
		}
	}

	log.Infof("processed %d valid and %d invalid submissions", result.Valid, result.Invalid)
	return result, nil
}

func processSubmission(
	ctx context.Context,
	store Store,
	sub *models.Submission,
	cfg Config,
) (bool, error) {
	ctx = beltctx.WithField(ctx, "submission_key", observability.FieldSubmissionKey(sub.SubmissionKey))
	log := logger.FromCtx(ctx)

	// The raw data is fetched before the transaction is started: with
	// SQLite the transaction holds the only connection.
	raw, err := store.GetRawSubmission(ctx, sub)
	isMissing := errors.As(err, &storage.ErrNotFound{})
	switch {
	case isMissing:
		log.Errorf("Parsing submission %s: %v", sub.SubmissionKey, err)
	case err != nil:
		return false, err
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil {
			log.Errorf("unable to rollback the transaction: %v", err)
		}
	}()

	valid := false
	if !isMissing {
		parser := submission.NewParser(ctx, sub.SubmissionKey,
			submission.OptionDisableWarnings(cfg.DisableWarnings))
		valid, err = parser.ProcessSubmission(ctx, raw, sub.ID, tx)
		if err != nil {
			return false, err
		}
	}

	status := models.SubmissionStatusInvalid
	if valid {
		status = models.SubmissionStatusProcessed
	}
	if err := tx.SetSubmissionStatus(ctx, sub.ID, status); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	log.Debugf("submission %s is %s", sub.SubmissionKey, status)
	return valid, nil
}
