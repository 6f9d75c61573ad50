package models

import (
	"time"

	"github.com/immune-gmbh/hwdb/pkg/types"
)

// Submission is a queued hardware report. The raw document itself is
// kept in the blob storage under RawDataKey.
type Submission struct {
	ID            int64            `db:"id"`
	SubmissionKey string           `db:"submission_key"`
	Status        SubmissionStatus `db:"status"`
	DateCreated   time.Time        `db:"date_created"`
	DateSubmitted time.Time        `db:"date_submitted"`
	FormatVersion string           `db:"format_version"`
	RawDataKey    types.BlobKey    `db:"raw_data_key"`
}

// HWSubmissionDevice places one real device of one submission into the
// submission's device tree. ParentID is nil only for the root device.
type HWSubmissionDevice struct {
	ID                 int64  `db:"id"`
	SubmissionID       int64  `db:"submission_id"`
	DeviceDriverLinkID int64  `db:"device_driver_link_id"`
	ParentID           *int64 `db:"parent_id"`
	HALDeviceID        string `db:"hal_device_id"`
}
