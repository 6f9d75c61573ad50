package models

import (
	"database/sql/driver"
	"fmt"
)

// SubmissionStatus is the processing state of a submission.
type SubmissionStatus uint

const (
	SubmissionStatusUndefined = SubmissionStatus(iota)
	SubmissionStatusSubmitted
	SubmissionStatusProcessed
	SubmissionStatusInvalid

	EndOfSubmissionStatus
)

func (s SubmissionStatus) String() string {
	switch s {
	case SubmissionStatusUndefined:
		return "NULL"
	case SubmissionStatusSubmitted:
		return "SUBMITTED"
	case SubmissionStatusProcessed:
		return "PROCESSED"
	case SubmissionStatusInvalid:
		return "INVALID"
	default:
		return fmt.Sprintf("unknown_status_%d", uint(s))
	}
}

func (s SubmissionStatus) Value() (driver.Value, error) {
	if s <= SubmissionStatusUndefined || s >= EndOfSubmissionStatus {
		return nil, fmt.Errorf("unexpected value: %s", s.String())
	}

	return s.String(), nil
}

func (s *SubmissionStatus) Scan(srcI interface{}) error {
	src, err := scanString(srcI)
	if err != nil {
		return err
	}

	for candidate := SubmissionStatusUndefined + 1; candidate < EndOfSubmissionStatus; candidate++ {
		if src == candidate.String() {
			*s = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown submission status: '%s'", src)
}
