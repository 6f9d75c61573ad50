package batch

import (
	"fmt"
)

// ErrOperational implements "error", for the description see Error.
type ErrOperational struct {
	SubmissionKey string
	Err           error
}

func (err ErrOperational) Error() string {
	if err.SubmissionKey == "" {
		return fmt.Sprintf("operational failure, the batch is stopped: %v", err.Err)
	}
	return fmt.Sprintf("operational failure while processing submission '%s', the batch is stopped: %v",
		err.SubmissionKey, err.Err)
}

func (err ErrOperational) Unwrap() error {
	return err.Err
}
