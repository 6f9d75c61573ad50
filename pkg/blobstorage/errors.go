package blobstorage

import (
	"fmt"

	"github.com/immune-gmbh/hwdb/pkg/types"
)

// ErrNotFound means there is no blob with the given key.
type ErrNotFound struct {
	Key types.BlobKey
}

func (err ErrNotFound) Error() string {
	return fmt.Sprintf("blob '%s' not found", err.Key)
}
