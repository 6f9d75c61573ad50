package helpers

import (
	"context"
	"fmt"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/immune-gmbh/hwdb/pkg/blobstorage"
	"github.com/immune-gmbh/hwdb/pkg/commands"
	"github.com/immune-gmbh/hwdb/pkg/storage"
	"github.com/immune-gmbh/hwdb/pkg/submission"
)

// ReadSubmissionFile returns the raw content of a submission document
// given as the only argument of a command.
func ReadSubmissionFile(args []string) (string, []byte, error) {
	if len(args) < 1 {
		return "", nil, commands.ErrArgs{Err: fmt.Errorf("no path to the submission was specified")}
	}
	if len(args) > 1 {
		return "", nil, commands.ErrArgs{Err: fmt.Errorf("too many parameters")}
	}
	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("unable to read submission '%s': %w", path, err)
	}
	return path, raw, nil
}

// LoadSubmission parses the submission and builds its device tree.
func LoadSubmission(
	ctx context.Context,
	cfg commands.Config,
	submissionKey string,
	raw []byte,
) (*submission.Parser, error) {
	parser := submission.NewParser(ctx, submissionKey, submission.OptionDisableWarnings(cfg.DisableWarnings))
	if err := parser.Load(raw); err != nil {
		return nil, commands.ErrInvalidSubmission{Err: err}
	}
	return parser, nil
}

// OpenStorage connects to the submission storage, it should be closed by
// the caller.
func OpenStorage(ctx context.Context, cfg commands.StorageConfig) (*storage.Storage, error) {
	blobStorage, err := blobstorage.New(cfg.BlobStorageURL)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the blob storage: %w", err)
	}
	stor, err := storage.New(cfg.RDBMSDriver, cfg.RDBMSDSN, blobStorage, nil, logger.FromCtx(ctx))
	if err != nil {
		_ = blobStorage.Close()
		return nil, fmt.Errorf("unable to initialize the storage: %w", err)
	}
	return stor, nil
}
