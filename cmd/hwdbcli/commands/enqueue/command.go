package enqueue

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"

	"github.com/immune-gmbh/hwdb/cmd/hwdbcli/helpers"
	"github.com/immune-gmbh/hwdb/pkg/commands"
	"github.com/immune-gmbh/hwdb/pkg/submission"
)

// Command is the implementation of `commands.Command`.
type Command struct {
	submissionKey *string
	submittedAt   *string

	output io.Writer
}

// Usage prints the syntax of arguments for this command
func (cmd Command) Usage() string {
	return "<path to the submission>"
}

// Description explains what this verb commands to do
func (cmd Command) Description() string {
	return "store the submission for the batch processing"
}

// SetupFlagSet is called to allow the command implementation
// to setup which option flags it has.
func (cmd *Command) SetupFlagSet(flag *flag.FlagSet) {
	cmd.submissionKey = flag.String("key", "", "the key of the submission (a random UUID if empty)")
	cmd.submittedAt = flag.String("submitted-at", "", "the submission date in RFC3339 (now if empty)")
}

func (cmd Command) stdout() io.Writer {
	if cmd.output == nil {
		return os.Stdout
	}
	return cmd.output
}

// Execute is the main function here. It is responsible to
// start the execution of the command.
//
// `args` are the arguments left unused by verb itself and options.
func (cmd Command) Execute(ctx context.Context, cfg commands.Config, args []string) error {
	path, raw, err := helpers.ReadSubmissionFile(args)
	if err != nil {
		return err
	}

	submissionKey := uuid.NewString()
	if cmd.submissionKey != nil && *cmd.submissionKey != "" {
		submissionKey = *cmd.submissionKey
	}
	submittedAt := time.Now()
	if cmd.submittedAt != nil && *cmd.submittedAt != "" {
		submittedAt, err = time.Parse(time.RFC3339, *cmd.submittedAt)
		if err != nil {
			return commands.ErrArgs{Err: fmt.Errorf("unable to parse the submission date '%s': %w", *cmd.submittedAt, err)}
		}
	}

	// An unprocessable document is stored anyway, the batch processing
	// marks it INVALID.
	formatVersion := ""
	if parsed, err := submission.Parse(raw); err == nil {
		formatVersion = parsed.FormatVersion
	} else {
		logger.FromCtx(ctx).Warnf("submission '%s' is not processable: %v", path, err)
	}

	stor, err := helpers.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := stor.Close(); err != nil {
			logger.FromCtx(ctx).Errorf("unable to close the storage: %v", err)
		}
	}()

	sub, err := stor.AddSubmission(ctx, submissionKey, formatVersion, submittedAt, raw)
	if err != nil {
		return fmt.Errorf("unable to store submission '%s': %w", path, err)
	}
	if !cfg.IsQuiet {
		fmt.Fprintf(cmd.stdout(), "%s\n", sub.SubmissionKey)
	}
	return nil
}
