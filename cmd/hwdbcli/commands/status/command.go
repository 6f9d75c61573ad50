package status

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"

	"github.com/immune-gmbh/hwdb/cmd/hwdbcli/helpers"
	"github.com/immune-gmbh/hwdb/pkg/commands"
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

// Command is the implementation of `commands.Command`.
type Command struct {
	output io.Writer
}

// Usage prints the syntax of arguments for this command
func (cmd Command) Usage() string {
	return "<submission key>"
}

// Description explains what this verb commands to do
func (cmd Command) Description() string {
	return "display the processing status of a submission"
}

// SetupFlagSet is called to allow the command implementation
// to setup which option flags it has.
func (cmd *Command) SetupFlagSet(flag *flag.FlagSet) {
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
	if len(args) < 1 {
		return commands.ErrArgs{Err: fmt.Errorf("no submission key was specified")}
	}
	if len(args) > 1 {
		return commands.ErrArgs{Err: fmt.Errorf("too many parameters")}
	}
	submissionKey := args[0]

	stor, err := helpers.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := stor.Close(); err != nil {
			logger.FromCtx(ctx).Errorf("unable to close the storage: %v", err)
		}
	}()

	sub, err := stor.GetSubmissionByKey(ctx, submissionKey)
	if err != nil {
		return fmt.Errorf("unable to get submission '%s': %w", submissionKey, err)
	}

	w := cmd.stdout()
	fmt.Fprintf(w, "key:       %s\n", sub.SubmissionKey)
	fmt.Fprintf(w, "status:    %s\n", sub.Status)
	fmt.Fprintf(w, "format:    %s\n", sub.FormatVersion)
	fmt.Fprintf(w, "submitted: %s\n", sub.DateSubmitted.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "raw data:  %s\n", sub.RawDataKey)

	if sub.Status == models.SubmissionStatusProcessed {
		devices, err := stor.SubmissionDevices(ctx, sub.ID)
		if err != nil {
			return fmt.Errorf("unable to get the devices of submission '%s': %w", submissionKey, err)
		}
		fmt.Fprintf(w, "devices:   %d\n", len(devices))
	}
	return nil
}
