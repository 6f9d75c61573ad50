package validate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/immune-gmbh/hwdb/cmd/hwdbcli/helpers"
	"github.com/immune-gmbh/hwdb/pkg/commands"
)

// Command is the implementation of `commands.Command`.
type Command struct {
	output io.Writer
}

// Usage prints the syntax of arguments for this command
func (cmd Command) Usage() string {
	return "<path to the submission>"
}

// Description explains what this verb commands to do
func (cmd Command) Description() string {
	return "check if the submission would be processed or marked INVALID"
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
	path, raw, err := helpers.ReadSubmissionFile(args)
	if err != nil {
		return err
	}

	parser, err := helpers.LoadSubmission(ctx, cfg, filepath.Base(path), raw)
	if err != nil {
		var errInvalid commands.ErrInvalidSubmission
		if !errors.As(err, &errInvalid) {
			return err
		}
		if !cfg.IsQuiet {
			fmt.Fprintf(cmd.stdout(), "INVALID: %v\n", errInvalid.Err)
		}
		return commands.SilentError{Err: err}
	}

	kernelPackageName := "<unknown>"
	if name := parser.KernelPackageName(); name != nil {
		kernelPackageName = *name
	}
	realDevices := 0
	for _, node := range parser.Devices() {
		if node.IsRealDevice() {
			realDevices++
		}
	}
	if !cfg.IsQuiet {
		fmt.Fprintf(cmd.stdout(), "PROCESSABLE: format %s, %d device nodes (%d real devices), kernel package %s\n",
			parser.Parsed().FormatVersion, len(parser.Devices()), realDevices, kernelPackageName)
	}
	return nil
}
