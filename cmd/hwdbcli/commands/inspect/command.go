package inspect

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/immune-gmbh/hwdb/cmd/hwdbcli/helpers"
	"github.com/immune-gmbh/hwdb/pkg/commands"
	"github.com/immune-gmbh/hwdb/pkg/submission"
)

// Command is the implementation of `commands.Command`.
type Command struct {
	format         flagFormat
	dumpProperties *bool
	noColor        *bool

	output io.Writer
}

// Usage prints the syntax of arguments for this command
func (cmd Command) Usage() string {
	return "<path to the submission>"
}

// Description explains what this verb commands to do
func (cmd Command) Description() string {
	return "display the device tree of the submission as it would be classified by the batch processing"
}

// SetupFlagSet is called to allow the command implementation
// to setup which option flags it has.
func (cmd *Command) SetupFlagSet(flag *flag.FlagSet) {
	flag.Var(&cmd.format, "format", "output format: tree or yaml")
	cmd.dumpProperties = flag.Bool("dump-properties", false, "dump raw properties of every device node")
	cmd.noColor = flag.Bool("no-color", false, "disable colors of the tree")
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
		return err
	}

	w := cmd.stdout()
	if cmd.dumpProperties != nil && *cmd.dumpProperties {
		dumpProperties(w, parser.Devices())
		return nil
	}

	switch cmd.format {
	case flagFormatTree:
		printTree(w, parser.Root(), newTreeColors(cmd.noColor != nil && *cmd.noColor))
	case flagFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newYAMLNode(parser.Root())); err != nil {
			return fmt.Errorf("unable to encode the device tree: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("unable to encode the device tree: %w", err)
		}
	default:
		return commands.ErrArgs{Err: fmt.Errorf("unknown format: %s", cmd.format)}
	}
	return nil
}

func dumpProperties(w io.Writer, devices map[string]submission.DeviceNode) {
	ids := make([]string, 0, len(devices))
	for id := range devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	dumper := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
	for _, id := range ids {
		fmt.Fprintf(w, "%s:\n", id)
		switch node := devices[id].(type) {
		case *submission.HALDevice:
			dumper.Fdump(w, node.Record.Properties)
		case *submission.UdevDevice:
			dumper.Fdump(w, node.Record.Properties)
			if len(node.SysfsAttributes) > 0 {
				dumper.Fdump(w, node.SysfsAttributes)
			}
		}
	}
}
