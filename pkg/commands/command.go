package commands

import (
	"context"
	"flag"
)

// Command is a verb of a CLI, like "validate" in "hwdbcli validate file.xml".
type Command interface {
	// Usage returns the syntax of the arguments of the command.
	Usage() string

	// Description explains what the command does.
	Description() string

	// SetupFlagSet registers the options of the command.
	SetupFlagSet(flagSet *flag.FlagSet)

	// Execute runs the command, `args` are the arguments left after parsing
	// the options.
	Execute(ctx context.Context, cfg Config, args []string) error
}
