package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// command is one subcommand of the tidynote binary.
type command struct {
	name    string
	summary string
	usage   string

	// flags registers the command's flags on fs. May be nil.
	flags func(fs *pflag.FlagSet)

	// subcommands are dispatched by the first positional argument.
	subcommands []*command

	run func(ctx context.Context, a *app, fs *pflag.FlagSet, args []string) error
}

// execute parses flags for c and runs it, or dispatches to a subcommand.
func (c *command) execute(ctx context.Context, a *app, args []string) error {
	if len(c.subcommands) > 0 {
		if len(args) == 0 || isHelpFlag(args[0]) {
			c.printHelp(a.stderr)
			if len(args) == 0 {
				return errSubcommandRequired
			}
			return nil
		}
		for _, sub := range c.subcommands {
			if sub.name == args[0] {
				return sub.execute(ctx, a, args[1:])
			}
		}
		return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage", args[0], c.path())
	}

	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolP("help", "h", false, "show help")
	if c.flags != nil {
		c.flags(fs)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			c.printHelp(a.stderr)
			return nil
		}
		return fmt.Errorf("%w\n\nRun '%s --help' for usage", err, c.path())
	}
	if help, _ := fs.GetBool("help"); help {
		c.printHelp(a.stderr)
		return nil
	}
	return c.run(ctx, a, fs, fs.Args())
}

func (c *command) path() string {
	if c.name == "tidynote" {
		return c.name
	}
	return "tidynote " + c.name
}

func (c *command) printHelp(w io.Writer) {
	fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", c.summary, c.usage)

	if len(c.subcommands) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		printCommandTable(w, c.subcommands)
		return
	}

	fs := pflag.NewFlagSet(c.name, pflag.ContinueOnError)
	if c.flags != nil {
		c.flags(fs)
	}
	if fs.HasFlags() {
		fmt.Fprintln(w, "\nFlags:")
		fs.SetOutput(w)
		fs.PrintDefaults()
	}
}

func printCommandTable(w io.Writer, commands []*command) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s\t%s\n", c.name, c.summary)
	}
	tw.Flush()
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

var errSubcommandRequired = errors.New("subcommand required")

// requireArgs checks the positional argument count.
func requireArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("expected %d argument(s), got %d\n\nUsage:\n  %s", n, len(args), usage)
	}
	return nil
}

// joinArgs treats positional arguments as one piece of inline text.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
