package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is a node in the CLI tree. Leaf commands set Run; groups set
// Subcommands.
type Command struct {
	Name    string
	Summary string
	// Usage is shown in help, e.g. "storefront cart add <product-id> [flags]".
	Usage       string
	Flags       func() *pflag.FlagSet
	Subcommands []*Command
	Run         func(args []string) error

	parent *Command
	flags  *pflag.FlagSet
}

// Execute parses args and dispatches to a subcommand or Run.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(os.Stdout)
		return nil
	}

	if len(c.Subcommands) > 0 {
		if len(args) == 0 || strings.HasPrefix(args[0], "-") {
			c.PrintHelp(os.Stderr)
			return fmt.Errorf("subcommand required")
		}
		for _, sub := range c.Subcommands {
			if sub.Name == args[0] {
				sub.parent = c
				return sub.Execute(args[1:])
			}
		}
		return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage", args[0], c.fullName())
	}

	if c.Flags != nil {
		fs := c.flagSet()
		fs.SetOutput(io.Discard)
		if err := fs.Parse(args); err != nil {
			if err == pflag.ErrHelp {
				c.PrintHelp(os.Stdout)
				return nil
			}
			return fmt.Errorf("%w\n\nRun '%s --help' for usage", err, c.fullName())
		}
		args = fs.Args()
	}

	return c.Run(args)
}

// flagSet returns the command's flags, building them once so values bound
// by Flags stay shared with Run.
func (c *Command) flagSet() *pflag.FlagSet {
	if c.flags == nil {
		c.flags = c.Flags()
	}
	return c.flags
}

// PrintHelp writes usage, subcommands and flags to w.
func (c *Command) PrintHelp(w io.Writer) {
	if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", c.fullName())
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.fullName())
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		if usage := c.flagSet().FlagUsages(); usage != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", usage)
		}
	}
}

func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// requireArgs checks the positional argument count of a leaf command.
func requireArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
