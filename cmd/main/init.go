package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"stock-screener/src/config"

	"github.com/google/subcommands"
)

type initCmd struct {
	output string
	force  bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "write a default configuration file" }
func (*initCmd) Usage() string {
	return `screener init [-o <file>] [-f]

  Writes a configuration that serves on port 8000 from a local SQLite file
  with the result cache disabled.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "screener.yaml", "where to write the configuration")
	f.BoolVar(&c.force, "f", false, "overwrite an existing file")
}

func (c *initCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.force {
		if _, err := os.Stat(c.output); err == nil {
			fmt.Fprintf(os.Stderr, "%s already exists, use -f to overwrite\n", c.output)
			return subcommands.ExitFailure
		} else if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	if err := config.Default().Save(c.output); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %s\n", c.output)
	return subcommands.ExitSuccess
}
