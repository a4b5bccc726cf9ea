package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

// -----------------------------------------------------------------------------

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{}, "server")
	commander.Register(&screenCmd{}, "query")
	commander.Register(&importCmd{}, "data")
	commander.Register(&initCmd{}, "data")

	flag.StringVar(&configPath, "config", "config/default.yaml", "path to config file")
	flag.Parse()

	os.Exit(int(commander.Execute(context.Background())))
}
