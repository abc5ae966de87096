// Command tally is the command-line front end over the ledger engine.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	env := &cliEnv{out: os.Stdout, open: openApp}
	flag.StringVar(&env.configPath, "config", "", "path to tally.toml (defaults to TALLY_CONFIG, then tally.toml next to the binary)")

	for _, c := range commands(env) {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
