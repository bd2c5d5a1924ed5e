package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "chainctl",
		Usage: "Blockchain ledger service CLI",
		Description: `A command-line tool for interacting with the ledger service.

Use this CLI to create wallets, submit transactions, mine blocks and tune
chain parameters over the HTTP API, or run a self-contained interactive
shell against an in-process chain.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			walletCommands(),
			txCommands(),
			chainCommands(),
			// Server utility commands
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
				},
			},
			shellCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server-url",
				Aliases: []string{"s"},
				Usage:   "Ledger service URL",
				EnvVars: []string{"CHAIN_SERVER_URL"},
				Value:   "http://localhost:8080",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
