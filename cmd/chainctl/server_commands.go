package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check whether the ledger service is reachable",
		Action: func(c *cli.Context) error {
			cl := newAPIClient(c)
			if err := cl.Health(c.Context); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}

			if c.Bool("json") {
				return printJSON(map[string]string{"status": "ok"})
			}

			fmt.Println("OK")
			return nil
		},
	}
}
