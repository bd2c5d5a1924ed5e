package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"
)

func chainCommands() *cli.Command {
	return &cli.Command{
		Name:  "chain",
		Usage: "Chain inspection and management commands",
		Subcommands: []*cli.Command{
			chainInfoCommand(),
			chainMineCommand(),
			chainSetParameterCommand("set-difficulty", "difficulty", "Set the proof-of-work difficulty"),
			chainSetParameterCommand("set-reward", "reward", "Set the mining reward"),
			chainSetParameterCommand("set-fee", "fee", "Set the transaction fee multiplier"),
		},
	}
}

func chainInfoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show chain height and parameters",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression applied to the result",
			},
		},
		Action: func(c *cli.Context) error {
			cl := newAPIClient(c)
			info, err := cl.GetChainInfo(c.Context)
			if err != nil {
				return fmt.Errorf("failed to get chain info: %w", err)
			}

			if c.Bool("json") || c.String("jq") != "" {
				return printFiltered(info, c.String("jq"))
			}

			fmt.Printf("Height:     %d\n", info.Height)
			fmt.Printf("Difficulty: %g\n", info.Difficulty)
			fmt.Printf("Reward:     %g\n", info.Reward)
			fmt.Printf("Fee:        %g\n", info.Fee)
			fmt.Printf("Address:    %s\n", info.Address)
			fmt.Printf("Pending:    %d\n", info.Pending)
			return nil
		},
	}
}

func chainMineCommand() *cli.Command {
	return &cli.Command{
		Name:  "mine",
		Usage: "Seal the pending pool into a new block",
		Action: func(c *cli.Context) error {
			cl := newAPIClient(c)

			start := time.Now()
			block, err := cl.MineBlock(c.Context)
			if err != nil {
				return fmt.Errorf("failed to mine block: %w", err)
			}

			if c.Bool("json") {
				return printJSON(block)
			}

			fmt.Printf("Block mined in %s\n", time.Since(start).Round(time.Millisecond))
			fmt.Printf("  Height: %d\n", block.Height)
			fmt.Printf("  Hash:   %s\n", block.Hash)
			return nil
		},
	}
}

func chainSetParameterCommand(name, parameter, usage string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "VALUE",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("value is required")
			}

			value, err := strconv.ParseFloat(c.Args().Get(0), 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", c.Args().Get(0), err)
			}

			cl := newAPIClient(c)
			if err := cl.UpdateParameter(c.Context, parameter, value); err != nil {
				return fmt.Errorf("failed to update %s: %w", parameter, err)
			}

			if c.Bool("json") {
				return printJSON(map[string]any{"parameter": parameter, "value": value})
			}

			fmt.Printf("Updated %s to %g\n", parameter, value)
			return nil
		},
	}
}
