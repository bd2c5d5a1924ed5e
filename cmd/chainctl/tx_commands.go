package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/slavik-pastushenko/blockchain-go/client"
	"github.com/urfave/cli/v2"
)

func txCommands() *cli.Command {
	return &cli.Command{
		Name:  "tx",
		Usage: "Transaction commands",
		Subcommands: []*cli.Command{
			txSubmitCommand(),
			txGetCommand(),
			txListCommand(),
		},
	}
}

func txSubmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "Submit a transfer between two wallets",
		ArgsUsage: "FROM TO AMOUNT",
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return fmt.Errorf("from address, to address and amount are required")
			}

			from := c.Args().Get(0)
			to := c.Args().Get(1)
			amount, err := strconv.ParseFloat(c.Args().Get(2), 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", c.Args().Get(2), err)
			}

			cl := newAPIClient(c)
			accepted, err := cl.SubmitTransaction(c.Context, from, to, amount)
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}

			if c.Bool("json") {
				return printJSON(map[string]bool{"accepted": accepted})
			}

			if accepted {
				fmt.Println("Transaction accepted")
			} else {
				fmt.Println("Transaction rejected")
			}
			return nil
		},
	}
}

func txGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Look up a pending transaction by hash",
		ArgsUsage: "HASH",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression applied to the result",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("transaction hash is required")
			}
			hash := c.Args().Get(0)

			cl := newAPIClient(c)
			txn, err := cl.GetTransaction(c.Context, hash)
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("transaction %s is not pending (it may be sealed into a block)", hash)
			}
			if err != nil {
				return fmt.Errorf("failed to get transaction: %w", err)
			}

			if c.Bool("json") || c.String("jq") != "" {
				return printFiltered(txn, c.String("jq"))
			}

			fmt.Printf("Hash:      %s\n", txn.Hash)
			fmt.Printf("From:      %s\n", txn.From)
			fmt.Printf("To:        %s\n", txn.To)
			fmt.Printf("Amount:    %g\n", txn.Amount)
			fmt.Printf("Fee:       %g\n", txn.Fee)
			fmt.Printf("Timestamp: %d\n", txn.Timestamp)
			return nil
		},
	}
}

func txListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the pending transaction pool",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Value: 1,
				Usage: "Page number (1-indexed)",
			},
			&cli.IntFlag{
				Name:  "size",
				Value: 10,
				Usage: "Page size",
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression applied to the result",
			},
		},
		Action: func(c *cli.Context) error {
			cl := newAPIClient(c)
			transactions, err := cl.ListTransactions(c.Context, c.Int("page"), c.Int("size"))
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			if c.Bool("json") || c.String("jq") != "" {
				return printFiltered(transactions, c.String("jq"))
			}

			if len(transactions) == 0 {
				fmt.Println("No pending transactions")
				return nil
			}
			for _, txn := range transactions {
				fmt.Printf("%s  %s -> %s  amount=%g fee=%g\n",
					txn.Hash, txn.From, txn.To, txn.Amount, txn.Fee)
			}
			return nil
		},
	}
}
