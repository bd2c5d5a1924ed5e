package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func walletCommands() *cli.Command {
	return &cli.Command{
		Name:  "wallet",
		Usage: "Wallet management commands",
		Subcommands: []*cli.Command{
			walletCreateCommand(),
			walletBalanceCommand(),
			walletTransactionsCommand(),
		},
	}
}

func walletCreateCommand() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new wallet and print its address",
		ArgsUsage: "EMAIL",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("email is required")
			}
			email := c.Args().Get(0)

			cl := newAPIClient(c)
			address, err := cl.CreateWallet(c.Context, email)
			if err != nil {
				return fmt.Errorf("failed to create wallet: %w", err)
			}

			if c.Bool("json") {
				return printJSON(map[string]string{"email": email, "address": address})
			}

			fmt.Printf("Wallet created\n")
			fmt.Printf("  Email:   %s\n", email)
			fmt.Printf("  Address: %s\n", address)
			return nil
		},
	}
}

func walletBalanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Show a wallet's balance",
		ArgsUsage: "ADDRESS",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := c.Args().Get(0)

			cl := newAPIClient(c)
			balance, err := cl.GetWalletBalance(c.Context, address)
			if err != nil {
				return fmt.Errorf("failed to get balance: %w", err)
			}

			if c.Bool("json") {
				return printJSON(map[string]any{"address": address, "balance": balance})
			}

			fmt.Printf("Balance: %g\n", balance)
			return nil
		},
	}
}

func walletTransactionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "transactions",
		Aliases:   []string{"txs"},
		Usage:     "List a wallet's pending transactions",
		ArgsUsage: "ADDRESS",
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
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := c.Args().Get(0)

			cl := newAPIClient(c)
			transactions, err := cl.GetWalletTransactions(c.Context, address, c.Int("page"), c.Int("size"))
			if err != nil {
				return fmt.Errorf("failed to get wallet transactions: %w", err)
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
