package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/slavik-pastushenko/blockchain-go/ledger"
	"github.com/urfave/cli/v2"
)

const (
	actionCreateWallet       = "Create a wallet"
	actionGetBalance         = "Get a wallet balance"
	actionAddTransaction     = "Add a transaction"
	actionGetTransaction     = "Get a transaction"
	actionListTransactions   = "List pending transactions"
	actionGenerateBlock      = "Generate a new block"
	actionUpdateDifficulty   = "Change the difficulty"
	actionUpdateReward       = "Change the reward"
	actionUpdateFee          = "Change the fee"
	actionExit               = "Exit"
)

func shellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run an interactive shell against an in-process chain",
		Description: `Starts a fresh chain inside the CLI process and drives it through
interactive prompts. Nothing is persisted and no server is involved.`,
		Action: func(c *cli.Context) error {
			return runShell()
		},
	}
}

func runShell() error {
	pterm.Print("\n")

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("chain", pterm.FgCyan.ToStyle()),
		putils.LettersFromStringWithStyle("ctl", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err != nil {
		return err
	}
	pterm.Print(title)

	difficulty := promptFloat("Enter the chain difficulty", 2.0)
	reward := promptFloat("Enter the mining reward", 100.0)
	fee := promptFloat("Enter the transaction fee", 0.01)
	pterm.Println()

	spinner, _ := pterm.DefaultSpinner.Start("Mining the genesis block...")
	chain := ledger.New(difficulty, reward, fee)
	spinner.Success("Genesis block mined")
	pterm.Info.Printfln("Chain address: %s", chain.Address)

	for {
		pterm.Println()
		action, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{
				actionCreateWallet,
				actionGetBalance,
				actionAddTransaction,
				actionGetTransaction,
				actionListTransactions,
				actionGenerateBlock,
				actionUpdateDifficulty,
				actionUpdateReward,
				actionUpdateFee,
				actionExit,
			}).
			WithMaxHeight(10).
			Show("Choose an action")
		if err != nil {
			return err
		}

		switch action {
		case actionCreateWallet:
			email, _ := pterm.DefaultInteractiveTextInput.Show("Enter an email")
			address := chain.CreateWallet(email)
			pterm.Success.Printfln("Wallet created: %s", address)

		case actionGetBalance:
			address, _ := pterm.DefaultInteractiveTextInput.Show("Enter a wallet address")
			balance, ok := chain.GetWalletBalance(address)
			if !ok {
				pterm.Error.Println("Wallet not found")
				continue
			}
			pterm.Info.Printfln("Balance: %g", balance)

		case actionAddTransaction:
			from, _ := pterm.DefaultInteractiveTextInput.Show("Enter the sender address")
			to, _ := pterm.DefaultInteractiveTextInput.Show("Enter the receiver address")
			amount := promptFloat("Enter the amount", 0)
			if chain.AddTransaction(from, to, amount) {
				pterm.Success.Println("Transaction added to the pending pool")
			} else {
				pterm.Error.Println("Transaction rejected")
			}

		case actionGetTransaction:
			hash, _ := pterm.DefaultInteractiveTextInput.Show("Enter the transaction hash")
			txn, ok := chain.GetTransaction(hash)
			if !ok {
				pterm.Error.Println("Transaction is not pending")
				continue
			}
			printShellTransaction(txn)

		case actionListTransactions:
			page := int(promptFloat("Enter the page", 1))
			size := int(promptFloat("Enter the page size", 10))
			transactions := chain.GetTransactions(page, size)
			if len(transactions) == 0 {
				pterm.Info.Println("No pending transactions")
				continue
			}
			for _, txn := range transactions {
				printShellTransaction(txn)
			}

		case actionGenerateBlock:
			spinner, _ := pterm.DefaultSpinner.Start("Mining...")
			start := time.Now()
			chain.GenerateNewBlock()
			spinner.Success(fmt.Sprintf("Block mined in %s", time.Since(start).Round(time.Millisecond)))
			pterm.Info.Printfln("Height: %d, hash: %s", len(chain.Blocks)-1, chain.GetLastHash())

		case actionUpdateDifficulty:
			chain.UpdateDifficulty(promptFloat("Enter the new difficulty", chain.Difficulty))
			pterm.Success.Printfln("Difficulty is now %g", chain.Difficulty)

		case actionUpdateReward:
			chain.UpdateReward(promptFloat("Enter the new reward", chain.Reward))
			pterm.Success.Printfln("Reward is now %g", chain.Reward)

		case actionUpdateFee:
			chain.UpdateFee(promptFloat("Enter the new fee", chain.Fee))
			pterm.Success.Printfln("Fee is now %g", chain.Fee)

		case actionExit:
			pterm.Println("Bye")
			return nil
		}
	}
}

// promptFloat asks for a number and falls back to def on empty or
// unparseable input.
func promptFloat(prompt string, def float64) float64 {
	input, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultValue(strconv.FormatFloat(def, 'g', -1, 64)).
		Show(prompt)

	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		pterm.Warning.Printfln("Invalid number %q, using %g", input, def)
		return def
	}
	return value
}

func printShellTransaction(txn ledger.Transaction) {
	pterm.Printfln("%s  %s -> %s  amount=%g fee=%g",
		pterm.Cyan(txn.Hash), txn.From, txn.To, txn.Amount, txn.Fee)
}
