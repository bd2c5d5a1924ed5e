package ledger

// Wallet holds a balance and the history of transaction hashes affecting it.
// The Chain owns the wallet registry and mutates Balance and Transactions
// directly; wallets expose no mutating methods of their own.
type Wallet struct {
	// Email is an opaque identifier, not validated for format or uniqueness.
	Email string `json:"email"`

	// Address uniquely identifies the wallet.
	Address string `json:"address"`

	// Balance is the current balance, the net of all debits and credits
	// applied since creation.
	Balance float64 `json:"balance"`

	// Transactions is the ordered list of transaction hashes affecting this
	// wallet.
	Transactions []string `json:"transactions"`
}

// NewWallet creates a wallet with an empty transaction history.
func NewWallet(email, address string, balance float64) *Wallet {
	return &Wallet{
		Email:        email,
		Address:      address,
		Balance:      balance,
		Transactions: []string{},
	}
}
