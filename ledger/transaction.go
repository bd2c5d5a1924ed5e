package ledger

import "time"

// Transaction is an exchange of assets between two parties. It is immutable
// once created; validation is the caller's responsibility, not the
// constructor's.
type Transaction struct {
	// Hash of (from, to, amount, timestamp). The fee rate is not part of
	// the hash input.
	Hash string `json:"hash"`

	// From is the sender address.
	From string `json:"from"`

	// To is the receiver address.
	To string `json:"to"`

	// Fee is the fee rate in effect when the transaction was submitted.
	Fee float64 `json:"fee"`

	// Amount transferred. For ledger transactions this is the sender-side
	// debit, i.e. the requested amount scaled by the fee rate.
	Amount float64 `json:"amount"`

	// Timestamp is seconds since the epoch at creation time.
	Timestamp int64 `json:"timestamp"`
}

// NewTransaction creates a transaction stamped with the current time and a
// hash derived from the sender, receiver, amount and timestamp.
func NewTransaction(from, to string, fee, amount float64) Transaction {
	timestamp := time.Now().Unix()

	return Transaction{
		Hash:      Hash([]any{from, to, amount, timestamp}),
		From:      from,
		To:        to,
		Fee:       fee,
		Amount:    amount,
		Timestamp: timestamp,
	}
}
