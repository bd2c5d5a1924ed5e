package server

import (
	"sync"

	"github.com/slavik-pastushenko/blockchain-go/ledger"
)

// Ledger serializes access to a ledger.Chain shared across request handlers.
// The chain holds no internal synchronization and no operation is safe to
// interleave with another (two concurrent submissions from the same sender
// could both pass the balance check before either debits), so every call
// takes the one mutex. Mining holds the lock until proof-of-work returns;
// a high difficulty therefore stalls every other request.
type Ledger struct {
	mu    sync.Mutex
	chain *ledger.Chain
}

// NewLedger wraps a chain for shared use. The chain must not be used
// directly afterwards.
func NewLedger(chain *ledger.Chain) *Ledger {
	return &Ledger{chain: chain}
}

// ChainInfo is a snapshot of the chain's parameters and sizes.
type ChainInfo struct {
	Height     int     `json:"height"`
	Difficulty float64 `json:"difficulty"`
	Reward     float64 `json:"reward"`
	Fee        float64 `json:"fee"`
	Address    string  `json:"address"`
	Pending    int     `json:"pending"`
}

// CreateWallet registers a new wallet and returns its address.
func (l *Ledger) CreateWallet(email string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.CreateWallet(email)
}

// GetWalletBalance looks up a wallet balance.
func (l *Ledger) GetWalletBalance(address string) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.GetWalletBalance(address)
}

// GetWalletTransactions returns a page of a wallet's pending transactions.
func (l *Ledger) GetWalletTransactions(address string, page, size int) ([]ledger.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.GetWalletTransactions(address, page, size)
}

// GetTransactions returns a page of the pending pool.
func (l *Ledger) GetTransactions(page, size int) []ledger.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.GetTransactions(page, size)
}

// GetTransaction looks up a pending transaction by hash.
func (l *Ledger) GetTransaction(hash string) (ledger.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.GetTransaction(hash)
}

// AddTransaction submits a transfer and reports whether validation accepted
// it. The balance check and the balance mutation happen under the same lock
// acquisition, so no partial application is ever observable.
func (l *Ledger) AddTransaction(from, to string, amount float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.AddTransaction(from, to, amount)
}

// GenerateNewBlock seals the pending pool and returns the new block's height
// and header hash. Blocks until proof-of-work completes.
func (l *Ledger) GenerateNewBlock() (int, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.chain.GenerateNewBlock()

	return len(l.chain.Blocks) - 1, l.chain.GetLastHash()
}

// UpdateDifficulty sets the mining difficulty.
func (l *Ledger) UpdateDifficulty(difficulty float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.UpdateDifficulty(difficulty)
}

// UpdateReward sets the block reward.
func (l *Ledger) UpdateReward(reward float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.UpdateReward(reward)
}

// UpdateFee sets the transaction fee rate.
func (l *Ledger) UpdateFee(fee float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chain.UpdateFee(fee)
}

// PendingSize returns the current pending-pool size.
func (l *Ledger) PendingSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.chain.Pending)
}

// Info returns a snapshot of the chain's parameters.
func (l *Ledger) Info() ChainInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	return ChainInfo{
		Height:     len(l.chain.Blocks) - 1,
		Difficulty: l.chain.Difficulty,
		Reward:     l.chain.Reward,
		Fee:        l.chain.Fee,
		Address:    l.chain.Address,
		Pending:    len(l.chain.Pending),
	}
}
