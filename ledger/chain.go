// Package ledger implements a minimal single-node ledger: an ordered chain
// of mined blocks, a registry of wallets with balances, and a pool of
// pending transactions. Blocks are sealed locally with a merkle root and a
// proof-of-work search over a canonical SHA-256 hash.
//
// The package is single-threaded and holds no internal synchronization.
// No operation is safe to interleave with another; callers exposing a Chain
// to multiple goroutines must serialize access themselves, typically with
// one mutex around the whole value.
package ledger

import "strings"

// RootAddress is the reserved sender of block reward transactions. Ordinary
// transactions from it are always rejected.
const RootAddress = "Root"

// AddressLength is the length of generated wallet and chain addresses.
const AddressLength = 42

// Chain orchestrates the wallet registry, the pending transaction pool and
// the block history.
type Chain struct {
	// Blocks is the append-only chain of sealed blocks, index 0 = genesis.
	// Never empty after New returns.
	Blocks []Block `json:"chain"`

	// Pending is the pool of transactions awaiting the next block.
	Pending []Transaction `json:"current_transactions"`

	// Difficulty is the current mining difficulty.
	Difficulty float64 `json:"difficulty"`

	// Address collects block rewards for the chain itself.
	Address string `json:"address"`

	// Reward paid to the chain address per sealed block.
	Reward float64 `json:"reward"`

	// Fee rate applied to the requested amount when computing the sender's
	// debit.
	Fee float64 `json:"fee"`

	// Wallets maps address to wallet. The registry is the source of truth
	// for balances; nothing is re-derived from block history.
	Wallets map[string]*Wallet `json:"wallets"`
}

// New initializes a chain with the given difficulty, block reward and fee
// rate, and synchronously mines the genesis block before returning.
func New(difficulty, reward, fee float64) *Chain {
	c := &Chain{
		Blocks:     []Block{},
		Pending:    []Transaction{},
		Difficulty: difficulty,
		Address:    GenerateAddress(AddressLength),
		Reward:     reward,
		Fee:        fee,
		Wallets:    map[string]*Wallet{},
	}

	c.GenerateNewBlock()

	return c
}

// CreateWallet registers a zero-balance wallet under a fresh random address
// and returns the address. Collisions against existing addresses are not
// checked.
func (c *Chain) CreateWallet(email string) string {
	address := GenerateAddress(AddressLength)

	c.Wallets[address] = NewWallet(email, address, 0)

	return address
}

// GetWalletBalance looks up a wallet balance by address.
func (c *Chain) GetWalletBalance(address string) (float64, bool) {
	wallet, ok := c.Wallets[address]
	if !ok {
		return 0, false
	}
	return wallet.Balance, true
}

// ValidateTransaction checks the business rules for a transfer, in order:
// the sender is not the reserved root address, sender and receiver differ,
// the amount is positive, both wallets exist, and the sender's balance
// covers the amount. The first failing rule rejects.
func (c *Chain) ValidateTransaction(from, to string, amount float64) bool {
	if from == RootAddress {
		return false
	}

	if from == to {
		return false
	}

	if amount <= 0 {
		return false
	}

	sender, ok := c.Wallets[from]
	if !ok {
		return false
	}

	if _, ok := c.Wallets[to]; !ok {
		return false
	}

	return sender.Balance >= amount
}

// AddTransaction validates and records a transfer. The sender is debited the
// requested amount scaled by the fee rate, the receiver is credited the full
// requested amount, both histories record the transaction hash, and the
// transaction joins the pending pool. Returns false without any mutation
// when validation fails.
func (c *Chain) AddTransaction(from, to string, amount float64) bool {
	total := amount * c.Fee

	if !c.ValidateTransaction(from, to, total) {
		return false
	}

	// Validation already proved both wallets exist; the lookups are kept so
	// a failure cannot partially apply the transfer.
	sender, ok := c.Wallets[from]
	if !ok {
		return false
	}

	receiver, ok := c.Wallets[to]
	if !ok {
		return false
	}

	trx := NewTransaction(from, to, c.Fee, total)

	sender.Balance -= total
	sender.Transactions = append(sender.Transactions, trx.Hash)

	receiver.Balance += amount
	receiver.Transactions = append(receiver.Transactions, trx.Hash)

	c.Pending = append(c.Pending, trx)

	return true
}

// GetTransaction looks up a pending transaction by hash. Transactions
// already sealed into a block are not searchable here.
func (c *Chain) GetTransaction(hash string) (Transaction, bool) {
	for _, trx := range c.Pending {
		if trx.Hash == hash {
			return trx, true
		}
	}
	return Transaction{}, false
}

// GetTransactions returns one page of the pending pool. Pages are 1-indexed;
// page 0 and page 1 are equivalent, and pages beyond the total page count
// return an empty slice. size must be at least 1.
func (c *Chain) GetTransactions(page, size int) []Transaction {
	totalPages := (len(c.Pending) + size - 1) / size
	if page > totalPages {
		return []Transaction{}
	}

	start := 0
	if page > 0 {
		start = (page - 1) * size
	}
	end := min(start+size, len(c.Pending))

	out := make([]Transaction, end-start)
	copy(out, c.Pending[start:end])

	return out
}

// GetWalletTransactions returns one page of the wallet's recorded
// transactions, resolved back to pending-pool entries; hashes already sealed
// into blocks resolve to nothing and are skipped. The total page count is
// derived from the pending-pool size, not the wallet's history length.
// Returns false when the wallet does not exist. size must be at least 1.
func (c *Chain) GetWalletTransactions(address string, page, size int) ([]Transaction, bool) {
	wallet, ok := c.Wallets[address]
	if !ok {
		return nil, false
	}

	result := []Transaction{}

	totalPages := (len(c.Pending) + size - 1) / size
	if page > totalPages {
		return result, true
	}

	start := 0
	if page > 0 {
		start = (page - 1) * size
	}
	end := min(start+size, len(wallet.Transactions))
	start = min(start, end)

	for _, hash := range wallet.Transactions[start:end] {
		if trx, found := c.GetTransaction(hash); found {
			result = append(result, trx)
		}
	}

	return result, true
}

// GetLastHash returns the hash of the last block's header, or the 64-zero
// sentinel when the chain is empty. The empty case is reachable only while
// the genesis block is being constructed.
func (c *Chain) GetLastHash() string {
	if len(c.Blocks) == 0 {
		return strings.Repeat("0", 64)
	}
	return Hash(c.Blocks[len(c.Blocks)-1].Header)
}

// UpdateDifficulty sets the mining difficulty. Always reports success.
func (c *Chain) UpdateDifficulty(difficulty float64) bool {
	c.Difficulty = difficulty
	return true
}

// UpdateReward sets the block reward. Always reports success.
func (c *Chain) UpdateReward(reward float64) bool {
	c.Reward = reward
	return true
}

// UpdateFee sets the transaction fee rate. Always reports success.
func (c *Chain) UpdateFee(fee float64) bool {
	c.Fee = fee
	return true
}

// GenerateNewBlock seals the pending pool into a new block and appends it to
// the chain. A reward transaction from the root address to the chain's own
// address is minted first; it is recorded on-chain but does not credit any
// wallet-registry entry. The merkle root is computed over the full
// transaction list and proof-of-work runs to completion before the block is
// appended. Always succeeds, and the pending pool is empty afterwards.
func (c *Chain) GenerateNewBlock() bool {
	block := NewBlock(c.GetLastHash(), c.Difficulty)

	reward := NewTransaction(RootAddress, c.Address, c.Fee, c.Reward)

	block.Transactions = append(block.Transactions, reward)
	block.Transactions = append(block.Transactions, c.Pending...)
	c.Pending = []Transaction{}

	block.Count = len(block.Transactions)
	block.Header.Merkle = MerkleRoot(block.Transactions)

	ProofOfWork(&block.Header)

	c.Blocks = append(c.Blocks, block)

	return true
}
