package ledger

import (
	"strconv"
	"time"
)

// BlockHeader identifies a block on the chain. Field order is the canonical
// serialization order used by Hash.
type BlockHeader struct {
	// Timestamp at which the block was created.
	Timestamp int64 `json:"timestamp"`

	// Nonce is mutated by the proof-of-work search.
	Nonce uint32 `json:"nonce"`

	// PreviousHash is the hash of the previous block's header, or 64 ASCII
	// '0' characters for the genesis block.
	PreviousHash string `json:"previous_hash"`

	// Merkle is the merkle root of the block's transactions.
	Merkle string `json:"merkle"`

	// Difficulty the block was mined at, fixed at sealing time.
	Difficulty float64 `json:"difficulty"`
}

// Block is a sealed batch of transactions, the reward transaction first.
// Immutable after proof-of-work completes.
type Block struct {
	// Header holds the mining metadata.
	Header BlockHeader `json:"header"`

	// Count of transactions, including the reward transaction.
	Count int `json:"count"`

	// Transactions in the order they were sealed.
	Transactions []Transaction `json:"transactions"`
}

// NewBlock creates an unsealed block with a zero nonce, an empty merkle root
// and no transactions.
func NewBlock(previousHash string, difficulty float64) Block {
	return Block{
		Header: BlockHeader{
			Timestamp:    time.Now().Unix(),
			Nonce:        0,
			PreviousHash: previousHash,
			Merkle:       "",
			Difficulty:   difficulty,
		},
		Count:        0,
		Transactions: []Transaction{},
	}
}

// MerkleRoot computes a binary merkle root over the transaction hashes.
// Folding is queue-like and strictly left to right: the two front hashes are
// concatenated as hex strings, hashed, and pushed to the back until one
// remains. An odd list duplicates its last hash first. The caller guarantees
// at least one transaction; the reward transaction is always present.
func MerkleRoot(transactions []Transaction) string {
	merkle := make([]string, 0, len(transactions)+1)

	for _, t := range transactions {
		merkle = append(merkle, Hash(t))
	}

	if len(merkle)%2 == 1 {
		merkle = append(merkle, merkle[len(merkle)-1])
	}

	for len(merkle) > 1 {
		h1, h2 := merkle[0], merkle[1]
		merkle = append(merkle[2:], Hash(h1+h2))
	}

	return merkle[0]
}

// ProofOfWork increments the header nonce until the hash satisfies the
// difficulty predicate: the first int(difficulty) characters of the header
// hash must parse as the base-10 integer zero. Non-digit hex characters fail
// the parse and count as a miss, so in practice the prefix has to be a run
// of literal '0' characters. The parse is deliberate; replacing it with a
// character comparison would change the mining predicate.
//
// The search is a CPU-bound busy loop with no cancellation; it returns only
// once a winning nonce is found.
func ProofOfWork(header *BlockHeader) {
	for {
		hash := Hash(header)
		prefix := hash[:int(header.Difficulty)]

		val, err := strconv.ParseUint(prefix, 10, 32)
		if err != nil || val != 0 {
			header.Nonce++
			continue
		}

		return
	}
}
