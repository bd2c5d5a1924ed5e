package ledger

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
)

const addressAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Hash canonically serializes item to JSON and returns the SHA-256 digest
// rendered as per-byte hex without zero padding: a byte 0x0a renders as "a",
// not "0a", so the result is usually shorter than 64 characters. Mining and
// merkle folding both depend on this rendering; do not switch to %02x.
func Hash(item any) string {
	input, err := json.Marshal(item)
	if err != nil {
		// Every hashed value in this package is a plain struct, string or
		// slice of such; marshaling them cannot fail.
		panic(fmt.Sprintf("ledger: unhashable value: %v", err))
	}

	sum := sha256.Sum256(input)

	var b strings.Builder
	for _, c := range sum {
		fmt.Fprintf(&b, "%x", c)
	}

	return b.String()
}

// GenerateAddress returns a random alphanumeric string of the given length.
// Uniqueness is probabilistic; there is no collision detection.
func GenerateAddress(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = addressAlphabet[rand.IntN(len(addressAlphabet))]
	}
	return string(b)
}
