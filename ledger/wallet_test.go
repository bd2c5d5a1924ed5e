package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWallet(t *testing.T) {
	wallet := NewWallet("user@mail.com", "address", 100.0)

	assert.Equal(t, "user@mail.com", wallet.Email)
	assert.Equal(t, "address", wallet.Address)
	assert.Equal(t, 100.0, wallet.Balance)
	assert.Empty(t, wallet.Transactions)
}
