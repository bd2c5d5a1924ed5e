package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/slavik-pastushenko/blockchain-go/ledger"
	"github.com/slavik-pastushenko/blockchain-go/service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{MaxPageSize: 100}
}

// setupLedger builds a lock-guarded chain with a low difficulty so mining in
// tests stays fast.
func setupLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(ledger.New(1.0, 100.0, 0.1))
}

// fundWallet reaches through the lock to set up balances for tests.
func fundWallet(t *testing.T, l *Ledger, address string, balance float64) {
	t.Helper()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.chain.Wallets[address].Balance = balance
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCreateWallet(t *testing.T) {
	l := setupLedger(t)
	handler := handleCreateWallet(l, nil, testLogger())

	req := httptest.NewRequest("POST", "/api/v1/wallets", strings.NewReader(`{"email":"user@mail.com"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	address, ok := body["address"].(string)
	require.True(t, ok)
	assert.Len(t, address, ledger.AddressLength)

	_, found := l.GetWalletBalance(address)
	assert.True(t, found)
}

func TestCreateWallet_BadRequests(t *testing.T) {
	handler := handleCreateWallet(setupLedger(t), nil, testLogger())

	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"malformed JSON", `{"email":`, "invalid request body"},
		{"empty object", `{}`, "email is required"},
		{"empty email", `{"email":""}`, "email is required"},
		{"email too long", `{"email":"` + strings.Repeat("a", 300) + `"}`, "email too long"},
		{"oversized body", `{"email":"` + strings.Repeat("a", 2<<20) + `"}`, "request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/wallets", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantError)
		})
	}
}

func TestGetWalletBalance(t *testing.T) {
	l := setupLedger(t)
	address := l.CreateWallet("user@mail.com")
	fundWallet(t, l, address, 42.5)

	handler := handleGetWalletBalance(l, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/wallets/"+address+"/balance", nil)
	req.SetPathValue("address", address)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 42.5, body["balance"])
	assert.Equal(t, address, body["address"])
}

func TestGetWalletBalance_NotFound(t *testing.T) {
	handler := handleGetWalletBalance(setupLedger(t), testLogger())

	req := httptest.NewRequest("GET", "/api/v1/wallets/unknown/balance", nil)
	req.SetPathValue("address", "unknown")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "wallet not found")
}

func TestSubmitTransaction(t *testing.T) {
	l := setupLedger(t)
	from := l.CreateWallet("s@mail.com")
	to := l.CreateWallet("r@mail.com")
	fundWallet(t, l, from, 20.0)

	handler := handleSubmitTransaction(l, nil, testLogger())

	submit := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/v1/transactions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := submit(`{"from":"` + from + `","to":"` + to + `","amount":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["accepted"])

	// A rejected transaction is still a 200; the outcome travels in the
	// body.
	rec = submit(`{"from":"` + from + `","to":"` + to + `","amount":1000000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["accepted"])

	rec = submit(`{"from":"` + from + `","to":"` + from + `","amount":10}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["accepted"])
}

func TestSubmitTransaction_BadRequests(t *testing.T) {
	handler := handleSubmitTransaction(setupLedger(t), nil, testLogger())

	tests := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"from":"a","to":`},
		{"missing from", `{"to":"b","amount":1}`},
		{"missing to", `{"from":"a","amount":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/transactions", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetTransaction(t *testing.T) {
	l := setupLedger(t)
	from := l.CreateWallet("s@mail.com")
	to := l.CreateWallet("r@mail.com")
	fundWallet(t, l, from, 20.0)
	require.True(t, l.AddTransaction(from, to, 10.0))

	hash := l.GetTransactions(1, 10)[0].Hash

	handler := handleGetTransaction(l, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/transactions/"+hash, nil)
	req.SetPathValue("hash", hash)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	trx, ok := body["transaction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, hash, trx["hash"])
}

func TestGetTransaction_NotFound(t *testing.T) {
	handler := handleGetTransaction(setupLedger(t), testLogger())

	req := httptest.NewRequest("GET", "/api/v1/transactions/abcdef", nil)
	req.SetPathValue("hash", "abcdef")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "transaction not found")
}

func TestGetTransaction_InvalidHash(t *testing.T) {
	handler := handleGetTransaction(setupLedger(t), testLogger())

	req := httptest.NewRequest("GET", "/api/v1/transactions/NOT-HEX", nil)
	req.SetPathValue("hash", "NOT-HEX")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTransactions(t *testing.T) {
	l := setupLedger(t)
	from := l.CreateWallet("s@mail.com")
	to := l.CreateWallet("r@mail.com")
	fundWallet(t, l, from, 100.0)

	for i := 0; i < 3; i++ {
		require.True(t, l.AddTransaction(from, to, 1.0))
	}

	handler := handleListTransactions(l, testConfig(), testLogger())

	req := httptest.NewRequest("GET", "/api/v1/transactions?page=1&size=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["transactions"], 2)

	// Pages beyond the total count are empty, not an error.
	req = httptest.NewRequest("GET", "/api/v1/transactions?page=10&size=2", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["transactions"])
}

func TestListTransactions_InvalidPagination(t *testing.T) {
	handler := handleListTransactions(setupLedger(t), testConfig(), testLogger())

	tests := []struct {
		name  string
		query string
	}{
		{"negative page", "?page=-1"},
		{"page not a number", "?page=abc"},
		{"zero size", "?size=0"},
		{"size over maximum", "?size=1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/transactions"+tt.query, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetWalletTransactions(t *testing.T) {
	l := setupLedger(t)
	from := l.CreateWallet("s@mail.com")
	to := l.CreateWallet("r@mail.com")
	fundWallet(t, l, from, 20.0)
	require.True(t, l.AddTransaction(from, to, 10.0))

	handler := handleGetWalletTransactions(l, testConfig(), testLogger())

	req := httptest.NewRequest("GET", "/api/v1/wallets/"+from+"/transactions", nil)
	req.SetPathValue("address", from)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["transactions"], 1)
}

func TestGetWalletTransactions_NotFound(t *testing.T) {
	handler := handleGetWalletTransactions(setupLedger(t), testConfig(), testLogger())

	req := httptest.NewRequest("GET", "/api/v1/wallets/unknown/transactions", nil)
	req.SetPathValue("address", "unknown")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateBlock(t *testing.T) {
	l := setupLedger(t)
	from := l.CreateWallet("s@mail.com")
	to := l.CreateWallet("r@mail.com")
	fundWallet(t, l, from, 20.0)
	require.True(t, l.AddTransaction(from, to, 10.0))

	handler := handleGenerateBlock(l, nil, testLogger())

	req := httptest.NewRequest("POST", "/api/v1/blocks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["height"])
	assert.NotEmpty(t, body["hash"])

	assert.Zero(t, l.PendingSize(), "sealing drains the pending pool")
}

func TestGetChainInfo(t *testing.T) {
	l := setupLedger(t)
	handler := handleGetChainInfo(l, testLogger())

	req := httptest.NewRequest("GET", "/api/v1/chain", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["height"])
	assert.Equal(t, 1.0, body["difficulty"])
	assert.Equal(t, 100.0, body["reward"])
	assert.Equal(t, 0.1, body["fee"])
	assert.NotEmpty(t, body["address"])
}

func TestUpdateParameter(t *testing.T) {
	l := setupLedger(t)
	handler := handleUpdateParameter(l, testLogger())

	update := func(parameter, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("PUT", "/api/v1/chain/"+parameter, strings.NewReader(body))
		req.SetPathValue("parameter", parameter)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := update("difficulty", `{"value":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["updated"])
	assert.Equal(t, 3.0, l.Info().Difficulty)

	rec = update("reward", `{"value":50}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50.0, l.Info().Reward)

	rec = update("fee", `{"value":0.2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.2, l.Info().Fee)
}

func TestUpdateParameter_BadRequests(t *testing.T) {
	handler := handleUpdateParameter(setupLedger(t), testLogger())

	tests := []struct {
		name      string
		parameter string
		body      string
	}{
		{"unknown parameter", "size", `{"value":1}`},
		{"zero difficulty", "difficulty", `{"value":0}`},
		{"negative reward", "reward", `{"value":-1}`},
		{"zero fee", "fee", `{"value":0}`},
		{"malformed body", "fee", `{"value":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/api/v1/chain/"+tt.parameter, strings.NewReader(tt.body))
			req.SetPathValue("parameter", tt.parameter)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLedger_SerializesConcurrentSubmissions(t *testing.T) {
	l := setupLedger(t)
	from := l.CreateWallet("s@mail.com")
	to := l.CreateWallet("r@mail.com")

	// Each submission debits 10 * 0.1 = 1.0, so a 5.0 balance covers
	// exactly five of them no matter how the calls interleave.
	fundWallet(t, l, from, 5.0)

	var wg sync.WaitGroup
	results := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.AddTransaction(from, to, 10.0)
		}()
	}
	wg.Wait()
	close(results)

	accepted := 0
	for ok := range results {
		if ok {
			accepted++
		}
	}

	assert.Equal(t, 5, accepted)

	balance, _ := l.GetWalletBalance(from)
	assert.Equal(t, 0.0, balance)
}
