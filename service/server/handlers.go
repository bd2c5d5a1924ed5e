package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/slavik-pastushenko/blockchain-go/service/config"
	"github.com/slavik-pastushenko/blockchain-go/service/metrics"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB - plenty for any request here
	maxAddressLength   = 100     // generated addresses are 42 chars, give buffer
	maxEmailLength     = 254

	defaultPage = 1
	defaultSize = 10
)

// handleCreateWallet returns a handler that registers a new wallet.
// POST /api/v1/wallets
func handleCreateWallet(l *Ledger, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req struct {
			Email string `json:"email"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Debug("failed to decode create wallet request", "error", err)
			if strings.Contains(err.Error(), "http: request body too large") {
				writeError(w, "request body too large: maximum size is 1MB", http.StatusBadRequest)
				return
			}
			writeError(w, "invalid request body: must be valid JSON", http.StatusBadRequest)
			return
		}

		if err := validateEmail(req.Email); err != nil {
			logger.Debug("invalid email", "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		address := l.CreateWallet(req.Email)
		if m != nil {
			m.RecordWalletCreated()
		}

		logger.Info("wallet created", "address", address)
		writeJSON(w, map[string]any{
			"address": address,
		}, http.StatusCreated)
	})
}

// handleGetWalletBalance returns a handler that retrieves a wallet balance.
// GET /api/v1/wallets/{address}/balance
func handleGetWalletBalance(l *Ledger, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := r.PathValue("address")

		if err := validateAddress(address); err != nil {
			logger.Debug("invalid address", "address", address, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		balance, ok := l.GetWalletBalance(address)
		if !ok {
			writeError(w, "wallet not found", http.StatusNotFound)
			return
		}

		logger.Debug("wallet balance retrieved", "address", address)
		writeJSON(w, map[string]any{
			"address": address,
			"balance": balance,
		}, http.StatusOK)
	})
}

// handleGetWalletTransactions returns a handler that retrieves one page of a
// wallet's pending transactions.
// GET /api/v1/wallets/{address}/transactions?page={page}&size={size}
func handleGetWalletTransactions(l *Ledger, cfg *config.Config, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := r.PathValue("address")

		if err := validateAddress(address); err != nil {
			logger.Debug("invalid address", "address", address, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		page, size, err := parsePagination(r, cfg.MaxPageSize)
		if err != nil {
			logger.Debug("invalid pagination", "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		transactions, ok := l.GetWalletTransactions(address, page, size)
		if !ok {
			writeError(w, "wallet not found", http.StatusNotFound)
			return
		}

		logger.Debug("wallet transactions retrieved", "address", address, "count", len(transactions))
		writeJSON(w, map[string]any{
			"address":      address,
			"transactions": transactions,
			"page":         page,
			"size":         size,
		}, http.StatusOK)
	})
}

// handleSubmitTransaction returns a handler that submits a new transaction.
// The validation outcome travels in the response body; a rejected
// transaction is still a 200.
// POST /api/v1/transactions
func handleSubmitTransaction(l *Ledger, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req struct {
			From   string  `json:"from"`
			To     string  `json:"to"`
			Amount float64 `json:"amount"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Debug("failed to decode submit request", "error", err)
			if strings.Contains(err.Error(), "http: request body too large") {
				writeError(w, "request body too large: maximum size is 1MB", http.StatusBadRequest)
				return
			}
			writeError(w, "invalid request body: must be valid JSON", http.StatusBadRequest)
			return
		}

		if err := validateAddress(req.From); err != nil {
			logger.Debug("invalid sender", "error", err)
			writeError(w, fmt.Sprintf("from: %v", err), http.StatusBadRequest)
			return
		}
		if err := validateAddress(req.To); err != nil {
			logger.Debug("invalid receiver", "error", err)
			writeError(w, fmt.Sprintf("to: %v", err), http.StatusBadRequest)
			return
		}
		if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
			writeError(w, "amount must be a finite number", http.StatusBadRequest)
			return
		}

		accepted := l.AddTransaction(req.From, req.To, req.Amount)
		if m != nil {
			m.RecordTransactionSubmitted(accepted)
			m.SetPendingPoolSize(l.PendingSize())
		}

		logger.Info("transaction submitted",
			"from", req.From,
			"to", req.To,
			"amount", req.Amount,
			"accepted", accepted,
		)
		writeJSON(w, map[string]any{
			"accepted": accepted,
		}, http.StatusOK)
	})
}

// handleListTransactions returns a handler that lists one page of the
// pending pool.
// GET /api/v1/transactions?page={page}&size={size}
func handleListTransactions(l *Ledger, cfg *config.Config, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, size, err := parsePagination(r, cfg.MaxPageSize)
		if err != nil {
			logger.Debug("invalid pagination", "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		transactions := l.GetTransactions(page, size)

		logger.Debug("transactions listed", "count", len(transactions))
		writeJSON(w, map[string]any{
			"transactions": transactions,
			"page":         page,
			"size":         size,
		}, http.StatusOK)
	})
}

// handleGetTransaction returns a handler that retrieves a pending
// transaction by hash. Transactions already sealed into a block are not
// found here.
// GET /api/v1/transactions/{hash}
func handleGetTransaction(l *Ledger, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := r.PathValue("hash")

		if err := validateHash(hash); err != nil {
			logger.Debug("invalid hash", "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		trx, ok := l.GetTransaction(hash)
		if !ok {
			writeError(w, "transaction not found", http.StatusNotFound)
			return
		}

		writeJSON(w, map[string]any{
			"transaction": trx,
		}, http.StatusOK)
	})
}

// handleGenerateBlock returns a handler that seals the pending pool into a
// new block. The response waits for the proof-of-work search.
// POST /api/v1/blocks
func handleGenerateBlock(l *Ledger, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		height, hash := l.GenerateNewBlock()

		if m != nil {
			m.RecordBlockMined(time.Since(start).Seconds())
			m.SetPendingPoolSize(l.PendingSize())
		}

		logger.Info("block mined",
			"height", height,
			"hash", hash,
			"duration", time.Since(start),
		)
		writeJSON(w, map[string]any{
			"height": height,
			"hash":   hash,
		}, http.StatusCreated)
	})
}

// handleGetChainInfo returns a handler that reports the chain parameters.
// GET /api/v1/chain
func handleGetChainInfo(l *Ledger, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := l.Info()

		logger.Debug("chain info retrieved", "height", info.Height)
		writeJSON(w, info, http.StatusOK)
	})
}

// handleUpdateParameter returns a handler that updates a chain parameter.
// PUT /api/v1/chain/{parameter} with parameter one of difficulty, reward,
// fee.
func handleUpdateParameter(l *Ledger, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parameter := r.PathValue("parameter")

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req struct {
			Value float64 `json:"value"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Debug("failed to decode update request", "error", err)
			writeError(w, "invalid request body: must be valid JSON", http.StatusBadRequest)
			return
		}

		if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
			writeError(w, "value must be a finite number", http.StatusBadRequest)
			return
		}

		var updated bool
		switch parameter {
		case "difficulty":
			if req.Value <= 0 {
				writeError(w, "difficulty must be positive", http.StatusBadRequest)
				return
			}
			updated = l.UpdateDifficulty(req.Value)
		case "reward":
			if req.Value < 0 {
				writeError(w, "reward cannot be negative", http.StatusBadRequest)
				return
			}
			updated = l.UpdateReward(req.Value)
		case "fee":
			if req.Value <= 0 {
				writeError(w, "fee must be positive", http.StatusBadRequest)
				return
			}
			updated = l.UpdateFee(req.Value)
		default:
			writeError(w, "unknown parameter: must be 'difficulty', 'reward' or 'fee'", http.StatusBadRequest)
			return
		}

		logger.Info("chain parameter updated", "parameter", parameter, "value", req.Value)
		writeJSON(w, map[string]any{
			"updated": updated,
		}, http.StatusOK)
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// validateAddress validates a wallet address for basic shape. Addresses are
// opaque to the core, so only length and character-class limits apply here.
func validateAddress(address string) error {
	if address == "" {
		return errorf("address is required")
	}

	if len(address) > maxAddressLength {
		return errorf("address too long: maximum length is %d characters", maxAddressLength)
	}

	for _, r := range address {
		if r == 0 || unicode.IsControl(r) {
			return errorf("invalid characters in address: control characters not allowed")
		}
	}

	return nil
}

// validateEmail validates a wallet email. Emails are opaque identifiers;
// only presence and length are enforced.
func validateEmail(email string) error {
	if email == "" {
		return errorf("email is required")
	}

	if len(email) > maxEmailLength {
		return errorf("email too long: maximum length is %d characters", maxEmailLength)
	}

	return nil
}

// validateHash validates a transaction hash parameter. Hashes are lowercase
// hex of varying length because digest bytes render without zero padding.
func validateHash(hash string) error {
	if hash == "" {
		return errorf("hash is required")
	}

	if len(hash) > 64 {
		return errorf("hash too long: maximum length is 64 characters")
	}

	for _, r := range hash {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return errorf("invalid hash: must be lowercase hex")
		}
	}

	return nil
}

// parsePagination parses the page and size query parameters, applying
// defaults when absent. Page 0 is allowed and equivalent to page 1.
func parsePagination(r *http.Request, maxSize int) (int, int, error) {
	page := defaultPage
	if v := r.URL.Query().Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return 0, 0, errorf("invalid page: must be a non-negative integer")
		}
		page = parsed
	}

	size := defaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return 0, 0, errorf("invalid size: must be a positive integer")
		}
		if parsed > maxSize {
			return 0, 0, errorf("invalid size: maximum is %d", maxSize)
		}
		size = parsed
	}

	return page, size, nil
}

// errorf is a helper to create formatted errors.
func errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
