// Package client provides an HTTP client for the ledger service API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when the server reports that a wallet or
// transaction does not exist.
var ErrNotFound = errors.New("not found")

// Transaction is a pending transfer as reported by the server.
type Transaction struct {
	Hash      string  `json:"hash"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Fee       float64 `json:"fee"`
	Amount    float64 `json:"amount"`
	Timestamp int64   `json:"timestamp"`
}

// ChainInfo describes the chain's parameters and sizes.
type ChainInfo struct {
	Height     int     `json:"height"`
	Difficulty float64 `json:"difficulty"`
	Reward     float64 `json:"reward"`
	Fee        float64 `json:"fee"`
	Address    string  `json:"address"`
	Pending    int     `json:"pending"`
}

// Block identifies a sealed block by height and header hash.
type Block struct {
	Height int    `json:"height"`
	Hash   string `json:"hash"`
}

// Client is the HTTP client for the ledger service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new ledger service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// CreateWallet registers a new wallet and returns its address.
func (c *Client) CreateWallet(ctx context.Context, email string) (string, error) {
	var response struct {
		Address string `json:"address"`
	}

	err := c.do(ctx, "POST", "/api/v1/wallets", map[string]any{"email": email}, http.StatusCreated, &response)
	if err != nil {
		return "", err
	}

	c.logger.Debug("wallet created", "address", response.Address)
	return response.Address, nil
}

// GetWalletBalance retrieves a wallet balance. Returns ErrNotFound when the
// wallet is not registered.
func (c *Client) GetWalletBalance(ctx context.Context, address string) (float64, error) {
	var response struct {
		Balance float64 `json:"balance"`
	}

	path := fmt.Sprintf("/api/v1/wallets/%s/balance", url.PathEscape(address))
	if err := c.do(ctx, "GET", path, nil, http.StatusOK, &response); err != nil {
		return 0, err
	}

	return response.Balance, nil
}

// GetWalletTransactions retrieves one page of a wallet's pending
// transactions. Returns ErrNotFound when the wallet is not registered.
func (c *Client) GetWalletTransactions(ctx context.Context, address string, page, size int) ([]Transaction, error) {
	var response struct {
		Transactions []Transaction `json:"transactions"`
	}

	path := fmt.Sprintf("/api/v1/wallets/%s/transactions?%s",
		url.PathEscape(address), paginationQuery(page, size))
	if err := c.do(ctx, "GET", path, nil, http.StatusOK, &response); err != nil {
		return nil, err
	}

	return response.Transactions, nil
}

// ListTransactions retrieves one page of the pending pool.
func (c *Client) ListTransactions(ctx context.Context, page, size int) ([]Transaction, error) {
	var response struct {
		Transactions []Transaction `json:"transactions"`
	}

	path := "/api/v1/transactions?" + paginationQuery(page, size)
	if err := c.do(ctx, "GET", path, nil, http.StatusOK, &response); err != nil {
		return nil, err
	}

	return response.Transactions, nil
}

// GetTransaction retrieves a pending transaction by hash. Returns
// ErrNotFound for hashes that are not currently pending, including hashes
// of transactions already sealed into a block.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*Transaction, error) {
	var response struct {
		Transaction Transaction `json:"transaction"`
	}

	path := "/api/v1/transactions/" + url.PathEscape(hash)
	if err := c.do(ctx, "GET", path, nil, http.StatusOK, &response); err != nil {
		return nil, err
	}

	return &response.Transaction, nil
}

// SubmitTransaction submits a transfer and reports whether validation
// accepted it. A rejected transaction is not an error.
func (c *Client) SubmitTransaction(ctx context.Context, from, to string, amount float64) (bool, error) {
	var response struct {
		Accepted bool `json:"accepted"`
	}

	body := map[string]any{"from": from, "to": to, "amount": amount}
	if err := c.do(ctx, "POST", "/api/v1/transactions", body, http.StatusOK, &response); err != nil {
		return false, err
	}

	c.logger.Debug("transaction submitted", "from", from, "to", to, "accepted", response.Accepted)
	return response.Accepted, nil
}

// MineBlock asks the server to seal the pending pool into a new block.
// The call blocks until the server finishes the proof-of-work search, so
// callers should pass a generous context deadline at high difficulties.
func (c *Client) MineBlock(ctx context.Context) (*Block, error) {
	var response Block

	if err := c.do(ctx, "POST", "/api/v1/blocks", nil, http.StatusCreated, &response); err != nil {
		return nil, err
	}

	c.logger.Debug("block mined", "height", response.Height, "hash", response.Hash)
	return &response, nil
}

// GetChainInfo retrieves the chain's parameters.
func (c *Client) GetChainInfo(ctx context.Context) (*ChainInfo, error) {
	var response ChainInfo

	if err := c.do(ctx, "GET", "/api/v1/chain", nil, http.StatusOK, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// UpdateParameter sets a chain parameter: "difficulty", "reward" or "fee".
func (c *Client) UpdateParameter(ctx context.Context, parameter string, value float64) error {
	path := "/api/v1/chain/" + url.PathEscape(parameter)
	return c.do(ctx, "PUT", path, map[string]any{"value": value}, http.StatusOK, nil)
}

// Health checks whether the server is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	return nil
}

// do runs one request against the API, checks the expected status and
// decodes the response body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.parseErrorResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, errResp.Error)
}

func paginationQuery(page, size int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("size", strconv.Itoa(size))
	return v.Encode()
}
