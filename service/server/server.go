package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slavik-pastushenko/blockchain-go/service/config"
	"github.com/slavik-pastushenko/blockchain-go/service/metrics"
)

// Server represents the HTTP server for the ledger service.
type Server struct {
	addr    string
	cfg     *config.Config
	ledger  *Ledger
	metrics *metrics.Metrics
	logger  *slog.Logger
	server  *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The ledger owns the chain and its lock; handlers never see the chain
// directly. The metrics collector is optional - if nil, the metrics
// endpoint won't be available and no collectors are recorded.
func New(addr string, cfg *config.Config, l *Ledger, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		cfg:     cfg,
		ledger:  l,
		metrics: m,
		logger:  logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	withMetrics := func(name string, h http.Handler) http.Handler {
		return metrics.HTTPMetricsMiddleware(s.metrics, name)(h)
	}

	// Wallet routes
	mux.Handle("POST /api/v1/wallets",
		withMetrics("/api/v1/wallets", handleCreateWallet(s.ledger, s.metrics, s.logger)))
	mux.Handle("GET /api/v1/wallets/{address}/balance",
		withMetrics("/api/v1/wallets/balance", handleGetWalletBalance(s.ledger, s.logger)))
	mux.Handle("GET /api/v1/wallets/{address}/transactions",
		withMetrics("/api/v1/wallets/transactions", handleGetWalletTransactions(s.ledger, s.cfg, s.logger)))

	// Transaction routes
	mux.Handle("POST /api/v1/transactions",
		withMetrics("/api/v1/transactions", handleSubmitTransaction(s.ledger, s.metrics, s.logger)))
	mux.Handle("GET /api/v1/transactions",
		withMetrics("/api/v1/transactions", handleListTransactions(s.ledger, s.cfg, s.logger)))
	mux.Handle("GET /api/v1/transactions/{hash}",
		withMetrics("/api/v1/transactions/get", handleGetTransaction(s.ledger, s.logger)))

	// Chain routes. Sealing a block runs proof-of-work while holding the
	// ledger lock, so a mining request stalls every other route until it
	// completes; there is no cancellation.
	mux.Handle("POST /api/v1/blocks",
		withMetrics("/api/v1/blocks", handleGenerateBlock(s.ledger, s.metrics, s.logger)))
	mux.Handle("GET /api/v1/chain",
		withMetrics("/api/v1/chain", handleGetChainInfo(s.ledger, s.logger)))
	mux.Handle("PUT /api/v1/chain/{parameter}",
		withMetrics("/api/v1/chain/parameter", handleUpdateParameter(s.ledger, s.logger)))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
		s.logger.Info("Prometheus metrics endpoint enabled")
	}

	// Wrap mux with CORS middleware
	handler := corsMiddleware(mux)

	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No write timeout: mining responses wait for proof-of-work.
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Set CORS headers for all requests
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Pass through to next handler
		next.ServeHTTP(w, r)
	})
}
