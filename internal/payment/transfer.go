package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-cert-api/pkg/config"
)

// Transferrer moves a payment amount from payer to payee. The transfer is
// invoked inside the enrollment transaction: returning an error aborts the
// whole transition with no partial state.
type Transferrer interface {
	Transfer(ctx context.Context, payer, payee string, amount int64) error
}

// HTTPTransferrer calls an external payments ledger over REST.
type HTTPTransferrer struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewHTTPTransferrer constructs the client from configuration.
func NewHTTPTransferrer(cfg config.PaymentsConfig, logger *zap.Logger) *HTTPTransferrer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTransferrer{
		client:  &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

type transferRequest struct {
	Payer  string `json:"payer"`
	Payee  string `json:"payee"`
	Amount int64  `json:"amount"`
}

// Transfer posts a transfer order and treats any non-2xx reply as failure.
func (t *HTTPTransferrer) Transfer(ctx context.Context, payer, payee string, amount int64) error {
	body, err := json.Marshal(transferRequest{Payer: payer, Payee: payee, Amount: amount})
	if err != nil {
		return fmt.Errorf("encode transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("transfer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		t.logger.Warn("transfer rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("payer", payer),
			zap.String("payee", payee),
			zap.Int64("amount", amount),
		)
		return fmt.Errorf("transfer rejected: status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}

// LogTransferrer records transfers without moving value. Used in
// development when no payments ledger is reachable.
type LogTransferrer struct {
	logger *zap.Logger
}

// NewLogTransferrer constructs the no-op transferrer.
func NewLogTransferrer(logger *zap.Logger) *LogTransferrer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogTransferrer{logger: logger}
}

// Transfer logs the order and succeeds.
func (t *LogTransferrer) Transfer(ctx context.Context, payer, payee string, amount int64) error {
	t.logger.Info("value transfer (log mode)",
		zap.String("payer", payer),
		zap.String("payee", payee),
		zap.Int64("amount", amount),
	)
	return nil
}

// FromConfig picks the transferrer implementation for the configured mode.
func FromConfig(cfg config.PaymentsConfig, logger *zap.Logger) Transferrer {
	if cfg.Mode == "http" {
		return NewHTTPTransferrer(cfg, logger)
	}
	return NewLogTransferrer(logger)
}
