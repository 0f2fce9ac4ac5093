package tonledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	"github.com/SscSPs/collectibles_market/internal/utils"
	"github.com/sony/gobreaker"
)

// DefaultTonCenterURL is the public toncenter endpoint.
const DefaultTonCenterURL = "https://toncenter.com"

// TonCenterClient lists inbound transfers through the toncenter v2 HTTP API.
type TonCenterClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewTonCenterClient(baseURL, apiKey string, logger *slog.Logger) *TonCenterClient {
	if baseURL == "" {
		baseURL = DefaultTonCenterURL
	}
	return &TonCenterClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		breaker: newBreaker("toncenter", DefaultBreakerConfig, logger),
		logger:  logger,
	}
}

var _ external.ExternalLedger = (*TonCenterClient)(nil)

type tonTransactionsResponse struct {
	OK     bool             `json:"ok"`
	Error  string           `json:"error"`
	Result []tonTransaction `json:"result"`
}

type tonTransaction struct {
	TransactionID struct {
		Hash string `json:"hash"`
	} `json:"transaction_id"`
	InMsg *struct {
		Source  string `json:"source"`
		Value   string `json:"value"`
		Message string `json:"message"`
	} `json:"in_msg"`
}

// ListRecentInbound returns up to count recent transfers into address. Transactions
// without an inbound message, or with an unparseable value, are left out.
func (c *TonCenterClient) ListRecentInbound(ctx context.Context, address string, count int) ([]domain.InboundTransfer, error) {
	return execute(c.breaker, func() ([]domain.InboundTransfer, error) {
		return c.fetch(ctx, address, count)
	})
}

func (c *TonCenterClient) fetch(ctx context.Context, address string, count int) ([]domain.InboundTransfer, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("limit", strconv.Itoa(count))
	q.Set("archival", "false")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/getTransactions?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build toncenter request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("toncenter request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("toncenter returned %s", resp.Status)
	}

	var body tonTransactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode toncenter response: %w", err)
	}
	if !body.OK {
		return nil, fmt.Errorf("toncenter error: %s", body.Error)
	}

	transfers := make([]domain.InboundTransfer, 0, len(body.Result))
	for _, tx := range body.Result {
		if tx.InMsg == nil || tx.InMsg.Source == "" {
			continue
		}
		amount, err := utils.ParseNano(tx.InMsg.Value)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping transfer with bad value",
				slog.String("hash", tx.TransactionID.Hash),
				slog.String("error", err.Error()))
			continue
		}
		transfers = append(transfers, domain.InboundTransfer{
			Hash:   tx.TransactionID.Hash,
			Memo:   strings.TrimSpace(tx.InMsg.Message),
			Amount: amount,
			Source: tx.InMsg.Source,
		})
	}
	return transfers, nil
}
