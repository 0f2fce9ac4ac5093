package tonledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/collectibles_market/internal/core/ports/external"
	"github.com/sony/gobreaker"
)

// WalletDispatcher asks the hot-wallet service to send an outbound payment.
type WalletDispatcher struct {
	http     *http.Client
	endpoint string
	breaker  *gobreaker.CircuitBreaker
}

func NewWalletDispatcher(endpoint string, logger *slog.Logger) *WalletDispatcher {
	return &WalletDispatcher{
		http:     &http.Client{Timeout: 30 * time.Second},
		endpoint: endpoint,
		breaker:  newBreaker("wallet-dispatch", DefaultBreakerConfig, logger),
	}
}

var _ external.PaymentDispatcher = (*WalletDispatcher)(nil)

type dispatchRequest struct {
	Destination string `json:"destination"`
	Amount      string `json:"amount"` // nanoTON
}

type dispatchResponse struct {
	Reference string `json:"reference"`
}

func (d *WalletDispatcher) Dispatch(ctx context.Context, destination string, amount int64) (string, error) {
	return execute(d.breaker, func() (string, error) {
		payload, err := json.Marshal(dispatchRequest{Destination: destination, Amount: strconv.FormatInt(amount, 10)})
		if err != nil {
			return "", fmt.Errorf("encode dispatch request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("build dispatch request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.http.Do(req)
		if err != nil {
			return "", fmt.Errorf("dispatch request: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
			return "", fmt.Errorf("wallet service returned %s", resp.Status)
		}
		var out dispatchResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("decode dispatch response: %w", err)
		}
		if out.Reference == "" {
			return "", fmt.Errorf("wallet service returned no reference")
		}
		return out.Reference, nil
	})
}
