// Package rates fetches the USD/BRL exchange rate used for star pricing.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
)

var _ adapter.RateProvider = (*AwesomeRateProvider)(nil)

// AwesomeRateProvider reads the USD-BRL quote from the AwesomeAPI economia
// endpoint. The payload keys currencies by pair and quotes bids as strings.
type AwesomeRateProvider struct {
	url    string
	client *http.Client
}

func NewAwesomeRateProvider(url string) *AwesomeRateProvider {
	return &AwesomeRateProvider{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *AwesomeRateProvider) USDBRL(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rates http %d", resp.StatusCode)
	}

	var payload map[string]struct {
		Bid string `json:"bid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	quote, ok := payload["USDBRL"]
	if !ok {
		return 0, errors.New("rates: USDBRL pair missing")
	}
	rate, err := strconv.ParseFloat(quote.Bid, 64)
	if err != nil {
		return 0, fmt.Errorf("rates: bad bid %q: %w", quote.Bid, err)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("rates: non-positive bid %v", rate)
	}
	return rate, nil
}
