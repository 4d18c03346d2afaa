package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
)

const (
	freeAPIURL = "https://api.coingecko.com/api/v3"
	proAPIURL  = "https://pro-api.coingecko.com/api/v3"

	providerName = "coingecko"
)

// Client talks to the CoinGecko search and coin-detail endpoints. With an
// API key it uses the pro endpoint, otherwise the rate-limited free tier.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// Coin is one search candidate as returned by /search.
type Coin struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Symbol          string            `json:"symbol"`
	AssetPlatformID string            `json:"asset_platform_id"`
	Platforms       map[string]string `json:"platforms"`
}

// CoinDetails is the subset of /coins/{id} the assistant consumes.
type CoinDetails struct {
	ID              string
	Name            string
	Symbol          string
	AssetPlatformID string
	Platforms       map[string]string
	PriceUSD        *float64
	MarketCapUSD    *float64
	PctChange1H     *float64
	PctChange24H    *float64
	PctChange7D     *float64
	PctChange30D    *float64
}

// NewClient creates a CoinGecko client
func NewClient(apiKey string) *Client {
	baseURL := freeAPIURL
	if apiKey != "" {
		baseURL = proAPIURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: providerName}),
	}
}

// NewClientWithBase creates a client against a custom base URL (tests).
func NewClientWithBase(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// Search queries /search and returns candidates in provider relevance order.
func (c *Client) Search(ctx context.Context, query string) ([]Coin, error) {
	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, url.Values{"query": {query}}.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result struct {
		Coins []Coin `json:"coins"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, models.NewProviderError(providerName, models.ErrMalformed, "failed to decode search response", err)
	}

	logger.Debug("coingecko search",
		zap.String("query", query),
		zap.Int("candidates", len(result.Coins)),
	)

	return result.Coins, nil
}

// Details fetches /coins/{id} and flattens the USD market data fields.
func (c *Client) Details(ctx context.Context, coinID string) (*CoinDetails, error) {
	endpoint := fmt.Sprintf("%s/coins/%s", c.baseURL, url.PathEscape(coinID))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID              string            `json:"id"`
		Name            string            `json:"name"`
		Symbol          string            `json:"symbol"`
		AssetPlatformID string            `json:"asset_platform_id"`
		Platforms       map[string]string `json:"platforms"`
		MarketData      struct {
			CurrentPrice map[string]float64 `json:"current_price"`
			MarketCap    map[string]float64 `json:"market_cap"`
			PctChange1H  map[string]float64 `json:"price_change_percentage_1h_in_currency"`
			PctChange24H map[string]float64 `json:"price_change_percentage_24h_in_currency"`
			PctChange7D  map[string]float64 `json:"price_change_percentage_7d_in_currency"`
			PctChange30D map[string]float64 `json:"price_change_percentage_30d_in_currency"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, models.NewProviderError(providerName, models.ErrMalformed, "failed to decode coin details", err)
	}

	details := &CoinDetails{
		ID:              raw.ID,
		Name:            raw.Name,
		Symbol:          raw.Symbol,
		AssetPlatformID: raw.AssetPlatformID,
		Platforms:       raw.Platforms,
		PriceUSD:        usdField(raw.MarketData.CurrentPrice),
		MarketCapUSD:    usdField(raw.MarketData.MarketCap),
		PctChange1H:     usdField(raw.MarketData.PctChange1H),
		PctChange24H:    usdField(raw.MarketData.PctChange24H),
		PctChange7D:     usdField(raw.MarketData.PctChange7D),
		PctChange30D:    usdField(raw.MarketData.PctChange30D),
	}

	return details, nil
}

func usdField(m map[string]float64) *float64 {
	if m == nil {
		return nil
	}
	v, ok := m["usd"]
	if !ok {
		return nil
	}
	return &v
}

// get performs one GET through the circuit breaker and maps failures onto
// the shared error taxonomy.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return nil, models.NewProviderError(providerName, models.ErrInvalidInput, "failed to create request", err)
		}
		if c.apiKey != "" {
			req.Header.Set("x-cg-pro-api-key", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, transportError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, statusError(resp.StatusCode, string(body))
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, models.NewProviderError(providerName, models.ErrConnection, "circuit breaker open", err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewProviderError(providerName, models.ErrTimeout, "request timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewProviderError(providerName, models.ErrTimeout, "request timed out", err)
	}
	return models.NewProviderError(providerName, models.ErrConnection, "cannot connect to CoinGecko", err)
}

func statusError(code int, body string) error {
	switch {
	case code == http.StatusTooManyRequests:
		return models.NewProviderError(providerName, models.ErrRateLimited, "rate limit exceeded", nil)
	case code == http.StatusNotFound:
		return models.NewProviderError(providerName, models.ErrNotFound, "coin not found", nil)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return models.NewProviderError(providerName, models.ErrUnauthorized, "API access denied, check your API key", nil)
	case code >= 500:
		return models.NewProviderError(providerName, models.ErrServer, "server error", nil)
	default:
		return models.NewProviderError(providerName, models.ErrMalformed, fmt.Sprintf("API error %d: %s", code, body), nil)
	}
}
