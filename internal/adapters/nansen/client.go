package nansen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
)

const (
	flowIntelligenceURL = "https://api.nansen.ai/api/beta/tgm/flow-intelligence"

	providerName = "nansen"
)

// ValidChains are the chains the flow-intelligence endpoint supports.
var ValidChains = []string{"ethereum", "solana", "polygon", "arbitrum", "avalanche", "base", "bnb"}

var evmAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Client talks to the Nansen token-god-mode flow-intelligence endpoint.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// FlowEntry is one flow-intelligence record. The actor-class fields beyond
// smartTraderFlow are best-effort; the provider omits them for some chains.
type FlowEntry struct {
	SmartTraderFlow        float64  `json:"smartTraderFlow"`
	ProfitableTraderFlow   *float64 `json:"profitableTraderFlow"`
	ProfitableInvestorFlow *float64 `json:"profitableInvestorFlow"`
	TraderCount            int      `json:"traderCount"`
	SmartTraderCount       int      `json:"smartTraderCount"`
	WhaleFlow              float64  `json:"whaleFlow"`
	WhaleWallets           int      `json:"whaleWallets"`
	SmartTraderWallets     int      `json:"smartTraderWallets"`
	TopPnlFlow             float64  `json:"topPnlFlow"`
	TopPnlWallets          int      `json:"topPnlWallets"`
	ExchangeFlow           float64  `json:"exchangeFlow"`
	PublicFigureFlow       float64  `json:"publicFigureFlow"`
	PublicFigureWallets    int      `json:"publicFigureWallets"`
}

// Traders returns the best available trader count for the entry.
func (e *FlowEntry) Traders() int {
	if e.TraderCount > 0 {
		return e.TraderCount
	}
	return e.SmartTraderCount
}

// NewClient creates a Nansen client. An empty API key is allowed; calls
// will return a config error so the data source can degrade gracefully.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: flowIntelligenceURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: providerName}),
	}
}

// NewClientWithBase creates a client against a custom endpoint (tests).
func NewClientWithBase(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// FlowIntelligence fetches the smart-money flow record for one token and
// timeframe. Timeframe uses the provider's notation ("1d", "7d", "30d").
func (c *Client) FlowIntelligence(ctx context.Context, chain, tokenAddress, timeframe string) (*FlowEntry, error) {
	if err := ValidateTarget(chain, tokenAddress); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, models.NewProviderError(providerName, models.ErrConfig, "API key is missing", nil)
	}

	payload := map[string]interface{}{
		"parameters": map[string]string{
			"chain":        strings.ToLower(chain),
			"tokenAddress": tokenAddress,
			"timeframe":    timeframe,
		},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, models.NewProviderError(providerName, models.ErrInvalidInput, "failed to marshal request", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonData))
		if err != nil {
			return nil, models.NewProviderError(providerName, models.ErrInvalidInput, "failed to create request", err)
		}
		req.Header.Set("apiKey", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

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

	var entries []FlowEntry
	if err := json.Unmarshal(result.([]byte), &entries); err != nil {
		return nil, models.NewProviderError(providerName, models.ErrMalformed, "failed to decode flow response", err)
	}
	if len(entries) == 0 {
		return nil, models.NewProviderError(providerName, models.ErrNotFound, "no recent smart money data", nil)
	}

	logger.Debug("nansen flow intelligence",
		zap.String("chain", chain),
		zap.String("timeframe", timeframe),
		zap.Float64("netflow_usd", entries[0].SmartTraderFlow),
	)

	return &entries[0], nil
}

// ValidateTarget checks the chain and address format before any network
// call. Solana addresses are base58 (32-44 chars), EVM addresses 0x+40 hex.
func ValidateTarget(chain, tokenAddress string) error {
	chain = strings.ToLower(strings.TrimSpace(chain))
	if chain == "" {
		return models.NewProviderError(providerName, models.ErrInvalidInput, "chain is required", nil)
	}
	supported := false
	for _, v := range ValidChains {
		if chain == v {
			supported = true
			break
		}
	}
	if !supported {
		return models.NewProviderError(providerName, models.ErrInvalidInput,
			fmt.Sprintf("unsupported chain %q, supported: %s", chain, strings.Join(ValidChains, ", ")), nil)
	}

	if tokenAddress == "" {
		return models.NewProviderError(providerName, models.ErrInvalidInput, "token address is required", nil)
	}
	if chain == "solana" {
		if len(tokenAddress) < 32 || len(tokenAddress) > 44 {
			return models.NewProviderError(providerName, models.ErrInvalidInput,
				fmt.Sprintf("invalid Solana token address format: %s", tokenAddress), nil)
		}
		return nil
	}
	if !evmAddressRe.MatchString(tokenAddress) {
		return models.NewProviderError(providerName, models.ErrInvalidInput,
			fmt.Sprintf("invalid token address format: %s", tokenAddress), nil)
	}
	return nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewProviderError(providerName, models.ErrTimeout, "request timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewProviderError(providerName, models.ErrTimeout, "request timed out", err)
	}
	return models.NewProviderError(providerName, models.ErrConnection, "cannot connect to Nansen", err)
}

func statusError(code int, body string) error {
	switch {
	case code == http.StatusNotFound:
		return models.NewProviderError(providerName, models.ErrNotFound, "unsupported chain or token for smart money flow", nil)
	case code == http.StatusUnauthorized:
		return models.NewProviderError(providerName, models.ErrUnauthorized, "unauthorized, check your API key", nil)
	case code == http.StatusForbidden:
		return models.NewProviderError(providerName, models.ErrUnauthorized, "access forbidden, check API permissions", nil)
	case code == http.StatusTooManyRequests:
		return models.NewProviderError(providerName, models.ErrRateLimited, "rate limit exceeded", nil)
	case code >= 500:
		return models.NewProviderError(providerName, models.ErrServer, "server error", nil)
	default:
		return models.NewProviderError(providerName, models.ErrMalformed, fmt.Sprintf("API error %d: %s", code, body), nil)
	}
}
