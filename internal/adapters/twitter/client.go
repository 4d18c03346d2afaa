package twitter

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
	"golang.org/x/time/rate"

	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
)

const (
	searchRecentURL = "https://api.twitter.com/2/tweets/search/recent"

	providerName = "twitter"

	// maxPageSize is the provider's per-request ceiling.
	maxPageSize = 100
)

// Client talks to the Twitter v2 recent-search endpoint. A rate limiter
// spaces out page fetches to stay inside the search quota.
type Client struct {
	bearerToken string
	baseURL     string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
	limiter     *rate.Limiter
}

// Post is one tweet with its engagement counters.
type Post struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Metrics   struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
	} `json:"public_metrics"`
}

// Engagement is likes plus reposts.
func (p *Post) Engagement() int {
	return p.Metrics.LikeCount + p.Metrics.RetweetCount
}

// Page is one page of search results.
type Page struct {
	Posts     []Post
	NextToken string
}

// NewClient creates a Twitter search client. An empty token is allowed;
// calls return a config error so the sentiment source can degrade.
func NewClient(bearerToken string) *Client {
	return &Client{
		bearerToken: bearerToken,
		baseURL:     searchRecentURL,
		client:      &http.Client{Timeout: 15 * time.Second},
		breaker:     gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: providerName}),
		// One page per second, matching the original's inter-page delay.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// NewClientWithBase creates a client against a custom endpoint (tests).
// The limiter is opened up so paginated tests run instantly.
func NewClientWithBase(bearerToken, baseURL string) *Client {
	c := NewClient(bearerToken)
	c.baseURL = baseURL
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

// SearchPosts fetches one page of recent posts matching query. Pass the
// previous page's NextToken to continue, or empty for the first page.
func (c *Client) SearchPosts(ctx context.Context, query string, pageSize int, nextToken string) (*Page, error) {
	if c.bearerToken == "" {
		return nil, models.NewProviderError(providerName, models.ErrConfig, "bearer token is missing", nil)
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if pageSize < 10 {
		pageSize = 10 // provider minimum
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, models.NewProviderError(providerName, models.ErrConnection, "rate limiter interrupted", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", fmt.Sprintf("%d", pageSize))
	params.Set("tweet.fields", "public_metrics,created_at,author_id,text")
	if nextToken != "" {
		params.Set("next_token", nextToken)
	}
	endpoint := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err != nil {
			return nil, models.NewProviderError(providerName, models.ErrInvalidInput, "failed to create request", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)

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

	var raw struct {
		Data []Post `json:"data"`
		Meta struct {
			NextToken string `json:"next_token"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(result.([]byte), &raw); err != nil {
		return nil, models.NewProviderError(providerName, models.ErrMalformed, "failed to decode search response", err)
	}

	logger.Debug("twitter search page",
		zap.Int("posts", len(raw.Data)),
		zap.Bool("has_next", raw.Meta.NextToken != ""),
	)

	return &Page{Posts: raw.Data, NextToken: raw.Meta.NextToken}, nil
}

func transportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewProviderError(providerName, models.ErrTimeout, "request timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewProviderError(providerName, models.ErrTimeout, "request timed out", err)
	}
	return models.NewProviderError(providerName, models.ErrConnection, "cannot connect to Twitter", err)
}

func statusError(code int, body string) error {
	switch {
	case code == http.StatusBadRequest:
		return models.NewProviderError(providerName, models.ErrInvalidInput, "search query was rejected", nil)
	case code == http.StatusTooManyRequests:
		return models.NewProviderError(providerName, models.ErrRateLimited, "rate limit exceeded", nil)
	case code == http.StatusUnauthorized:
		return models.NewProviderError(providerName, models.ErrUnauthorized, "unauthorized, check bearer token", nil)
	case code == http.StatusForbidden:
		return models.NewProviderError(providerName, models.ErrUnauthorized, "forbidden, check API permissions", nil)
	case code >= 500:
		return models.NewProviderError(providerName, models.ErrServer, "server error", nil)
	default:
		return models.NewProviderError(providerName, models.ErrMalformed, fmt.Sprintf("API error %d: %s", code, body), nil)
	}
}
