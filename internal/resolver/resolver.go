package resolver

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/insightlabs/naomi/internal/adapters/coingecko"
	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
	"github.com/insightlabs/naomi/pkg/retry"
)

const providerName = "resolver"

// queryRe accepts letters, digits, spaces, dots and hyphens. Anything
// else is rejected before it reaches the search provider.
var queryRe = regexp.MustCompile(`^[a-zA-Z0-9\s.\-]+$`)

// preferredPlatforms are the chains whose tokens win ties. Natives carry
// an empty platform id and qualify too.
var preferredPlatforms = map[string]bool{
	"":         true,
	"solana":   true,
	"ethereum": true,
}

// Searcher is the coin-search dependency.
type Searcher interface {
	Search(ctx context.Context, query string) ([]coingecko.Coin, error)
}

// Cache stores prior resolutions keyed by normalized query. Implemented
// by the redis adapter; a process-local map is the default.
type Cache interface {
	Get(ctx context.Context, query string) (string, bool)
	Set(ctx context.Context, query, canonicalID string)
}

// Resolver turns free-text coin queries into canonical ids. Resolution
// is deterministic: the same query against the same candidate set always
// picks the same coin.
type Resolver struct {
	searcher Searcher
	cache    Cache
	policy   retry.Policy
}

// New creates a resolver with a process-local cache.
func New(searcher Searcher) *Resolver {
	return &Resolver{
		searcher: searcher,
		cache:    newMemoryCache(),
		policy:   retry.DefaultPolicy(),
	}
}

// WithCache swaps the resolution cache (redis in production).
func (r *Resolver) WithCache(cache Cache) *Resolver {
	r.cache = cache
	return r
}

// Resolve maps query to a canonical coin id. A nil error with an empty
// CanonicalID never happens: no match is a not_found provider error.
func (r *Resolver) Resolve(ctx context.Context, query string) (*models.ResolvedCoin, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || !queryRe.MatchString(q) {
		return nil, models.NewProviderError(providerName, models.ErrInvalidInput,
			"coin query contains unsupported characters", nil)
	}

	if id, ok := r.cache.Get(ctx, q); ok {
		return &models.ResolvedCoin{Query: q, CanonicalID: id}, nil
	}

	coins, err := retry.Do(ctx, r.policy, "coin search", func() ([]coingecko.Coin, error) {
		return r.searcher.Search(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	if len(coins) == 0 {
		return nil, models.NewProviderError(providerName, models.ErrNotFound,
			"no coin matches "+q, nil)
	}

	best := pick(q, coins)
	r.cache.Set(ctx, q, best.ID)

	logger.Debug("coin resolved",
		zap.String("query", q),
		zap.String("canonical_id", best.ID),
		zap.Int("candidates", len(coins)),
	)

	return &models.ResolvedCoin{Query: q, CanonicalID: best.ID}, nil
}

// pick ranks candidates for a query. Exact symbol or name matches win
// outright; after that preferred-chain tokens are tried before the full
// list, with id matches ranked above name and symbol matches.
func pick(q string, coins []coingecko.Coin) coingecko.Coin {
	for _, c := range coins {
		if strings.EqualFold(c.Symbol, q) || strings.EqualFold(c.Name, q) {
			return c
		}
	}

	var preferred []coingecko.Coin
	for _, c := range coins {
		if preferredPlatforms[c.AssetPlatformID] {
			preferred = append(preferred, c)
		}
	}

	if len(preferred) > 0 {
		if c, ok := pickFrom(q, preferred); ok {
			return c
		}
		return preferred[0]
	}
	if c, ok := pickFrom(q, coins); ok {
		return c
	}
	return coins[0]
}

func pickFrom(q string, coins []coingecko.Coin) (coingecko.Coin, bool) {
	for _, c := range coins {
		if strings.EqualFold(c.ID, q) {
			return c, true
		}
	}
	// Id variants cover suffixed listings: "pump" resolves to "pump-fun",
	// "pudgy penguins" to "pudgy-penguins".
	hyphenated := strings.ReplaceAll(strings.ReplaceAll(q, " ", "-"), ".", "-")
	for _, c := range coins {
		if strings.Contains(strings.ToLower(c.ID), hyphenated) {
			return c, true
		}
	}
	for _, c := range coins {
		if strings.EqualFold(c.Name, q) {
			return c, true
		}
	}
	for _, c := range coins {
		if strings.EqualFold(c.Symbol, q) {
			return c, true
		}
	}
	return coingecko.Coin{}, false
}

// memoryCache is the default in-process resolution cache.
type memoryCache struct {
	mu sync.RWMutex
	m  map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{m: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, query string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.m[query]
	return id, ok
}

func (c *memoryCache) Set(_ context.Context, query, canonicalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[query] = canonicalID
}
