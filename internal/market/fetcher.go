package market

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/insightlabs/naomi/internal/adapters/coingecko"
	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
	"github.com/insightlabs/naomi/pkg/retry"
)

const providerName = "market"

// coinIDRe is the canonical-id format. Anything else never reaches the
// provider.
var coinIDRe = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// nativeIDs are coins that are a chain's own gas asset. They carry no
// contract address; flow analytics must go through a wrapped proxy.
var nativeIDs = map[string]string{
	"solana":      "solana",
	"ethereum":    "ethereum",
	"binancecoin": "bnb",
	"avalanche-2": "avalanche",
}

// chainWalk maps flow-analytics chains to the platform keys the market
// provider uses for them. Walked in order; first hit wins.
var chainWalk = []struct {
	chain        string
	platformKeys []string
}{
	{"solana", []string{"solana"}},
	{"ethereum", []string{"ethereum"}},
	{"arbitrum", []string{"arbitrum-one", "arbitrum"}},
	{"polygon", []string{"polygon-pos", "polygon"}},
	{"avalanche", []string{"avalanche"}},
	{"base", []string{"base"}},
	{"bnb", []string{"binance-smart-chain", "bnb"}},
}

// Detailer is the coin-detail dependency.
type Detailer interface {
	Details(ctx context.Context, coinID string) (*coingecko.CoinDetails, error)
}

// Fetcher builds asset profiles from coin details.
type Fetcher struct {
	detailer Detailer
	policy   retry.Policy
}

// NewFetcher creates a market fetcher.
func NewFetcher(detailer Detailer) *Fetcher {
	return &Fetcher{detailer: detailer, policy: retry.DefaultPolicy()}
}

// Fetch builds the profile for one canonical coin id. The profile is
// complete or the call fails; missing price data is a provider error,
// never a zero-valued profile.
func (f *Fetcher) Fetch(ctx context.Context, canonicalID string) (*models.AssetProfile, error) {
	if canonicalID == "" || !coinIDRe.MatchString(canonicalID) {
		return nil, models.NewProviderError(providerName, models.ErrInvalidInput,
			"invalid coin id format", nil)
	}

	details, err := retry.Do(ctx, f.policy, "coin details", func() (*coingecko.CoinDetails, error) {
		return f.detailer.Details(ctx, canonicalID)
	})
	if err != nil {
		return nil, err
	}
	if details.PriceUSD == nil {
		return nil, models.NewProviderError(providerName, models.ErrMalformed,
			"no USD price for "+canonicalID, nil)
	}

	profile := &models.AssetProfile{
		CanonicalID:  details.ID,
		DisplayName:  details.Name,
		Symbol:       details.Symbol,
		Price:        models.NewDecimal(*details.PriceUSD),
		PriceDisplay: fmt.Sprintf("$%.6f", *details.PriceUSD),
		PctChange:    map[models.Timeframe]float64{},
	}
	if details.MarketCapUSD != nil {
		profile.MarketCap = models.NewDecimal(*details.MarketCapUSD)
		profile.MarketCapDisplay = "$" + humanize.Comma(int64(*details.MarketCapUSD))
	}
	setPct(profile.PctChange, models.Timeframe1H, details.PctChange1H)
	setPct(profile.PctChange, models.Timeframe24H, details.PctChange24H)
	setPct(profile.PctChange, models.Timeframe7D, details.PctChange7D)
	setPct(profile.PctChange, models.Timeframe30D, details.PctChange30D)

	if chain, ok := nativeIDs[details.ID]; ok || details.AssetPlatformID == "" {
		profile.IsNativeAsset = true
		profile.Chain = chain
	} else if chain, addr, ok := walkPlatforms(details.Platforms); ok {
		profile.Chain = chain
		profile.ContractAddress = addr
	}

	logger.Debug("asset profile built",
		zap.String("coin", profile.CanonicalID),
		zap.String("price", profile.PriceDisplay),
		zap.Bool("native", profile.IsNativeAsset),
		zap.String("chain", profile.Chain),
	)

	return profile, nil
}

// walkPlatforms picks the first flow-supported chain the token is
// deployed on.
func walkPlatforms(platforms map[string]string) (chain, address string, ok bool) {
	for _, w := range chainWalk {
		for _, key := range w.platformKeys {
			if addr := platforms[key]; addr != "" {
				return w.chain, addr, true
			}
		}
	}
	return "", "", false
}

func setPct(m map[models.Timeframe]float64, tf models.Timeframe, v *float64) {
	if v != nil {
		m[tf] = *v
	}
}
