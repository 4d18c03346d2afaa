package flow

import (
	"fmt"
	"strings"

	"github.com/insightlabs/naomi/pkg/models"
)

// chainAdvisory is the alternative-analytics guidance offered when
// contract-level flow tracking cannot cover a native asset.
type chainAdvisory struct {
	description string
	keyMetrics  []string
}

var chainAdvisories = map[string]chainAdvisory{
	"solana": {
		description: "SOL is Solana's native gas asset, so contract-level smart money tracking has limited coverage.",
		keyMetrics:  []string{"staking inflows", "DEX volume on Jupiter and Raydium", "validator count", "TVL trend"},
	},
	"ethereum": {
		description: "ETH is Ethereum's native gas asset; most smart money activity routes through wrapped ETH and staking derivatives.",
		keyMetrics:  []string{"staking deposits", "L2 bridge flows", "DEX volume on Uniswap", "gas usage trend"},
	},
	"bnb": {
		description: "BNB is the BNB Chain gas asset and exchange token, so exchange balances dominate its flow picture.",
		keyMetrics:  []string{"exchange reserves", "BSC DEX volume", "burn schedule progress"},
	},
	"avalanche": {
		description: "AVAX is Avalanche's native gas asset; subnet activity is the better on-chain signal.",
		keyMetrics:  []string{"subnet activity", "C-Chain DEX volume", "staking ratio"},
	},
}

var genericAdvisory = chainAdvisory{
	description: "This asset is a chain-native token without a contract address, so smart money flow tracking does not apply directly.",
	keyMetrics:  []string{"exchange netflow", "DEX volume", "TVL trend", "active addresses"},
}

var fallbackSuggestions = []string{
	"Check price performance and volume for directional context.",
	"Watch social sentiment for shifts in market mood.",
	"Compare TVL and DEX volume trends on DeFiLlama.",
}

// fallbackBundle builds the advisory bundle used when no flow data can
// be fetched for a native asset.
func fallbackBundle(profile *models.AssetProfile) *models.FlowBundle {
	adv, ok := chainAdvisories[profile.Chain]
	if !ok {
		adv = genericAdvisory
	}

	text := fmt.Sprintf("%s Key metrics to watch: %s.",
		adv.description, strings.Join(adv.keyMetrics, ", "))

	return &models.FlowBundle{
		Kind:         models.FlowFallback,
		FallbackText: text,
		Suggestions:  fallbackSuggestions,
	}
}
