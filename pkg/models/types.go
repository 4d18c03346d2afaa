package models

import (
	"github.com/shopspring/decimal"
)

// Timeframe labels used across market performance and flow analytics.
type Timeframe string

const (
	Timeframe1H  Timeframe = "1h"
	Timeframe24H Timeframe = "24h"
	Timeframe7D  Timeframe = "7d"
	Timeframe30D Timeframe = "30d"
)

// FlowTimeframes are the windows the flow fetcher always requests.
var FlowTimeframes = []Timeframe{Timeframe24H, Timeframe7D, Timeframe30D}

// ResolvedCoin is the outcome of resolving a free-text coin query.
// CanonicalID is empty when no match was found.
type ResolvedCoin struct {
	Query       string
	CanonicalID string
}

// AssetProfile holds normalized market data for one resolved coin.
// Raw decimals are kept for arithmetic; the *Display fields are what the
// user sees. Built once per turn and never mutated afterwards.
type AssetProfile struct {
	CanonicalID      string
	DisplayName      string
	Symbol           string
	IsNativeAsset    bool
	Chain            string
	ContractAddress  string
	Price            decimal.Decimal
	PriceDisplay     string
	MarketCap        decimal.Decimal
	MarketCapDisplay string
	PctChange        map[Timeframe]float64
}

// FlowResultKind tags a FlowBundle as real data, an advisory fallback with
// content, or a hard failure.
type FlowResultKind string

const (
	FlowOK       FlowResultKind = "ok"
	FlowFallback FlowResultKind = "fallback"
	FlowError    FlowResultKind = "error"
)

// TimeframeFlow is one timeframe's smart-money flow. Each window succeeds
// or fails independently of its siblings.
type TimeframeFlow struct {
	NetflowUSD  float64
	Formatted   string
	TraderCount int
	Breakdown   *FlowBreakdown
	Err         string
}

// FlowBreakdown is the actor-class breakdown behind a netflow figure.
// Pointer fields are absent when the provider omits them.
type FlowBreakdown struct {
	SmartTraderFlow        float64
	ProfitableTraderFlow   *float64
	ProfitableInvestorFlow *float64
	WhaleFlow              float64
	WhaleWallets           int
	TopPnlFlow             float64
	TopPnlWallets          int
	ExchangeFlow           float64
	PublicFigureFlow       float64
	PublicFigureWallets    int
}

// FlowAnalysis is the qualitative read over the three timeframes.
type FlowAnalysis struct {
	Sentiment      string
	Trend          string
	Confidence     string
	Insights       []string
	Recommendation string
}

// FlowBundle aggregates smart-money flow across timeframes plus the derived
// advice. For native assets without a usable proxy the bundle degrades to
// FlowFallback with advisory content instead of failing the turn.
type FlowBundle struct {
	Kind           FlowResultKind
	ByTimeframe    map[Timeframe]*TimeframeFlow
	Advice         string
	PatternSummary string
	Analysis       *FlowAnalysis
	FallbackText   string
	Suggestions    []string
	ErrText        string
}

// Summary renders the per-timeframe digest line used in prompts and
// fallback responses.
func (b *FlowBundle) Summary() string {
	if b == nil {
		return "Smart money data unavailable"
	}
	switch b.Kind {
	case FlowFallback:
		return b.FallbackText
	case FlowError:
		return "Smart money data unavailable: " + b.ErrText
	}
	out := ""
	for i, tf := range FlowTimeframes {
		if i > 0 {
			out += " | "
		}
		f, ok := b.ByTimeframe[tf]
		if !ok || f == nil || f.Err != "" {
			out += string(tf) + ": Data unavailable"
			continue
		}
		out += string(tf) + ": " + f.Formatted
	}
	return out
}

// Sentiment bucket names.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// CitedPost is one cited piece of social evidence.
type CitedPost struct {
	Sentiment  string
	Engagement int
	URL        string
}

// SentimentBundle is the percentage breakdown of social posts mentioning a
// coin plus the most impactful posts per bucket.
type SentimentBundle struct {
	PositivePct float64
	NegativePct float64
	NeutralPct  float64
	SampleSize  int
	Cited       []CitedPost
}

// TurnResult is what one conversational turn produces: the response text
// and any structured chart/citation payload.
type TurnResult struct {
	Text      string
	Chart     string
	Citations []CitedPost
}

// NewDecimal creates decimal from float64
func NewDecimal(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value)
}
