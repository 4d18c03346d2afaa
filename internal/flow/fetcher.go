package flow

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/insightlabs/naomi/internal/adapters/nansen"
	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
	"github.com/insightlabs/naomi/pkg/retry"
)

// providerTimeframes maps conversational windows onto the provider's
// notation.
var providerTimeframes = map[models.Timeframe]string{
	models.Timeframe24H: "1d",
	models.Timeframe7D:  "7d",
	models.Timeframe30D: "30d",
}

// nativeProxies map a chain to the wrapped form of its gas asset. Flow
// analytics only track token contracts, so natives are observed through
// their wrapped twin.
var nativeProxies = map[string]string{
	"solana":    "So11111111111111111111111111111111111111112",
	"ethereum":  "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
	"polygon":   "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270",
	"arbitrum":  "0x82af49447d8a07e3bd95bd0d56f35241523fbab1",
	"avalanche": "0xb31f66aa3c1e785363f0875a1b74e27b85fd66c7",
	"base":      "0x4200000000000000000000000000000000000006",
	"bnb":       "0xbb4cdb9cbd36b01bd1cbaef2af88c6b9364c9a4f",
}

// Intelligencer is the flow-intelligence dependency.
type Intelligencer interface {
	FlowIntelligence(ctx context.Context, chain, tokenAddress, timeframe string) (*nansen.FlowEntry, error)
}

// Fetcher pulls smart-money flow across the standard timeframes and
// derives qualitative advice from it.
type Fetcher struct {
	client Intelligencer
	policy retry.Policy
}

// NewFetcher creates a flow fetcher.
func NewFetcher(client Intelligencer) *Fetcher {
	return &Fetcher{client: client, policy: retry.DefaultPolicy()}
}

// Fetch builds the flow bundle for one asset. It never returns an error:
// failures degrade the bundle's kind instead so a turn can always render
// something.
func (f *Fetcher) Fetch(ctx context.Context, profile *models.AssetProfile) *models.FlowBundle {
	chain := profile.Chain
	address := profile.ContractAddress

	if profile.IsNativeAsset {
		proxy, ok := nativeProxies[chain]
		if !ok {
			return fallbackBundle(profile)
		}
		address = proxy
	}
	if chain == "" || address == "" {
		return &models.FlowBundle{
			Kind:    models.FlowError,
			ErrText: fmt.Sprintf("%s is not deployed on a supported chain", profile.DisplayName),
		}
	}

	bundle := &models.FlowBundle{
		Kind:        models.FlowOK,
		ByTimeframe: map[models.Timeframe]*models.TimeframeFlow{},
	}

	succeeded := 0
	var firstErr string
	for _, tf := range models.FlowTimeframes {
		entry, err := retry.Do(ctx, f.policy, "flow intelligence", func() (*nansen.FlowEntry, error) {
			return f.client.FlowIntelligence(ctx, chain, address, providerTimeframes[tf])
		})
		if err != nil {
			if firstErr == "" {
				firstErr = err.Error()
			}
			bundle.ByTimeframe[tf] = &models.TimeframeFlow{Err: err.Error()}
			continue
		}
		succeeded++
		bundle.ByTimeframe[tf] = &models.TimeframeFlow{
			NetflowUSD:  entry.SmartTraderFlow,
			Formatted:   FormatFlow(entry.SmartTraderFlow),
			TraderCount: entry.Traders(),
			Breakdown: &models.FlowBreakdown{
				SmartTraderFlow:        entry.SmartTraderFlow,
				ProfitableTraderFlow:   entry.ProfitableTraderFlow,
				ProfitableInvestorFlow: entry.ProfitableInvestorFlow,
				WhaleFlow:              entry.WhaleFlow,
				WhaleWallets:           entry.WhaleWallets,
				TopPnlFlow:             entry.TopPnlFlow,
				TopPnlWallets:          entry.TopPnlWallets,
				ExchangeFlow:           entry.ExchangeFlow,
				PublicFigureFlow:       entry.PublicFigureFlow,
				PublicFigureWallets:    entry.PublicFigureWallets,
			},
		}
	}

	if succeeded == 0 {
		if profile.IsNativeAsset {
			return fallbackBundle(profile)
		}
		return &models.FlowBundle{Kind: models.FlowError, ErrText: firstErr}
	}

	bundle.Advice = advise(bundle)
	bundle.PatternSummary = patternSummary(profile, bundle)
	bundle.Analysis = analyze(bundle)

	logger.Debug("flow bundle built",
		zap.String("coin", profile.CanonicalID),
		zap.String("chain", chain),
		zap.Int("timeframes_ok", succeeded),
		zap.String("sentiment", bundle.Analysis.Sentiment),
	)

	return bundle
}

// FormatFlow renders a USD netflow with magnitude suffix.
func FormatFlow(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// primaryFlow returns the freshest available timeframe.
func primaryFlow(b *models.FlowBundle) *models.TimeframeFlow {
	for _, tf := range models.FlowTimeframes {
		if f, ok := b.ByTimeframe[tf]; ok && f.Err == "" {
			return f
		}
	}
	return nil
}

// advise renders one line per actor-class signal in the freshest window.
func advise(b *models.FlowBundle) string {
	f := primaryFlow(b)
	if f == nil || f.Breakdown == nil {
		return "No significant smart money activity detected."
	}

	var lines []string
	lines = append(lines, signalLine("Smart money", f.NetflowUSD))
	if f.Breakdown.ProfitableTraderFlow != nil {
		lines = append(lines, signalLine("Profitable traders", *f.Breakdown.ProfitableTraderFlow))
	}
	if f.Breakdown.ProfitableInvestorFlow != nil {
		lines = append(lines, signalLine("Profitable investors", *f.Breakdown.ProfitableInvestorFlow))
	}
	return strings.Join(lines, " ")
}

func signalLine(actor string, v float64) string {
	switch {
	case v > 0:
		return actor + " is accumulating (buying) this token."
	case v < 0:
		return actor + " is distributing (selling) this token."
	default:
		return "No significant " + strings.ToLower(actor) + " activity detected."
	}
}

// patternSummary renders the actor-class breakdown for pattern queries.
func patternSummary(profile *models.AssetProfile, b *models.FlowBundle) string {
	f := primaryFlow(b)
	if f == nil || f.Breakdown == nil {
		return ""
	}
	bd := f.Breakdown

	var sb strings.Builder
	fmt.Fprintf(&sb, "Trading pattern for %s: smart traders moved %s",
		profile.DisplayName, FormatFlow(bd.SmartTraderFlow))
	if f.TraderCount > 0 {
		fmt.Fprintf(&sb, " across %d traders", f.TraderCount)
	}
	sb.WriteString(".")
	if bd.WhaleFlow != 0 {
		fmt.Fprintf(&sb, " Whales moved %s", FormatFlow(bd.WhaleFlow))
		if bd.WhaleWallets > 0 {
			fmt.Fprintf(&sb, " across %d wallets", bd.WhaleWallets)
		}
		sb.WriteString(".")
	}
	if bd.TopPnlFlow != 0 {
		fmt.Fprintf(&sb, " Top PnL wallets moved %s.", FormatFlow(bd.TopPnlFlow))
	}
	if bd.ExchangeFlow != 0 {
		direction := "onto"
		if bd.ExchangeFlow < 0 {
			direction = "off"
		}
		fmt.Fprintf(&sb, " Exchange flow shows %s moving %s exchanges.",
			FormatFlow(math.Abs(bd.ExchangeFlow)), direction)
	}
	if bd.PublicFigureFlow != 0 && bd.PublicFigureWallets > 0 {
		fmt.Fprintf(&sb, " %d public figure wallets active.", bd.PublicFigureWallets)
	}
	return sb.String()
}
