package flow

import (
	"fmt"

	"github.com/insightlabs/naomi/pkg/models"
)

// Sentiment classes derived from netflow magnitude.
const (
	SentimentVeryBullish = "very_bullish"
	SentimentBullish     = "bullish"
	SentimentNeutral     = "neutral"
	SentimentBearish     = "bearish"
	SentimentVeryBearish = "very_bearish"
)

// Netflow thresholds separating the sentiment classes, in USD.
const (
	strongFlowUSD   = 1_000_000
	moderateFlowUSD = 100_000
)

// classify maps a netflow figure onto a sentiment class.
func classify(netflowUSD float64) string {
	switch {
	case netflowUSD > strongFlowUSD:
		return SentimentVeryBullish
	case netflowUSD > moderateFlowUSD:
		return SentimentBullish
	case netflowUSD < -strongFlowUSD:
		return SentimentVeryBearish
	case netflowUSD < -moderateFlowUSD:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

// analyze derives the qualitative read over the available timeframes.
func analyze(b *models.FlowBundle) *models.FlowAnalysis {
	var available []*models.TimeframeFlow
	for _, tf := range models.FlowTimeframes {
		if f, ok := b.ByTimeframe[tf]; ok && f.Err == "" {
			available = append(available, f)
		}
	}
	if len(available) == 0 {
		return &models.FlowAnalysis{
			Sentiment:      SentimentNeutral,
			Trend:          "unknown",
			Confidence:     "low",
			Recommendation: "No flow data available to analyze.",
		}
	}

	a := &models.FlowAnalysis{
		Sentiment:  classify(available[0].NetflowUSD),
		Trend:      trend(b),
		Confidence: confidence(available),
	}

	for _, tf := range models.FlowTimeframes {
		f, ok := b.ByTimeframe[tf]
		if !ok || f.Err != "" {
			continue
		}
		line := fmt.Sprintf("%s netflow %s", tf, f.Formatted)
		if f.TraderCount > 0 {
			line += fmt.Sprintf(" (%d traders)", f.TraderCount)
		}
		a.Insights = append(a.Insights, line)
	}

	a.Recommendation = recommend(a.Sentiment, a.Trend)
	return a
}

// trend compares the three windows. Monotonically rising netflow reads
// as accelerating accumulation, monotonically falling as decelerating.
func trend(b *models.FlowBundle) string {
	f24 := flowValue(b, models.Timeframe24H)
	f7 := flowValue(b, models.Timeframe7D)
	f30 := flowValue(b, models.Timeframe30D)
	if f24 == nil || f7 == nil || f30 == nil {
		return "unknown"
	}
	switch {
	case *f24 > *f7 && *f7 > *f30:
		return "accelerating"
	case *f24 < *f7 && *f7 < *f30:
		return "decelerating"
	default:
		return "mixed"
	}
}

func flowValue(b *models.FlowBundle, tf models.Timeframe) *float64 {
	f, ok := b.ByTimeframe[tf]
	if !ok || f.Err != "" {
		return nil
	}
	return &f.NetflowUSD
}

// confidence is high when all three windows agree on direction, medium
// when a majority does, low otherwise.
func confidence(available []*models.TimeframeFlow) string {
	if len(available) < 2 {
		return "low"
	}
	positive, negative := 0, 0
	for _, f := range available {
		if f.NetflowUSD > 0 {
			positive++
		} else if f.NetflowUSD < 0 {
			negative++
		}
	}
	if positive == len(available) || negative == len(available) {
		if len(available) == len(models.FlowTimeframes) {
			return "high"
		}
		return "medium"
	}
	if positive >= 2 || negative >= 2 {
		return "medium"
	}
	return "low"
}

func recommend(sentiment, trendLabel string) string {
	switch sentiment {
	case SentimentVeryBullish:
		if trendLabel == "accelerating" {
			return "Strong and accelerating accumulation. Smart money conviction is high."
		}
		return "Strong accumulation signal from smart money."
	case SentimentBullish:
		return "Moderate accumulation. Smart money is leaning positive."
	case SentimentVeryBearish:
		// Falling netflow means distribution is picking up speed.
		if trendLabel == "decelerating" {
			return "Heavy and accelerating distribution. Smart money is exiting aggressively."
		}
		return "Heavy distribution signal. Smart money is selling."
	case SentimentBearish:
		return "Moderate distribution. Smart money is leaning negative."
	default:
		return "No clear directional signal from smart money."
	}
}
