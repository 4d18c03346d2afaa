package orchestrator

import (
	"fmt"
	"strings"

	"github.com/insightlabs/naomi/internal/conversation"
	"github.com/insightlabs/naomi/internal/intent"
	"github.com/insightlabs/naomi/pkg/models"
)

// buildDigest renders the gathered facts as a plain block the narrator
// rewrites. Sections degrade to "unavailable" lines instead of
// disappearing so the narrator never invents missing numbers.
func buildDigest(coins []*coinData, ext intent.Result) string {
	var b strings.Builder
	for i, d := range coins {
		if i > 0 {
			b.WriteString("\n")
		}
		writeCoinDigest(&b, d, ext)
	}
	return b.String()
}

func writeCoinDigest(b *strings.Builder, d *coinData, ext intent.Result) {
	fmt.Fprintf(b, "## %s\n", d.displayName())

	if d.resolveErr != nil {
		fmt.Fprintf(b, "Could not identify a coin matching %q.\n", d.query)
		return
	}

	if d.wants(intent.IntentPrice) || d.wants(intent.IntentPerformance) {
		writeMarketDigest(b, d, ext)
	}
	if d.needsFlow() {
		writeFlowDigest(b, d)
	}
	if d.needsSentiment() {
		writeSentimentDigest(b, d)
	}
}

func writeMarketDigest(b *strings.Builder, d *coinData, ext intent.Result) {
	if d.profile == nil {
		b.WriteString("Price data unavailable.\n")
		return
	}
	p := d.profile
	fmt.Fprintf(b, "Price: %s", p.PriceDisplay)
	if p.MarketCapDisplay != "" {
		fmt.Fprintf(b, " | Market cap: %s", p.MarketCapDisplay)
	}
	b.WriteString("\n")

	if d.wants(intent.IntentPerformance) || d.wants(intent.IntentGeneral) {
		b.WriteString(performanceDigest(p, ext.Timeframe))
	}
}

// performanceDigest renders percentage changes, putting the asked-for
// window first when the user named one.
func performanceDigest(p *models.AssetProfile, asked models.Timeframe) string {
	order := []models.Timeframe{models.Timeframe1H, models.Timeframe24H, models.Timeframe7D, models.Timeframe30D}
	if asked != "" {
		reordered := []models.Timeframe{asked}
		for _, tf := range order {
			if tf != asked {
				reordered = append(reordered, tf)
			}
		}
		order = reordered
	}

	var parts []string
	for _, tf := range order {
		v, ok := p.PctChange[tf]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %+.2f%%", tf, v))
	}
	if len(parts) == 0 {
		return "Performance data unavailable.\n"
	}
	return "Change: " + strings.Join(parts, " | ") + "\n"
}

func writeFlowDigest(b *strings.Builder, d *coinData) {
	if d.flow == nil {
		b.WriteString("Smart money data unavailable.\n")
		return
	}
	fmt.Fprintf(b, "Smart money flow: %s\n", d.flow.Summary())
	if d.flow.Advice != "" {
		fmt.Fprintf(b, "%s\n", d.flow.Advice)
	}
	if d.wants(intent.IntentTradingPattern) && d.flow.PatternSummary != "" {
		fmt.Fprintf(b, "%s\n", d.flow.PatternSummary)
	}
	if a := d.flow.Analysis; a != nil {
		fmt.Fprintf(b, "Flow read: %s, trend %s, confidence %s. %s\n",
			a.Sentiment, a.Trend, a.Confidence, a.Recommendation)
	}
	if d.flow.Kind == models.FlowFallback && len(d.flow.Suggestions) > 0 {
		fmt.Fprintf(b, "Suggestions: %s\n", strings.Join(d.flow.Suggestions, " "))
	}
}

func writeSentimentDigest(b *strings.Builder, d *coinData) {
	if d.sentiment == nil || d.sentiment.SampleSize == 0 {
		b.WriteString("Social sentiment unavailable.\n")
		return
	}
	s := d.sentiment
	fmt.Fprintf(b, "Social sentiment over %d posts: %.1f%% positive, %.1f%% negative, %.1f%% neutral.\n",
		s.SampleSize, s.PositivePct, s.NegativePct, s.NeutralPct)
}

// buildUserPrompt composes the narrator prompt from conversation
// context, the fresh facts, and the user's question.
func buildUserPrompt(window *conversation.Window, utterance, digest string, ext intent.Result) string {
	var b strings.Builder
	if ctx := window.Render(); ctx != "" {
		b.WriteString(ctx)
		b.WriteString("\n")
	}
	b.WriteString("Fresh data:\n")
	b.WriteString(digest)
	b.WriteString("\nUser question: ")
	b.WriteString(utterance)
	b.WriteString("\n\nAnswer using only the fresh data above. If a section says unavailable, say so briefly instead of guessing.")
	if g := promptGuidance(ext); g != "" {
		b.WriteString(" ")
		b.WriteString(g)
	}
	return b.String()
}

// promptGuidance focuses the narrator on what the user actually asked.
func promptGuidance(ext intent.Result) string {
	seen := map[intent.Intent]bool{}
	for _, p := range ext.Pairs {
		seen[p.Intent] = true
	}
	switch {
	case seen[intent.IntentGeneral]:
		return "Give a rounded take covering price, smart money, and sentiment."
	case seen[intent.IntentTradingPattern]:
		return "Focus on the trading pattern breakdown across actor classes."
	case seen[intent.IntentOnChain]:
		return "Focus on what smart money is doing and what it implies."
	case seen[intent.IntentSentiment]:
		return "Focus on the social mood and how one-sided it is."
	case seen[intent.IntentPerformance]:
		if ext.Timeframe != "" {
			return "Lead with the " + string(ext.Timeframe) + " change."
		}
		return "Focus on the percentage changes across timeframes."
	case seen[intent.IntentPrice]:
		return "Lead with the current price."
	default:
		return ""
	}
}
