package orchestrator

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/insightlabs/naomi/internal/intent"
	"github.com/insightlabs/naomi/pkg/models"
)

const clarifyMessage = "Hey! What crypto are you asking about? Drop a coin name or ticker like $SOL and I'll take a look."

const adviceDisclaimer = "Not financial advice. Crypto is volatile, only risk what you can afford to lose."

var greetingBodies = []string{
	"Ready to dig into some charts? Name a coin and let's go.",
	"Markets never sleep and neither do I. What coin are we looking at?",
	"Ask me about any coin's price, sentiment, or what smart money is doing.",
	"Drop a ticker and I'll pull the latest.",
	"I've got price, flow, and sentiment data on tap. What are we checking?",
}

var identityPool = []string{
	"I'm Naomi, your crypto market analyst. I pull live prices, smart money flow, and social sentiment for any coin. Try \"how is solana doing\".",
	"Naomi here. I dig through market data, on-chain flows, and crypto Twitter so you don't have to. Ask me about any coin.",
	"I'm Naomi. Prices, performance, smart money moves, social buzz, name a coin and pick your poison.",
}

func pickGreeting(now time.Time) string {
	var opener string
	switch h := now.Hour(); {
	case h < 5:
		opener = "Up late?"
	case h < 12:
		opener = "Morning!"
	case h < 18:
		opener = "Afternoon!"
	default:
		opener = "Evening!"
	}
	return opener + " " + greetingBodies[rand.Intn(len(greetingBodies))]
}

func pickIdentity() string {
	return identityPool[rand.Intn(len(identityPool))]
}

// renderFallback produces the deterministic response used when the
// narrator is unavailable. It must carry the same facts the narrator
// would have phrased.
func renderFallback(coins []*coinData, ext intent.Result) string {
	var sections []string
	for _, d := range coins {
		sections = append(sections, fallbackSection(d, ext))
	}
	return strings.Join(sections, "\n\n")
}

func fallbackSection(d *coinData, ext intent.Result) string {
	if d.resolveErr != nil {
		return fmt.Sprintf("I couldn't find a coin matching %q. Double-check the name or try the ticker.", d.query)
	}

	var lines []string
	name := d.displayName()

	if d.wants(intent.IntentPrice) || d.wants(intent.IntentPerformance) {
		if d.profile != nil {
			line := fmt.Sprintf("%s is trading at %s", name, d.profile.PriceDisplay)
			if d.profile.MarketCapDisplay != "" {
				line += fmt.Sprintf(" with a market cap of %s", d.profile.MarketCapDisplay)
			}
			lines = append(lines, line+".")
			if d.wants(intent.IntentPerformance) || d.wants(intent.IntentGeneral) {
				if perf := strings.TrimSpace(performanceDigest(d.profile, ext.Timeframe)); perf != "Performance data unavailable." {
					lines = append(lines, perf)
				}
			}
		} else {
			lines = append(lines, fmt.Sprintf("Price data for %s is unavailable right now.", name))
		}
	}

	if d.needsFlow() {
		switch {
		case d.flow == nil:
			lines = append(lines, fmt.Sprintf("Smart money data for %s is unavailable right now.", name))
		case d.flow.Kind == models.FlowError:
			lines = append(lines, fmt.Sprintf("Smart money data for %s is unavailable: %s", name, d.flow.ErrText))
		case d.flow.Kind == models.FlowFallback:
			lines = append(lines, d.flow.FallbackText)
			lines = append(lines, d.flow.Suggestions...)
		default:
			lines = append(lines, fmt.Sprintf("Smart money flow for %s: %s.", name, d.flow.Summary()))
			if d.flow.Advice != "" {
				lines = append(lines, d.flow.Advice)
			}
			if d.wants(intent.IntentTradingPattern) && d.flow.PatternSummary != "" {
				lines = append(lines, d.flow.PatternSummary)
			}
			if a := d.flow.Analysis; a != nil && a.Recommendation != "" {
				lines = append(lines, a.Recommendation)
			}
		}
	}

	if d.needsSentiment() {
		if d.sentiment != nil && d.sentiment.SampleSize > 0 {
			s := d.sentiment
			lines = append(lines, fmt.Sprintf(
				"Across %d recent posts about %s: %.1f%% positive, %.1f%% negative, %.1f%% neutral.",
				s.SampleSize, name, s.PositivePct, s.NegativePct, s.NeutralPct))
		} else {
			lines = append(lines, fmt.Sprintf("Social sentiment for %s is unavailable right now.", name))
		}
	}

	if len(lines) == 0 {
		return fmt.Sprintf("I couldn't pull any data for %s right now. Try again in a bit.", name)
	}
	return strings.Join(lines, " ")
}

// renderChart builds the emoji summary block appended to data-bearing
// responses.
func renderChart(coins []*coinData) string {
	var b strings.Builder
	for _, d := range coins {
		writeCoinChart(&b, d)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeCoinChart(b *strings.Builder, d *coinData) {
	if d.resolveErr != nil {
		return
	}

	var sections []string

	if d.profile != nil && len(d.profile.PctChange) > 0 {
		lines := []string{"📈 Price Performance:"}
		for _, tf := range []models.Timeframe{models.Timeframe24H, models.Timeframe7D} {
			v, ok := d.profile.PctChange[tf]
			if !ok {
				continue
			}
			marker := "🟢"
			if v < 0 {
				marker = "🔴"
			}
			lines = append(lines, fmt.Sprintf("%s %s: %+.2f%%", marker, tf, v))
		}
		if len(lines) > 1 {
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}

	if d.flow != nil && d.flow.Kind == models.FlowOK {
		lines := []string{"💰 Smart Money Flow:"}
		for _, tf := range models.FlowTimeframes {
			f, ok := d.flow.ByTimeframe[tf]
			if !ok || f == nil || f.Err != "" {
				continue
			}
			marker := "⚪"
			if f.NetflowUSD > 0 {
				marker = "🟢"
			} else if f.NetflowUSD < 0 {
				marker = "🔴"
			}
			lines = append(lines, fmt.Sprintf("%s %s: %s (%d traders)", marker, tf, f.Formatted, f.TraderCount))
		}
		if len(lines) > 1 {
			sections = append(sections, strings.Join(lines, "\n"))
		}
	}

	if d.sentiment != nil && d.sentiment.SampleSize > 0 {
		s := d.sentiment
		mood := "⚪ neutral"
		if s.PositivePct > s.NegativePct && s.PositivePct > s.NeutralPct {
			mood = "🟢 bullish"
		} else if s.NegativePct > s.PositivePct && s.NegativePct > s.NeutralPct {
			mood = "🔴 bearish"
		}
		sections = append(sections, fmt.Sprintf("📱 Social Sentiment:\n%s (%.1f%% pos / %.1f%% neg / %.1f%% neutral)",
			mood, s.PositivePct, s.NegativePct, s.NeutralPct))
	}

	if len(sections) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n%s\n\n", strings.ToUpper(d.displayName()), strings.Join(sections, "\n"))
}
