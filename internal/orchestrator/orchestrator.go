package orchestrator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/insightlabs/naomi/internal/conversation"
	"github.com/insightlabs/naomi/internal/intent"
	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
)

// minNarrativeChars is the shortest completion accepted from the
// narrator. Anything at or below it reads as a degenerate response and
// triggers the deterministic fallback.
const minNarrativeChars = 10

// Resolver maps free-text coin queries to canonical ids.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*models.ResolvedCoin, error)
}

// MarketFetcher builds asset profiles.
type MarketFetcher interface {
	Fetch(ctx context.Context, canonicalID string) (*models.AssetProfile, error)
}

// FlowFetcher builds smart-money flow bundles.
type FlowFetcher interface {
	Fetch(ctx context.Context, profile *models.AssetProfile) *models.FlowBundle
}

// SocialFetcher builds sentiment bundles.
type SocialFetcher interface {
	Fetch(ctx context.Context, symbol, name string) (*models.SentimentBundle, error)
}

// Completer narrates the synthesized facts. Enabled reports whether the
// provider is configured; a disabled narrator means every turn uses the
// deterministic renderer.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Orchestrator runs one conversational turn: extract, resolve, fetch,
// merge, narrate, respond.
type Orchestrator struct {
	resolver Resolver
	market   MarketFetcher
	flow     FlowFetcher
	social   SocialFetcher
	narrator Completer
}

// New wires the turn pipeline.
func New(resolver Resolver, market MarketFetcher, flow FlowFetcher, social SocialFetcher, narrator Completer) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		market:   market,
		flow:     flow,
		social:   social,
		narrator: narrator,
	}
}

// coinData is everything gathered for one coin in one turn.
type coinData struct {
	query     string
	intents   []intent.Intent
	profile   *models.AssetProfile
	flow      *models.FlowBundle
	sentiment *models.SentimentBundle

	resolveErr   error
	marketErr    error
	sentimentErr error
}

func (d *coinData) wants(in intent.Intent) bool {
	for _, i := range d.intents {
		if i == in || i == intent.IntentGeneral {
			return true
		}
	}
	return false
}

func (d *coinData) needsMarket() bool {
	// Flow targeting needs the profile's chain and contract, so flow
	// intents pull market data too. Sentiment-only turns skip it.
	return d.wants(intent.IntentPrice) || d.wants(intent.IntentPerformance) || d.needsFlow()
}

func (d *coinData) needsFlow() bool {
	return d.wants(intent.IntentOnChain) || d.wants(intent.IntentTradingPattern)
}

func (d *coinData) needsSentiment() bool {
	return d.wants(intent.IntentSentiment)
}

// displayName is the best human label available for the coin.
func (d *coinData) displayName() string {
	if d.profile != nil {
		return d.profile.DisplayName
	}
	return d.query
}

// HandleTurn runs one exchange. It always produces a response; provider
// failures degrade sections instead of failing the turn. The completed
// exchange is appended to the window before returning.
func (o *Orchestrator) HandleTurn(ctx context.Context, window *conversation.Window, utterance string) *models.TurnResult {
	ext := intent.Extract(utterance)

	var result *models.TurnResult
	switch {
	case ext.Greeting:
		result = &models.TurnResult{Text: pickGreeting(time.Now())}
	case ext.Identity:
		result = &models.TurnResult{Text: pickIdentity()}
	case len(ext.Pairs) == 0:
		result = &models.TurnResult{Text: clarifyMessage}
	default:
		result = o.answer(ctx, window, utterance, ext)
	}

	window.AppendTurn(utterance, result.Text)
	return result
}

// answer runs the data pipeline for a non-trivial turn.
func (o *Orchestrator) answer(ctx context.Context, window *conversation.Window, utterance string, ext intent.Result) *models.TurnResult {
	coins := groupByCoin(ext.Pairs)

	for _, d := range coins {
		o.gather(ctx, d)
	}

	digest := buildDigest(coins, ext)
	text, usedNarrator := o.narrate(ctx, window, utterance, digest, ext)
	if !usedNarrator {
		text = renderFallback(coins, ext)
	}
	if ext.WantsAdvice {
		text += "\n\n" + adviceDisclaimer
	}

	result := &models.TurnResult{
		Text:  text,
		Chart: renderChart(coins),
	}
	for _, d := range coins {
		if d.sentiment != nil {
			result.Citations = append(result.Citations, d.sentiment.Cited...)
		}
	}

	logger.Info("turn completed",
		zap.Int("coins", len(coins)),
		zap.Bool("narrated", usedNarrator),
		zap.Bool("advice", ext.WantsAdvice),
	)

	return result
}

// gather fetches the data each intent needs for one coin. Failures are
// recorded, never propagated.
func (o *Orchestrator) gather(ctx context.Context, d *coinData) {
	resolved, err := o.resolver.Resolve(ctx, d.query)
	if err != nil {
		d.resolveErr = err
		logger.Warn("resolve failed", zap.String("query", d.query), zap.Error(err))
		return
	}

	if d.needsMarket() {
		profile, err := o.market.Fetch(ctx, resolved.CanonicalID)
		if err != nil {
			d.marketErr = err
			logger.Warn("market fetch failed", zap.String("coin", resolved.CanonicalID), zap.Error(err))
		} else {
			d.profile = profile
		}
	}

	if d.needsFlow() && d.profile != nil {
		d.flow = o.flow.Fetch(ctx, d.profile)
	}

	if d.needsSentiment() {
		symbol, name := d.query, d.query
		if d.profile != nil {
			symbol, name = d.profile.Symbol, d.profile.DisplayName
		}
		bundle, err := o.social.Fetch(ctx, symbol, name)
		if err != nil {
			d.sentimentErr = err
			logger.Warn("sentiment fetch failed", zap.String("coin", d.query), zap.Error(err))
		} else {
			d.sentiment = bundle
		}
	}
}

// narrate asks the completion provider to phrase the digest. Returns
// false when the narrator is disabled, fails, or produces a degenerate
// completion.
func (o *Orchestrator) narrate(ctx context.Context, window *conversation.Window, utterance, digest string, ext intent.Result) (string, bool) {
	if o.narrator == nil || !o.narrator.Enabled() {
		return "", false
	}

	prompt := buildUserPrompt(window, utterance, digest, ext)
	text, err := o.narrator.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		logger.Warn("narration failed, using fallback", zap.Error(err))
		return "", false
	}
	if len(strings.TrimSpace(text)) <= minNarrativeChars {
		logger.Warn("degenerate narration, using fallback", zap.Int("chars", len(text)))
		return "", false
	}
	return text, true
}

// groupByCoin folds pairs into per-coin work items, preserving first
// appearance order.
func groupByCoin(pairs []intent.Pair) []*coinData {
	var out []*coinData
	index := map[string]*coinData{}
	for _, p := range pairs {
		d, ok := index[p.Coin]
		if !ok {
			d = &coinData{query: p.Coin}
			index[p.Coin] = d
			out = append(out, d)
		}
		seen := false
		for _, in := range d.intents {
			if in == p.Intent {
				seen = true
				break
			}
		}
		if !seen {
			d.intents = append(d.intents, p.Intent)
		}
	}
	return out
}
