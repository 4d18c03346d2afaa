package intent

import (
	"github.com/insightlabs/naomi/pkg/models"
)

// Intent is the query taxonomy. A single utterance may carry several
// intents across several coins.
type Intent string

const (
	IntentPrice          Intent = "PRICE"
	IntentPerformance    Intent = "PERFORMANCE"
	IntentSentiment      Intent = "SENTIMENT"
	IntentOnChain        Intent = "ONCHAIN"
	IntentTradingPattern Intent = "TRADING_PATTERN"
	IntentGeneral        Intent = "GENERAL"
)

// Pair binds one intent to one coin query.
type Pair struct {
	Intent Intent
	Coin   string
}

// Result is the structured query plan extracted from one utterance.
//
// Greeting short-circuits the whole pipeline: no pairs, no fetches.
// General marks a comprehensive-analysis phrasing ("tell me about X").
// WantsAdvice is advisory metadata only; it triggers a disclaimer
// downstream and never changes what data is fetched.
type Result struct {
	Pairs       []Pair
	Greeting    bool
	Identity    bool
	General     bool
	WantsAdvice bool
	Timeframe   models.Timeframe
}
