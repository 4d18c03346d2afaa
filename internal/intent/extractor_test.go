package intent

import (
	"testing"

	"github.com/insightlabs/naomi/pkg/models"
)

func pairsContain(pairs []Pair, intent Intent, coin string) bool {
	for _, p := range pairs {
		if p.Intent == intent && p.Coin == coin {
			return true
		}
	}
	return false
}

func TestExtract_Greetings(t *testing.T) {
	greetings := []string{
		"hi",
		"Hello!",
		"hey",
		"gm",
		"good morning",
		"how are you?",
		"what's up",
		"thanks",
		"bye",
		"see you later",
	}
	for _, g := range greetings {
		res := Extract(g)
		if !res.Greeting {
			t.Errorf("Extract(%q): expected greeting", g)
		}
		if len(res.Pairs) != 0 {
			t.Errorf("Extract(%q): greeting must produce no pairs, got %v", g, res.Pairs)
		}
	}
}

func TestExtract_Identity(t *testing.T) {
	for _, u := range []string{"who are you?", "what can you do", "are you a bot", "tell me about yourself"} {
		res := Extract(u)
		if !res.Identity {
			t.Errorf("Extract(%q): expected identity", u)
		}
		if len(res.Pairs) != 0 {
			t.Errorf("Extract(%q): identity must produce no pairs, got %v", u, res.Pairs)
		}
	}
	if Extract("what are people saying about $PEPE").Identity {
		t.Error("coin question misread as identity")
	}
}

func TestExtract_GreetingPrefixDoesNotShortCircuit(t *testing.T) {
	res := Extract("what's up with solana")
	if res.Greeting {
		t.Fatal("coin question misread as greeting")
	}
	if !pairsContain(res.Pairs, IntentGeneral, "solana") {
		t.Errorf("expected (GENERAL, solana), got %v", res.Pairs)
	}
}

func TestExtract_SingleIntentSingleCoin(t *testing.T) {
	tests := []struct {
		utterance string
		intent    Intent
		coin      string
	}{
		{"what is the price of bitcoin", IntentPrice, "bitcoin"},
		{"btc price", IntentPrice, "btc"},
		{"how much is $SOL", IntentPrice, "sol"},
		{"ethereum performance this week", IntentPerformance, "ethereum"},
		{"sentiment on dogecoin", IntentSentiment, "dogecoin"},
		{"what are people saying about $PEPE", IntentSentiment, "pepe"},
		{"smart money flow for solana", IntentOnChain, "solana"},
		{"whale activity on avax", IntentOnChain, "avax"},
		{"trading pattern for bonk", IntentTradingPattern, "bonk"},
	}
	for _, tt := range tests {
		res := Extract(tt.utterance)
		if !pairsContain(res.Pairs, tt.intent, tt.coin) {
			t.Errorf("Extract(%q): expected (%s, %s), got %v", tt.utterance, tt.intent, tt.coin, res.Pairs)
		}
	}
}

func TestExtract_PositionalPairing(t *testing.T) {
	res := Extract("price of $BTC and sentiment for $ETH")
	if len(res.Pairs) != 2 {
		t.Fatalf("expected exactly 2 pairs, got %v", res.Pairs)
	}
	if !pairsContain(res.Pairs, IntentPrice, "btc") {
		t.Errorf("missing (PRICE, btc): %v", res.Pairs)
	}
	if !pairsContain(res.Pairs, IntentSentiment, "eth") {
		t.Errorf("missing (SENTIMENT, eth): %v", res.Pairs)
	}
	if pairsContain(res.Pairs, IntentPrice, "eth") || pairsContain(res.Pairs, IntentSentiment, "btc") {
		t.Errorf("positional phrasing must not cross-pair: %v", res.Pairs)
	}
}

func TestExtract_CartesianPairing(t *testing.T) {
	res := Extract("price and sentiment for btc and eth")
	if len(res.Pairs) != 4 {
		t.Fatalf("expected 4 pairs, got %v", res.Pairs)
	}
	for _, in := range []Intent{IntentPrice, IntentSentiment} {
		for _, c := range []string{"btc", "eth"} {
			if !pairsContain(res.Pairs, in, c) {
				t.Errorf("missing (%s, %s): %v", in, c, res.Pairs)
			}
		}
	}
}

func TestExtract_GeneralPhrasings(t *testing.T) {
	tests := []struct {
		utterance string
		coin      string
	}{
		{"how is solana doing", "solana"},
		{"tell me about bitcoin", "bitcoin"},
		{"what's up with $DOGE", "doge"},
		{"give me an overview of cardano", "cardano"},
		{"thoughts on $WIF", "wif"},
	}
	for _, tt := range tests {
		res := Extract(tt.utterance)
		if !res.General {
			t.Errorf("Extract(%q): expected general analysis", tt.utterance)
		}
		if !pairsContain(res.Pairs, IntentGeneral, tt.coin) {
			t.Errorf("Extract(%q): expected (GENERAL, %s), got %v", tt.utterance, tt.coin, res.Pairs)
		}
	}
}

func TestExtract_GeneralMultiCoin(t *testing.T) {
	res := Extract("tell me about bitcoin and ethereum")
	if len(res.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %v", res.Pairs)
	}
	if !pairsContain(res.Pairs, IntentGeneral, "bitcoin") || !pairsContain(res.Pairs, IntentGeneral, "ethereum") {
		t.Errorf("expected GENERAL for both coins, got %v", res.Pairs)
	}
}

func TestExtract_StopwordsNeverCoins(t *testing.T) {
	tests := []string{
		"what is the price",
		"show me the sentiment",
		"how is the market today",
	}
	for _, u := range tests {
		res := Extract(u)
		for _, p := range res.Pairs {
			if stopwords[p.Coin] {
				t.Errorf("Extract(%q): stopword %q extracted as coin", u, p.Coin)
			}
		}
	}
}

func TestExtract_BitcoinDefault(t *testing.T) {
	res := Extract("how is the crypto market today")
	if !pairsContain(res.Pairs, IntentGeneral, "bitcoin") {
		t.Errorf("generic market question should default to bitcoin, got %v", res.Pairs)
	}

	res = Extract("what is the price")
	if !pairsContain(res.Pairs, IntentPrice, "bitcoin") {
		t.Errorf("bare price question should default to bitcoin, got %v", res.Pairs)
	}
}

func TestExtract_NoCoinNoDefault(t *testing.T) {
	res := Extract("asdkjhqwe zzzz")
	if res.Greeting {
		t.Fatal("gibberish is not a greeting")
	}
	// Unknown words still scan as coin candidates; the resolver rejects
	// them later. What must not happen is a bitcoin default.
	if pairsContain(res.Pairs, IntentGeneral, "bitcoin") {
		t.Errorf("no crypto framing, bitcoin default must not fire: %v", res.Pairs)
	}
}

func TestExtract_Timeframes(t *testing.T) {
	tests := []struct {
		utterance string
		tf        models.Timeframe
	}{
		{"btc price in the last hour", models.Timeframe1H},
		{"how did eth perform today", models.Timeframe24H},
		{"solana change this week", models.Timeframe7D},
		{"bitcoin returns this month", models.Timeframe30D},
		{"price of bitcoin", ""},
	}
	for _, tt := range tests {
		res := Extract(tt.utterance)
		if res.Timeframe != tt.tf {
			t.Errorf("Extract(%q): timeframe = %q, want %q", tt.utterance, res.Timeframe, tt.tf)
		}
	}
}

func TestExtract_AdviceFlag(t *testing.T) {
	tests := []struct {
		utterance string
		want      bool
	}{
		{"should i buy solana", true},
		{"is bitcoin worth buying", true},
		{"would you recommend eth", true},
		{"price of bitcoin", false},
		{"how is solana doing", false},
	}
	for _, tt := range tests {
		res := Extract(tt.utterance)
		if res.WantsAdvice != tt.want {
			t.Errorf("Extract(%q): WantsAdvice = %v, want %v", tt.utterance, res.WantsAdvice, tt.want)
		}
	}
	// Advice framing still yields pairs so data gets fetched.
	res := Extract("should i buy solana")
	if !pairsContain(res.Pairs, IntentGeneral, "solana") {
		t.Errorf("advice question should still resolve the coin, got %v", res.Pairs)
	}
}

func TestExtract_CashtagShortSymbols(t *testing.T) {
	// Bare tokens under 3 chars never qualify, cashtags always do.
	res := Extract("price of $OP")
	if !pairsContain(res.Pairs, IntentPrice, "op") {
		t.Errorf("cashtag $OP should qualify, got %v", res.Pairs)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	res := Extract("   ")
	if res.Greeting || len(res.Pairs) != 0 {
		t.Errorf("blank input must produce nothing, got %+v", res)
	}
}
