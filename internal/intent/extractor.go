package intent

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
)

// greetingExact are utterances that are a greeting only when they stand
// alone ("what's up" alone is small talk, "what's up with solana" is not).
var greetingExact = map[string]bool{
	"hi": true, "hello": true, "hey": true, "yo": true, "sup": true,
	"howdy": true, "hiya": true, "greetings": true,
	"gm": true, "gn": true, "wagmi": true,
	"what's up": true, "whats up": true, "wassup": true, "wazzup": true,
	"ok": true, "okay": true, "k": true, "kk": true,
	"thanks": true, "thank you": true, "thx": true, "ty": true,
	"cool": true, "nice": true, "great": true, "awesome": true,
	"lol": true, "haha": true, "lmao": true,
	"yes": true, "no": true, "yeah": true, "yep": true, "nope": true, "nah": true, "sure": true,
	"bye": true, "goodbye": true, "cya": true, "later": true, "peace": true,
	"good night": true, "goodnight": true, "farewell": true, "adios": true,
}

// greetingPatterns match greeting phrases at the start of an utterance.
var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hi|hello|hey|yo|howdy|hiya|greetings)\b[^a-z0-9]*$`),
	regexp.MustCompile(`^good (morning|afternoon|evening)\b`),
	regexp.MustCompile(`^how are you\b`),
	regexp.MustCompile(`^how'?s it going\b`),
	regexp.MustCompile(`^how are things\b`),
	regexp.MustCompile(`^how have you been\b`),
	regexp.MustCompile(`^what'?s new\b[^a-z0-9]*$`),
	regexp.MustCompile(`^what'?s good\b[^a-z0-9]*$`),
	regexp.MustCompile(`^nice to (meet|see) you\b`),
	regexp.MustCompile(`^see you\b`),
	regexp.MustCompile(`^take care\b`),
	regexp.MustCompile(`^have a (good|great|nice)\b`),
}

// identityPatterns match questions about the assistant itself.
var identityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^who are you\b`),
	regexp.MustCompile(`^what are you\b[^a-z0-9]*$`),
	regexp.MustCompile(`^what can you do\b`),
	regexp.MustCompile(`^what do you do\b`),
	regexp.MustCompile(`^what'?s your name\b`),
	regexp.MustCompile(`^tell me about yourself\b`),
	regexp.MustCompile(`^introduce yourself\b`),
	regexp.MustCompile(`^are you (?:a )?(?:bot|an ai|ai|human|real)\b`),
}

// generalPatterns capture the coin phrase from comprehensive-analysis
// phrasings. Order matters: more specific phrasings first.
var generalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`what'?s up with ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`what'?s happening with ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`what'?s going on with ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`tell me (?:more )?about ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`what do you think (?:about|of) ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`what can you tell me about ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`any news (?:on|about) ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`give me (?:an? )?(?:update|overview|summary|rundown|analysis)(?: o[nf])? ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`how'?s ([a-z0-9$,& ]+?) (?:doing|looking|performing|holding up)`),
	regexp.MustCompile(`how (?:is|are) ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`what about ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`should i (?:invest in|buy or sell|hold or sell|buy|sell|hold) ([a-z0-9$,& ]+)`),
	regexp.MustCompile(`is ([a-z0-9$,& ]+?) (?:a good (?:buy|investment)|worth (?:buying|it|holding))`),
	regexp.MustCompile(`thoughts on ([a-z0-9$,& ]+)`),
}

// advicePatterns detect an investment-advice framing. The flag only adds
// a disclaimer; it never changes what data is fetched.
var advicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`should i (?:buy|sell|hold|invest|ape|dca|fomo)`),
	regexp.MustCompile(`should i (?:get in|get out|cash out|take profit|cut (?:my )?losses|go all in)`),
	regexp.MustCompile(`(?:good|bad|smart|safe) (?:buy|investment|time to buy|time to sell)`),
	regexp.MustCompile(`worth (?:buying|holding|investing|it)`),
	regexp.MustCompile(`would you (?:buy|sell|hold|invest|recommend)`),
	regexp.MustCompile(`do you recommend`),
	regexp.MustCompile(`is it (?:safe|risky|a scam|legit)`),
	regexp.MustCompile(`buy or sell`),
	regexp.MustCompile(`hold or sell`),
	regexp.MustCompile(`investment advice`),
}

// intentRule maps keyword patterns to one intent. Rules are checked in
// order and an utterance can satisfy several.
type intentRule struct {
	intent   Intent
	patterns []*regexp.Regexp
}

var intentRules = []intentRule{
	{IntentTradingPattern, compileAll(
		`trading pattern`, `pattern analysis`, `trading analytics`,
		`pattern insight`, `pattern summary`, `pattern report`,
	)},
	{IntentPrice, compileAll(
		`\bprice\b`, `current value`, `trading at`, `how much is`,
		`\bcost\b`, `\bworth\b`, `\bquote\b`,
	)},
	{IntentPerformance, compileAll(
		`\bperform`, `\bchange\b`, `\bchanged\b`, `\bgain`, `\bloss`,
		`\breturn`, `\b24h\b`, `\b7d\b`, `\b30d\b`, `\b1h\b`,
		`\bup\b.*\bdown\b`, `how did .* do\b`, `\bmoved?\b`,
	)},
	{IntentSentiment, compileAll(
		`\bsentiment\b`, `\btwitter\b`, `\bsocial\b`, `\bcommunity\b`,
		`\bhype\b`, `\bbuzz\b`, `\breacting\b`, `\breaction\b`,
		`\bopinion`, `people (?:saying|talking|think)`, `\btalking about\b`,
		`\bdiscussing\b`, `\bfeeling\b`, `\bmood\b`, `\bvibe`,
	)},
	{IntentOnChain, compileAll(
		`smart money`, `on.?chain`, `\bflow`, `\bwallet`, `\bwhale`,
		`\baccumulat`, `\bdistribut`, `\bnansen\b`, `\btraders?\b`,
		`\bholders?\b`, `\binflow`, `\boutflow`,
	)},
}

// timeframeRules map utterance phrasings to the canonical timeframes.
// Checked in order; first hit wins.
var timeframeRules = []struct {
	tf       models.Timeframe
	patterns []*regexp.Regexp
}{
	{models.Timeframe1H, compileAll(`\b1h\b`, `\b1 hour\b`, `\blast hour\b`, `\bpast hour\b`, `\bhourly\b`)},
	{models.Timeframe24H, compileAll(`\b24h\b`, `\b24 hours?\b`, `\btoday\b`, `\byesterday\b`, `\blast day\b`, `\bpast day\b`, `\bdaily\b`)},
	{models.Timeframe7D, compileAll(`\b7d\b`, `\b7 days?\b`, `\bweek\b`, `\bweekly\b`)},
	{models.Timeframe30D, compileAll(`\b30d\b`, `\b30 days?\b`, `\bmonth\b`, `\bmonthly\b`)},
}

// stopwords are tokens that never qualify as a coin. The set merges
// question scaffolding, intent keywords, and timeframe words.
var stopwords = map[string]bool{
	// scaffolding
	"the": true, "and": true, "for": true, "with": true, "about": true,
	"what": true, "whats": true, "how": true, "when": true, "where": true,
	"why": true, "who": true, "which": true, "can": true, "could": true,
	"should": true, "would": true, "will": true, "does": true, "did": true,
	"doing": true, "are": true, "was": true, "were": true, "been": true,
	"has": true, "have": true, "had": true, "get": true, "give": true,
	"tell": true, "show": true, "know": true, "think": true, "you": true,
	"your": true, "there": true, "this": true, "that": true, "these": true,
	"those": true, "some": true, "any": true, "all": true, "now": true,
	"right": true, "going": true, "happening": true, "new": true,
	"news": true, "update": true, "overview": true, "summary": true,
	"rundown": true, "more": true, "much": true, "many": true,
	"please": true, "thanks": true, "hey": true, "hello": true,
	"looking": true, "performing": true, "holding": true, "like": true,
	"latest": true, "recent": true, "current": true, "currently": true,
	"changing": true, "moving": true, "moved": true, "move": true,
	"activity": true, "recommend": true, "recommendation": true,
	// intent keywords
	"price": true, "prices": true, "cost": true, "value": true,
	"worth": true, "quote": true, "performance": true, "perform": true,
	"performed": true, "change": true, "changed": true, "gain": true,
	"gains": true, "loss": true, "losses": true, "return": true,
	"returns": true, "sentiment": true, "twitter": true, "social": true,
	"community": true, "hype": true, "buzz": true, "reacting": true,
	"reaction": true, "opinion": true, "opinions": true, "talking": true,
	"discussing": true, "feeling": true, "mood": true, "vibe": true,
	"vibes": true, "flow": true, "flows": true, "wallet": true,
	"wallets": true, "whale": true, "whales": true, "accumulation": true,
	"distribution": true, "nansen": true, "trader": true, "traders": true,
	"trading": true, "pattern": true, "patterns": true, "analysis": true,
	"analytics": true, "insight": true, "insights": true, "report": true,
	"chart": true, "charts": true, "data": true, "market": true,
	"smart": true, "money": true, "chain": true, "onchain": true,
	"holder": true, "holders": true, "inflow": true, "outflow": true,
	"buy": true, "sell": true, "hold": true, "invest": true,
	"investment": true, "people": true, "saying": true,
	// timeframe words
	"hour": true, "hours": true, "hourly": true, "day": true,
	"days": true, "daily": true, "today": true, "yesterday": true,
	"week": true, "weeks": true, "weekly": true, "month": true,
	"months": true, "monthly": true, "last": true, "past": true,
	"24h": true, "7d": true, "30d": true,
	// generic asset words that gate the bitcoin default instead
	"crypto": true, "cryptocurrency": true, "coin": true, "coins": true,
	"token": true, "tokens": true,
}

// genericMarketWords gate the bitcoin default: an utterance with crypto
// framing but no named coin is assumed to mean bitcoin.
var genericMarketRe = regexp.MustCompile(`\b(crypto|cryptocurrency|market|coin|token|price|sentiment|flow)s?\b`)

var (
	dollarSymbolRe = regexp.MustCompile(`\$([a-zA-Z0-9]+)`)
	bareTokenRe    = regexp.MustCompile(`\b[a-z0-9]{3,}\b`)
	conjunctionRe  = regexp.MustCompile(`(?:\s*,\s*|\s+and\s+|\s*&\s*|\s+plus\s+|\s+vs\.?\s+)`)
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// Extract builds the query plan for one utterance. It runs in one pass:
// greeting check, then segment split, then per-segment intent and coin
// scan, then pairing.
func Extract(utterance string) Result {
	text := strings.ToLower(strings.TrimSpace(utterance))
	text = strings.ReplaceAll(text, "’", "'")

	if text == "" {
		return Result{}
	}
	if isGreeting(text) {
		return Result{Greeting: true}
	}
	if matchesAny(text, identityPatterns) {
		return Result{Identity: true}
	}

	res := Result{
		WantsAdvice: matchesAny(text, advicePatterns),
		Timeframe:   detectTimeframe(text),
	}

	// Comprehensive-analysis phrasings take the coin straight from the
	// captured phrase and map every coin to GENERAL.
	if coins, ok := matchGeneral(text); ok {
		res.General = true
		for _, c := range coins {
			res.Pairs = append(res.Pairs, Pair{Intent: IntentGeneral, Coin: c})
		}
		if len(res.Pairs) == 0 {
			if coin := fallbackCoin(text); coin != "" {
				res.Pairs = append(res.Pairs, Pair{Intent: IntentGeneral, Coin: coin})
			}
		}
		logExtraction(text, res)
		return res
	}

	segments := conjunctionRe.Split(text, -1)

	scans := make([]segScan, 0, len(segments))
	var allIntents []Intent
	var allCoins []string

	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		s := segScan{intents: matchIntents(seg), coins: scanCoins(seg)}
		scans = append(scans, s)
		allIntents = appendUniqueIntents(allIntents, s.intents...)
		allCoins = appendUnique(allCoins, s.coins...)
	}

	if len(allCoins) == 0 {
		if coin := fallbackCoin(text); coin != "" {
			allCoins = []string{coin}
		}
	}
	if len(allCoins) == 0 {
		logExtraction(text, res)
		return res
	}
	if len(allIntents) == 0 {
		allIntents = []Intent{IntentGeneral}
		res.General = true
	}

	// When every coin-bearing segment names its own intent, the user
	// paired them positionally ("price of $BTC and sentiment for $ETH").
	// Otherwise intents distribute over all coins.
	if positional(scans) {
		for _, s := range scans {
			for _, in := range s.intents {
				for _, c := range s.coins {
					res.Pairs = append(res.Pairs, Pair{Intent: in, Coin: c})
				}
			}
		}
	} else {
		for _, in := range allIntents {
			for _, c := range allCoins {
				res.Pairs = append(res.Pairs, Pair{Intent: in, Coin: c})
			}
		}
	}

	logExtraction(text, res)
	return res
}

func isGreeting(text string) bool {
	trimmed := strings.Trim(text, " .!?")
	if greetingExact[trimmed] {
		return true
	}
	return matchesAny(text, greetingPatterns)
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func matchGeneral(text string) ([]string, bool) {
	for _, p := range generalPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return coinsFromPhrase(m[1]), true
	}
	return nil, false
}

// coinsFromPhrase extracts coin queries from a captured phrase like
// "bitcoin and ethereum" or "$sol, $eth".
func coinsFromPhrase(phrase string) []string {
	var coins []string
	for _, part := range conjunctionRe.Split(phrase, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		coins = appendUnique(coins, scanCoins(part)...)
	}
	return coins
}

func matchIntents(seg string) []Intent {
	var out []Intent
	for _, rule := range intentRules {
		for _, p := range rule.patterns {
			if p.MatchString(seg) {
				out = append(out, rule.intent)
				break
			}
		}
	}
	return out
}

// scanCoins finds coin candidates in one segment. Cashtags always
// qualify; bare tokens need at least three characters and must not be
// a stopword.
func scanCoins(seg string) []string {
	var coins []string
	for _, m := range dollarSymbolRe.FindAllStringSubmatch(seg, -1) {
		coins = appendUnique(coins, strings.ToLower(m[1]))
	}
	if len(coins) > 0 {
		return coins
	}
	for _, tok := range bareTokenRe.FindAllString(seg, -1) {
		if stopwords[tok] {
			continue
		}
		coins = appendUnique(coins, tok)
	}
	return coins
}

// fallbackCoin handles utterances with crypto framing but no named coin
// ("how is the market today"). Bitcoin is the conventional default.
func fallbackCoin(text string) string {
	if genericMarketRe.MatchString(text) {
		return "bitcoin"
	}
	return ""
}

func detectTimeframe(text string) models.Timeframe {
	for _, rule := range timeframeRules {
		for _, p := range rule.patterns {
			if p.MatchString(text) {
				return rule.tf
			}
		}
	}
	return ""
}

// segScan is the per-segment scan result used to decide pairing.
type segScan struct {
	intents []Intent
	coins   []string
}

// positional reports whether every coin-bearing segment also carries an
// intent, so pairs should follow segment boundaries instead of the
// cartesian product.
func positional(scans []segScan) bool {
	paired := 0
	for _, s := range scans {
		if len(s.coins) == 0 {
			continue
		}
		if len(s.intents) == 0 {
			return false
		}
		paired++
	}
	return paired > 1
}

func appendUnique(dst []string, vals ...string) []string {
	for _, v := range vals {
		seen := false
		for _, d := range dst {
			if d == v {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, v)
		}
	}
	return dst
}

func appendUniqueIntents(dst []Intent, vals ...Intent) []Intent {
	for _, v := range vals {
		seen := false
		for _, d := range dst {
			if d == v {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, v)
		}
	}
	return dst
}

func logExtraction(text string, res Result) {
	logger.Debug("intent extraction",
		zap.String("utterance", text),
		zap.Int("pairs", len(res.Pairs)),
		zap.Bool("general", res.General),
		zap.Bool("advice", res.WantsAdvice),
		zap.String("timeframe", string(res.Timeframe)),
	)
}
