package social

import (
	"regexp"
	"strings"
)

var (
	urlRe     = regexp.MustCompile(`https?://\S+`)
	mentionRe = regexp.MustCompile(`@\w+`)
	hashtagRe = regexp.MustCompile(`#\w+`)
	symbolRe  = regexp.MustCompile(`[^a-z0-9\s$.,!?']`)
)

// Analyzer scores post text on a -1.0 to 1.0 polarity scale using
// weighted crypto vocabulary.
type Analyzer struct {
	positiveWords map[string]float64
	negativeWords map[string]float64
}

// NewAnalyzer creates a polarity analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		positiveWords: buildPositiveWords(),
		negativeWords: buildNegativeWords(),
	}
}

// CleanText strips URLs, mentions, hashtags and symbol noise so only
// scoreable words remain.
func CleanText(text string) string {
	t := strings.ToLower(text)
	t = urlRe.ReplaceAllString(t, " ")
	t = mentionRe.ReplaceAllString(t, " ")
	t = hashtagRe.ReplaceAllString(t, " ")
	t = symbolRe.ReplaceAllString(t, " ")
	return strings.Join(strings.Fields(t), " ")
}

// Score returns the polarity of one post, already cleaned or raw.
func (a *Analyzer) Score(text string) float64 {
	cleaned := CleanText(text)
	if cleaned == "" {
		return 0.0
	}

	words := strings.Fields(cleaned)
	var score float64
	matchCount := 0

	for _, word := range words {
		word = strings.Trim(word, ".,!?;:$'")
		if weight, ok := a.positiveWords[word]; ok {
			score += weight
			matchCount++
		}
		if weight, ok := a.negativeWords[word]; ok {
			score -= weight
			matchCount++
		}
	}
	if matchCount == 0 {
		return 0.0
	}

	normalized := score / float64(len(words))
	if normalized > 1.0 {
		normalized = 1.0
	} else if normalized < -1.0 {
		normalized = -1.0
	}
	return normalized
}

func buildPositiveWords() map[string]float64 {
	return map[string]float64{
		"bullish":      1.0,
		"bull":         0.9,
		"rally":        0.9,
		"surge":        0.8,
		"soar":         0.8,
		"pump":         0.7,
		"pumping":      0.7,
		"moon":         0.7,
		"mooning":      0.7,
		"rocket":       0.7,
		"gain":         0.6,
		"gains":        0.6,
		"profit":       0.6,
		"win":          0.6,
		"green":        0.6,
		"up":           0.5,
		"rise":         0.5,
		"grow":         0.5,
		"growth":       0.5,
		"increase":     0.5,
		"positive":     0.5,
		"optimistic":   0.5,
		"breakthrough": 0.6,
		"adoption":     0.6,
		"partnership":  0.5,
		"upgrade":      0.5,
		"innovation":   0.5,
		"halving":      0.6,
		"breakout":     0.7,
		"ath":          0.8,
		"etf":          0.7,
		"approved":     0.6,
		"accumulation": 0.5,
		"hodl":         0.5,
		"buy":          0.5,
		"undervalued":  0.6,
		"gem":          0.6,
		"wagmi":        0.6,
	}
}

func buildNegativeWords() map[string]float64 {
	return map[string]float64{
		"bearish":      1.0,
		"bear":         0.9,
		"crash":        1.0,
		"crashing":     1.0,
		"dump":         0.9,
		"dumping":      0.9,
		"plunge":       0.8,
		"fall":         0.6,
		"falling":      0.6,
		"drop":         0.6,
		"decline":      0.6,
		"loss":         0.7,
		"losses":       0.7,
		"red":          0.6,
		"down":         0.5,
		"negative":     0.5,
		"pessimistic":  0.5,
		"fear":         0.6,
		"panic":        0.8,
		"sell":         0.5,
		"selloff":      0.7,
		"correction":   0.6,
		"hack":         1.0,
		"hacked":       1.0,
		"exploit":      1.0,
		"scam":         1.0,
		"rug":          1.0,
		"rugged":       1.0,
		"ponzi":        1.0,
		"fraud":        1.0,
		"lawsuit":      0.7,
		"ban":          0.8,
		"crackdown":    0.7,
		"liquidation":  0.8,
		"liquidated":   0.8,
		"capitulation": 0.8,
		"fud":          0.7,
		"bubble":       0.6,
		"overvalued":   0.6,
		"rekt":         0.8,
		"ngmi":         0.6,
	}
}
