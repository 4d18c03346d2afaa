package social

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/insightlabs/naomi/internal/adapters/twitter"
	"github.com/insightlabs/naomi/pkg/logger"
	"github.com/insightlabs/naomi/pkg/models"
	"github.com/insightlabs/naomi/pkg/retry"
)

// Polarity thresholds. Scores at exactly the threshold stay neutral.
const (
	positiveThreshold = 0.15
	negativeThreshold = -0.15
)

const citedPerBucket = 2

// cryptoKeywords pad the search query and gate name-only relevance.
var cryptoKeywords = []string{
	"crypto", "token", "coin", "blockchain", "defi", "nft", "trading",
	"price", "market", "bull", "bear", "pump", "dump", "moon", "hodl",
	"buy", "sell",
}

// Searcher is the post-search dependency.
type Searcher interface {
	SearchPosts(ctx context.Context, query string, pageSize int, nextToken string) (*twitter.Page, error)
}

// Fetcher samples recent posts about a coin and reduces them to a
// polarity breakdown with cited evidence.
type Fetcher struct {
	searcher   Searcher
	analyzer   *Analyzer
	sampleSize int
	policy     retry.Policy
}

// NewFetcher creates a sentiment fetcher targeting sampleSize posts.
func NewFetcher(searcher Searcher, sampleSize int) *Fetcher {
	if sampleSize < 1 {
		sampleSize = 50
	}
	return &Fetcher{
		searcher:   searcher,
		analyzer:   NewAnalyzer(),
		sampleSize: sampleSize,
		policy:     retry.DefaultPolicy(),
	}
}

// BuildQuery assembles the provider search query for one coin. Every
// term is quoted so multi-word names stay phrases.
func BuildQuery(symbol, name string) string {
	sym := strings.ToLower(symbol)
	parts := []string{fmt.Sprintf("%q", "$"+sym)}
	for _, kw := range cryptoKeywords[:5] {
		parts = append(parts, fmt.Sprintf("%q", "$"+sym+" "+kw))
	}
	lowName := strings.ToLower(name)
	if lowName != "" && lowName != sym {
		for _, kw := range cryptoKeywords[:3] {
			parts = append(parts, fmt.Sprintf("%q", lowName+" "+kw))
		}
	}
	return "(" + strings.Join(parts, " OR ") + ") lang:en -is:retweet"
}

// Fetch samples posts and builds the sentiment bundle. Percentages are
// rounded to one decimal and always refer to the relevant sample, not
// the raw page count.
func (f *Fetcher) Fetch(ctx context.Context, symbol, name string) (*models.SentimentBundle, error) {
	query := BuildQuery(symbol, name)

	var posts []twitter.Post
	nextToken := ""
	for len(posts) < f.sampleSize {
		token := nextToken
		page, err := retry.Do(ctx, f.policy, "post search", func() (*twitter.Page, error) {
			return f.searcher.SearchPosts(ctx, query, f.sampleSize-len(posts), token)
		})
		if err != nil {
			if len(posts) > 0 {
				break
			}
			return nil, err
		}
		posts = append(posts, page.Posts...)
		if page.NextToken == "" {
			break
		}
		nextToken = page.NextToken
	}

	relevant := filterRelevant(posts, symbol, name)

	bundle := &models.SentimentBundle{SampleSize: len(relevant)}
	if len(relevant) == 0 {
		logger.Debug("no relevant posts", zap.String("symbol", symbol), zap.Int("raw", len(posts)))
		return bundle, nil
	}

	buckets := map[string][]scoredPost{}
	for _, p := range relevant {
		score := f.analyzer.Score(p.Text)
		bucket := models.SentimentNeutral
		if score > positiveThreshold {
			bucket = models.SentimentPositive
		} else if score < negativeThreshold {
			bucket = models.SentimentNegative
		}
		buckets[bucket] = append(buckets[bucket], scoredPost{post: p, score: score})
	}

	total := float64(len(relevant))
	bundle.PositivePct = roundPct(float64(len(buckets[models.SentimentPositive])) / total * 100)
	bundle.NegativePct = roundPct(float64(len(buckets[models.SentimentNegative])) / total * 100)
	bundle.NeutralPct = roundPct(float64(len(buckets[models.SentimentNeutral])) / total * 100)

	for _, bucket := range []string{models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral} {
		bundle.Cited = append(bundle.Cited, topCited(bucket, buckets[bucket])...)
	}

	logger.Debug("sentiment bundle built",
		zap.String("symbol", symbol),
		zap.Int("sample", bundle.SampleSize),
		zap.Float64("positive_pct", bundle.PositivePct),
		zap.Float64("negative_pct", bundle.NegativePct),
	)

	return bundle, nil
}

type scoredPost struct {
	post  twitter.Post
	score float64
}

// filterRelevant keeps posts that mention the cashtag literally, or the
// coin name together with crypto context.
func filterRelevant(posts []twitter.Post, symbol, name string) []twitter.Post {
	sym := "$" + strings.ToLower(symbol)
	lowName := strings.ToLower(name)

	var out []twitter.Post
	for _, p := range posts {
		text := strings.ToLower(p.Text)
		if strings.Contains(text, sym) {
			out = append(out, p)
			continue
		}
		if lowName == "" || !strings.Contains(text, lowName) {
			continue
		}
		for _, kw := range cryptoKeywords {
			if strings.Contains(text, kw) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// topCited returns the highest-engagement posts in one bucket.
func topCited(bucket string, posts []scoredPost) []models.CitedPost {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].post.Engagement() > posts[j].post.Engagement()
	})
	n := citedPerBucket
	if len(posts) < n {
		n = len(posts)
	}
	out := make([]models.CitedPost, 0, n)
	for _, sp := range posts[:n] {
		out = append(out, models.CitedPost{
			Sentiment:  bucket,
			Engagement: sp.post.Engagement(),
			URL:        "https://twitter.com/i/web/status/" + sp.post.ID,
		})
	}
	return out
}

func roundPct(v float64) float64 {
	return math.Round(v*10) / 10
}
