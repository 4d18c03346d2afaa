package social

import (
	"context"
	"strings"
	"testing"

	"github.com/insightlabs/naomi/internal/adapters/twitter"
	"github.com/insightlabs/naomi/pkg/models"
)

type fakeSearcher struct {
	pages map[string]*twitter.Page
	calls int
	err   error
}

func (f *fakeSearcher) SearchPosts(_ context.Context, _ string, _ int, nextToken string) (*twitter.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[nextToken]
	if !ok {
		return &twitter.Page{}, nil
	}
	return page, nil
}

func post(id, text string, likes, retweets int) twitter.Post {
	p := twitter.Post{ID: id, Text: text}
	p.Metrics.LikeCount = likes
	p.Metrics.RetweetCount = retweets
	return p
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery("SOL", "Solana")
	for _, want := range []string{`"$sol"`, `"$sol crypto"`, `"$sol defi"`, `"solana crypto"`, "lang:en", "-is:retweet"} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
	if strings.Contains(q, `"$sol nft"`) {
		t.Error("cashtag combos must stop after five keywords")
	}
	if strings.Contains(q, `"solana blockchain"`) {
		t.Error("name combos must stop after three keywords")
	}
}

func TestBuildQuery_SymbolEqualsName(t *testing.T) {
	q := BuildQuery("XYZ", "xyz")
	if strings.Contains(q, `"xyz crypto" OR "xyz token"`) && strings.Count(q, `"xyz crypto"`) > 1 {
		t.Errorf("duplicate name combos:\n%s", q)
	}
}

func TestFetch_BucketsAndPercentages(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*twitter.Page{
		"": {Posts: []twitter.Post{
			post("1", "$sol is going to moon, bullish rally!", 100, 50),
			post("2", "$sol pump incoming, massive gains", 10, 5),
			post("3", "$sol crash incoming, bearish dump everywhere", 200, 80),
			post("4", "$sol is a thing that exists on a network", 1, 0),
		}},
	}}
	f := NewFetcher(s, 4)
	b, err := f.Fetch(context.Background(), "SOL", "Solana")
	if err != nil {
		t.Fatal(err)
	}
	if b.SampleSize != 4 {
		t.Fatalf("SampleSize = %d, want 4", b.SampleSize)
	}
	if b.PositivePct != 50.0 {
		t.Errorf("PositivePct = %v, want 50.0", b.PositivePct)
	}
	if b.NegativePct != 25.0 {
		t.Errorf("NegativePct = %v, want 25.0", b.NegativePct)
	}
	if b.NeutralPct != 25.0 {
		t.Errorf("NeutralPct = %v, want 25.0", b.NeutralPct)
	}
	if got := b.PositivePct + b.NegativePct + b.NeutralPct; got < 99.9 || got > 100.1 {
		t.Errorf("percentages sum to %v", got)
	}
}

func TestFetch_FiltersIrrelevantPosts(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*twitter.Page{
		"": {Posts: []twitter.Post{
			post("1", "$sol bullish", 5, 0),
			post("2", "solana price looking strong", 5, 0),
			post("3", "my cat solana is cute", 5, 0),
			post("4", "completely unrelated post", 5, 0),
		}},
	}}
	f := NewFetcher(s, 10)
	b, err := f.Fetch(context.Background(), "SOL", "Solana")
	if err != nil {
		t.Fatal(err)
	}
	// Cashtag always counts; name needs crypto context alongside.
	if b.SampleSize != 2 {
		t.Errorf("SampleSize = %d, want 2", b.SampleSize)
	}
}

func TestFetch_Pagination(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*twitter.Page{
		"": {
			Posts:     []twitter.Post{post("1", "$sol bullish", 1, 0), post("2", "$sol moon", 1, 0)},
			NextToken: "page2",
		},
		"page2": {
			Posts: []twitter.Post{post("3", "$sol dump", 1, 0)},
		},
	}}
	f := NewFetcher(s, 10)
	b, err := f.Fetch(context.Background(), "SOL", "Solana")
	if err != nil {
		t.Fatal(err)
	}
	if s.calls != 2 {
		t.Errorf("search called %d times, want 2", s.calls)
	}
	if b.SampleSize != 3 {
		t.Errorf("SampleSize = %d, want 3", b.SampleSize)
	}
}

func TestFetch_CitesTopEngagement(t *testing.T) {
	s := &fakeSearcher{pages: map[string]*twitter.Page{
		"": {Posts: []twitter.Post{
			post("low", "$sol bullish moon rally", 1, 0),
			post("mid", "$sol bullish moon rally", 50, 10),
			post("high", "$sol bullish moon rally", 500, 100),
		}},
	}}
	f := NewFetcher(s, 10)
	b, err := f.Fetch(context.Background(), "SOL", "Solana")
	if err != nil {
		t.Fatal(err)
	}

	var positive []models.CitedPost
	for _, c := range b.Cited {
		if c.Sentiment == models.SentimentPositive {
			positive = append(positive, c)
		}
	}
	if len(positive) != 2 {
		t.Fatalf("cited %d positive posts, want 2", len(positive))
	}
	if !strings.HasSuffix(positive[0].URL, "/high") || !strings.HasSuffix(positive[1].URL, "/mid") {
		t.Errorf("citations not ordered by engagement: %+v", positive)
	}
	if !strings.Contains(positive[0].URL, "twitter.com/i/web/status/") {
		t.Errorf("unexpected citation URL %q", positive[0].URL)
	}
}

func TestFetch_EmptySample(t *testing.T) {
	f := NewFetcher(&fakeSearcher{}, 10)
	b, err := f.Fetch(context.Background(), "SOL", "Solana")
	if err != nil {
		t.Fatal(err)
	}
	if b.SampleSize != 0 || len(b.Cited) != 0 {
		t.Errorf("empty sample should produce empty bundle: %+v", b)
	}
}

func TestFetch_FirstPageErrorPropagates(t *testing.T) {
	s := &fakeSearcher{err: models.NewProviderError("twitter", models.ErrConfig, "bearer token is missing", nil)}
	f := NewFetcher(s, 10)
	_, err := f.Fetch(context.Background(), "SOL", "Solana")
	if models.KindOf(err) != models.ErrConfig {
		t.Errorf("kind = %v, want config", models.KindOf(err))
	}
}

func TestScore_ThresholdBoundaries(t *testing.T) {
	a := NewAnalyzer()
	tests := []struct {
		text string
		want string
	}{
		{"bullish", models.SentimentPositive},
		{"bearish", models.SentimentNegative},
		{"the network processed many transactions in a block", models.SentimentNeutral},
		{"", models.SentimentNeutral},
	}
	for _, tt := range tests {
		score := a.Score(tt.text)
		bucket := models.SentimentNeutral
		if score > positiveThreshold {
			bucket = models.SentimentPositive
		} else if score < negativeThreshold {
			bucket = models.SentimentNegative
		}
		if bucket != tt.want {
			t.Errorf("Score(%q) = %v bucketed %s, want %s", tt.text, score, bucket, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	in := "Check https://example.com @someone #Solana $SOL to the moon! 🚀🚀"
	out := CleanText(in)
	if strings.Contains(out, "https://") || strings.Contains(out, "@someone") || strings.Contains(out, "#") {
		t.Errorf("CleanText left noise: %q", out)
	}
	if !strings.Contains(out, "moon") || !strings.Contains(out, "$sol") {
		t.Errorf("CleanText dropped content: %q", out)
	}
}
