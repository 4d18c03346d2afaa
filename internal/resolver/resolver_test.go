package resolver

import (
	"context"
	"testing"

	"github.com/insightlabs/naomi/internal/adapters/coingecko"
	"github.com/insightlabs/naomi/pkg/models"
)

type fakeSearcher struct {
	coins []coingecko.Coin
	calls int
	err   error
}

func (f *fakeSearcher) Search(_ context.Context, _ string) ([]coingecko.Coin, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.coins, nil
}

func TestResolve_RejectsUnsupportedCharacters(t *testing.T) {
	r := New(&fakeSearcher{})
	for _, q := range []string{"", "   ", "btc; drop table", "💎", "btc/usd"} {
		_, err := r.Resolve(context.Background(), q)
		if models.KindOf(err) != models.ErrInvalidInput {
			t.Errorf("Resolve(%q): kind = %v, want invalid_input", q, models.KindOf(err))
		}
	}
}

func TestResolve_ExactSymbolWins(t *testing.T) {
	s := &fakeSearcher{coins: []coingecko.Coin{
		{ID: "solana-beach", Name: "Solana Beach", Symbol: "SLB", AssetPlatformID: "solana"},
		{ID: "solana", Name: "Solana", Symbol: "SOL", AssetPlatformID: ""},
	}}
	r := New(s)
	res, err := r.Resolve(context.Background(), "sol")
	if err != nil {
		t.Fatal(err)
	}
	if res.CanonicalID != "solana" {
		t.Errorf("CanonicalID = %q, want solana", res.CanonicalID)
	}
}

func TestResolve_IDVariant(t *testing.T) {
	s := &fakeSearcher{coins: []coingecko.Coin{
		{ID: "pumpkin", Name: "Pumpkin Token", Symbol: "PKN", AssetPlatformID: "bsc"},
		{ID: "pump-fun", Name: "Pump.fun", Symbol: "PUMPFUN", AssetPlatformID: "solana"},
	}}
	r := New(s)
	res, err := r.Resolve(context.Background(), "pump")
	if err != nil {
		t.Fatal(err)
	}
	if res.CanonicalID != "pump-fun" {
		t.Errorf("CanonicalID = %q, want pump-fun", res.CanonicalID)
	}
}

func TestResolve_PreferredChainBeatsOthers(t *testing.T) {
	s := &fakeSearcher{coins: []coingecko.Coin{
		{ID: "wif-bsc", Name: "WIF Clone", Symbol: "WIFC", AssetPlatformID: "binance-smart-chain"},
		{ID: "dogwifcoin", Name: "dogwifhat", Symbol: "WIFTOKEN", AssetPlatformID: "solana"},
	}}
	r := New(s)
	res, err := r.Resolve(context.Background(), "dogwifhat")
	if err != nil {
		t.Fatal(err)
	}
	if res.CanonicalID != "dogwifcoin" {
		t.Errorf("CanonicalID = %q, want dogwifcoin", res.CanonicalID)
	}
}

func TestResolve_FirstResultFallback(t *testing.T) {
	s := &fakeSearcher{coins: []coingecko.Coin{
		{ID: "alpha-thing", Name: "Alpha Thing", Symbol: "ALPH", AssetPlatformID: "tron"},
		{ID: "beta-thing", Name: "Beta Thing", Symbol: "BETH", AssetPlatformID: "tron"},
	}}
	r := New(s)
	res, err := r.Resolve(context.Background(), "gamma")
	if err != nil {
		t.Fatal(err)
	}
	if res.CanonicalID != "alpha-thing" {
		t.Errorf("CanonicalID = %q, want alpha-thing", res.CanonicalID)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := New(&fakeSearcher{})
	_, err := r.Resolve(context.Background(), "nosuchcoin")
	if models.KindOf(err) != models.ErrNotFound {
		t.Errorf("kind = %v, want not_found", models.KindOf(err))
	}
}

func TestResolve_CachesResult(t *testing.T) {
	s := &fakeSearcher{coins: []coingecko.Coin{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC"},
	}}
	r := New(s)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "btc")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve(ctx, "BTC ")
	if err != nil {
		t.Fatal(err)
	}
	if first.CanonicalID != second.CanonicalID {
		t.Errorf("resolution not idempotent: %q vs %q", first.CanonicalID, second.CanonicalID)
	}
	if s.calls != 1 {
		t.Errorf("search called %d times, cache should have served the repeat", s.calls)
	}
}

func TestResolve_TerminalSearchErrorNotRetried(t *testing.T) {
	s := &fakeSearcher{err: models.NewProviderError("coingecko", models.ErrUnauthorized, "bad key", nil)}
	r := New(s)
	_, err := r.Resolve(context.Background(), "btc")
	if models.KindOf(err) != models.ErrUnauthorized {
		t.Fatalf("kind = %v, want unauthorized", models.KindOf(err))
	}
	if s.calls != 1 {
		t.Errorf("terminal error retried %d times", s.calls)
	}
}
