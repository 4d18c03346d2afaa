package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/insightlabs/naomi/pkg/models"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "solana" {
			t.Errorf("query = %s", r.URL.Query().Get("query"))
		}
		w.Write([]byte(`{"coins":[
			{"id":"solana","name":"Solana","symbol":"SOL","asset_platform_id":""},
			{"id":"solana-beach","name":"Solana Beach","symbol":"SLB","asset_platform_id":"solana"}
		]}`))
	}))
	defer srv.Close()

	c := NewClientWithBase("", srv.URL)
	coins, err := c.Search(context.Background(), "solana")
	if err != nil {
		t.Fatal(err)
	}
	if len(coins) != 2 {
		t.Fatalf("coins = %d, want 2", len(coins))
	}
	if coins[0].ID != "solana" || coins[0].Symbol != "SOL" {
		t.Errorf("first coin = %+v", coins[0])
	}
}

func TestDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/solana" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"id":"solana","name":"Solana","symbol":"sol","asset_platform_id":null,
			"platforms":{"":""},
			"market_data":{
				"current_price":{"usd":150.25,"eur":140.0},
				"market_cap":{"usd":70000000000},
				"price_change_percentage_24h_in_currency":{"usd":2.5},
				"price_change_percentage_7d_in_currency":{"usd":-1.2}
			}
		}`))
	}))
	defer srv.Close()

	c := NewClientWithBase("", srv.URL)
	d, err := c.Details(context.Background(), "solana")
	if err != nil {
		t.Fatal(err)
	}
	if d.PriceUSD == nil || *d.PriceUSD != 150.25 {
		t.Errorf("PriceUSD = %v", d.PriceUSD)
	}
	if d.MarketCapUSD == nil || *d.MarketCapUSD != 70000000000 {
		t.Errorf("MarketCapUSD = %v", d.MarketCapUSD)
	}
	if d.PctChange24H == nil || *d.PctChange24H != 2.5 {
		t.Errorf("PctChange24H = %v", d.PctChange24H)
	}
	if d.PctChange1H != nil {
		t.Error("absent field must stay nil")
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   models.ErrorKind
	}{
		{http.StatusTooManyRequests, models.ErrRateLimited},
		{http.StatusNotFound, models.ErrNotFound},
		{http.StatusUnauthorized, models.ErrUnauthorized},
		{http.StatusForbidden, models.ErrUnauthorized},
		{http.StatusInternalServerError, models.ErrServer},
		{http.StatusTeapot, models.ErrMalformed},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := NewClientWithBase("", srv.URL)
		_, err := c.Search(context.Background(), "btc")
		if models.KindOf(err) != tt.kind {
			t.Errorf("status %d: kind = %v, want %v", tt.status, models.KindOf(err), tt.kind)
		}
		srv.Close()
	}
}

func TestProAPIKeyHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-cg-pro-api-key") != "secret" {
			t.Error("missing pro api key header")
		}
		w.Write([]byte(`{"coins":[]}`))
	}))
	defer srv.Close()

	c := NewClientWithBase("secret", srv.URL)
	if _, err := c.Search(context.Background(), "btc"); err != nil {
		t.Fatal(err)
	}
}
