package grok

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/insightlabs/naomi/pkg/models"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Error("missing bearer token")
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxTokens int `json:"max_tokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		if payload.Model != "grok-4-0709" {
			t.Errorf("model = %q", payload.Model)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" || payload.Messages[1].Role != "user" {
			t.Errorf("messages = %+v", payload.Messages)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"Solana is looking strong today."}}]}`))
	}))
	defer srv.Close()

	c := NewClientWithBase("secret", "grok-4-0709", srv.URL)
	text, err := c.Complete(context.Background(), "persona", "question")
	if err != nil {
		t.Fatal(err)
	}
	if text != "Solana is looking strong today." {
		t.Errorf("text = %q", text)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClientWithBase("secret", "grok-4-0709", srv.URL)
	_, err := c.Complete(context.Background(), "sys", "user")
	if models.KindOf(err) != models.ErrMalformed {
		t.Errorf("kind = %v, want malformed", models.KindOf(err))
	}
}

func TestComplete_MissingKey(t *testing.T) {
	c := NewClient("", "grok-4-0709", 1000, 0.7)
	if c.Enabled() {
		t.Error("client without key must report disabled")
	}
	_, err := c.Complete(context.Background(), "sys", "user")
	if models.KindOf(err) != models.ErrConfig {
		t.Errorf("kind = %v, want config", models.KindOf(err))
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   models.ErrorKind
	}{
		{http.StatusTooManyRequests, models.ErrRateLimited},
		{http.StatusUnauthorized, models.ErrUnauthorized},
		{http.StatusInternalServerError, models.ErrServer},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := NewClientWithBase("secret", "grok-4-0709", srv.URL)
		_, err := c.Complete(context.Background(), "sys", "user")
		if models.KindOf(err) != tt.kind {
			t.Errorf("status %d: kind = %v, want %v", tt.status, models.KindOf(err), tt.kind)
		}
		srv.Close()
	}
}
