package conversation

import (
	"fmt"
	"strings"
	"testing"
)

func TestWindow_AppendAndOrder(t *testing.T) {
	w := NewWindow(10)
	w.AppendTurn("hello", "hi there")
	w.AppendTurn("price of btc", "bitcoin is at $50,000")

	entries := w.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].Text != "hello" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[3].Role != RoleAssistant || entries[3].Text != "bitcoin is at $50,000" {
		t.Errorf("unexpected last entry: %+v", entries[3])
	}
}

func TestWindow_EvictsOldestPair(t *testing.T) {
	w := NewWindow(10)
	for i := 1; i <= 6; i++ {
		w.AppendTurn(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	entries := w.Entries()
	if len(entries) != 10 {
		t.Fatalf("window must cap at 10 entries, got %d", len(entries))
	}
	// Turn 1 evicted, turn 2 now oldest.
	if entries[0].Text != "q2" {
		t.Errorf("oldest entry = %q, want q2", entries[0].Text)
	}
	if entries[9].Text != "a6" {
		t.Errorf("newest entry = %q, want a6", entries[9].Text)
	}
	// Eviction removes a full pair, never splits one.
	for i, e := range entries {
		wantRole := RoleUser
		if i%2 == 1 {
			wantRole = RoleAssistant
		}
		if e.Role != wantRole {
			t.Errorf("entry %d role = %s, want %s", i, e.Role, wantRole)
		}
	}
}

func TestWindow_Render(t *testing.T) {
	w := NewWindow(10)
	if w.Render() != "" {
		t.Error("empty window must render empty context")
	}

	w.AppendTurn("hi", "hello")
	out := w.Render()
	if !strings.Contains(out, "user: hi") || !strings.Contains(out, "assistant: hello") {
		t.Errorf("unexpected render:\n%s", out)
	}
}

func TestWindow_Reset(t *testing.T) {
	w := NewWindow(10)
	w.AppendTurn("hi", "hello")
	w.Reset()
	if w.Len() != 0 {
		t.Errorf("reset window should be empty, got %d entries", w.Len())
	}
}

func TestNewWindow_RejectsBadLimit(t *testing.T) {
	for _, limit := range []int{0, -2, 7} {
		w := NewWindow(limit)
		for i := 0; i < 20; i++ {
			w.AppendTurn("q", "a")
		}
		if w.Len() != 10 {
			t.Errorf("NewWindow(%d): fell back cap = %d, want 10", limit, w.Len())
		}
	}
}
