package conversation

import (
	"fmt"
	"strings"
	"sync"
)

// Role tags one window entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one logged utterance.
type Entry struct {
	Role Role
	Text string
}

// Window is a bounded per-session history. Each turn appends a user and
// an assistant entry; when the cap is exceeded the oldest pair is
// evicted so the window always holds complete exchanges.
type Window struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

// NewWindow creates a window holding at most limit entries. The limit
// must be even so eviction keeps user/assistant pairs intact.
func NewWindow(limit int) *Window {
	if limit <= 0 || limit%2 != 0 {
		limit = 10
	}
	return &Window{limit: limit}
}

// AppendTurn logs one completed exchange.
func (w *Window) AppendTurn(userText, assistantText string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.entries = append(w.entries,
		Entry{Role: RoleUser, Text: userText},
		Entry{Role: RoleAssistant, Text: assistantText},
	)
	for len(w.entries) > w.limit {
		w.entries = w.entries[2:]
	}
}

// Entries returns a copy of the current history, oldest first.
func (w *Window) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the number of stored entries.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Render formats the history as a prompt context block, or "" when the
// window is empty.
func (w *Window) Render() string {
	entries := w.Entries()
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s: %s\n", e.Role, e.Text)
	}
	return b.String()
}

// Reset clears the history.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = nil
}
