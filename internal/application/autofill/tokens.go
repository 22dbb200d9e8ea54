package autofill

import "sync"

// RequestTokens issues a monotonically increasing token per field.
// Only the holder of the latest token for a field may write the field's dependents.
type RequestTokens struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewRequestTokens creates an empty registry
func NewRequestTokens() *RequestTokens {
	return &RequestTokens{latest: make(map[string]uint64)}
}

// Next invalidates every outstanding token of field and returns a new one
func (t *RequestTokens) Next(field string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[field]++
	return t.latest[field]
}

// IsLatest reports whether token is the most recent one issued for field
func (t *RequestTokens) IsLatest(field string, token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[field] == token
}
