// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package query

import "sync"

// Token is the lifecycle token of the component that owns a Hook. Once closed, the Hook
// drops all pending state updates.
type Token struct {
	mu     sync.Mutex
	closed bool
}

func NewToken() *Token {
	return &Token{}
}

// Close marks the owning component as gone. It waits for a guarded update in progress, so
// once Close returns no further update is applied and no listener runs. Closing twice is fine.
func (t *Token) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// Alive reports whether Close has not been called yet.
func (t *Token) Alive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// guard runs fn while holding the token, unless it was closed. It reports whether fn ran.
func (t *Token) guard(fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	fn()
	return true
}
