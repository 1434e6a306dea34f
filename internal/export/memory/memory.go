// Package memory is an in-memory EntryAppender for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"khata/internal/export"
)

type Appender struct {
	mu      sync.Mutex
	entries []export.Entry
}

var _ export.EntryAppender = (*Appender)(nil)

func New() *Appender {
	return &Appender{}
}

func (a *Appender) AppendEntry(_ context.Context, e export.Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

// Entries returns a copy of everything appended so far.
func (a *Appender) Entries() []export.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]export.Entry, len(a.entries))
	copy(out, a.entries)
	return out
}
