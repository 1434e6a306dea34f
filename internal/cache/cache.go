// Package cache provides an in-memory LRU cache with TTL, used by the HTTP
// layer to memoise report responses between ledger writes.
package cache

import (
	"fmt"
	"log/slog"
	"time"
)

// Cache is a generic read-through cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry cleanup over registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup in a background goroutine.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, c := range m.caches {
				cleaned += c.CleanExpired()
			}
			if cleaned > 0 {
				slog.Debug("Cleaned expired cache entries", "count", cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop halts the cleanup routine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}

// Report cache keys. Every report for an organization shares the org prefix
// so a ledger write can invalidate them together.

func ReportKey(orgID int64, report string, parts ...string) string {
	key := fmt.Sprintf("org:%d:%s", orgID, report)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func OrgPrefix(orgID int64) string {
	return fmt.Sprintf("org:%d:", orgID)
}
