package transport

import (
	"sync"
	"time"
)

// cooldown tracks a server-requested pause shared by every call through one Transport.
type cooldown struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = no pause
}

func (c *cooldown) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

// open extends the pause to resetAt; an earlier deadline never shortens it.
func (c *cooldown) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if resetAt.After(c.resetAt) {
		c.resetAt = resetAt
	}
}
