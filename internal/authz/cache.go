// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

package authz

import (
	"strconv"
	"sync"
	"time"

	"github.com/tomtom215/fieldhub/internal/models"
)

// decisionCache caches type-level authorization decisions.
type decisionCache struct {
	ttl      time.Duration
	mu       sync.RWMutex
	items    map[string]*cacheItem
	stopChan chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	allowed   bool
	expiresAt time.Time
}

// newDecisionCache creates a new cache.
func newDecisionCache(ttl time.Duration) *decisionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c := &decisionCache{
		ttl:      ttl,
		items:    make(map[string]*cacheItem),
		stopChan: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// key generates a cache key.
func (c *decisionCache) key(userID int64, resourceName string, action models.Action) string {
	return strconv.FormatInt(userID, 10) + ":" + resourceName + ":" + strconv.FormatInt(int64(action), 10)
}

// get retrieves a cached decision.
func (c *decisionCache) get(userID int64, resourceName string, action models.Action) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[c.key(userID, resourceName, action)]
	if !ok {
		return false, false
	}
	if time.Now().After(item.expiresAt) {
		return false, false
	}
	return item.allowed, true
}

// set stores a decision in the cache.
func (c *decisionCache) set(userID int64, resourceName string, action models.Action, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[c.key(userID, resourceName, action)] = &cacheItem{
		allowed:   allowed,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// invalidateUser removes all cached decisions for a user.
func (c *decisionCache) invalidateUser(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strconv.FormatInt(userID, 10) + ":"
	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
		}
	}
	RecordCacheInvalidation("user_invalidation")
}

// clear removes all cached decisions.
func (c *decisionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*cacheItem)
	RecordCacheInvalidation("policy_update")
}

// cleanup periodically removes expired items.
func (c *decisionCache) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, key)
					RecordCacheEviction()
				}
			}
			c.mu.Unlock()
		}
	}
}

// stop stops the cleanup goroutine. Safe to call multiple times.
func (c *decisionCache) stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}
