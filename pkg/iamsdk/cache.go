package iamsdk

import (
	"sync"
	"time"
)

// verifyCache maps token strings to their last verification result. Entries
// are valid for reads only while younger than the fixed TTL; an expired entry
// is treated as absent and removed on access. There is no size bound and no
// LRU eviction, entries accumulate until invalidated or cleared.
//
// The mutex only guards the map for memory safety. Concurrent verifications
// of the same token are NOT de-duplicated: both miss, both hit the network,
// and the later response overwrites the earlier one.
type verifyCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time // injectable for tests
	entries map[string]cacheEntry
}

type cacheEntry struct {
	ident    *Identity
	storedAt time.Time
}

func newVerifyCache(ttl time.Duration) *verifyCache {
	return &verifyCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached identity for token, or (nil, false) on miss or
// expiry. Expired entries are dropped so a later put starts a fresh window.
func (vc *verifyCache) get(token string) (*Identity, bool) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	e, ok := vc.entries[token]
	if !ok {
		return nil, false
	}
	if vc.now().Sub(e.storedAt) >= vc.ttl {
		delete(vc.entries, token)
		return nil, false
	}
	return e.ident, true
}

// put stores a verification result with the current timestamp, replacing any
// previous entry for the token.
func (vc *verifyCache) put(token string, ident *Identity) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.entries[token] = cacheEntry{ident: ident, storedAt: vc.now()}
}

// invalidate removes the entry for token, if any.
func (vc *verifyCache) invalidate(token string) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	delete(vc.entries, token)
}

// clear removes all entries.
func (vc *verifyCache) clear() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.entries = make(map[string]cacheEntry)
}
