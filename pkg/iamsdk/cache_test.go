package iamsdk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheTTLBoundary(t *testing.T) {
	t.Parallel()

	vc := newVerifyCache(60 * time.Second)
	now := time.Unix(1_700_000_000, 0)
	vc.now = func() time.Time { return now }

	ident := &Identity{Permissions: []string{"forms.create"}}
	vc.put("T1", ident)

	t.Run("fresh entry hits", func(t *testing.T) {
		got, ok := vc.get("T1")
		require.True(t, ok)
		require.Same(t, ident, got)
	})

	t.Run("just inside the window still hits", func(t *testing.T) {
		now = now.Add(60*time.Second - time.Millisecond)
		_, ok := vc.get("T1")
		require.True(t, ok)
	})

	t.Run("at exactly the TTL misses", func(t *testing.T) {
		now = now.Add(time.Millisecond)
		_, ok := vc.get("T1")
		require.False(t, ok)
	})

	t.Run("expired entry was dropped", func(t *testing.T) {
		// A fresh put after expiry starts a new window.
		vc.put("T1", ident)
		_, ok := vc.get("T1")
		require.True(t, ok)
	})
}

func TestCacheInvalidate(t *testing.T) {
	t.Parallel()

	vc := newVerifyCache(time.Minute)
	vc.put("T1", &Identity{})
	vc.put("T2", &Identity{})

	vc.invalidate("T1")

	_, ok := vc.get("T1")
	require.False(t, ok)
	_, ok = vc.get("T2")
	require.True(t, ok)

	// Invalidating an absent key is a no-op.
	vc.invalidate("T3")
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	vc := newVerifyCache(time.Minute)
	vc.put("T1", &Identity{})
	vc.put("T2", &Identity{})

	vc.clear()

	_, ok := vc.get("T1")
	require.False(t, ok)
	_, ok = vc.get("T2")
	require.False(t, ok)
}
