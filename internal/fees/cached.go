package fees

import (
	"context"
	"fmt"
	"time"

	"github.com/yiinote/ethereum-sdk/pkg/cache"
	"github.com/yiinote/ethereum-sdk/pkg/types"
)

// CachedResolver memoizes another resolver's answers for a TTL. The engine
// never caches implicitly; this decorator is the opt-in for callers that
// tolerate a stale schedule within the TTL window.
type CachedResolver struct {
	inner Resolver
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedResolver wraps inner with TTL memoization.
func NewCachedResolver(inner Resolver, c cache.Cache, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: c,
		ttl:   ttl,
	}
}

// BaseFee returns the cached fee if fresh, otherwise delegates and stores.
// Errors are never cached.
func (r *CachedResolver) BaseFee(ctx context.Context, network string, orderType types.Protocol) (int64, error) {
	key := fmt.Sprintf("basefee:%s:%s", network, orderType)

	if cached, found := r.cache.Get(key); found {
		if fee, ok := cached.(int64); ok {
			return fee, nil
		}
	}

	fee, err := r.inner.BaseFee(ctx, network, orderType)
	if err != nil {
		return 0, err
	}

	r.cache.Set(key, fee, r.ttl)

	return fee, nil
}
