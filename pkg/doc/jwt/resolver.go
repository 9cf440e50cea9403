/*
Copyright Attestify Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"fmt"

	"github.com/bluele/gcache"
)

const defaultCacheSize = 100

// CachingKeyResolver decorates a KeyResolver with an LRU cache of resolved keys.
// Resolution of a verification key can be a remote call (e.g. a DID resolution),
// so repeated verifications against the same issuer benefit from the cache.
type CachingKeyResolver struct {
	resolver KeyResolver
	cache    gcache.Cache
}

// NewCachingKeyResolver creates a new CachingKeyResolver with the given cache size.
// If size is zero or negative, a default size is used.
func NewCachingKeyResolver(resolver KeyResolver, size int) *CachingKeyResolver {
	if size <= 0 {
		size = defaultCacheSize
	}

	return &CachingKeyResolver{
		resolver: resolver,
		cache:    gcache.New(size).LRU().Build(),
	}
}

// Resolve resolves the public key, consulting the cache first.
func (c *CachingKeyResolver) Resolve(what, kid string) (interface{}, error) {
	cacheKey := what + "#" + kid

	if v, err := c.cache.Get(cacheKey); err == nil {
		return v, nil
	}

	pubKey, err := c.resolver.Resolve(what, kid)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(cacheKey, pubKey); err != nil {
		return nil, fmt.Errorf("cache resolved key: %w", err)
	}

	return pubKey, nil
}
