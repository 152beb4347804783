package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/lagscan/internal/contract"
	"github.com/huangsam/lagscan/schema"
)

// currentCacheVersion defines the version of the cached scan schema
const currentCacheVersion = 1

// cacheTTL is how long a cached scan stays fresh.
const cacheTTL = 7 * 24 * time.Hour

// scanFunc computes a scan on a cache miss.
type scanFunc func(ctx context.Context) (schema.ScanResult, error)

// cachedScan returns the cached scan for key, or computes and stores it.
func cachedScan(ctx context.Context, store contract.CacheStore, key string, compute scanFunc) (schema.ScanResult, error) {
	if store == nil {
		// Fallback to direct computation
		return compute(ctx)
	}

	// Check for cache hit
	if result, ok := checkCacheHit(store, key); ok {
		contract.Logger().Debug().Str("key", key[:12]).Msg("scan cache hit")
		return result, nil
	}

	// Cache miss: compute and store
	result, err := compute(ctx)
	if err != nil {
		return result, err
	}
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache scan result", err)
		}
	}
	return result, nil
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) (schema.ScanResult, bool) {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return schema.ScanResult{}, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return schema.ScanResult{}, false
	}
	var result schema.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return schema.ScanResult{}, false
	}
	return result, true
}

// generateCacheKey creates a unique key from the dataset content, the
// columns imputed together, the pair and the scan parameters.
func generateCacheKey(datasetHash string, imputedWith []string, source, target string, params schema.ScanParams) string {
	key := fmt.Sprintf("%s:%s:%s:%s:%d:%d:%d",
		datasetHash,
		strings.Join(imputedWith, ","),
		source,
		target,
		params.MaxLag,
		params.WindowSize,
		params.Neighbors,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
