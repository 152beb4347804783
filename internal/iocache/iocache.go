package iocache

import (
	"sync"

	"github.com/huangsam/lagscan/internal/contract"
)

// StoreManager holds the scan cache and the run-tracking store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	scan         contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// GetScanStore returns the scan result cache.
func (mgr *StoreManager) GetScanStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.scan
}

// GetAnalysisStore returns the run-tracking store.
func (mgr *StoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
