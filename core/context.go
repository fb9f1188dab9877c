package core

import (
	"context"

	"github.com/huangsam/planbench/internal/contract"
)

// Context keys for sweep options
type contextKey string

const (
	storeManagerKey contextKey = "storeManager"
	runIDKey        contextKey = "runID"
)

// contextWithStoreManager adds the store manager used by sweep workers to the context.
func contextWithStoreManager(ctx context.Context, mgr contract.StoreManager) context.Context {
	return context.WithValue(ctx, storeManagerKey, mgr)
}

// storeManagerFromContext returns the store manager from context, or nil.
func storeManagerFromContext(ctx context.Context) contract.StoreManager {
	mgr, _ := ctx.Value(storeManagerKey).(contract.StoreManager)
	return mgr
}

// withRunID sets the stored run ID that plan stats are recorded under.
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// runIDFromContext returns the stored run ID, or 0 when the run is not tracked.
func runIDFromContext(ctx context.Context) int64 {
	val := ctx.Value(runIDKey)
	if val == nil {
		return 0
	}
	id, ok := val.(int64)
	if !ok {
		return 0
	}
	return id
}
