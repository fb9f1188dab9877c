package core

import (
	"context"
	"sync"
	"testing"

	"github.com/huangsam/planbench/internal/runstore"
	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, storeManagerFromContext(ctx))
	assert.Zero(t, runIDFromContext(ctx))

	mgr := &runstore.MockStoreManager{}
	ctx = withRunID(contextWithStoreManager(ctx, mgr), 42)
	assert.Same(t, mgr, storeManagerFromContext(ctx))
	assert.Equal(t, int64(42), runIDFromContext(ctx))
}

func TestRunIDWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), runIDKey, "42")
	assert.Zero(t, runIDFromContext(ctx))
}

// TestContextConcurrentAccess reads one context from many sweep workers at once.
func TestContextConcurrentAccess(t *testing.T) {
	mgr := &runstore.MockStoreManager{}
	ctx := withRunID(contextWithStoreManager(context.Background(), mgr), 7)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		go func(id int) {
			defer wg.Done()
			assert.Same(t, mgr, storeManagerFromContext(ctx), "worker %d", id)
			assert.Equal(t, int64(7), runIDFromContext(ctx), "worker %d", id)
		}(i)
	}
	wg.Wait()
}

// TestContextIsolation checks that derived contexts do not see each other's run IDs.
func TestContextIsolation(t *testing.T) {
	base := contextWithStoreManager(context.Background(), &runstore.MockStoreManager{})
	ctxs := []context.Context{withRunID(base, 1), withRunID(base, 2), base}
	want := []int64{1, 2, 0}

	var wg sync.WaitGroup
	wg.Add(len(ctxs))
	for i, ctx := range ctxs {
		go func() {
			defer wg.Done()
			assert.Equal(t, want[i], runIDFromContext(ctx))
			assert.NotNil(t, storeManagerFromContext(ctx))
		}()
	}
	wg.Wait()
}
