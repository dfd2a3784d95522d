package lock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccsfp/clinic-api/pkg/lock"
)

func TestAcquireSerializesSameKey(t *testing.T) {
	km := lock.NewKeyedMutex()
	ctx := context.Background()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := km.Acquire(ctx, "key")
			assert.NoError(t, err)
			defer release()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestAcquireOverlappingKeySets(t *testing.T) {
	km := lock.NewKeyedMutex()
	ctx := context.Background()

	// Opposite acquisition orders must not deadlock; keys are sorted
	// internally.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release, err := km.Acquire(ctx, "a", "b")
			assert.NoError(t, err)
			release()
		}()
		go func() {
			defer wg.Done()
			release, err := km.Acquire(ctx, "b", "a")
			assert.NoError(t, err)
			release()
		}()
	}
	wg.Wait()
}

func TestAcquireDuplicateKeys(t *testing.T) {
	km := lock.NewKeyedMutex()
	ctx := context.Background()

	release, err := km.Acquire(ctx, "x", "x", "x")
	require.NoError(t, err)
	release()

	// Reacquirable after release.
	release, err = km.Acquire(ctx, "x")
	require.NoError(t, err)
	release()
}

func TestIndependentKeysDoNotBlock(t *testing.T) {
	km := lock.NewKeyedMutex()
	ctx := context.Background()

	releaseA, err := km.Acquire(ctx, "a")
	require.NoError(t, err)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := km.Acquire(ctx, "b")
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	<-done
}
