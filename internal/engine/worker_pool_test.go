package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	fn func()
}

func (j funcJob) Execute(ctx context.Context) error {
	j.fn()
	return nil
}

func TestWorkerPoolExecutesJobs(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 3)
	defer pool.Close()

	assert.Equal(t, 3, pool.Size())

	var counter atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		err := pool.Submit(funcJob{fn: func() {
			counter.Add(1)
			wg.Done()
		}})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, int64(20), counter.Load())
}

func TestWorkerPoolDerivesSizeFromCPU(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0)
	defer pool.Close()
	assert.GreaterOrEqual(t, pool.Size(), 1)
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1)
	defer pool.Close()

	release := make(chan struct{})
	defer close(release)

	// Occupy the worker and fill the queue so the next Submit cannot win
	// the select against the cancelled context.
	for i := 0; i < pool.Size()*2+1; i++ {
		require.NoError(t, pool.Submit(funcJob{fn: func() { <-release }}))
	}
	cancel()

	err := pool.Submit(funcJob{fn: func() {}})
	assert.ErrorIs(t, err, context.Canceled)
}
