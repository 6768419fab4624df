package idgen

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_StartsAtOne(t *testing.T) {
	c := New()
	assert.Equal(t, uint64(1), c.Next())
	assert.Equal(t, uint64(2), c.Next())
}

func TestCounter_ConcurrentCallersGetDistinctIncreasingValues(t *testing.T) {
	const workers = 16
	const perWorker = 2000

	c := New()
	results := make([][]uint64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			seen := make([]uint64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				seen = append(seen, c.Next())
			}
			results[w] = seen
		}(w)
	}
	wg.Wait()

	all := make(map[uint64]struct{}, workers*perWorker)
	for w, seen := range results {
		for i, v := range seen {
			if i > 0 {
				require.Greater(t, v, seen[i-1], "worker %d saw a non-increasing value", w)
			}
			_, dup := all[v]
			require.False(t, dup, "value %d handed out twice", v)
			all[v] = struct{}{}
		}
	}
	assert.Len(t, all, workers*perWorker)
}

func TestCounter_WrapsAround(t *testing.T) {
	c := New()
	c.v.Store(math.MaxUint64 - 1)

	assert.Equal(t, uint64(math.MaxUint64), c.Next())
	assert.Equal(t, uint64(0), c.Next())
	assert.Equal(t, uint64(1), c.Next())
}

func TestCounter_NextNonZeroSkipsZero(t *testing.T) {
	c := New()
	c.v.Store(math.MaxUint64)

	assert.Equal(t, uint64(1), c.NextNonZero())
	assert.Equal(t, uint64(2), c.NextNonZero())
}

func TestCounter_NextNonZeroNeverZeroNearWrap(t *testing.T) {
	for start := uint64(math.MaxUint64 - 4); start != 2; start++ {
		c := New()
		c.v.Store(start)
		for i := 0; i < 8; i++ {
			require.NotZero(t, c.NextNonZero(), "start=%d call=%d", start, i)
		}
	}
}

func TestProcess_IsSingleton(t *testing.T) {
	assert.Same(t, Process(), Process())
	a := Process().NextNonZero()
	b := Process().NextNonZero()
	assert.Greater(t, b, a)
}
