package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestParallelizeN_CoversAllItems(t *testing.T) {
	const items = 137
	var mu sync.Mutex
	seen := make([]int, items)

	ParallelizeN(items, 4, func(start, end int) {
		mu.Lock()
		defer mu.Unlock()
		for i := start; i < end; i++ {
			seen[i]++
		}
	})

	for i, c := range seen {
		if c != 1 {
			t.Errorf("item %d covered %d times, want exactly once", i, c)
		}
	}
}

func TestParallelizeN_ZeroItems(t *testing.T) {
	called := false
	ParallelizeN(0, 4, func(start, end int) { called = true })
	if called {
		t.Error("fn should not be called for zero items")
	}
}

func TestForEach_EachIndexOnce(t *testing.T) {
	const items = 50
	var counts [items]int64

	ForEach(items, 3, func(i int) {
		atomic.AddInt64(&counts[i], 1)
	})

	for i, c := range counts {
		if c != 1 {
			t.Errorf("index %d visited %d times, want exactly once", i, c)
		}
	}
}

func TestForEach_WorkerCapBelowOne(t *testing.T) {
	var n int64
	ForEach(5, 0, func(i int) { atomic.AddInt64(&n, 1) })
	if n != 5 {
		t.Errorf("expected 5 calls, got %d", n)
	}
}
