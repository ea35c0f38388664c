package parallel

import (
	"sync"
	"testing"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	for _, items := range []int{1, 7, 1000, 4097} {
		hits := make([]int, items)
		Parallelize(items, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("items=%d: index %d visited %d times", items, i, h)
			}
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	var mu sync.Mutex
	var calls [][2]int
	ParallelizeWithThreshold(10, DefaultThreshold, func(start, end int) {
		mu.Lock()
		calls = append(calls, [2]int{start, end})
		mu.Unlock()
	})

	if len(calls) != 1 || calls[0] != [2]int{0, 10} {
		t.Errorf("expected single sequential call over [0,10), got %v", calls)
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	ParallelizeWithThreshold(0, DefaultThreshold, func(start, end int) { called = true })
	if called {
		t.Error("fn should not be called for zero items")
	}
}
