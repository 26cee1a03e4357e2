package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	for _, items := range []int{0, 1, 7, 100, 1000} {
		var count int64
		Parallelize(items, func(start, end int) {
			atomic.AddInt64(&count, int64(end-start))
		})
		if count != int64(items) {
			t.Errorf("items=%d: covered %d", items, count)
		}
	}
}

func TestForEachVisitsEachIndexOnce(t *testing.T) {
	const n = 257
	seen := make([]int64, n)
	ForEach(n, func(i int) {
		atomic.AddInt64(&seen[i], 1)
	})
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		calls++
		if start != 0 || end != 5 {
			t.Errorf("expected single full range, got [%d,%d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected 1 sequential call, got %d", calls)
	}
}
