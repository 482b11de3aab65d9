package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestForEachChunkCoversEveryItem(t *testing.T) {
	for _, items := range []int{0, 1, 7, 1000, 4099} {
		seen := make([]int32, items)
		err := ForEachChunk(items, 0, func(start, end int) error {
			for i := start; i < end; i++ {
				atomic.AddInt32(&seen[i], 1)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("items=%d: unexpected error %v", items, err)
		}
		for i, c := range seen {
			if c != 1 {
				t.Fatalf("items=%d: index %d visited %d times", items, i, c)
			}
		}
	}
}

func TestForEachChunkBelowThresholdRunsInline(t *testing.T) {
	calls := 0
	_ = ForEachChunk(10, 10, func(start, end int) error {
		calls++
		if start != 0 || end != 10 {
			t.Errorf("got range [%d, %d), want [0, 10)", start, end)
		}
		return nil
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestForEachChunkReturnsLowestRangeError(t *testing.T) {
	errLow := errors.New("low")
	errHigh := errors.New("high")

	err := ForEachChunk(5000, 0, func(start, end int) error {
		if start == 0 {
			return errLow
		}
		if end == 5000 {
			return errHigh
		}
		return nil
	})
	// 1コア環境では範囲が1つなので errLow のみ
	if !errors.Is(err, errLow) {
		t.Errorf("err = %v, want %v", err, errLow)
	}

	if err := ForEachChunk(0, 0, func(int, int) error { return errLow }); err != nil {
		t.Errorf("empty input: err = %v, want nil", err)
	}
}
