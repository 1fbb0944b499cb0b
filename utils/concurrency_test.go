package utils

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	added := s.Add("https://example.com/1")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("https://example.com/1")
	if added {
		t.Error("second Add of same URL should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}
}

func TestURLSetRawStringIdentity(t *testing.T) {
	s := NewURLSet()
	s.Add("https://example.com/a")
	s.Add("https://example.com/a/")
	s.Add("https://EXAMPLE.com/a")

	if s.Size() != 3 {
		t.Errorf("size: got %d, want 3 (no URL normalization)", s.Size())
	}
}

func TestURLSetSorted(t *testing.T) {
	s := NewURLSet()
	for _, u := range []string{"c", "a", "b", "a"} {
		s.Add(u)
	}

	got := s.Sorted()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Sorted: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sorted[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestURLSetConcurrency(t *testing.T) {
	s := NewURLSet()
	var added int64

	pool := NewWorkerPool(10)
	for i := 0; i < 100; i++ {
		url := "https://example.com/same"
		pool.Submit(func() {
			if s.Add(url) {
				atomic.AddInt64(&added, 1)
			}
		})
	}
	pool.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}

func TestWorkerPoolBound(t *testing.T) {
	const workers = 3
	pool := NewWorkerPool(workers)

	var running, peak int64
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&running, -1)
		})
	}
	pool.Wait()

	if peak > workers {
		t.Errorf("peak concurrency %d exceeds pool size %d", peak, workers)
	}
}

func TestWorkerPoolSingleWorkerKeepsOrder(t *testing.T) {
	pool := NewWorkerPool(0)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		pool.Submit(func() { order = append(order, i) })
	}
	pool.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("order: got %v, want 0..4", order)
		}
	}
}
