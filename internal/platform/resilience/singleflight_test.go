package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			_, err, _ := g.Do("results-key", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	var g SingleFlight

	first, err, shared := g.Do("a", func() (any, error) { return 1, nil })
	if err != nil || shared {
		t.Fatalf("unexpected result for first key: err=%v shared=%v", err, shared)
	}
	second, err, shared := g.Do("b", func() (any, error) { return 2, nil })
	if err != nil || shared {
		t.Fatalf("unexpected result for second key: err=%v shared=%v", err, shared)
	}

	if first != 1 || second != 2 {
		t.Fatalf("expected independent results, got %v and %v", first, second)
	}
}
