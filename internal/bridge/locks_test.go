package bridge

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	var km keyedMutex
	const workers = 16

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.lock("user/1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	var km keyedMutex

	u1 := km.lock("user/1")
	// A different key must not block.
	done := make(chan struct{})
	go func() {
		unlock := km.lock("user/2")
		unlock()
		close(done)
	}()
	<-done
	u1()
}

func TestKeyedMutex_EntriesReleased(t *testing.T) {
	var km keyedMutex

	unlock := km.lock("thread/7")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Fatalf("lock table not drained: %d entries", len(km.locks))
	}
}
