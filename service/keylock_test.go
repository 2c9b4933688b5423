package service

import (
	"sync"
	"testing"
	"time"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	locks := newKeyLock()
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("doc-1")
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("Expected at most 1 holder, saw %d", maxSeen)
	}
	if locks.size() != 0 {
		t.Errorf("Expected lock table to be empty, got %d entries", locks.size())
	}
}

func TestKeyLockIndependentKeys(t *testing.T) {
	locks := newKeyLock()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Lock on a different key blocked")
	}
}
