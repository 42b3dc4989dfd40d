package netgate

import (
	"sync"
	"testing"
	"time"
)

// TestAcquireRelease tests the basic take/return cycle.
func TestAcquireRelease(t *testing.T) {
	g := New()

	if !g.Acquire(10 * time.Millisecond) {
		t.Fatal("Expected first Acquire to succeed")
	}
	g.Release()

	if !g.Acquire(10 * time.Millisecond) {
		t.Fatal("Expected Acquire after Release to succeed")
	}
	g.Release()
}

// TestAcquireTimesOutWhileHeld tests that a second caller gets a bounded
// wait, not a hang.
func TestAcquireTimesOutWhileHeld(t *testing.T) {
	g := New()

	if !g.Acquire(10 * time.Millisecond) {
		t.Fatal("Expected first Acquire to succeed")
	}
	defer g.Release()

	start := time.Now()
	if g.Acquire(50 * time.Millisecond) {
		t.Fatal("Expected second Acquire to fail while gate is held")
	}
	elapsed := time.Since(start)
	if elapsed < 40*time.Millisecond {
		t.Errorf("Acquire returned after %v, expected it to wait ~50ms", elapsed)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("Acquire took %v, expected a bounded wait", elapsed)
	}
}

// TestAcquireSucceedsWhenReleased tests a waiter getting the gate once the
// holder releases it.
func TestAcquireSucceedsWhenReleased(t *testing.T) {
	g := New()

	if !g.Acquire(10 * time.Millisecond) {
		t.Fatal("Expected first Acquire to succeed")
	}

	done := make(chan bool, 1)
	go func() {
		done <- g.Acquire(time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	g.Release()

	select {
	case ok := <-done:
		if !ok {
			t.Error("Expected waiter to acquire the gate after release")
		}
		g.Release()
	case <-time.After(time.Second):
		t.Fatal("Waiter never returned")
	}
}

// TestMutualExclusion hammers the gate from several goroutines and checks
// that the critical section never overlaps.
func TestMutualExclusion(t *testing.T) {
	g := New()

	var mu sync.Mutex
	inside := 0
	maxInside := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if !g.Acquire(time.Second) {
					continue
				}
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				g.Release()
			}
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("Expected at most 1 holder at a time, saw %d", maxInside)
	}
}

// TestReleaseWithoutHold verifies a stray Release doesn't corrupt the gate.
func TestReleaseWithoutHold(t *testing.T) {
	g := New()
	g.Release()

	if !g.Acquire(10 * time.Millisecond) {
		t.Fatal("Expected Acquire to succeed after stray Release")
	}
	if g.Acquire(10 * time.Millisecond) {
		t.Fatal("Gate handed out two holds; stray Release corrupted it")
	}
	g.Release()
}

// TestZeroTimeout verifies a non-blocking attempt.
func TestZeroTimeout(t *testing.T) {
	g := New()
	if !g.Acquire(0) {
		t.Fatal("Expected zero-timeout Acquire on an unheld gate to succeed")
	}
	if g.Acquire(0) {
		t.Fatal("Expected zero-timeout Acquire to fail while held")
	}
	g.Release()
}
