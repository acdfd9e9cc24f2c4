package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func startLoop(t *testing.T) *EventLoop {
	t.Helper()
	l := New()
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = l.Stop(context.Background()) })
	return l
}

func TestPostRunsInOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() {
			got = append(got, i)
			if i == 99 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callbacks")
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("callback %d ran at position %d", v, i)
		}
	}
}

func TestCallbacksNeverOverlap(t *testing.T) {
	l := startLoop(t)

	var inFlight, maxInFlight atomic.Int32
	var wg sync.WaitGroup
	const posters, perPoster = 8, 50
	wg.Add(posters * perPoster)

	for p := 0; p < posters; p++ {
		go func() {
			for i := 0; i < perPoster; i++ {
				l.Post(func() {
					defer wg.Done()
					n := inFlight.Add(1)
					if n > maxInFlight.Load() {
						maxInFlight.Store(n)
					}
					time.Sleep(10 * time.Microsecond)
					inFlight.Add(-1)
				})
			}
		}()
	}

	wg.Wait()
	if maxInFlight.Load() != 1 {
		t.Errorf("expected at most 1 callback in flight, saw %d", maxInFlight.Load())
	}
}

func TestStopDrainsQueued(t *testing.T) {
	l := New()
	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		l.Post(func() { ran.Add(1) })
	}
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := l.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if ran.Load() != 10 {
		t.Errorf("expected 10 callbacks drained, got %d", ran.Load())
	}
}

func TestPostAfterStop(t *testing.T) {
	l := New()
	l.Start(context.Background())
	l.Stop(context.Background())

	if l.Post(func() { t.Error("callback must not run after stop") }) {
		t.Error("expected Post to return false after Stop")
	}
	if l.Post(nil) {
		t.Error("expected Post(nil) to return false")
	}
}

func TestPanicDoesNotKillLoop(t *testing.T) {
	l := startLoop(t)

	done := make(chan struct{})
	l.Post(func() { panic("boom") })
	l.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped after a panicking callback")
	}
}

func TestStopTimeout(t *testing.T) {
	l := New()
	l.Start(context.Background())

	release := make(chan struct{})
	l.Post(func() { <-release })
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Stop(ctx); err == nil {
		t.Error("expected Stop to time out while a callback blocks")
	}
}

func TestStartTwice(t *testing.T) {
	l := startLoop(t)
	if err := l.Start(context.Background()); err == nil {
		t.Error("expected error on second Start")
	}
}

func TestHealth(t *testing.T) {
	l := New()
	if h := l.Health(context.Background()); h.Status != "unhealthy" {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	l.Start(context.Background())
	if h := l.Health(context.Background()); h.Status != "healthy" {
		t.Errorf("expected healthy while running, got %s", h.Status)
	}
	l.Stop(context.Background())
	if h := l.Health(context.Background()); h.Status != "unhealthy" {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}
