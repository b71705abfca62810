package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueue_FIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		if err := q.Push(i); err != nil {
			t.Fatal(err)
		}
	}

	for want := 0; want < 5; want++ {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("expected %d, got %d (ok=%v)", want, got, ok)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("expected empty queue")
	}

	stats := q.GetStats()
	if stats.TotalEnqueued != 5 || stats.TotalDequeued != 5 || stats.PeakSize != 5 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[string]()
	_ = q.Push("a")
	_ = q.Push("b")

	items := q.Drain()
	if len(items) != 2 || items[0] != "a" || items[1] != "b" {
		t.Fatalf("unexpected drain %v", items)
	}
	if q.Len() != 0 {
		t.Error("drain should empty the queue")
	}
	if items := q.Drain(); len(items) != 0 {
		t.Errorf("expected nothing, got %v", items)
	}
}

func TestQueue_WaitWakesOnPush(t *testing.T) {
	q := New[int]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = q.Push(42)
	}()

	start := time.Now()
	got, err := q.Wait(context.Background(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if time.Since(start) > time.Second {
		t.Error("push did not wake the waiter")
	}
}

func TestQueue_WaitContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Wait(ctx, 5*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline, got %v", err)
	}
}

func TestQueue_Close(t *testing.T) {
	q := New[int]()
	_ = q.Push(1)
	q.Close()
	q.Close()

	if err := q.Push(2); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
	if got, err := q.Wait(context.Background(), time.Hour); err != nil || got != 1 {
		t.Errorf("queued item should survive close, got %d, %v", got, err)
	}
	if _, err := q.Wait(context.Background(), time.Hour); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[int]()
	const producers, perProducer = 8, 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = q.Push(i)
			}
		}()
	}

	got := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for got < producers*perProducer {
			if _, err := q.Wait(context.Background(), time.Millisecond); err != nil {
				t.Error(err)
				return
			}
			got++
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("consumer stalled after %d items", got)
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New[int]()
	_ = q.Push(1)
	_ = q.Push(2)
	if n := q.Clear(); n != 2 {
		t.Errorf("expected 2 dropped, got %d", n)
	}
	if q.Len() != 0 {
		t.Error("queue should be empty")
	}
}
