package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestAcquire_SerializesKey(t *testing.T) {
	l := New(nil, time.Second, logrus.New())
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "stock:1")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Errorf("max holders = %d, want 1", maxSeen)
	}
	if len(l.local) != 0 {
		t.Errorf("local locks leaked: %d", len(l.local))
	}
}

func TestAcquire_DifferentKeys(t *testing.T) {
	l := New(nil, time.Second, logrus.New())
	r1, _ := l.Acquire(context.Background(), "a")
	done := make(chan struct{})
	go func() {
		r2, _ := l.Acquire(context.Background(), "b")
		r2()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
	r1()
}

func TestAcquire_StopsWaitingWhenContextDone(t *testing.T) {
	l := New(nil, time.Second, logrus.New())
	release, err := l.Acquire(context.Background(), "stock:7")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := l.Acquire(ctx, "stock:7"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if waited := time.Since(start); waited > time.Second {
		t.Errorf("waited %s for a cancelled context", waited)
	}

	release()
	again, err := l.Acquire(context.Background(), "stock:7")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again()
	if n := len(l.local); n != 0 {
		t.Errorf("%d keys left in the local table, want 0", n)
	}
}
