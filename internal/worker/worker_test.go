package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sendJob struct {
	chatID int64
	text   string
}

func TestWorkerPool_StartStop(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job sendJob) error {
		processed.Add(1)
		return nil
	}

	pool := NewWorkerPool(2, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		pool.Submit(sendJob{chatID: int64(i), text: "балістика"})
	}

	// Stop drains the queue while ctx is alive
	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
}

func TestWorkerPool_ConcurrentSubmit(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	processor := func(ctx context.Context, job sendJob) error {
		mu.Lock()
		seen[job.chatID] = true
		mu.Unlock()
		return nil
	}

	pool := NewWorkerPool(4, 100, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			pool.Submit(sendJob{chatID: n})
		}(int64(i))
	}
	wg.Wait()
	pool.Stop()

	if len(seen) != 100 {
		t.Errorf("expected 100 distinct jobs processed, got %d", len(seen))
	}
}

func TestWorkerPool_ErrorsDoNotStopWorkers(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job sendJob) error {
		processed.Add(1)
		if job.chatID%2 == 0 {
			return errors.New("chat not found")
		}
		return nil
	}

	pool := NewWorkerPool(1, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	for i := 0; i < 6; i++ {
		pool.Submit(sendJob{chatID: int64(i)})
	}
	pool.Stop()

	if processed.Load() != 6 {
		t.Errorf("expected 6 jobs processed despite errors, got %d", processed.Load())
	}
}

func TestWorkerPool_TrySubmit(t *testing.T) {
	release := make(chan struct{})
	processor := func(ctx context.Context, job sendJob) error {
		<-release
		return nil
	}

	pool := NewWorkerPool(1, 1, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	// First job occupies the worker, second fills the buffer
	if !pool.TrySubmit(sendJob{chatID: 1}) {
		t.Fatal("expected first job to be accepted")
	}
	deadline := time.Now().Add(time.Second)
	for !pool.TrySubmit(sendJob{chatID: 2}) {
		if time.Now().After(deadline) {
			t.Fatal("buffer never freed up")
		}
		time.Sleep(time.Millisecond)
	}
	if pool.TrySubmit(sendJob{chatID: 3}) {
		t.Error("expected job to be rejected when buffer is full")
	}

	close(release)
	pool.Stop()
}

func TestWorkerPool_GracefulShutdown(t *testing.T) {
	var processed atomic.Int64
	processor := func(ctx context.Context, job sendJob) error {
		time.Sleep(10 * time.Millisecond)
		processed.Add(1)
		return nil
	}

	pool := NewWorkerPool(2, 50, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 20; i++ {
		pool.Submit(sendJob{chatID: int64(i)})
	}

	// Cancel immediately, pending jobs are abandoned
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool.Stop() timed out")
	}

	t.Logf("processed %d jobs before shutdown", processed.Load())
}

func TestWorkerPool_ContextCancellation(t *testing.T) {
	var started, completed atomic.Int64

	processor := func(ctx context.Context, job sendJob) error {
		started.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
			completed.Add(1)
			return nil
		}
	}

	pool := NewWorkerPool(2, 10, processor)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		pool.Submit(sendJob{chatID: int64(i)})
	}

	time.Sleep(50 * time.Millisecond)
	cancel()
	pool.Stop()

	if completed.Load() != 0 {
		t.Errorf("expected in-flight jobs to observe cancellation, %d completed", completed.Load())
	}
}
