package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type testJob struct {
	id      int
	fail    bool
	counter *atomic.Int64
}

type testResult struct {
	id  int
	err error
}

func (r *testResult) GetError() error { return r.err }

func (j *testJob) Execute(ctx context.Context) Result {
	if j.counter != nil {
		j.counter.Add(1)
	}
	if j.fail {
		return &testResult{id: j.id, err: errors.New("job failed")}
	}
	return &testResult{id: j.id}
}

func TestPoolRunsAllJobs(t *testing.T) {
	var counter atomic.Int64
	pool := NewPool(4)
	pool.Start()

	const jobs = 20
	for i := 0; i < jobs; i++ {
		pool.Submit(&testJob{id: i, counter: &counter})
	}
	results := pool.Wait()

	if len(results) != jobs {
		t.Fatalf("got %d results, want %d", len(results), jobs)
	}
	if counter.Load() != jobs {
		t.Errorf("executed %d jobs, want %d", counter.Load(), jobs)
	}

	seen := make(map[int]bool)
	for _, r := range results {
		tr := r.(*testResult)
		if seen[tr.id] {
			t.Errorf("job %d reported twice", tr.id)
		}
		seen[tr.id] = true
	}
}

func TestPoolCollectsErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&testJob{id: 0})
	pool.Submit(&testJob{id: 1, fail: true})
	results := pool.Wait()

	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("got %d failed results, want 1", failed)
	}
}

func TestPoolClampsWorkerCount(t *testing.T) {
	pool := NewPool(0)
	pool.Start()
	pool.Submit(&testJob{id: 0})
	if results := pool.Wait(); len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

type slowJob struct{}

func (slowJob) Execute(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return &testResult{err: ctx.Err()}
	case <-time.After(5 * time.Second):
		return &testResult{}
	}
}

func TestPoolShutdown(t *testing.T) {
	pool := NewPool(1)
	pool.Start()
	pool.Submit(slowJob{})

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not cancel the running job")
	}
}
