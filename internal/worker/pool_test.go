package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

type recordingAnalyzer struct {
	mu    sync.Mutex
	ids   []string
	block chan struct{}
	fail  bool
}

func (r *recordingAnalyzer) AnalyzeAs(ctx context.Context, id, url string) domain.AnalysisOutcome {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
	if r.fail {
		return domain.Unavailable(domain.ErrFetch)
	}
	return domain.Succeeded(domain.Analysis{ID: id, Source: url})
}

func (r *recordingAnalyzer) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func TestPool_ProcessesAllQueuedJobsBeforeStop(t *testing.T) {
	a := &recordingAnalyzer{}
	p := NewPool(a, 2, 10, nil)
	p.Start()

	for _, id := range []string{"a", "b", "c", "d"} {
		if !p.Submit(Job{ID: id, URL: "http://example.com/" + id + ".mp3"}) {
			t.Fatalf("submit %s rejected", id)
		}
	}
	p.Stop()

	if got := len(a.seen()); got != 4 {
		t.Fatalf("expected 4 processed jobs, got %d", got)
	}
}

func TestPool_SubmitReturnsFalseWhenFull(t *testing.T) {
	a := &recordingAnalyzer{block: make(chan struct{})}
	p := NewPool(a, 1, 1, nil)
	p.Start()

	// first job is taken by the worker and blocks; wait until the queue is empty again
	if !p.Submit(Job{ID: "running"}) {
		t.Fatal("first submit rejected")
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(p.jobs) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("worker never picked up the first job")
		}
		time.Sleep(time.Millisecond)
	}

	if !p.Submit(Job{ID: "queued"}) {
		t.Fatal("second submit should fit in the queue")
	}
	if p.Submit(Job{ID: "dropped"}) {
		t.Fatal("third submit should be rejected while the queue is full")
	}

	close(a.block)
	p.Stop()

	seen := a.seen()
	if len(seen) != 2 {
		t.Fatalf("expected 2 processed jobs, got %v", seen)
	}
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(&recordingAnalyzer{}, 1, 1, nil)
	p.Start()
	p.Stop()
	p.Stop()

	if p.Submit(Job{ID: "late"}) {
		t.Fatal("submit after stop should be rejected")
	}
}

func TestPool_FailedAnalysisDoesNotStopWorker(t *testing.T) {
	a := &recordingAnalyzer{fail: true}
	p := NewPool(a, 1, 4, nil).WithJobTimeout(time.Second)
	p.Start()
	p.Submit(Job{ID: "x"})
	p.Submit(Job{ID: "y"})
	p.Stop()

	if got := a.seen(); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("expected jobs x,y in order, got %v", got)
	}
}

func TestNewPool_ClampsSizes(t *testing.T) {
	p := NewPool(&recordingAnalyzer{}, 0, 0, nil)
	if p.workers != 1 || cap(p.jobs) != 1 {
		t.Fatalf("expected 1 worker and queue 1, got %d and %d", p.workers, cap(p.jobs))
	}
}
