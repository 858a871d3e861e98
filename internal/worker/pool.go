// Package worker runs song analyses in the background.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/emotunes/internal/core/domain"
)

// Job is one queued analysis. ID becomes the stored analysis ID.
type Job struct {
	ID  string
	URL string
}

// Analyzer is the part of the song analyzer the pool needs.
type Analyzer interface {
	AnalyzeAs(ctx context.Context, id, url string) domain.AnalysisOutcome
}

// Pool manages background workers for async analyses.
type Pool struct {
	analyzer Analyzer
	workers  int
	timeout  time.Duration
	log      *zap.Logger

	jobs     chan Job
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewPool creates a worker pool with the given worker count and queue size.
func NewPool(analyzer Analyzer, workers, queueSize int, log *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		analyzer: analyzer,
		workers:  workers,
		log:      log,
		jobs:     make(chan Job, queueSize),
	}
}

// WithJobTimeout bounds each job. Zero leaves jobs unbounded.
func (p *Pool) WithJobTimeout(d time.Duration) *Pool {
	p.timeout = d
	return p
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(worker int) {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(worker, job)
			}
		}(i)
	}
	p.log.Info("analysis pool started", zap.Int("workers", p.workers), zap.Int("queue", cap(p.jobs)))
}

// Stop closes the queue and waits for queued jobs to drain.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// Submit queues a job without blocking. It returns false when the queue is
// full or the pool has been stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		p.log.Warn("analysis queue full, dropping job", zap.String("job_id", job.ID), zap.String("url", job.URL))
		return false
	}
}

func (p *Pool) processJob(worker int, job Job) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	outcome := p.analyzer.AnalyzeAs(ctx, job.ID, job.URL)
	if !outcome.OK() {
		p.log.Warn("background analysis unavailable",
			zap.Int("worker", worker),
			zap.String("job_id", job.ID),
			zap.String("failure", string(outcome.Failure)),
			zap.Error(outcome.Err),
		)
		return
	}
	p.log.Info("background analysis done", zap.Int("worker", worker), zap.String("job_id", job.ID))
}
