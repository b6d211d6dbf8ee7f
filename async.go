package seshat

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// IngestJob describes one file to feed into an index asynchronously.
type IngestJob struct {
	Index      *Index
	Path       string
	BufferSize int
	// Done, when non-nil, receives the record count and error once the job
	// finishes.
	Done func(inserted int, err error)
}

// AsyncIngester runs bulk file ingestion on a worker pool so callers get an
// immediate return and a completion callback. The underlying ingest itself
// stays synchronous; this wrapper only schedules it.
type AsyncIngester struct {
	jobs    chan IngestJob
	workers int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewAsyncIngester creates an ingester with the given worker count and
// queue depth.
func NewAsyncIngester(workers, queueSize int) *AsyncIngester {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	ai := &AsyncIngester{
		jobs:    make(chan IngestJob, queueSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		ai.wg.Add(1)
		go ai.worker()
	}
	return ai
}

// Submit queues a job. It fails when the queue is full or the ingester has
// been closed.
func (ai *AsyncIngester) Submit(job IngestJob) error {
	if job.Index == nil {
		return fmt.Errorf("no index provided")
	}
	if job.Path == "" {
		return fmt.Errorf("no path provided")
	}
	if err := ai.ctx.Err(); err != nil {
		return err
	}
	select {
	case ai.jobs <- job:
		return nil
	case <-ai.ctx.Done():
		return ai.ctx.Err()
	default:
		return fmt.Errorf("ingest queue is full")
	}
}

func (ai *AsyncIngester) worker() {
	defer ai.wg.Done()
	for {
		select {
		case job, ok := <-ai.jobs:
			if !ok {
				return
			}
			inserted, err := job.Index.BuildFromFile(ai.ctx, job.Path, job.BufferSize)
			if job.Done != nil {
				job.Done(inserted, err)
			} else if err != nil {
				log.Printf("async ingest of %s failed: %v", job.Path, err)
			}
		case <-ai.ctx.Done():
			return
		}
	}
}

// Close stops the workers. Queued jobs that have not started are dropped.
func (ai *AsyncIngester) Close() error {
	ai.cancel()
	ai.wg.Wait()
	return nil
}
