// Package worker runs batch prediction jobs taken off the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/cutoff/internal/domain/model"
	"github.com/okian/cutoff/pkg/logger"
	"github.com/okian/cutoff/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Predictor evaluates one candidate score against the dataset.
type Predictor interface {
	Predict(ctx context.Context, score float64, filters model.Filters) ([]model.Prediction, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, score float64, filters model.Filters) ([]model.Prediction, error)

// Predict calls f.
func (f PredictorFunc) Predict(ctx context.Context, score float64, filters model.Filters) ([]model.Prediction, error) {
	return f(ctx, score, filters)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Job
}

// Worker processes jobs until its queue is drained or it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is closed.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	predictor Predictor
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, p Predictor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		predictor: p,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}

// process evaluates a job and delivers its result. Reply channels are
// expected to be buffered; a full one drops the result.
func (w *InMemoryWorker) process(ctx context.Context, job model.Job) { //nolint:gocritic // hugeParam: received by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	res := model.JobResult{ID: job.ID}
	if w.predictor == nil {
		res.Err = ErrNoPredictor
	} else {
		res.Predictions, res.Err = w.predictor.Predict(ctx, job.Score, job.Filters)
	}

	if res.Err != nil {
		metrics.RecordWorkerError()
		metrics.RecordBatchJob("error")
		w.logger.Error(ctx, "batch job failed", logger.String("job_id", job.ID), logger.Error(res.Err))
	} else {
		metrics.RecordBatchJob("ok")
	}

	if job.Reply == nil {
		return
	}
	select {
	case job.Reply <- res:
	default:
		w.logger.Warn(ctx, "reply dropped", logger.String("job_id", job.ID))
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one
// defaults to runtime.NumCPU(). Options are applied to every worker.
func NewPool(workerCount int, q Queue, p Predictor, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	template := &InMemoryWorker{}
	for _, opt := range opts {
		opt(template)
	}
	base := template.logger
	if base == nil {
		base = logger.Get()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  base.Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append(append([]Option(nil), opts...), WithName("worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, p, workerOpts...)
	}
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for workers to drain it. Workers
// still busy when ctx or the pool timeout expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			w.shutdownOnce.Do(func() { close(w.shutdown) })
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return ErrShutdownTimeout
	}
	return nil
}
