// Package service wires the dataset, the prediction pipeline and the batch
// workers into the operations the HTTP API exposes.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cutoff/internal/adapters/mq/queue"
	"github.com/okian/cutoff/internal/adapters/mq/worker"
	"github.com/okian/cutoff/internal/adapters/repository"
	"github.com/okian/cutoff/internal/domain/model"
	"github.com/okian/cutoff/internal/domain/ranking"
	"github.com/okian/cutoff/pkg/logger"
	"github.com/okian/cutoff/pkg/metrics"
)

const (
	defaultQueueSize = 1024
	stopTimeout      = 10 * time.Second
)

// PredictRequest is one candidate query.
type PredictRequest struct {
	Score   float64
	Filters model.Filters
}

// BatchResult is the outcome of one request of a batch.
type BatchResult struct {
	ID          string
	Predictions []model.Prediction
	Err         error
}

// Service implements the API dependencies for the prediction system.
type Service struct {
	mu sync.RWMutex
	// enqueueMu makes a batch's free-slot check and its enqueues atomic.
	enqueueMu sync.Mutex

	store repository.Store
	queue *queue.InMemoryQueue
	pool  *worker.Pool

	workerCount int
	queueSize   int
	maxResults  int

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. A store must be supplied with WithStore before Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the batch queue and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.PredictorFunc(s.predict), worker.WithLogger(s.logger))
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxResults", s.maxResults),
		logger.Int("records", s.store.Count(ctx)),
	)
	return nil
}

// Stop drains pending batch jobs and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping prediction service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	s.started = false
	s.logger.Info(ctx, "prediction service stopped")
}

// Predict ranks the programs of the dataset for one candidate.
func (s *Service) Predict(ctx context.Context, req PredictRequest) ([]model.Prediction, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	return s.predict(ctx, req.Score, req.Filters)
}

func (s *Service) predict(ctx context.Context, score float64, f model.Filters) ([]model.Prediction, error) {
	if err := ctx.Err(); err != nil {
		metrics.RecordPredictionError()
		return nil, err
	}
	start := time.Now()

	preds, rep := ranking.PredictWithReport(score, f, s.store.Records(ctx))
	if s.maxResults > 0 && len(preds) > s.maxResults {
		preds = preds[:s.maxResults]
	}

	for i := range preds {
		metrics.RecordPrediction(string(preds[i].Explanation.Method))
	}
	metrics.RecordPredictionRequest(float64(time.Since(start).Microseconds())/1000, len(preds))
	metrics.RecordBelowThreshold(rep.BelowThreshold)
	metrics.RecordDuplicatesDropped(rep.Duplicates)
	metrics.RecordInvalidObservations(rep.InvalidObservations)
	metrics.RecordMalformedRecords(rep.MalformedRecords)
	metrics.UpdateConsolidatedGroups(rep.Consolidated)

	s.logger.Debug(ctx, "prediction served",
		logger.Float64("score", score),
		logger.String("course", f.Program),
		logger.String("community", f.Community),
		logger.Int("consolidated", rep.Consolidated),
		logger.Int("matched", rep.Matched),
		logger.Int("belowThreshold", rep.BelowThreshold),
		logger.Int("duplicates", rep.Duplicates),
		logger.Int("returned", len(preds)),
		logger.Bool("truncated", len(preds) < rep.Returned),
	)
	if rep.MalformedRecords > 0 || rep.InvalidObservations > 0 {
		s.logger.Debug(ctx, "dataset has malformed records",
			logger.Int("malformedRecords", rep.MalformedRecords),
			logger.Int("invalidObservations", rep.InvalidObservations),
		)
	}
	return preds, nil
}

// PredictBatch evaluates several requests on the worker pool. Results are
// returned in request order. If the queue cannot take every request the
// whole batch fails with ErrBackpressure.
func (s *Service) PredictBatch(ctx context.Context, reqs []PredictRequest) ([]BatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}

	out := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return out, nil
	}
	reply := make(chan model.JobResult, len(reqs))
	index := make(map[string]int, len(reqs))
	if err := s.enqueueBatch(ctx, reqs, reply, index, out); err != nil {
		return nil, err
	}

	for received := 0; received < len(reqs); received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-reply:
			i := index[res.ID]
			out[i].Predictions = res.Predictions
			out[i].Err = res.Err
		}
	}
	return out, nil
}

// enqueueBatch queues every request or none of them. Workers only drain the
// queue, so slots free at the check stay free until the loop ends.
func (s *Service) enqueueBatch(ctx context.Context, reqs []PredictRequest, reply chan model.JobResult, index map[string]int, out []BatchResult) error {
	s.enqueueMu.Lock()
	defer s.enqueueMu.Unlock()

	if free := s.queue.Cap() - s.queue.Len(ctx); free < len(reqs) {
		return fmt.Errorf("%w: %d requests, %d free slots", ErrBackpressure, len(reqs), free)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// Enqueue never blocks; a cancel arriving mid-loop must not split the batch.
	qctx := context.WithoutCancel(ctx)
	for i, r := range reqs {
		id := uuid.NewString()
		index[id] = i
		out[i].ID = id
		if !s.queue.Enqueue(qctx, model.Job{ID: id, Score: r.Score, Filters: r.Filters, Reply: reply}) {
			return ErrBackpressure
		}
	}
	return nil
}

// Options returns the distinct filter values of the dataset.
func (s *Service) Options(ctx context.Context) (repository.FilterOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return repository.FilterOptions{}, ErrNoStore
	}
	return s.store.Options(ctx), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"maxResults":  s.maxResults,
	}
	if s.store != nil {
		stats["datasetRecords"] = s.store.Count(ctx)
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["workers"] = s.pool.Size()
	}
	return stats
}
